package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileExporter writes exports into a reports directory, creating it on
// demand.
type FileExporter struct {
	dir    string
	logger *slog.Logger
}

// NewFileExporter creates a file exporter rooted at dir.
func NewFileExporter(dir string, logger *slog.Logger) *FileExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileExporter{dir: dir, logger: logger}
}

// WriteFile creates name inside the reports directory and streams the export
// into it. The full path of the written file is returned.
func (e *FileExporter) WriteFile(name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := filepath.Join(e.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}

	e.logger.Info("export written", slog.String("path", path))
	return path, nil
}
