// Package files locates the experiment input files inside the data directory.
// Filenames are normalized to NFC before matching so directories written by
// filesystems that store decomposed Hangul (NFD, as macOS does) match the same
// way as composed ones.
package files

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	apierrors "ecdash/internal/errors"
	"ecdash/internal/registry"
)

// Filename markers for the two input kinds.
const (
	envMarker    = "환경데이터"
	growthMarker = "생육결과데이터"
)

// FileInfo represents information about a discovered file. Name is the
// NFC-normalized filename.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// EnvironmentFile is a matched environment CSV together with the school
// extracted from its filename.
type EnvironmentFile struct {
	FileInfo
	School registry.School
}

// Discovery scans a data directory for experiment input files.
type Discovery struct {
	dataDir  string
	registry *registry.Registry
}

// NewDiscovery creates a new file discovery instance over the given data
// directory.
func NewDiscovery(dataDir string, reg *registry.Registry) *Discovery {
	return &Discovery{dataDir: dataDir, registry: reg}
}

// FindEnvironmentFiles returns the environment CSV candidates: files whose
// NFC-normalized name contains the environment marker with a .csv extension,
// and whose filename prefix (before the first underscore) is a registered
// school. Unregistered prefixes are skipped without error. When nothing
// matches, ErrNoEnvironmentFiles is returned.
func (d *Discovery) FindEnvironmentFiles() ([]EnvironmentFile, error) {
	entries, err := os.ReadDir(d.dataDir)
	if err != nil {
		return nil, apierrors.NewMissingDataDirectory(d.dataDir, err)
	}

	var files []EnvironmentFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := norm.NFC.String(entry.Name())
		if !strings.Contains(name, envMarker) {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}

		schoolName, _, found := strings.Cut(name, "_")
		if !found {
			continue
		}
		school, ok := d.registry.Lookup(schoolName)
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, EnvironmentFile{
			FileInfo: FileInfo{
				Path:    filepath.Join(d.dataDir, entry.Name()),
				Name:    name,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			},
			School: school,
		})
	}

	if len(files) == 0 {
		return nil, apierrors.ErrNoEnvironmentFiles
	}

	return files, nil
}

// FindGrowthWorkbook returns the first file whose NFC-normalized name
// contains the growth marker with a .xlsx extension. Directory order decides
// which file wins when multiple match. ErrNoGrowthFile is returned when none
// matches.
func (d *Discovery) FindGrowthWorkbook() (FileInfo, error) {
	entries, err := os.ReadDir(d.dataDir)
	if err != nil {
		return FileInfo{}, apierrors.NewMissingDataDirectory(d.dataDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := norm.NFC.String(entry.Name())
		if !strings.Contains(name, growthMarker) {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		return FileInfo{
			Path:    filepath.Join(d.dataDir, entry.Name()),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}, nil
	}

	return FileInfo{}, apierrors.ErrNoGrowthFile
}

// Signature digests the directory's file set (name, size, mtime) into a
// stable hex string. The load cache uses it to decide whether a cached
// dataset is still current.
func (d *Discovery) Signature() (string, error) {
	entries, err := os.ReadDir(d.dataDir)
	if err != nil {
		return "", apierrors.NewMissingDataDirectory(d.dataDir, err)
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s|%d|%d",
			norm.NFC.String(entry.Name()), info.Size(), info.ModTime().UnixNano()))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// DataDir returns the directory this discovery scans.
func (d *Discovery) DataDir() string {
	return d.dataDir
}
