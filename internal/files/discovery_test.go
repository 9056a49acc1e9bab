package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	apierrors "ecdash/internal/errors"
	"ecdash/internal/registry"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("content"), 0644))
}

func TestFindEnvironmentFiles(t *testing.T) {
	tests := []struct {
		name        string
		files       []string
		wantSchools []string
	}{
		{
			name:        "matching csv files",
			files:       []string{"송도고_환경데이터.csv", "하늘고_환경데이터.csv"},
			wantSchools: []string{"송도고", "하늘고"},
		},
		{
			name:        "unregistered school skipped",
			files:       []string{"송도고_환경데이터.csv", "미지고_환경데이터.csv"},
			wantSchools: []string{"송도고"},
		},
		{
			name:        "marker required",
			files:       []string{"송도고_환경데이터.csv", "송도고_비고.csv"},
			wantSchools: []string{"송도고"},
		},
		{
			name:        "extension case insensitive",
			files:       []string{"아라고_환경데이터.CSV"},
			wantSchools: []string{"아라고"},
		},
		{
			name:        "xlsx with marker not an environment candidate",
			files:       []string{"동산고_환경데이터.xlsx", "동산고_환경데이터.csv"},
			wantSchools: []string{"동산고"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				writeFile(t, dir, f)
			}

			d := NewDiscovery(dir, registry.Default())
			found, err := d.FindEnvironmentFiles()
			require.NoError(t, err)

			var schools []string
			for _, f := range found {
				schools = append(schools, f.School.Name)
			}
			assert.ElementsMatch(t, tt.wantSchools, schools)
		})
	}
}

func TestFindEnvironmentFiles_DecomposedFilename(t *testing.T) {
	dir := t.TempDir()

	// The same visible name stored in NFD, the way macOS filesystems persist it.
	decomposed := norm.NFD.String("송도고_환경데이터.csv")
	require.NotEqual(t, "송도고_환경데이터.csv", decomposed)
	writeFile(t, dir, decomposed)

	d := NewDiscovery(dir, registry.Default())
	found, err := d.FindEnvironmentFiles()
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "송도고", found[0].School.Name)
	assert.Equal(t, "송도고_환경데이터.csv", found[0].Name)
}

func TestFindEnvironmentFiles_NoneFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt")

	d := NewDiscovery(dir, registry.Default())
	_, err := d.FindEnvironmentFiles()
	assert.ErrorIs(t, err, apierrors.ErrNoEnvironmentFiles)
}

func TestFindEnvironmentFiles_MissingDirectory(t *testing.T) {
	d := NewDiscovery(filepath.Join(t.TempDir(), "absent"), registry.Default())
	_, err := d.FindEnvironmentFiles()

	var de *apierrors.DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, apierrors.CodeMissingDataDirectory, de.Code)
}

func TestFindGrowthWorkbook(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "송도고_환경데이터.csv")
	writeFile(t, dir, norm.NFD.String("전체_생육결과데이터.xlsx"))

	d := NewDiscovery(dir, registry.Default())
	wb, err := d.FindGrowthWorkbook()
	require.NoError(t, err)
	assert.Equal(t, "전체_생육결과데이터.xlsx", wb.Name)
}

func TestFindGrowthWorkbook_FirstMatchWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_생육결과데이터.xlsx")
	writeFile(t, dir, "a_생육결과데이터.xlsx")

	d := NewDiscovery(dir, registry.Default())
	wb, err := d.FindGrowthWorkbook()
	require.NoError(t, err)

	// os.ReadDir is sorted by filename, so "a_..." is discovered first.
	assert.Equal(t, "a_생육결과데이터.xlsx", wb.Name)
}

func TestFindGrowthWorkbook_NoneFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "생육결과데이터.csv")

	d := NewDiscovery(dir, registry.Default())
	_, err := d.FindGrowthWorkbook()
	assert.ErrorIs(t, err, apierrors.ErrNoGrowthFile)
}

func TestSignature_ChangesWithFileSet(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "송도고_환경데이터.csv")

	d := NewDiscovery(dir, registry.Default())
	sig1, err := d.Signature()
	require.NoError(t, err)

	sig2, err := d.Signature()
	require.NoError(t, err)
	assert.Equal(t, sig1, sig2, "unchanged directory must keep its signature")

	writeFile(t, dir, "하늘고_환경데이터.csv")
	sig3, err := d.Signature()
	require.NoError(t, err)
	assert.NotEqual(t, sig1, sig3, "adding a file must change the signature")
}
