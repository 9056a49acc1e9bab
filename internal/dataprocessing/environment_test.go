package dataprocessing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "ecdash/internal/errors"
	"ecdash/internal/files"
	"ecdash/internal/registry"
	"ecdash/pkg/contracts/domain"
)

func envFile(t *testing.T, dir, name, content string) files.EnvironmentFile {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	schoolName := name[:len(name)-len("_환경데이터.csv")]
	school, ok := registry.Default().Lookup(schoolName)
	require.True(t, ok, "test file must use a registered school")

	return files.EnvironmentFile{
		FileInfo: files.FileInfo{Path: path, Name: name},
		School:   school,
	}
}

func TestEnvironmentLoader_DropsUnparseableTimestamps(t *testing.T) {
	dir := t.TempDir()
	content := "시간,온도,습도,pH,EC\n" +
		"2024-03-01 09:00:00,21.5,65.2,6.1,1.1\n" +
		"2024-03-01 10:00:00,22.0,64.8,6.0,1.0\n" +
		",22.3,64.1,6.2,1.2\n" +
		"2024-03-01 11:00:00,22.8,63.5,6.1,1.1\n"
	file := envFile(t, dir, "송도고_환경데이터.csv", content)

	loader := NewEnvironmentLoader(nil)
	data, err := loader.Load(context.Background(), []files.EnvironmentFile{file})
	require.NoError(t, err)

	require.Len(t, data.Records, 3, "row with empty timestamp must be dropped")
	for _, r := range data.Records {
		assert.Equal(t, "송도고", r.School)
		assert.Equal(t, 1.0, r.ECGoal)
	}

	require.Len(t, data.Summary, 1)
	assert.Equal(t, 3, data.Summary[0].Count)
}

func TestEnvironmentLoader_NumericFailureRetainsRow(t *testing.T) {
	dir := t.TempDir()
	content := "time,temp,hum,ph,ec\n" +
		"2024-03-01 09:00:00,abc,65.0,6.1,1.1\n"
	file := envFile(t, dir, "하늘고_환경데이터.csv", content)

	loader := NewEnvironmentLoader(nil)
	data, err := loader.Load(context.Background(), []files.EnvironmentFile{file})
	require.NoError(t, err)

	require.Len(t, data.Records, 1, "numeric failure must not drop the row")
	assert.False(t, data.Records[0].Temperature.Valid)
	assert.Equal(t, domain.FloatFrom(65.0), data.Records[0].Humidity)
}

func TestEnvironmentLoader_ShortRowsYieldMissingFields(t *testing.T) {
	dir := t.TempDir()
	content := "time,temp,hum,ph,ec\n" +
		"2024-03-01 09:00:00,21.5\n"
	file := envFile(t, dir, "아라고_환경데이터.csv", content)

	loader := NewEnvironmentLoader(nil)
	data, err := loader.Load(context.Background(), []files.EnvironmentFile{file})
	require.NoError(t, err)

	require.Len(t, data.Records, 1)
	assert.True(t, data.Records[0].Temperature.Valid)
	assert.False(t, data.Records[0].Humidity.Valid)
	assert.False(t, data.Records[0].PH.Valid)
	assert.False(t, data.Records[0].EC.Valid)
}

func TestEnvironmentLoader_MalformedFileSkippedSiblingsContinue(t *testing.T) {
	dir := t.TempDir()
	good := envFile(t, dir, "송도고_환경데이터.csv",
		"time,temp,hum,ph,ec\n2024-03-01 09:00:00,21.5,65.0,6.1,1.1\n")
	bad := envFile(t, dir, "하늘고_환경데이터.csv",
		"time,temp,hum,ph,ec\n\"unterminated,21.5,65.0\n")

	loader := NewEnvironmentLoader(nil)
	data, err := loader.Load(context.Background(), []files.EnvironmentFile{bad, good})
	require.NoError(t, err)

	require.Len(t, data.Records, 1)
	assert.Equal(t, "송도고", data.Records[0].School)

	require.Len(t, data.Warnings, 1)
	assert.Equal(t, apierrors.CodeFileParseError, data.Warnings[0].Code)
	assert.Equal(t, "하늘고_환경데이터.csv", data.Warnings[0].Item)
}

func TestEnvironmentLoader_NonUTF8FileReportedSiblingsContinue(t *testing.T) {
	dir := t.TempDir()
	good := envFile(t, dir, "송도고_환경데이터.csv",
		"time,temp,hum,ph,ec\n2024-03-01 09:00:00,21.5,65.0,6.1,1.1\n")
	// EUC-KR encoded header bytes: invalid UTF-8.
	bad := envFile(t, dir, "하늘고_환경데이터.csv",
		"\xbd\xc3\xb0\xa3,\xbf\xc2\xb5\xb5,hum,ph,ec\n2024-03-01 09:00:00,22.0,64.0,6.0,2.1\n")

	loader := NewEnvironmentLoader(nil)
	data, err := loader.Load(context.Background(), []files.EnvironmentFile{bad, good})
	require.NoError(t, err)

	require.Len(t, data.Records, 1, "legacy-encoded file must contribute no records")
	assert.Equal(t, "송도고", data.Records[0].School)

	require.Len(t, data.Warnings, 1)
	assert.Equal(t, apierrors.CodeFileParseError, data.Warnings[0].Code)
	assert.Equal(t, "하늘고_환경데이터.csv", data.Warnings[0].Item)
}

func TestEnvironmentLoader_BOMHeaderStripped(t *testing.T) {
	dir := t.TempDir()
	file := envFile(t, dir, "송도고_환경데이터.csv",
		"\uFEFFtime,temp,hum,ph,ec\n2024-03-01 09:00:00,21.5,65.0,6.1,1.1\n")

	loader := NewEnvironmentLoader(nil)
	data, err := loader.Load(context.Background(), []files.EnvironmentFile{file})
	require.NoError(t, err)

	require.Len(t, data.Records, 1)
	assert.Empty(t, data.Warnings, "a BOM is not an encoding failure")
}

func TestEnvironmentLoader_EmptyConcatenation(t *testing.T) {
	dir := t.TempDir()
	bad := envFile(t, dir, "송도고_환경데이터.csv",
		"time,temp,hum,ph,ec\n\"unterminated,21.5\n")

	loader := NewEnvironmentLoader(nil)
	data, err := loader.Load(context.Background(), []files.EnvironmentFile{bad})

	assert.ErrorIs(t, err, apierrors.ErrNoEnvironmentFiles)
	assert.Empty(t, data.Records)
	assert.Empty(t, data.Summary)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{input: "2024-03-01 09:00:00", ok: true},
		{input: "2024-03-01T09:00:00", ok: true},
		{input: "2024/03/01 09:00", ok: true},
		{input: "2024-03-01", ok: true},
		{input: "", ok: false},
		{input: "not a time", ok: false},
		{input: "03-2024-01", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, ok := parseTimestamp(tt.input)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
