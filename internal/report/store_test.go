package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhousteau/genesis-sub002/internal/models"
)

func reportAt(id string, ts time.Time) *models.ComplianceReport {
	return &models.ComplianceReport{
		Metadata: models.ReportMetadata{
			ReportID:    id,
			GeneratedAt: ts,
			Project:     "proj-a",
			Framework:   models.FrameworkSOC2,
		},
		Summary: models.ScanSummary{OverallStatus: models.StatusPass, ComplianceScore: 100},
	}
}

func TestStoreWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	path, err := s.Write(reportAt("abc-123", ts), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report-20260314T093000Z-abc-123.json"), path)

	loaded, err := s.Load("abc-123")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", loaded.Metadata.ReportID)
	assert.Equal(t, 100, loaded.Summary.ComplianceScore)
}

func TestStoreWriteCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	s := NewStore(dir)

	_, err := s.Write(reportAt("x", time.Now()), FormatJSON)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStoreWriteSidecarView(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	path, err := s.Write(reportAt("id-1", ts), FormatCSV)
	require.NoError(t, err)

	// Canonical artifact is always JSON; the CSV view sits alongside it.
	assert.True(t, strings.HasSuffix(path, ".json"))
	_, err = os.Stat(strings.TrimSuffix(path, ".json") + ".csv")
	assert.NoError(t, err)
}

func TestStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	_, err := s.Write(reportAt("id-1", time.Now()), FormatText)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "leftover temp file %s", e.Name())
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"first", "second", "third"} {
		_, err := s.Write(reportAt(id, base.Add(time.Duration(i)*time.Minute)), FormatJSON)
		require.NoError(t, err)
	}

	refs, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, "third", refs[0].ReportID)
	assert.Equal(t, "second", refs[1].ReportID)
	assert.Equal(t, "first", refs[2].ReportID)

	limited, err := s.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStoreListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report-garbage.json"), []byte("{}"), 0o644))
	_, err := s.Write(reportAt("real", time.Now()), FormatJSON)
	require.NoError(t, err)

	refs, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "real", refs[0].ReportID)
}

func TestStoreMissingDirectory(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))

	refs, err := s.List(0)
	require.NoError(t, err)
	assert.Empty(t, refs)

	_, err = s.Latest()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreLoadUnknownID(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreLatest(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	_, err := s.Write(reportAt("old", base), FormatJSON)
	require.NoError(t, err)
	_, err = s.Write(reportAt("new", base.Add(time.Hour)), FormatJSON)
	require.NoError(t, err)

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "new", latest.Metadata.ReportID)
}
