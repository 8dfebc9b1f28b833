package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jhousteau/genesis-sub002/internal/models"
)

// ErrNotFound is returned by Load when no report with the given ID exists.
var ErrNotFound = errors.New("report not found")

// artifact filename layout: report-<UTC timestamp>-<report id>.json
const (
	filePrefix   = "report-"
	tsLayout     = "20060102T150405Z"
	canonicalExt = ".json"
)

// Ref points at one persisted report.
type Ref struct {
	ReportID    string    `json:"report_id"`
	Path        string    `json:"path"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Store owns the report directory. Filenames embed the UTC generation
// timestamp and report ID, so every run writes a fresh path and no two runs
// ever race on the same file.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created on first
// write, not here, so read-only commands work against a missing directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the report directory path.
func (s *Store) Dir() string { return s.dir }

// Write persists rep and returns the canonical artifact path. The canonical
// JSON artifact is always written; when format is text or CSV the rendered
// view is written alongside it under the same basename.
//
// Writes are atomic (temp file + rename) so a concurrent reader never
// observes a partially written report. Any failure here is fatal to the run:
// the caller must surface it, never drop the report silently.
func (s *Store) Write(rep *models.ComplianceReport, format Format) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory %q: %w", s.dir, err)
	}

	base := fmt.Sprintf("%s%s-%s",
		filePrefix,
		rep.Metadata.GeneratedAt.UTC().Format(tsLayout),
		rep.Metadata.ReportID,
	)

	canonical, err := Render(rep, FormatJSON)
	if err != nil {
		return "", err
	}
	canonicalPath := filepath.Join(s.dir, base+canonicalExt)
	if err := writeAtomic(canonicalPath, canonical); err != nil {
		return "", err
	}

	if format != FormatJSON {
		view, err := Render(rep, format)
		if err != nil {
			return "", err
		}
		if err := writeAtomic(filepath.Join(s.dir, base+format.Ext()), view); err != nil {
			return "", err
		}
	}

	return canonicalPath, nil
}

// writeAtomic writes data to path via a temp file in the same directory
// followed by a rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-report-*")
	if err != nil {
		return fmt.Errorf("create temp report file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write report artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close report artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish report artifact %q: %w", path, err)
	}
	return nil
}

// List returns up to limit report references, newest first by generation
// timestamp. limit <= 0 means no limit. A missing report directory yields an
// empty list, not an error.
func (s *Store) List(limit int) ([]Ref, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read report directory %q: %w", s.dir, err)
	}

	var refs []Ref
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ref, ok := parseArtifactName(entry.Name())
		if !ok {
			continue
		}
		ref.Path = filepath.Join(s.dir, entry.Name())
		refs = append(refs, ref)
	}

	sort.Slice(refs, func(i, j int) bool {
		if !refs[i].GeneratedAt.Equal(refs[j].GeneratedAt) {
			return refs[i].GeneratedAt.After(refs[j].GeneratedAt)
		}
		return refs[i].ReportID > refs[j].ReportID
	})

	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

// Load reads the report with the given ID. Returns ErrNotFound when no
// canonical artifact carries that ID.
func (s *Store) Load(reportID string) (*models.ComplianceReport, error) {
	refs, err := s.List(0)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if ref.ReportID == reportID {
			return s.read(ref.Path)
		}
	}
	return nil, fmt.Errorf("report %q: %w", reportID, ErrNotFound)
}

// Latest returns the most recent report, or ErrNotFound when the history is
// empty.
func (s *Store) Latest() (*models.ComplianceReport, error) {
	refs, err := s.List(1)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, ErrNotFound
	}
	return s.read(refs[0].Path)
}

func (s *Store) read(path string) (*models.ComplianceReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %q: %w", path, err)
	}
	var rep models.ComplianceReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("parse report %q: %w", path, err)
	}
	return &rep, nil
}

// parseArtifactName extracts the reference from a canonical artifact name.
// View artifacts (.txt, .csv) and foreign files are ignored.
func parseArtifactName(name string) (Ref, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, canonicalExt) {
		return Ref{}, false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), canonicalExt)
	tsPart, id, ok := strings.Cut(rest, "-")
	if !ok || id == "" {
		return Ref{}, false
	}
	ts, err := time.Parse(tsLayout, tsPart)
	if err != nil {
		return Ref{}, false
	}
	return Ref{ReportID: id, GeneratedAt: ts}, true
}
