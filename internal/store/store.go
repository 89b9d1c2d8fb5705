package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"ucas-grades/internal/domain"
)

const recordFile = "course.json"

// Store persists one JSON record per course under
// <BaseDir>/providers/<provider-sort>/<course-title>/course.json.
// Records are merge-only: a later run never silently drops a field an
// earlier run wrote.
type Store struct {
	BaseDir string
}

func New(baseDir string) *Store {
	return &Store{BaseDir: baseDir}
}

// GradesSection holds everything sourced from the historic-grades API.
// ConfirmationRates is keyed "<qualificationType>/<gradeProfile>"; the value
// is a percentage string, or "n/a" when the course+profile has no match.
type GradesSection struct {
	Aggregates        []domain.AggregateGrade `json:"aggregates"`
	ConfirmationRates map[string]string       `json:"confirmationRates,omitempty"`
}

// Record is the on-disk per-course document.
type Record struct {
	Detail    domain.Detail `json:"detail"`
	Grades    GradesSection `json:"grades"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// RateKey builds the confirmation-rate map key for a qualification type and
// grade profile.
func RateKey(qualificationType, profile string) string {
	return qualificationType + "/" + profile
}

// NotApplicable marks a course+profile combination the API reported no
// match for, so re-runs don't request it again.
const NotApplicable = "n/a"

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug normalizes a path component: lowercase, whitespace and punctuation
// collapsed to "-".
func Slug(s string) string {
	s = slugUnsafe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// CoursePath derives the record path for a detail payload from its
// provider-sort-name and course title.
func (s *Store) CoursePath(d domain.Detail) (string, error) {
	provider := Slug(d.ProviderSort())
	title := Slug(d.Title())
	if provider == "" || title == "" {
		return "", fmt.Errorf("store: detail for %q has no provider/title to derive a path from", d.ID())
	}
	return filepath.Join(s.BaseDir, "providers", provider, title, recordFile), nil
}

// Load reads the record at path. ok is false when no record exists yet.
func (s *Store) Load(path string) (rec Record, ok bool, err error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("store: read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, false, fmt.Errorf("store: decode %s: %w", path, err)
	}
	return rec, true, nil
}

// Save merges the new payloads over whatever is already at path and writes
// the result atomically (temp file + rename), so a failed write leaves the
// prior record untouched.
func (s *Store) Save(path string, detail domain.Detail, aggregates []domain.AggregateGrade, rates map[string]string) error {
	old, _, err := s.Load(path)
	if err != nil {
		return err
	}

	merged, err := mergeRecord(old, detail, aggregates, rates)
	if err != nil {
		return err
	}
	merged.UpdatedAt = time.Now().UTC()

	return s.writeAtomic(path, merged)
}

func (s *Store) writeAtomic(path string, rec Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir %s: %w", dir, err)
	}

	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".course-*.json")
	if err != nil {
		return fmt.Errorf("store: temp file in %s: %w", dir, err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: rename into %s: %w", path, err)
	}
	return nil
}

// MissingProfiles returns the predicted grade profiles the record has no
// cached confirmation rate for yet, preserving input order. Re-runs only
// request what is absent.
func MissingProfiles(rec Record, qualificationType string, profiles []string) []string {
	var missing []string
	for _, p := range profiles {
		if _, ok := rec.Grades.ConfirmationRates[RateKey(qualificationType, p)]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}

// Walk visits every persisted course record under BaseDir/providers.
func (s *Store) Walk(fn func(path string, rec Record) error) error {
	root := filepath.Join(s.BaseDir, "providers")
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if errors.Is(err, fs.ErrNotExist) && path == root {
			return nil
		}
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != recordFile {
			return nil
		}
		rec, ok, err := s.Load(path)
		if err != nil || !ok {
			return err
		}
		return fn(path, rec)
	})
}
