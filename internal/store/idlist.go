package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ucas-grades/internal/domain"
)

// IDListPath is where the search stage leaves its result for the acquire
// stage: one course id per line, named after the subject keyword.
func (s *Store) IDListPath(subject string) string {
	return filepath.Join(s.BaseDir, "course-ids-"+Slug(subject)+".txt")
}

// WriteIDList persists the search result atomically and returns the path.
func (s *Store) WriteIDList(subject string, ids []string) (string, error) {
	path := s.IDListPath(subject)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("store: mkdir for id list: %w", err)
	}

	var b strings.Builder
	for _, id := range ids {
		b.WriteString(id)
		b.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".ids-*.txt")
	if err != nil {
		return "", fmt.Errorf("store: temp id list: %w", err)
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store: write id list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store: close id list: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store: rename id list: %w", err)
	}
	return path, nil
}

// ReadIDList loads the id list for a subject. Lines may be bare ids or
// coursedisplay URLs; blanks are skipped. A missing file returns an empty
// list, not an error.
func (s *Store) ReadIDList(subject string) ([]string, error) {
	b, err := os.ReadFile(s.IDListPath(subject))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read id list: %w", err)
	}

	var ids []string
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ids = append(ids, domain.ParseCourseID(line))
	}
	return ids, nil
}
