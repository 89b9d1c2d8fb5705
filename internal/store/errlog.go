package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AppendErrorLog appends failed request URIs to errors.txt under dir, one
// per line, matching the run report convention.
func AppendErrorLog(dir string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir error log dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, "errors.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("store: open error log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(strings.Join(uris, "\n") + "\n"); err != nil {
		return fmt.Errorf("store: write error log: %w", err)
	}
	return nil
}
