package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Snapshots stores debug captures as <name>-<unixms>.png / .html in Dir.
type Snapshots struct {
	Dir string
}

// NewSnapshots returns nil when dir is empty, which disables captures.
func NewSnapshots(dir string) *Snapshots {
	if dir == "" {
		return nil
	}
	return &Snapshots{Dir: dir}
}

var snapshotNameChars = regexp.MustCompile(`[^a-z0-9-]+`)

// Save writes the capture and returns the common path prefix of both files.
func (s *Snapshots) Save(name string, png []byte, html string, at time.Time) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	name = strings.Trim(snapshotNameChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if name == "" {
		name = "snapshot"
	}
	base := filepath.Join(s.Dir, fmt.Sprintf("%s-%d", name, at.UnixMilli()))

	var errs []error
	if len(png) > 0 {
		if err := os.WriteFile(base+".png", png, 0o644); err != nil {
			errs = append(errs, err)
		}
	}
	if err := os.WriteFile(base+".html", []byte(html), 0o644); err != nil {
		errs = append(errs, err)
	}
	return base, errors.Join(errs...)
}

// Sweep deletes captures last modified before now-maxAge and returns how many
// files were removed. A missing directory is not an error.
func (s *Snapshots) Sweep(maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read snapshot dir: %w", err)
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	var errs []error
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".png" && ext != ".html") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
