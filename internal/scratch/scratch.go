// Package scratch owns the shared scratch directory: timestamp-qualified file
// naming, safe lookup of served files and age-based eviction.
package scratch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// File kinds created by the service. Only files with these prefixes are ever
// evicted, so a shared OS temp directory is safe to sweep.
const (
	KindVideo  = "video"
	KindInput  = "input"
	KindOutput = "output"
	KindTrack  = "trending_song"
)

var kinds = []string{KindVideo, KindInput, KindOutput, KindTrack}

var (
	ErrInvalidName = errors.New("invalid file name")
	ErrNotFound    = errors.New("file not found")
)

type Dir struct {
	root string
	now  func() time.Time
}

func New(root string) (*Dir, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Dir{root: root, now: time.Now}, nil
}

// WithClock replaces the time source used for naming.
func (d *Dir) WithClock(now func() time.Time) *Dir {
	d.now = now
	return d
}

func (d *Dir) Root() string { return d.root }

// Path returns <root>/<kind>_<unix seconds><ext>. Two calls for the same kind
// within the same second return the same path.
func (d *Dir) Path(kind, ext string) string {
	return filepath.Join(d.root, fmt.Sprintf("%s_%d%s", kind, d.now().Unix(), ext))
}

// Resolve maps a client supplied file name to an existing regular file inside
// the scratch directory. Only files named by Path are served.
func (d *Dir) Resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	if !owned(name) {
		return "", ErrNotFound
	}
	p := filepath.Join(d.root, name)
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return p, nil
}

// Expired lists service-owned files whose modification time is older than
// ttl. A non-positive ttl matches nothing.
func (d *Dir) Expired(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("read scratch dir: %w", err)
	}
	cutoff := d.now().Add(-ttl)
	var expired []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !owned(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		expired = append(expired, e.Name())
	}
	return expired, nil
}

// Sweep removes the files Expired reports and returns the names it removed.
func (d *Dir) Sweep(ttl time.Duration) ([]string, error) {
	expired, err := d.Expired(ttl)
	if err != nil {
		return nil, err
	}
	var removed []string
	var errs []error
	for _, name := range expired {
		if err := os.Remove(filepath.Join(d.root, name)); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, name)
	}
	return removed, errors.Join(errs...)
}

func owned(name string) bool {
	for _, k := range kinds {
		if strings.HasPrefix(name, k+"_") {
			return true
		}
	}
	return false
}
