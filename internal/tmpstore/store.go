package tmpstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrInvalidName is returned for names this store could not have produced
var ErrInvalidName = errors.New("invalid staged file name")

var namePattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(\.[a-z0-9]{1,10})?$`)

// Store stages uploads between the upload and confirm steps of an import
type Store struct {
	dir     string
	allowed []string
}

// Option configures a Store
type Option func(*Store)

// WithAllowedPatterns limits uploads to original names matching any pattern
func WithAllowedPatterns(patterns ...string) Option {
	return func(s *Store) {
		s.allowed = append(s.allowed, patterns...)
	}
}

// New creates a store rooted at dir, creating it when missing
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "tingly-porter")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	s := &Store{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	for _, p := range s.allowed {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid upload pattern %q", p)
		}
	}
	return s, nil
}

// Dir returns the staging directory
func (s *Store) Dir() string {
	return s.dir
}

// Allowed reports whether an upload called originalName may be staged
func (s *Store) Allowed(originalName string) bool {
	if len(s.allowed) == 0 {
		return true
	}
	base := strings.ToLower(filepath.Base(filepath.ToSlash(originalName)))
	for _, p := range s.allowed {
		if ok, _ := doublestar.Match(strings.ToLower(p), base); ok {
			return true
		}
	}
	return false
}

// Save copies r into a new staged file and returns its name
func (s *Store) Save(ctx context.Context, r io.Reader, ext string) (string, int64, error) {
	name := uuid.New().String()
	if ext = strings.ToLower(strings.TrimPrefix(ext, ".")); ext != "" {
		name += "." + ext
	}
	if !namePattern.MatchString(name) {
		return "", 0, fmt.Errorf("%w: extension %q", ErrInvalidName, ext)
	}

	path := filepath.Join(s.dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create staged file: %w", err)
	}

	n, err := io.Copy(file, &ctxReader{ctx: ctx, r: r})
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write staged file: %w", err)
	}

	logrus.Debugf("tmpstore: staged %s (%d bytes)", name, n)
	return name, n, nil
}

// Extension returns the lowercase extension a staged name was saved with, without the dot
func Extension(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}

// Open opens a staged file. Only base names produced by Save are accepted.
func (s *Store) Open(name string) (*os.File, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove deletes a staged file; a missing file is not an error
func (s *Store) Remove(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Purge removes staged files older than maxAge and returns how many went
func (s *Store) Purge(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read staging directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !namePattern.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
				logrus.Warnf("tmpstore: failed to purge %s: %v", entry.Name(), err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

func (s *Store) path(name string) (string, error) {
	if name != filepath.Base(name) || !namePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
