// Package util provides small filesystem helpers shared by the
// registry scan.
package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// MappedSet reads files through read-only memory maps for the duration
// of one scan, falling back to os.ReadFile when mapping fails (empty
// files, exotic filesystems). Close unmaps everything at once; slices
// returned by Read must not be used after Close.
//
// Thread-safe: concurrent Read calls are safe.
type MappedSet struct {
	logger *slog.Logger

	mu    sync.Mutex
	files []*mappedFile
}

type mappedFile struct {
	path string
	file *os.File
	data mmap.MMap
}

// NewMappedSet creates an empty set. If logger is nil, slog.Default()
// is used.
func NewMappedSet(logger *slog.Logger) *MappedSet {
	if logger == nil {
		logger = slog.Default()
	}
	return &MappedSet{logger: logger}
}

// Read returns the contents of path, mapped when possible.
func (s *MappedSet) Read(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		f.Close()
		return nil, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		s.logger.Warn("mmap failed, reading file directly", "path", path, "error", err)
		return os.ReadFile(path)
	}

	s.mu.Lock()
	s.files = append(s.files, &mappedFile{path: path, file: f, data: data})
	s.mu.Unlock()

	return []byte(data), nil
}

// Close unmaps every mapped file and closes the descriptors.
// Safe to call more than once.
func (s *MappedSet) Close() error {
	s.mu.Lock()
	files := s.files
	s.files = nil
	s.mu.Unlock()

	var errs []error
	for _, mf := range files {
		if err := mf.data.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap %s: %w", mf.path, err))
		}
		if err := mf.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", mf.path, err))
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of currently mapped files.
func (s *MappedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
