// Package storage keeps uploaded task attachments on the local filesystem,
// one directory per task, files named by their original upload filename.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/kutbudev/taskvault/pkg/models"
)

// chunkSize is the read granularity for the upload size check.
const chunkSize = 32 * 1024

// Store writes, serves and removes attachment content under a root
// directory.
type Store struct {
	root     string
	maxBytes int64
	log      *slog.Logger
}

// New creates a store rooted at dir, rejecting files larger than maxBytes.
func New(dir string, maxBytes int64, log *slog.Logger) *Store {
	return &Store{root: dir, maxBytes: maxBytes, log: log}
}

// TaskDir returns the directory holding one task's files.
func (s *Store) TaskDir(taskID string) string {
	return filepath.Join(s.root, taskID)
}

// SaveAll stores a whole upload batch for a task. Files are staged into a
// temporary directory first: the size ceiling and duplicate-name checks run
// against the staged batch before anything reaches its final path, and any
// failure removes every artifact of the batch. On success the returned
// final paths are in input order.
func (s *Store) SaveAll(taskID string, headers []*multipart.FileHeader) ([]string, error) {
	taskDir := s.TaskDir(taskID)

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	staging, err := os.MkdirTemp(s.root, ".staging-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	seen := make(map[string]struct{}, len(headers))
	names := make([]string, 0, len(headers))
	for _, header := range headers {
		// Clients may send Windows-style separators, which filepath.Base
		// does not strip on this platform.
		name := filepath.Base(strings.ReplaceAll(header.Filename, `\`, "/"))
		if name == "" || name == "." || name == "/" {
			return nil, fmt.Errorf("%w: invalid filename %q", models.ErrDuplicateFile, header.Filename)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", models.ErrDuplicateFile, name)
		}
		_, err := os.Stat(filepath.Join(taskDir, name))
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: %q", models.ErrDuplicateFile, name)
		case !errors.Is(err, fs.ErrNotExist):
			// An unreadable task dir must not disable the conflict check.
			return nil, fmt.Errorf("failed to check for existing %q: %w", name, err)
		}
		seen[name] = struct{}{}

		if err := s.stage(header, filepath.Join(staging, name)); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	if err := os.MkdirAll(taskDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create task dir: %w", err)
	}

	paths := make([]string, 0, len(names))
	for _, name := range names {
		dst := filepath.Join(taskDir, name)
		if err := os.Rename(filepath.Join(staging, name), dst); err != nil {
			// Undo the part of the batch already committed.
			for _, placed := range paths {
				if rmErr := os.Remove(placed); rmErr != nil {
					s.log.Warn("failed to undo committed upload", "path", placed, "error", rmErr)
				}
			}
			return nil, fmt.Errorf("failed to place %q: %w", name, err)
		}
		paths = append(paths, dst)
	}

	return paths, nil
}

// stage measures the upload by reading it in fixed-size chunks, then
// rewinds and writes the content to dst. Nothing is written for a file
// that fails the size check.
func (s *Store) stage(header *multipart.FileHeader, dst string) error {
	src, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload %q: %w", header.Filename, err)
	}
	defer src.Close()

	var total int64
	buf := make([]byte, chunkSize)
	for {
		n, err := src.Read(buf)
		total += int64(n)
		if total > s.maxBytes {
			return fmt.Errorf("%w: %q", models.ErrFileTooLarge, header.Filename)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read upload %q: %w", header.Filename, err)
		}
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind upload %q: %w", header.Filename, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to stage %q: %w", header.Filename, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("failed to write %q: %w", header.Filename, err)
	}
	return nil
}

// Remove deletes stored content, tolerating content that is already gone.
func (s *Store) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %q: %w", path, err)
	}
	return nil
}

// RemoveTaskDir deletes a task's whole attachment directory.
func (s *Store) RemoveTaskDir(taskID string) error {
	return os.RemoveAll(s.TaskDir(taskID))
}

// Open opens stored content for download. Missing content is reported as
// a not-found condition rather than an IO error.
func (s *Store) Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: content missing at %q", models.ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	return f, nil
}
