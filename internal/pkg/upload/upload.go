// Package upload implements size-capped streaming writes for uploaded media.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kart-io/bloggy/pkg/utils/errors"
)

// Saver streams uploaded files to a media directory, enforcing an extension
// allowlist and a byte cap. Oversized uploads are aborted and the partial
// file removed.
type Saver struct {
	root       string
	maxBytes   int64
	chunkBytes int64
	allowed    map[string]bool
}

// NewSaver creates a Saver. The media root is created if missing.
func NewSaver(root string, maxBytes, chunkBytes int64, allowedExts []string) (*Saver, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}

	allowed := make(map[string]bool, len(allowedExts))
	for _, ext := range allowedExts {
		allowed[strings.ToLower(ext)] = true
	}

	return &Saver{
		root:       root,
		maxBytes:   maxBytes,
		chunkBytes: chunkBytes,
		allowed:    allowed,
	}, nil
}

// ValidateExtension returns the lowercased extension of filename if it is on
// the allowlist, or ErrImageType.
func (s *Saver) ValidateExtension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || !s.allowed[ext] {
		return "", errors.ErrImageType.WithMessagef("unsupported image type %q", ext)
	}
	return ext, nil
}

// Save streams r to <root>/<name> in fixed-size chunks with a running byte
// counter. If the counter exceeds the cap the write is aborted, the partial
// file deleted, and ErrImageTooLarge returned. A file of exactly the cap
// succeeds.
func (s *Saver) Save(name string, r io.Reader) (written int64, err error) {
	path := filepath.Join(s.root, name)

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	buf := make([]byte, s.chunkBytes)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			if written+int64(n) > s.maxBytes {
				f.Close()
				os.Remove(path)
				return 0, errors.ErrImageTooLarge.WithMessagef("upload exceeds %d bytes", s.maxBytes)
			}
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				f.Close()
				os.Remove(path)
				return 0, fmt.Errorf("write %s: %w", path, writeErr)
			}
			written += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			f.Close()
			os.Remove(path)
			return 0, fmt.Errorf("read upload: %w", readErr)
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("close %s: %w", path, err)
	}
	return written, nil
}

// Remove deletes a previously saved file. Missing files are not an error.
func (s *Saver) Remove(name string) error {
	err := os.Remove(filepath.Join(s.root, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Root returns the media root directory.
func (s *Saver) Root() string {
	return s.root
}
