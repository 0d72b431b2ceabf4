// internal/app/system/blob/blob.go
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ErrTooLarge is returned by Put when the data exceeds the size limit.
var ErrTooLarge = apperr.Validation("file too large")

// ErrNotFound is returned by Open when nothing is stored at the path.
var ErrNotFound = apperr.NotFound("file not found")

// Store keeps uploaded bytes on an afero filesystem. Paths returned by Put are
// relative to the store and use forward slashes.
type Store struct {
	fs afero.Fs
}

// New returns a Store rooted at root on fs. An empty root uses fs as is.
func New(fs afero.Fs, root string) *Store {
	if root != "" {
		fs = afero.NewBasePathFs(fs, root)
	}
	return &Store{fs: fs}
}

// NewOS returns a Store writing under dir on the local disk.
func NewOS(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return New(afero.NewOsFs(), dir), nil
}

// NewMemory returns a Store backed by memory.
func NewMemory() *Store {
	return New(afero.NewMemMapFs(), "")
}

// Put writes r under a generated path derived from name and returns that
// path and the number of bytes written. When maxSize > 0 and r holds more
// than maxSize bytes, nothing is kept and ErrTooLarge is returned.
//
// Path layout: attachments/YYYY/MM/<12 hex>_<name>
func (s *Store) Put(ctx context.Context, name string, r io.Reader, maxSize int64) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	now := time.Now().UTC()
	dir := fmt.Sprintf("attachments/%04d/%02d", now.Year(), now.Month())
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	p := path.Join(dir, id[len(id)-12:]+"_"+safeName(name))

	if err := s.fs.MkdirAll(dir, 0o750); err != nil {
		return "", 0, fmt.Errorf("create blob dir: %w", err)
	}
	f, err := s.fs.Create(p)
	if err != nil {
		return "", 0, fmt.Errorf("create blob: %w", err)
	}

	src := r
	if maxSize > 0 {
		// Read one byte past the limit to detect oversize input.
		src = io.LimitReader(r, maxSize+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && maxSize > 0 && n > maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = s.fs.Remove(p)
		if errors.Is(err, ErrTooLarge) {
			return "", 0, err
		}
		return "", 0, fmt.Errorf("write blob: %w", err)
	}
	return p, n, nil
}

// Open returns a reader for the blob at p. The caller closes it.
func (s *Store) Open(p string) (io.ReadCloser, error) {
	f, err := s.fs.Open(clean(p))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes the blob at p. Missing blobs are not an error.
func (s *Store) Delete(p string) error {
	err := s.fs.Remove(clean(p))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// safeName reduces name to characters that are safe in a path segment.
func safeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
			c == '-' || c == '_' || c == '.' {
			out = append(out, c)
		} else {
			out = append(out, '_')
		}
	}
	if len(out) == 0 || string(out) == "." || string(out) == ".." {
		return "file"
	}
	if len(out) > 100 {
		ext := path.Ext(string(out))
		if ext != "" && len(ext) < 10 {
			out = append(out[:100-len(ext)], ext...)
		} else {
			out = out[:100]
		}
	}
	return string(out)
}

func clean(p string) string {
	return path.Clean("/" + p)[1:]
}
