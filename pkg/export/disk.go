package export

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore writes snapshots below a local directory.
type DiskStore struct {
	dir     string
	maxSize int64
}

// NewDiskStore creates a DiskStore rooted at dir, creating it if needed.
// maxSize limits a single snapshot in bytes (0 = no limit).
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir, maxSize: maxSize}, nil
}

// Dir returns the store root.
func (s *DiskStore) Dir() string { return s.dir }

// Put writes body to dir/key. The file appears atomically: it is written to
// a temp file in the same directory and renamed into place.
func (s *DiskStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(filepath.Dir(dst), ".export-*")
	if err != nil {
		return "", err
	}
	tmp := f.Name()

	var reader = body
	if s.maxSize > 0 {
		reader = io.LimitReader(body, s.maxSize+1) // +1 to detect overflow
	}
	written, err := io.Copy(f, reader)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return "", err
	}
	if s.maxSize > 0 && written > s.maxSize {
		os.Remove(tmp)
		return "", ErrTooLarge
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return dst, nil
}

// Prune removes snapshots under the store root not modified within maxAge.
// Files that are not snapshots and dot-directories are left alone.
func (s *DiskStore) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != s.dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil || !IsSnapshot(filepath.ToSlash(rel)) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if os.Remove(p) == nil {
				removed++
			}
		}
		return nil
	})
	return removed, err
}
