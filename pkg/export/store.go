package export

import (
	"context"
	"errors"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

// snapshotTimeLayout is the UTC timestamp SnapshotName appends.
const snapshotTimeLayout = "20060102T150405Z"

var snapshotStem = regexp.MustCompile(`^.+-\d{8}T\d{6}Z$`)

// ErrTooLarge is returned when a snapshot exceeds the store's size limit.
var ErrTooLarge = errors.New("export: snapshot too large")

// ErrInvalidKey is returned for empty keys and keys that escape the store root.
var ErrInvalidKey = errors.New("export: invalid key")

// Store is the interface for snapshot storage backends.
type Store interface {
	// Put writes the body under key and returns its location: a file path
	// for DiskStore, an s3:// URI for S3Store.
	Put(ctx context.Context, key, contentType string, body io.Reader) (location string, err error)

	// Prune removes snapshots older than maxAge. Only keys accepted by
	// IsSnapshot are considered.
	Prune(ctx context.Context, maxAge time.Duration) (removed int, err error)
}

// cleanKey normalizes a slash separated key and rejects traversal.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// SnapshotName returns a sortable, timestamped snapshot name for grid.
func SnapshotName(grid string, now time.Time) string {
	if grid == "" {
		grid = "grid"
	}
	return grid + "-" + now.UTC().Format(snapshotTimeLayout)
}

// IsSnapshot reports whether key, relative to a store root, names a file
// written under SnapshotName with a format extension. Keys with a segment
// starting with "." never match.
func IsSnapshot(key string) bool {
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || strings.HasPrefix(seg, ".") {
			return false
		}
	}
	base := path.Base(key)
	ext := path.Ext(base)
	known := false
	for _, f := range Formats {
		if f.Extension() == ext {
			known = true
			break
		}
	}
	return known && snapshotStem.MatchString(strings.TrimSuffix(base, ext))
}
