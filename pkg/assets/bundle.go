package assets

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"
)

// Resolver maps a source asset name to its URL path.
type Resolver interface {
	Asset(source string) string
}

// Asset is one registered file.
type Asset struct {
	Name          string
	Fingerprinted string
	ContentType   string
	Content       []byte
	ETag          string
}

// Bundle holds assets and serves them under prefix. It is safe for
// concurrent use.
type Bundle struct {
	prefix   string
	modified time.Time

	mu     sync.RWMutex
	byName map[string]*Asset
	byPath map[string]*Asset
}

// NewBundle creates an empty bundle served under prefix (e.g., "/assets/").
func NewBundle(prefix string) *Bundle {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Bundle{
		prefix:   prefix,
		modified: time.Now(),
		byName:   make(map[string]*Asset),
		byPath:   make(map[string]*Asset),
	}
}

// Prefix returns the URL prefix.
func (b *Bundle) Prefix() string { return b.prefix }

// Add registers content under name, replacing any previous asset of that
// name.
func (b *Bundle) Add(name, contentType string, content []byte) *Asset {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])[:8]
	a := &Asset{
		Name:          name,
		Fingerprinted: Fingerprint(name, hash),
		ContentType:   contentType,
		Content:       content,
		ETag:          `"` + hash + `"`,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if old, ok := b.byName[name]; ok {
		delete(b.byPath, old.Fingerprinted)
	}
	b.byName[name] = a
	b.byPath[a.Fingerprinted] = a
	b.byPath[name] = a
	return a
}

// Fingerprint inserts hash before the extension: "vgrid.js" becomes
// "vgrid.<hash>.js".
func Fingerprint(name, hash string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "." + hash + ext
}

// Asset implements Resolver. Unknown names are prefixed unchanged.
func (b *Bundle) Asset(source string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if a, ok := b.byName[source]; ok {
		return b.prefix + a.Fingerprinted
	}
	return b.prefix + source
}

// Lookup returns the asset registered under name.
func (b *Bundle) Lookup(name string) (*Asset, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	a, ok := b.byName[name]
	return a, ok
}

// Manifest returns the source to fingerprinted name mapping.
func (b *Bundle) Manifest() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]string, len(b.byName))
	for name, a := range b.byName {
		out[name] = a.Fingerprinted
	}
	return out
}

// ServeHTTP serves the asset named by the path after the prefix.
// Fingerprinted names are cached for a year; plain names must revalidate.
func (b *Bundle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, b.prefix)
	b.mu.RLock()
	a, ok := b.byPath[name]
	b.mu.RUnlock()
	if !ok || name == "" {
		http.NotFound(w, r)
		return
	}

	if name == a.Fingerprinted {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	} else {
		w.Header().Set("Cache-Control", "no-cache")
	}
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("ETag", a.ETag)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, a.Name, b.modified, bytes.NewReader(a.Content))
}
