package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/vgrid/pkg/grid"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for item files that are neither YAML nor
// JSON.
var ErrUnsupportedFormat = errors.New("datasource: unsupported file format")

// File reads items from a YAML (.yaml, .yml) or JSON (.json) file holding a
// list of mappings. The file is re-read on every call.
type File string

// Items implements grid.Source.
func (f File) Items(ctx context.Context) ([]grid.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("datasource: read %s: %w", string(f), err)
	}
	return Decode(data, filepath.Ext(string(f)))
}

// Decode parses a list of items. ext selects the format and includes the
// leading dot.
func Decode(data []byte, ext string) ([]grid.Item, error) {
	var raw []map[string]any
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("datasource: decode yaml: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("datasource: decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	items := make([]grid.Item, len(raw))
	for i, m := range raw {
		item := make(grid.Item, len(m))
		for k, v := range m {
			item[k] = normalize(v)
		}
		items[i] = item
	}
	return items, nil
}

// normalize maps decoded numbers onto int64 or float64 so the sorter and the
// number column see one representation per kind.
func normalize(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case int:
		return int64(n)
	case uint64:
		return float64(n)
	default:
		return v
	}
}

// Static serves a fixed item list.
type Static []grid.Item

// Items implements grid.Source. Items are copied so grid mutations do not
// leak back into the list.
func (s Static) Items(ctx context.Context) ([]grid.Item, error) {
	out := make([]grid.Item, len(s))
	for i, it := range s {
		out[i] = it.Clone()
	}
	return out, nil
}
