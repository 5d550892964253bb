package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/vango-dev/vgrid/pkg/grid"
	"github.com/vango-dev/vgrid/pkg/render"
)

// Format selects the snapshot encoding.
type Format string

const (
	FormatHTML Format = "html" // the <table> fragment
	FormatPage Format = "page" // a complete HTML document
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for formats not listed in Formats.
var ErrUnknownFormat = errors.New("export: unknown format")

// Formats lists the supported formats.
var Formats = []Format{FormatHTML, FormatPage, FormatCSV, FormatJSON}

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension written for f.
func (f Format) Extension() string {
	switch f {
	case FormatHTML, FormatPage:
		return ".html"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	}
	return ""
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML, FormatPage:
		return "text/html; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// Exporter encodes grids and hands the result to a Store.
type Exporter struct {
	store    Store
	renderer *render.Renderer
	logger   *slog.Logger

	// Title and StyleSheets are used by FormatPage.
	Title       string
	StyleSheets []string
}

// NewExporter creates an Exporter writing to store.
func NewExporter(store Store) *Exporter {
	return &Exporter{
		store:    store,
		renderer: render.New(render.Config{OmitHIDs: true}),
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger.
func (e *Exporter) WithLogger(l *slog.Logger) *Exporter {
	if l != nil {
		e.logger = l
	}
	return e
}

// Encode writes the snapshot of g in format f to a byte slice.
func (e *Exporter) Encode(g *grid.Grid, f Format) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatHTML:
		if err := e.renderer.RenderToWriter(&buf, g.Table()); err != nil {
			return nil, err
		}
	case FormatPage:
		page := render.PageData{
			Body:        g.Table(),
			Title:       e.Title,
			StyleSheets: e.StyleSheets,
		}
		if err := e.renderer.RenderPage(&buf, page); err != nil {
			return nil, err
		}
	case FormatCSV:
		if err := writeCSV(&buf, g); err != nil {
			return nil, err
		}
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		items := g.Items()
		if items == nil {
			items = []grid.Item{}
		}
		if err := enc.Encode(items); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return buf.Bytes(), nil
}

// Export encodes g and stores it under name. The format's extension is
// appended when name has none.
func (e *Exporter) Export(ctx context.Context, g *grid.Grid, f Format, name string) (string, error) {
	data, err := e.Encode(g, f)
	if err != nil {
		return "", err
	}
	key := name
	if path.Ext(key) == "" {
		key += f.Extension()
	}
	loc, err := e.store.Put(ctx, key, f.ContentType(), bytes.NewReader(data))
	if err != nil {
		e.logger.Error("export failed", "key", key, "format", string(f), "error", err)
		return "", err
	}
	e.logger.Info("exported grid", "location", loc, "format", string(f), "rows", g.Len(), "bytes", len(data))
	return loc, nil
}

// writeCSV writes one record per item with a header of column labels.
// Columns without a key have no field to export and are skipped.
func writeCSV(buf *bytes.Buffer, g *grid.Grid) error {
	var keys, labels []string
	for _, def := range g.Columns() {
		if def.Key == "" {
			continue
		}
		keys = append(keys, def.Key)
		label := def.Label
		if label == "" {
			label = def.Key
		}
		labels = append(labels, label)
	}

	w := csv.NewWriter(buf)
	if err := w.Write(labels); err != nil {
		return err
	}
	record := make([]string, len(keys))
	for _, item := range g.Items() {
		for i, k := range keys {
			record[i] = item.String(k)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
