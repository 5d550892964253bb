package grid

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vango-dev/vgrid/pkg/host"
	"github.com/vango-dev/vgrid/pkg/vango"
	"github.com/vango-dev/vgrid/pkg/vdom"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "vgrid"

// DefaultEvents are the event types delegated when Config.Events is empty.
var DefaultEvents = []string{vdom.EventClick, vdom.EventKeyDown}

// Host is the component runtime a grid renders through. *host.Runtime
// implements it.
type Host interface {
	Mount(scope string, c host.Component)
	Unmount(c host.Component)
	Schedule(c host.Component)
	Bind(key string, owner host.Component)
	Touch(key string)
	MarkClean(key string)
	RenderScoped(scope string) error
	IsValid() bool
}

// Source supplies items for Load.
type Source interface {
	Items(ctx context.Context) ([]Item, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Item, error)

// Items calls f.
func (f SourceFunc) Items(ctx context.Context) ([]Item, error) { return f(ctx) }

// Hooks are notified after grid operations complete.
type Hooks struct {
	OnRowsReset    func(rows []*VirtualRow)
	OnRowsAppended func(start int, rows []*VirtualRow)
	OnRowReplaced  func(index int, oldHID string, row *VirtualRow)
	OnColumnResize func(ColumnResize)
	OnSortChange   func(key, direction string)

	// OnRefreshError reports a row that a delegated action mutated but that
	// could not be re-materialized. The row keeps its previous element.
	OnRefreshError func(index int, err error)
}

// Config describes a grid.
type Config struct {
	// Columns are compiled into the row skeleton by New.
	Columns []ColumnDef

	// UseRowHeader renders the first column as <th scope="row">.
	UseRowHeader bool

	// RowActions are exposed on every row element.
	RowActions Actions

	// Events are the delegated event types. Default: click and keydown.
	Events []string

	// Class is the table class.
	Class string

	// RowClass is the class of every row.
	RowClass string

	// Name scopes the grid's host bindings. Defaults to a generated name.
	Name string

	Hooks Hooks
}

// Option configures a Grid.
type Option func(*Grid)

// WithHost renders the grid through h instead of a private runtime.
func WithHost(h Host) Option {
	return func(g *Grid) {
		if h != nil {
			g.host = h
		}
	}
}

// WithLogger sets the grid logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Grid) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics records grid activity into m.
func WithMetrics(m *Metrics) Option {
	return func(g *Grid) { g.metrics = m }
}

// WithTracer sets the tracer used by Load.
func WithTracer(t trace.Tracer) Option {
	return func(g *Grid) {
		if t != nil {
			g.tracer = t
		}
	}
}

// WithHIDGenerator shares a hydration ID generator with other trees of the
// same document.
func WithHIDGenerator(gen *vdom.HIDGenerator) Option {
	return func(g *Grid) {
		if gen != nil {
			g.hids = gen
		}
	}
}

// Grid is a virtualized table. It is not safe for concurrent use; callers
// serialize access.
type Grid struct {
	id      uint64
	cfg     Config
	host    Host
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	hids    *vdom.HIDGenerator

	table   *vdom.VNode
	thead   *vdom.VNode
	headRow *vdom.VNode
	body    *vdom.VNode

	row          *RowContext
	columns      []ColumnDef
	useRowHeader bool
	templates    []*ColumnTemplate
	skeleton     *vdom.VNode
	actions      map[string]Actions
	actionOwners map[string]*ColumnTemplate

	rows  []*VirtualRow
	items []Item
	nodes map[*vdom.VNode]*VirtualRow

	delegates     map[string]*delegate
	dispatching   bool
	materializing bool

	pending   []Item
	sort      *vango.Signal[sortSpec]
	indicator *sortIndicator

	skeletonScope string
	itemsKey      string
	destroyed     bool
}

// New builds the table, compiles the columns and attaches event delegation.
func New(cfg Config, opts ...Option) (*Grid, error) {
	g := &Grid{
		id:        vango.NextID(),
		cfg:       cfg,
		logger:    slog.Default(),
		row:       newRowContext(),
		nodes:     make(map[*vdom.VNode]*VirtualRow),
		delegates: make(map[string]*delegate),
		sort:      vango.NewSignal(sortSpec{}),
	}
	g.indicator = newSortIndicator(g)
	for _, opt := range opts {
		opt(g)
	}
	if g.host == nil {
		g.host = host.New(host.WithLogger(g.logger))
	}
	if g.tracer == nil {
		g.tracer = otel.Tracer(tracerName)
	}
	if g.hids == nil {
		g.hids = vdom.NewHIDGenerator()
	}

	name := cfg.Name
	if name == "" {
		name = fmt.Sprintf("grid%d", g.id)
	}
	g.skeletonScope = name + "/skeleton"
	g.itemsKey = name + "/items"
	g.logger = g.logger.With("grid", name)

	g.thead = vdom.Thead()
	g.body = vdom.Tbody()
	g.table = vdom.Table(g.thead, g.body)
	if cfg.Class != "" {
		g.table.SetAttr("class", cfg.Class)
	}
	vdom.AssignAllHIDs(g.table, g.hids)

	g.host.Mount(name, g)
	g.host.Bind(g.itemsKey, g)

	if err := g.Compile(cfg.Columns, cfg.UseRowHeader); err != nil {
		g.Destroy()
		return nil, err
	}
	events := cfg.Events
	if len(events) == 0 {
		events = DefaultEvents
	}
	g.AttachDelegation(events...)
	return g, nil
}

// ID implements vango.Listener.
func (g *Grid) ID() uint64 { return g.id }

// MarkDirty implements vango.Listener.
func (g *Grid) MarkDirty() {
	if g.valid() {
		g.host.Schedule(g)
	}
}

// Render rebuilds the rows from items set through SetItems.
func (g *Grid) Render() error {
	if g.pending == nil {
		return nil
	}
	return g.CreateAll(g.pending)
}

// SetItems replaces the grid's items binding. The rows are rebuilt when the
// host next renders the grid's scope.
func (g *Grid) SetItems(items []Item) {
	if !g.valid() {
		return
	}
	if items == nil {
		items = []Item{}
	}
	g.pending = items
	g.host.Touch(g.itemsKey)
}

// Load fetches items from src and rebuilds every row from them.
func (g *Grid) Load(ctx context.Context, src Source) error {
	if !g.valid() {
		return nil
	}
	ctx, span := g.tracer.Start(ctx, "grid.Load", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	items, err := src.Items(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("grid: load items: %w", err)
	}
	span.SetAttributes(attribute.Int("vgrid.items", len(items)))

	if err := g.CreateAll(items); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// Destroy detaches delegation, destroys the templates and releases every
// row. Later calls on the grid are no-ops.
func (g *Grid) Destroy() {
	if g.destroyed {
		return
	}
	g.DetachDelegation()
	g.destroyTemplates()
	_ = g.body.ReplaceChildren()
	for _, vr := range g.rows {
		g.release(vr)
	}
	g.metrics.rowsChanged(-len(g.rows))
	g.host.Unmount(g)
	g.sort.Unsubscribe(g.indicator)
	g.rows = nil
	g.items = nil
	g.pending = nil
	g.destroyed = true
	g.logger.Debug("grid destroyed")
}

// Destroyed reports whether Destroy was called.
func (g *Grid) Destroyed() bool { return g.destroyed }

// Table returns the root <table> element.
func (g *Grid) Table() *vdom.VNode { return g.table }

// Body returns the <tbody> element holding the rows.
func (g *Grid) Body() *vdom.VNode { return g.body }

// Header returns the <thead> element.
func (g *Grid) Header() *vdom.VNode { return g.thead }

// RowContext returns the grid's shared row context.
func (g *Grid) RowContext() *RowContext { return g.row }

// Len returns the number of rows.
func (g *Grid) Len() int { return len(g.rows) }

// Rows returns the rows in order.
func (g *Grid) Rows() []*VirtualRow {
	return append([]*VirtualRow(nil), g.rows...)
}

// Row returns the row at index, or nil.
func (g *Grid) Row(index int) *VirtualRow {
	if index < 0 || index >= len(g.rows) {
		return nil
	}
	return g.rows[index]
}

// Items returns the items in row order.
func (g *Grid) Items() []Item {
	return append([]Item(nil), g.items...)
}

// Columns returns the compiled column definitions.
func (g *Grid) Columns() []ColumnDef {
	return append([]ColumnDef(nil), g.columns...)
}

func (g *Grid) valid() bool {
	return !g.destroyed && g.host.IsValid()
}
