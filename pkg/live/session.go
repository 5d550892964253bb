package live

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vgrid/pkg/grid"
	"github.com/vango-dev/vgrid/pkg/host"
	"github.com/vango-dev/vgrid/pkg/render"
	"github.com/vango-dev/vgrid/pkg/vdom"
)

// Session owns one grid and the host runtime it renders through. All access
// to the grid goes through the session mutex.
type Session struct {
	id       string
	created  time.Time
	logger   *slog.Logger
	tracer   trace.Tracer
	renderer *render.Renderer
	sortFn   SortFunc
	events   map[string]bool

	mu       sync.Mutex
	host     *host.Runtime
	grid     *grid.Grid
	ops      []Op
	attached bool
	closed   bool

	// refreshErr is set by the grid while a dispatched event runs.
	refreshErr error
}

func newSession(ctx context.Context, s *Server) (*Session, error) {
	sess := &Session{
		id:       newSessionID(),
		created:  time.Now(),
		tracer:   s.tracer,
		renderer: render.New(render.Config{}),
		sortFn:   s.cfg.Sort,
		events:   make(map[string]bool),
	}
	sess.logger = s.logger.With("session", sess.id)
	sess.host = host.New(host.WithLogger(sess.logger))

	cfg := s.cfg.Grid
	cfg.Name = "session-" + sess.id
	cfg.Hooks = sess.hooks(cfg.Hooks)
	events := cfg.Events
	if len(events) == 0 {
		events = grid.DefaultEvents
	}
	for _, typ := range events {
		sess.events[typ] = true
	}

	opts := append([]grid.Option{
		grid.WithHost(sess.host),
		grid.WithLogger(sess.logger),
		grid.WithMetrics(s.gridMetrics),
		grid.WithTracer(s.tracer),
	}, s.cfg.GridOptions...)

	g, err := grid.New(cfg, opts...)
	if err != nil {
		sess.host.Invalidate()
		return nil, err
	}
	sess.grid = g

	if s.cfg.Source != nil {
		if err := g.Load(ctx, s.cfg.Source); err != nil {
			sess.close()
			return nil, err
		}
	}
	if s.cfg.SortBy != "" {
		if err := g.ApplySortResult(s.cfg.Sort(g.Items(), s.cfg.SortBy)); err != nil {
			sess.close()
			return nil, err
		}
	}
	if s.cfg.Layout != nil {
		g.UpdateFixedHeader(s.cfg.Layout)
	}
	sess.ops = sess.ops[:0]
	return sess, nil
}

func newSessionID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// hooks chains the session's patch recorders in front of user hooks.
func (s *Session) hooks(user grid.Hooks) grid.Hooks {
	return grid.Hooks{
		OnRowsReset: func(rows []*grid.VirtualRow) {
			s.pushReset()
			if user.OnRowsReset != nil {
				user.OnRowsReset(rows)
			}
		},
		OnRowsAppended: func(start int, rows []*grid.VirtualRow) {
			nodes := make([]*vdom.VNode, len(rows))
			for i, vr := range rows {
				nodes[i] = vr.Element
			}
			if html, err := s.renderer.RenderNodes(nodes...); err == nil {
				s.push(Op{Op: OpAppend, HTML: html})
			}
			if user.OnRowsAppended != nil {
				user.OnRowsAppended(start, rows)
			}
		},
		OnRowReplaced: func(index int, oldHID string, vr *grid.VirtualRow) {
			if html, err := s.renderer.RenderToString(vr.Element); err == nil {
				s.push(Op{Op: OpReplace, HID: oldHID, HTML: html})
			}
			if user.OnRowReplaced != nil {
				user.OnRowReplaced(index, oldHID, vr)
			}
		},
		OnColumnResize: func(r grid.ColumnResize) {
			s.pushHeader()
			if user.OnColumnResize != nil {
				user.OnColumnResize(r)
			}
		},
		OnSortChange: func(key, direction string) {
			s.pushHeader()
			if user.OnSortChange != nil {
				user.OnSortChange(key, direction)
			}
		},
		OnRefreshError: func(index int, err error) {
			s.refreshErr = fmt.Errorf("%w: row %d: %w", ErrRefreshFailed, index, err)
			if user.OnRefreshError != nil {
				user.OnRefreshError(index, err)
			}
		},
	}
}

func (s *Session) push(op Op) {
	s.ops = append(s.ops, op)
}

// pushReset supersedes every pending row operation.
func (s *Session) pushReset() {
	if s.grid == nil {
		return
	}
	html, err := s.renderer.RenderToString(s.grid.Body())
	if err != nil {
		s.logger.Error("render body", "error", err)
		return
	}
	kept := s.ops[:0]
	for _, op := range s.ops {
		if op.Op == OpHeader || op.Op == OpError {
			kept = append(kept, op)
		}
	}
	s.ops = append(kept, Op{Op: OpReset, HTML: html})
}

// pushHeader keeps only the latest header operation.
func (s *Session) pushHeader() {
	if s.grid == nil {
		return
	}
	html, err := s.renderer.RenderToString(s.grid.Header())
	if err != nil {
		s.logger.Error("render header", "error", err)
		return
	}
	kept := s.ops[:0]
	for _, op := range s.ops {
		if op.Op != OpHeader {
			kept = append(kept, op)
		}
	}
	s.ops = append(kept, Op{Op: OpHeader, HTML: html})
}

// Handle applies one client message to the grid and returns the resulting
// operations. A failed message yields the operations recorded before the
// failure followed by an error operation.
func (s *Session) Handle(ctx context.Context, msg Message) ([]Op, error) {
	_, span := s.tracer.Start(ctx, "live.message", trace.WithAttributes(
		attribute.String("vgrid.session", s.id),
		attribute.String("vgrid.message", msg.Type),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.ops = s.ops[:0]

	var err error
	switch msg.Type {
	case MsgSort:
		err = s.grid.ApplySortResult(s.sortFn(s.grid.Items(), msg.SortBy))
	case MsgResize:
		err = s.grid.OnColumnResize(msg.Column, msg.Width)
	default:
		err = s.dispatch(msg)
	}

	ops := append([]Op(nil), s.ops...)
	s.ops = s.ops[:0]
	span.SetAttributes(attribute.Int("vgrid.ops", len(ops)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ops = append(ops, Op{Op: OpError, Message: err.Error()})
		return ops, err
	}
	return ops, nil
}

// dispatch delivers a client event to the node with msg.HID. It fails when a
// row the event mutated could not be re-rendered.
func (s *Session) dispatch(msg Message) error {
	if !s.events[msg.Type] {
		return fmt.Errorf("%w: %q", ErrUnsupportedMessage, msg.Type)
	}
	target := vdom.FindByHID(s.grid.Body(), msg.HID)
	if target == nil {
		return fmt.Errorf("%w: %q", ErrUnknownTarget, msg.HID)
	}
	e := vdom.NewEvent(msg.Type, target)
	e.Key = msg.Key
	e.Value = msg.Value
	s.refreshErr = nil
	vdom.Dispatch(e)
	err := s.refreshErr
	s.refreshErr = nil
	return err
}

// RenderTable writes the current table HTML, hydration IDs included.
func (s *Session) RenderTable() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrSessionClosed
	}
	return s.renderer.RenderToString(s.grid.Table())
}

// Grid runs fn with the session's grid under the session lock. Operations
// fn causes are discarded; clients see them on their next reset.
func (s *Session) Grid(fn func(g *grid.Grid) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	defer func() { s.ops = s.ops[:0] }()
	return fn(s.grid)
}

func (s *Session) attach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.attached {
		return ErrSessionAttached
	}
	s.attached = true
	return nil
}

func (s *Session) isAttached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.grid != nil {
		s.grid.Destroy()
	}
	s.host.Invalidate()
	s.ops = nil
	s.logger.Debug("session closed")
}
