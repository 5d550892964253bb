package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vgrid/pkg/assets"
	"github.com/vango-dev/vgrid/pkg/datasource"
	"github.com/vango-dev/vgrid/pkg/grid"
	"github.com/vango-dev/vgrid/pkg/middleware"
	"github.com/vango-dev/vgrid/pkg/render"
	"github.com/vango-dev/vgrid/pkg/vango"
	"github.com/vango-dev/vgrid/pkg/vdom"
)

// SortFunc sorts items for a sort-by string.
type SortFunc func(items []grid.Item, sortBy string) grid.SortState

// Config configures a Server.
type Config struct {
	// Grid is the configuration every session's grid is built from. Name
	// and Hooks are overridden per session; user hooks still run.
	Grid grid.Config

	// GridOptions are applied after the session's own options.
	GridOptions []grid.Option

	// Source provides the items of new sessions.
	Source grid.Source

	// Sort sorts items for sort messages. Default: datasource.SortItems.
	Sort SortFunc

	// SortBy is the initial sort of every session ("name" or "-name").
	SortBy string

	// Layout enables the fixed header on every session's grid.
	Layout grid.Layout

	// Page content.
	Title       string
	StyleSheets []string
	Styles      []string

	Logger *slog.Logger

	// Registry receives the server and grid metrics and backs /metrics.
	// Default: a private registry.
	Registry *prometheus.Registry

	Tracer trace.Tracer

	// CheckOrigin validates WebSocket origins. Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// SessionTTL bounds how long a session may wait for its WebSocket.
	// Default: 1 minute.
	SessionTTL time.Duration

	// MaxSessions limits live sessions (0 = no limit).
	MaxSessions int

	// ReadLimit is the maximum message size in bytes. Default: 64KB.
	ReadLimit int64

	// ReadTimeout closes connections idle for longer. Default: 60s.
	ReadTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Title:       "vgrid",
		Sort:        datasource.SortItems,
		CheckOrigin: SameOriginCheck,
		SessionTTL:  time.Minute,
		ReadLimit:   64 << 10,
		ReadTimeout: 60 * time.Second,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Sort == nil {
		c.Sort = d.Sort
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = d.CheckOrigin
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = d.SessionTTL
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = d.ReadLimit
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Registry == nil {
		c.Registry = prometheus.NewRegistry()
	}
	if c.Tracer == nil {
		c.Tracer = otel.Tracer("vgrid")
	}
}

// SameOriginCheck accepts requests without an Origin header and requests
// whose Origin host matches the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && u.Host == r.Host
}

// Server serves grid sessions over HTTP and WebSocket.
type Server struct {
	cfg         Config
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *middleware.Metrics
	gridMetrics *grid.Metrics
	renderer    *render.Renderer
	assets      *assets.Bundle
	upgrader    websocket.Upgrader
	router      chi.Router

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	if len(cfg.Grid.Columns) == 0 {
		return nil, grid.ErrNoColumns
	}
	cfg.applyDefaults()

	s := &Server{
		cfg:         cfg,
		logger:      cfg.Logger,
		tracer:      cfg.Tracer,
		metrics:     middleware.NewMetrics(middleware.WithRegistry(cfg.Registry)),
		gridMetrics: grid.NewMetrics(grid.WithRegistry(cfg.Registry)),
		renderer:    render.New(render.Config{}),
		assets:      assets.NewBundle("/assets/"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
		sessions: make(map[string]*Session),
	}
	s.assets.Add("vgrid.js", "text/javascript; charset=utf-8", []byte(clientScript))
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Tracing(middleware.WithTracer(s.tracer)))
	r.Use(s.metrics.Handler)
	r.Use(releaseTracking)

	r.Get("/", s.handlePage)
	r.Get("/grid", s.handleFragment)
	r.Get("/ws", s.handleWebSocket)
	r.Method(http.MethodGet, "/assets/*", s.assets)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{}))
	return r
}

// releaseTracking drops the reactive tracking state of the serving goroutine
// once the request is done.
func releaseTracking(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer vango.ReleaseGoroutine()
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// NewSession creates a session, loads its items and registers it.
func (s *Server) NewSession(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	full := s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions
	s.mu.Unlock()
	if full {
		return nil, ErrTooManySessions
	}

	sess, err := newSession(ctx, s)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.metrics.SessionOpened()
	sess.logger.Info("session created")
	return sess, nil
}

// Session returns the session with the given ID.
func (s *Server) Session(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return sess, nil
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) removeSession(sess *Session) {
	s.mu.Lock()
	_, ok := s.sessions[sess.id]
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	sess.close()
	if ok {
		s.metrics.SessionClosed()
	}
}

// Sweep closes sessions that never attached a WebSocket within SessionTTL.
func (s *Server) Sweep(now time.Time) int {
	s.mu.Lock()
	var stale []*Session
	for _, sess := range s.sessions {
		if now.Sub(sess.created) > s.cfg.SessionTTL && !sess.isAttached() {
			stale = append(stale, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		s.removeSession(sess)
	}
	if len(stale) > 0 {
		s.logger.Debug("swept sessions", "count", len(stale))
	}
	return len(stale)
}

// Close closes every session.
func (s *Server) Close() {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.Unlock()
	for _, sess := range all {
		s.removeSession(sess)
	}
}

// Run serves on addr until ctx is cancelled, sweeping stale sessions in the
// background. It shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		ticker := time.NewTicker(s.cfg.SessionTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.Sweep(now)
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// fragment renders the session container with the table inside.
func (s *Server) fragment(sess *Session) (*vdom.VNode, error) {
	table, err := sess.RenderTable()
	if err != nil {
		return nil, err
	}
	events := s.cfg.Grid.Events
	if len(events) == 0 {
		events = grid.DefaultEvents
	}
	return vdom.Div(
		vdom.Class("vgrid"),
		vdom.Data("vgrid-session", sess.id),
		vdom.Data("vgrid-ws", "/ws"),
		vdom.Data("vgrid-events", strings.Join(events, " ")),
		vdom.Raw(table),
	), nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.NewSession(r.Context())
	if err != nil {
		s.sessionError(w, err)
		return
	}
	body, err := s.fragment(sess)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	sr := render.NewStreamingRenderer(w, render.Config{})
	err = sr.RenderPage(render.PageData{
		Body:        body,
		Title:       s.cfg.Title,
		StyleSheets: s.cfg.StyleSheets,
		Styles:      s.cfg.Styles,
		Scripts:     []render.ScriptTag{{Src: s.assets.Asset("vgrid.js"), Defer: true}},
	})
	if err != nil {
		s.logger.Error("render page", "error", err)
	}
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	sess, err := s.NewSession(r.Context())
	if err != nil {
		s.sessionError(w, err)
		return
	}
	body, err := s.fragment(sess)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.RenderToWriter(w, body); err != nil {
		s.logger.Error("render fragment", "error", err)
	}
}

func (s *Server) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTooManySessions):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, ErrUnknownSession), errors.Is(err, ErrSessionClosed):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrSessionAttached):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		s.logger.Error("session error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Session(r.URL.Query().Get("session"))
	if err == nil {
		err = sess.attach()
	}
	if err != nil {
		s.sessionError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.metrics.RecordWebSocketError("upgrade")
		s.removeSession(sess)
		return
	}
	defer conn.Close()
	defer s.removeSession(sess)

	sess.logger.Info("session attached", "remote", r.RemoteAddr)
	s.readLoop(r.Context(), conn, sess)
}

func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, sess *Session) {
	conn.SetReadLimit(s.cfg.ReadLimit)
	for {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				sess.logger.Error("read error", "error", err)
				s.metrics.RecordWebSocketError("read")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.logger.Warn("message decode error", "error", err)
			s.metrics.RecordMessage("invalid", err)
			if !s.send(conn, sess, Op{Op: OpError, Message: "invalid message"}) {
				return
			}
			continue
		}

		ops, err := sess.Handle(ctx, msg)
		s.metrics.RecordMessage(messageLabel(msg.Type, sess), err)
		if err != nil {
			if errors.Is(err, ErrSessionClosed) {
				return
			}
			sess.logger.Warn("message failed", "type", msg.Type, "error", err)
		}
		for _, op := range ops {
			if !s.send(conn, sess, op) {
				return
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn, sess *Session, op Op) bool {
	if err := conn.WriteJSON(op); err != nil {
		sess.logger.Error("write error", "error", err)
		s.metrics.RecordWebSocketError("write")
		return false
	}
	s.metrics.RecordOp(op.Op)
	return true
}

// messageLabel bounds the type label to known message types.
func messageLabel(typ string, sess *Session) string {
	if typ == MsgSort || typ == MsgResize || sess.events[typ] {
		return typ
	}
	return "unsupported"
}
