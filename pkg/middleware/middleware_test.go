package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type recordedSpan struct {
	noop.Span
	name   string
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	ended  bool
}

func (s *recordedSpan) SetName(name string) { s.name = name }

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }

type recordingTracer struct {
	noop.Tracer
	spans []*recordedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	span := &recordedSpan{name: name, attrs: map[attribute.Key]attribute.Value{}}
	span.SetAttributes(cfg.Attributes()...)
	t.spans = append(t.spans, span)
	return trace.ContextWithSpan(ctx, span), span
}

func newRouter(mws ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mws...)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	r.Get("/fail", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestMetricsHandlerLabelsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))
	r := newRouter(m.Handler)

	serve(r, "/items/1")
	serve(r, "/items/2")
	serve(r, "/ok")
	serve(r, "/fail")

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/items/{id}", "202")); got != 2 {
		t.Errorf("requests_total(/items/{id},202) = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/ok", "200")); got != 1 {
		t.Errorf("requests_total(/ok,200) = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/fail", "500")); got != 1 {
		t.Errorf("requests_total(/fail,500) = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.requestDuration); got != 3 {
		t.Errorf("request_duration series = %d, want 3", got)
	}
}

func TestMetricsRecorders(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"), WithSubsystem("sub"))

	m.RecordMessage("click", nil)
	m.RecordMessage("sort", errors.New("grid: malformed sort result"))
	m.RecordMessage("click", errors.New("read timeout"))
	m.RecordOp("replace")
	m.RecordOp("replace")
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.RecordWebSocketError("read")

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"click ok", m.messagesTotal.WithLabelValues("click", "ok"), 1},
		{"sort invalid", m.messagesTotal.WithLabelValues("sort", "invalid"), 1},
		{"click timeout", m.messagesTotal.WithLabelValues("click", "timeout"), 1},
		{"replace ops", m.opsSent.WithLabelValues("replace"), 2},
		{"sessions", m.activeSessions, 1},
		{"ws errors", m.wsErrors.WithLabelValues("read"), 1},
	}
	for _, c := range checks {
		if got := testutil.ToFloat64(c.c); got != c.want {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "test_sub_messages_total" {
			found = true
		}
	}
	if !found {
		t.Error("namespace/subsystem not applied to messages_total")
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordMessage("click", nil)
	m.RecordOp("reset")
	m.SessionOpened()
	m.SessionClosed()
	m.RecordWebSocketError("read")
	if rec := serve(newRouter(m.Handler), "/ok"); rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCategorizeError(t *testing.T) {
	cases := map[string]string{
		"i/o timeout":                   "timeout",
		"live: unknown session":         "not_found",
		"grid: malformed sort result":   "invalid",
		"grid: template column 2 row 3": "template",
		"something else":                "internal",
	}
	for msg, want := range cases {
		if got := categorizeError(errors.New(msg)); got != want {
			t.Errorf("categorizeError(%q) = %q, want %q", msg, got, want)
		}
	}
}

func TestTracingNamesSpanAfterRoute(t *testing.T) {
	tracer := &recordingTracer{}
	var inHandler trace.Span
	r := chi.NewRouter()
	r.Use(Tracing(WithTracer(tracer), WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
		return []attribute.KeyValue{attribute.String("test.attr", "ok")}
	})))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		inHandler = trace.SpanFromContext(r.Context())
	})

	serve(r, "/items/7")

	if len(tracer.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(tracer.spans))
	}
	span := tracer.spans[0]
	if inHandler != trace.Span(span) {
		t.Error("handler did not see the request span")
	}
	if span.name != "vgrid GET /items/{id}" {
		t.Errorf("span name = %q", span.name)
	}
	if got := span.attrs["http.route"].AsString(); got != "/items/{id}" {
		t.Errorf("http.route = %q", got)
	}
	if got := span.attrs["http.status_code"].AsInt64(); got != 200 {
		t.Errorf("http.status_code = %d", got)
	}
	if got := span.attrs["test.attr"].AsString(); got != "ok" {
		t.Errorf("test.attr = %q", got)
	}
	if span.status != codes.Ok || !span.ended {
		t.Errorf("status = %v ended = %v", span.status, span.ended)
	}
}

func TestTracingMarksServerErrors(t *testing.T) {
	tracer := &recordingTracer{}
	serve(newRouter(Tracing(WithTracer(tracer))), "/fail")
	if len(tracer.spans) != 1 || tracer.spans[0].status != codes.Error {
		t.Fatalf("spans = %+v, want one errored span", tracer.spans)
	}
}

func TestTracingFilterSkips(t *testing.T) {
	tracer := &recordingTracer{}
	h := newRouter(Tracing(WithTracer(tracer), WithRequestFilter(func(r *http.Request) bool {
		return r.URL.Path != "/ok"
	})))
	serve(h, "/ok")
	if len(tracer.spans) != 0 {
		t.Errorf("filtered request traced: %d spans", len(tracer.spans))
	}
	serve(h, "/fail")
	if len(tracer.spans) != 1 {
		t.Errorf("spans = %d, want 1", len(tracer.spans))
	}
}
