package render

import (
	"io"
	"net/http"
)

// StreamingRenderer renders pages to an http.ResponseWriter and flushes the
// head before the body, so stylesheets load while rows are serialized.
type StreamingRenderer struct {
	*Renderer
	flusher http.Flusher
	w       io.Writer
}

// NewStreamingRenderer creates a streaming renderer. Flushing is skipped when
// w does not implement http.Flusher.
func NewStreamingRenderer(w http.ResponseWriter, config Config) *StreamingRenderer {
	flusher, _ := w.(http.Flusher)
	return &StreamingRenderer{
		Renderer: New(config),
		flusher:  flusher,
		w:        w,
	}
}

// RenderPage renders a complete document with a flush after the head and
// after the body.
func (s *StreamingRenderer) RenderPage(page PageData) error {
	if err := s.renderOpen(s.w, page); err != nil {
		return err
	}
	if err := s.renderHead(s.w, page); err != nil {
		return err
	}
	s.flush()
	if err := s.renderBody(s.w, page); err != nil {
		return err
	}
	s.flush()
	if err := s.renderClose(s.w); err != nil {
		return err
	}
	s.flush()
	return nil
}

func (s *StreamingRenderer) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
