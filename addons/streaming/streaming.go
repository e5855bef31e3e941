// Package streaming writes flushed, incremental responses: plain text
// streams and server-sent events.
package streaming

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/buildwithgo/amarodoc"
)

// ErrNotSupported is returned when the response writer cannot flush.
var ErrNotSupported = errors.New("streaming not supported by the response writer")

// ErrEmptyData is returned when sending an event without data.
var ErrEmptyData = errors.New("data field cannot be empty")

// Writer writes to the response and flushes after every write.
type Writer struct {
	c       *amarodoc.Context
	flusher http.Flusher
}

func (w *Writer) Write(data []byte) (int, error) {
	n, err := w.c.Writer.Write(data)
	if err != nil {
		return n, err
	}
	w.flusher.Flush()
	return n, nil
}

// Done is closed when the client goes away.
func (w *Writer) Done() <-chan struct{} {
	return w.c.Request.Context().Done()
}

// Context returns the request context being streamed to.
func (w *Writer) Context() *amarodoc.Context {
	return w.c
}

// Stream starts a streaming response with contentType and hands a flushing
// Writer to call. The status line is sent before call runs.
func Stream(c *amarodoc.Context, contentType string, call func(*Writer) error) error {
	if c == nil {
		return errors.New("context cannot be nil")
	}
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		return ErrNotSupported
	}

	h := c.Writer.Header()
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Content-Type-Options", "nosniff")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	return call(&Writer{c: c, flusher: flusher})
}

// TextWriter streams newline terminated lines.
type TextWriter struct {
	*Writer
}

func (t *TextWriter) WriteLn(line string, args ...any) (int, error) {
	return t.Write([]byte(fmt.Sprintf(line, args...) + "\n"))
}

// Text starts a text/plain stream.
func Text(c *amarodoc.Context, call func(*TextWriter) error) error {
	return Stream(c, "text/plain; charset=utf-8", func(w *Writer) error {
		return call(&TextWriter{Writer: w})
	})
}

// Message is a single server-sent event. Empty Event and ID and a zero
// Retry are omitted.
type Message struct {
	Data  string `json:"data"`
	Event string `json:"event,omitempty"`
	ID    string `json:"id,omitempty"`
	Retry int    `json:"retry,omitempty"`
}

// Encode returns the wire form of m. Multi-line data is split over
// several data fields.
func (m Message) Encode() ([]byte, error) {
	if m.Data == "" {
		return nil, ErrEmptyData
	}
	var b strings.Builder
	if m.Event != "" {
		fmt.Fprintf(&b, "event: %s\n", m.Event)
	}
	if m.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", m.ID)
	}
	if m.Retry > 0 {
		fmt.Fprintf(&b, "retry: %d\n", m.Retry)
	}
	for _, line := range strings.Split(m.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// EventWriter sends server-sent events.
type EventWriter struct {
	*Writer
}

// Send writes msg and flushes it to the client.
func (s *EventWriter) Send(msg Message) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	_, err = s.Write(data)
	return err
}

// Comment writes a comment line, typically as a keep-alive.
func (s *EventWriter) Comment(text string) error {
	_, err := s.Write([]byte(": " + text + "\n\n"))
	return err
}

// SSE starts a text/event-stream response.
func SSE(c *amarodoc.Context, call func(*EventWriter) error) error {
	return Stream(c, "text/event-stream", func(w *Writer) error {
		return call(&EventWriter{Writer: w})
	})
}
