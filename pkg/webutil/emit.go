package webutil

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/rebuy-de/adrkit/pkg/httpmsg"
)

// Emitter writes a finished response onto a transport.
type Emitter interface {
	Emit(ctx context.Context, resp *httpmsg.Response) error
}

// StreamEmitter writes the response in HTTP/1.x wire format to a stream, like
// stdout of a CGI process.
type StreamEmitter struct {
	w io.Writer
}

func NewStreamEmitter(w io.Writer) *StreamEmitter {
	return &StreamEmitter{w: w}
}

func (e *StreamEmitter) Emit(_ context.Context, resp *httpmsg.Response) error {
	_, err := resp.WriteTo(e.w)
	return errors.Wrap(err, "emit response")
}

// ResponseWriterEmitter writes the response to a net/http ResponseWriter.
// Header values are added, so multi-value headers like Set-Cookie survive.
type ResponseWriterEmitter struct {
	w http.ResponseWriter
}

func NewResponseWriterEmitter(w http.ResponseWriter) *ResponseWriterEmitter {
	return &ResponseWriterEmitter{w: w}
}

func (e *ResponseWriterEmitter) Emit(_ context.Context, resp *httpmsg.Response) error {
	header := resp.Header()
	for _, name := range header.Names() {
		for _, value := range header.Values(name) {
			e.w.Header().Add(name, value)
		}
	}

	e.w.WriteHeader(resp.StatusCode())

	_, err := e.w.Write(resp.Body())
	return errors.Wrap(err, "emit response")
}
