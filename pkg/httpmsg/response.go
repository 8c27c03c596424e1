package httpmsg

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// StatusClientClosedRequest is the nginx status code for requests where the
// client closed the connection before the response was sent.
const StatusClientClosedRequest = 499

// ErrInvalidStatus is returned by WithStatus for codes outside of [100, 599].
var ErrInvalidStatus = errors.New("invalid http status code")

// StatusText works like http.StatusText, but also knows non-standard codes
// used by this package.
func StatusText(code int) string {
	if code == StatusClientClosedRequest {
		return "Client Closed Request"
	}
	return http.StatusText(code)
}

// Response is an immutable HTTP response. All With* and Write* methods return
// a modified copy.
type Response struct {
	status int
	reason string
	proto  string
	header Header
	body   []byte
}

// NewResponse returns an empty "HTTP/1.1 200 OK" response.
func NewResponse() *Response {
	return &Response{
		status: http.StatusOK,
		reason: StatusText(http.StatusOK),
		proto:  "1.1",
	}
}

func (r *Response) clone() *Response {
	c := *r
	c.header = r.header.Clone()
	c.body = bytes.Clone(r.body)
	return &c
}

func (r *Response) StatusCode() int {
	return r.status
}

func (r *Response) ReasonPhrase() string {
	return r.reason
}

// WithStatus returns a copy with the given status. If no reason is given, the
// standard reason phrase is used.
func (r *Response) WithStatus(code int, reason ...string) (*Response, error) {
	if code < 100 || code > 599 {
		return nil, errors.Wrapf(ErrInvalidStatus, "status %d", code)
	}

	c := r.clone()
	c.status = code
	c.reason = StatusText(code)
	if len(reason) > 0 && reason[0] != "" {
		c.reason = reason[0]
	}
	return c, nil
}

func (r *Response) ProtocolVersion() string {
	return r.proto
}

func (r *Response) WithProtocolVersion(version string) *Response {
	c := r.clone()
	c.proto = version
	return c
}

// Header returns a copy of the response headers.
func (r *Response) Header() Header {
	return r.header.Clone()
}

func (r *Response) HeaderLine(name string) string {
	return r.header.Line(name)
}

func (r *Response) WithHeader(name string, values ...string) *Response {
	c := r.clone()
	c.header.Set(name, values...)
	return c
}

func (r *Response) WithAddedHeader(name string, values ...string) *Response {
	c := r.clone()
	c.header.Add(name, values...)
	return c
}

func (r *Response) WithoutHeader(name string) *Response {
	c := r.clone()
	c.header.Del(name)
	return c
}

// Body returns a copy of the response body.
func (r *Response) Body() []byte {
	return bytes.Clone(r.body)
}

func (r *Response) String() string {
	return string(r.body)
}

func (r *Response) WithBody(body []byte) *Response {
	c := r.clone()
	c.body = bytes.Clone(body)
	return c
}

// Write returns a copy with p appended to the body.
func (r *Response) Write(p []byte) *Response {
	c := r.clone()
	c.body = append(c.body, p...)
	return c
}

func (r *Response) WriteString(s string) *Response {
	return r.Write([]byte(s))
}

// WriteTo serializes the response in HTTP/1.x wire format: the status line,
// every header value on its own line in insertion order, an empty line and
// the body.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	buf := new(bytes.Buffer)

	fmt.Fprintf(buf, "HTTP/%s %d %s\r\n", r.proto, r.status, r.reason)
	for _, name := range r.header.names {
		for _, value := range r.header.values[name] {
			fmt.Fprintf(buf, "%s: %s\r\n", name, value)
		}
	}
	buf.WriteString("\r\n")
	buf.Write(r.body)

	n, err := buf.WriteTo(w)
	return n, errors.Wrap(err, "write response")
}
