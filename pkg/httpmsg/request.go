package httpmsg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cgi"
	"net/url"

	"github.com/pkg/errors"
)

// Request is an immutable server request. All With* methods return a modified
// copy and leave the receiver untouched.
type Request struct {
	ctx        context.Context
	method     string
	uri        *url.URL
	proto      string
	header     Header
	body       []byte
	attributes map[string]any
}

// NewRequest creates a request for the given method and target URI.
func NewRequest(method, target string) (*Request, error) {
	uri, err := url.Parse(target)
	if err != nil {
		return nil, errors.Wrapf(err, "parse request target %q", target)
	}

	return &Request{
		method: method,
		uri:    uri,
		proto:  "1.1",
	}, nil
}

// FromHTTP converts a net/http request. The body is read completely, so the
// original request body is drained afterwards.
func FromHTTP(r *http.Request) (*Request, error) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			return nil, errors.Wrap(err, "read request body")
		}
	}

	uri := *r.URL
	header := HeaderFromHTTP(r.Header)
	if r.Host != "" && !header.Has("Host") {
		header.Set("Host", r.Host)
	}

	return &Request{
		ctx:    r.Context(),
		method: r.Method,
		uri:    &uri,
		proto:  fmt.Sprintf("%d.%d", r.ProtoMajor, r.ProtoMinor),
		header: header,
		body:   body,
	}, nil
}

// FromCGI derives the request from the CGI environment of the current
// process.
func FromCGI() (*Request, error) {
	r, err := cgi.Request()
	if err != nil {
		return nil, errors.Wrap(err, "read cgi request from environment")
	}

	return FromHTTP(r)
}

func (r *Request) clone() *Request {
	c := *r
	c.header = r.header.Clone()
	if r.attributes != nil {
		c.attributes = make(map[string]any, len(r.attributes))
		for k, v := range r.attributes {
			c.attributes[k] = v
		}
	}
	return &c
}

// Context returns the request context. It is never nil.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

func (r *Request) WithContext(ctx context.Context) *Request {
	c := r.clone()
	c.ctx = ctx
	return c
}

func (r *Request) Method() string {
	return r.method
}

// URI returns a copy of the request URI.
func (r *Request) URI() *url.URL {
	if r.uri == nil {
		return &url.URL{Path: "/"}
	}
	u := *r.uri
	return &u
}

func (r *Request) ProtocolVersion() string {
	return r.proto
}

// Header returns a copy of the request headers.
func (r *Request) Header() Header {
	return r.header.Clone()
}

// HeaderLine returns all values of the header joined by a comma.
func (r *Request) HeaderLine(name string) string {
	return r.header.Line(name)
}

func (r *Request) WithHeader(name string, values ...string) *Request {
	c := r.clone()
	c.header.Set(name, values...)
	return c
}

func (r *Request) WithAddedHeader(name string, values ...string) *Request {
	c := r.clone()
	c.header.Add(name, values...)
	return c
}

func (r *Request) WithoutHeader(name string) *Request {
	c := r.clone()
	c.header.Del(name)
	return c
}

// Body returns a copy of the request body.
func (r *Request) Body() []byte {
	return bytes.Clone(r.body)
}

func (r *Request) WithBody(body []byte) *Request {
	c := r.clone()
	c.body = bytes.Clone(body)
	return c
}

// Attribute returns the named attribute. Route parameters are stored as
// attributes after dispatch.
func (r *Request) Attribute(name string) (any, bool) {
	v, ok := r.attributes[name]
	return v, ok
}

// Attributes returns a copy of all attributes.
func (r *Request) Attributes() map[string]any {
	out := make(map[string]any, len(r.attributes))
	for k, v := range r.attributes {
		out[k] = v
	}
	return out
}

// WithAttribute returns a copy with the attribute set. An existing attribute
// with the same name is overwritten.
func (r *Request) WithAttribute(name string, value any) *Request {
	c := r.clone()
	if c.attributes == nil {
		c.attributes = map[string]any{}
	}
	c.attributes[name] = value
	return c
}

func (r *Request) WithoutAttribute(name string) *Request {
	c := r.clone()
	delete(c.attributes, name)
	return c
}
