package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rebuy-de/adrkit/pkg/httperr"
	"github.com/rebuy-de/adrkit/pkg/httpmsg"
)

// NotFoundError is returned by Dispatch if no pattern matches the path.
type NotFoundError struct {
	Method string
	Path   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no route for %s %s", e.Method, e.Path)
}

func (e *NotFoundError) StatusCode() int    { return http.StatusNotFound }
func (e *NotFoundError) Kind() httperr.Kind { return httperr.KindRouting }

// MethodNotAllowedError is returned by Dispatch if the path matches a pattern,
// but not with the requested method.
type MethodNotAllowedError struct {
	Method  string
	Path    string
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method %s not allowed for %s, allowed: %s",
		e.Method, e.Path, strings.Join(e.Allowed, ", "))
}

func (e *MethodNotAllowedError) StatusCode() int    { return http.StatusMethodNotAllowed }
func (e *MethodNotAllowedError) Kind() httperr.Kind { return httperr.KindRouting }

// WithResponse adds the Allow header to the error response.
func (e *MethodNotAllowedError) WithResponse(resp *httpmsg.Response) *httpmsg.Response {
	return resp.WithHeader("Allow", strings.Join(e.Allowed, ", "))
}
