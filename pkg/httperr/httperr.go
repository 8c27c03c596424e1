package httperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/rebuy-de/adrkit/pkg/httpmsg"
)

// HTTPError is an error with a status code, an optional machine readable code
// and headers that get merged into the error response.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Headers httpmsg.Header
	Details map[string]any

	cause error
}

var (
	ErrBadRequest         = New(http.StatusBadRequest, "bad request").withCode("bad_request")
	ErrUnauthorized       = New(http.StatusUnauthorized, "unauthorized").withCode("unauthorized")
	ErrForbidden          = New(http.StatusForbidden, "forbidden").withCode("forbidden")
	ErrNotFound           = New(http.StatusNotFound, "not found").withCode("not_found")
	ErrConflict           = New(http.StatusConflict, "conflict").withCode("conflict")
	ErrUnprocessable      = New(http.StatusUnprocessableEntity, "unprocessable entity").withCode("unprocessable_entity")
	ErrTooManyRequests    = New(http.StatusTooManyRequests, "too many requests").withCode("too_many_requests")
	ErrInternal           = New(http.StatusInternalServerError, "internal server error").withCode("internal_error")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "service unavailable").withCode("service_unavailable")
)

// New creates an HTTPError with the given status and message.
func New(status int, message string) *HTTPError {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// FromStatus creates an HTTPError that uses the reason phrase as message.
func FromStatus(status int) *HTTPError {
	return New(status, httpmsg.StatusText(status))
}

// Wrap attaches a status code to err. It returns nil if err is nil.
func Wrap(err error, status int) *HTTPError {
	if err == nil {
		return nil
	}
	return &HTTPError{
		Status:  status,
		Message: err.Error(),
		cause:   errors.WithStack(err),
	}
}

func (e *HTTPError) Error() string {
	if e.cause != nil && e.cause.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.cause
}

// Format prints the stack of the cause with %+v.
func (e *HTTPError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') && e.cause != nil {
		fmt.Fprintf(s, "%s\n%+v", e.Message, e.cause)
		return
	}
	fmt.Fprint(s, e.Error())
}

func (e *HTTPError) StatusCode() int {
	return e.Status
}

func (e *HTTPError) Kind() Kind {
	return KindHTTP
}

func (e *HTTPError) clone() *HTTPError {
	c := *e
	c.Headers = e.Headers.Clone()
	if e.Details != nil {
		c.Details = make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			c.Details[k] = v
		}
	}
	return &c
}

func (e *HTTPError) withCode(code string) *HTTPError {
	c := e.clone()
	c.Code = code
	return c
}

// WithMessage returns a copy with a different message. The predefined errors
// stay untouched.
func (e *HTTPError) WithMessage(format string, args ...any) *HTTPError {
	c := e.clone()
	c.Message = fmt.Sprintf(format, args...)
	return c
}

// WithHeader returns a copy that adds the header to the error response.
func (e *HTTPError) WithHeader(name string, values ...string) *HTTPError {
	c := e.clone()
	c.Headers.Add(name, values...)
	return c
}

func (e *HTTPError) WithDetails(details map[string]any) *HTTPError {
	c := e.clone()
	if c.Details == nil {
		c.Details = map[string]any{}
	}
	for k, v := range details {
		c.Details[k] = v
	}
	return c
}

// WithError returns a copy with err as cause.
func (e *HTTPError) WithError(err error) *HTTPError {
	c := e.clone()
	c.cause = errors.WithStack(err)
	return c
}

// Is makes predefined errors comparable with errors.Is, even after they got
// copied by one of the With* methods.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return t.Status == e.Status && t.Code != "" && t.Code == e.Code
}

func (e *HTTPError) WithResponse(resp *httpmsg.Response) *httpmsg.Response {
	for _, name := range e.Headers.Names() {
		resp = resp.WithAddedHeader(name, e.Headers.Values(name)...)
	}
	return resp
}
