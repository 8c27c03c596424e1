package render

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rebuy-de/adrkit/pkg/httperr"
	"github.com/rebuy-de/adrkit/pkg/httpmsg"
)

// Info is everything an error handler may show about an error.
type Info struct {
	ID      string         `json:"id" yaml:"id"`
	Status  int            `json:"status" yaml:"status"`
	Title   string         `json:"title" yaml:"title"`
	Message string         `json:"message" yaml:"message"`
	Code    string         `json:"code,omitempty" yaml:"code,omitempty"`
	Kind    string         `json:"kind" yaml:"kind"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	Trace   []string       `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// NewInfo describes err for the given response status. Messages of server
// errors are only exposed in debug mode, unless the error is an
// httperr.HTTPError with an explicit message. The stack trace is only added in
// debug mode.
func NewInfo(err error, status int, debug bool) Info {
	info := Info{
		ID:      uuid.NewString(),
		Status:  status,
		Title:   httpmsg.StatusText(status),
		Message: httpmsg.StatusText(status),
		Kind:    httperr.KindOf(err).String(),
	}

	var he *httperr.HTTPError
	switch {
	case err == nil:
	case errors.As(err, &he):
		info.Message = he.Message
		info.Code = he.Code
		info.Details = he.Details
	case status < 500 || debug:
		info.Message = err.Error()
	}

	if debug && err != nil {
		trace := fmt.Sprintf("%+v", err)
		for _, line := range strings.Split(trace, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				info.Trace = append(info.Trace, line)
			}
		}
	}

	return info
}
