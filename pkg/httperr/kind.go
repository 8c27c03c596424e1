// Package httperr classifies errors for the error boundary and carries HTTP
// semantics like status codes and response headers alongside an error.
package httperr

import (
	"github.com/pkg/errors"

	"github.com/rebuy-de/adrkit/pkg/httpmsg"
)

// Kind tags an error with the stage of the request pipeline it originates
// from.
type Kind int

const (
	KindGeneric Kind = iota
	KindRouting
	KindHTTP
	KindContract
)

func (k Kind) String() string {
	switch k {
	case KindRouting:
		return "routing"
	case KindHTTP:
		return "http"
	case KindContract:
		return "contract"
	default:
		return "generic"
	}
}

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// ResponseAugmenter is implemented by errors that need to add something to
// the error response, like the Allow header of a 405.
type ResponseAugmenter interface {
	WithResponse(*httpmsg.Response) *httpmsg.Response
}

// Kinder is implemented by errors that know their own Kind.
type Kinder interface {
	Kind() Kind
}

// KindOf classifies the error. Errors without an explicit Kind count as HTTP
// errors, if they carry a status or response augmentation.
func KindOf(err error) Kind {
	if err == nil {
		return KindGeneric
	}

	var k Kinder
	if errors.As(err, &k) {
		return k.Kind()
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		return KindHTTP
	}

	var ra ResponseAugmenter
	if errors.As(err, &ra) {
		return KindHTTP
	}

	return KindGeneric
}

// StatusCode returns the status carried by the error chain or 0, if there is
// none. The value is not validated.
func StatusCode(err error) int {
	var sc StatusCoder
	if err != nil && errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

// Augment applies all response augmentations found in the error chain.
func Augment(resp *httpmsg.Response, err error) *httpmsg.Response {
	var ra ResponseAugmenter
	if err != nil && errors.As(err, &ra) {
		return ra.WithResponse(resp)
	}
	return resp
}
