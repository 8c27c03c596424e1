package adr

import "net/http"

// Status describes the outcome of a Domain run independently of HTTP.
type Status string

const (
	StatusOK           Status = "OK"
	StatusCreated      Status = "CREATED"
	StatusAccepted     Status = "ACCEPTED"
	StatusNoContent    Status = "NO_CONTENT"
	StatusNotFound     Status = "NOT_FOUND"
	StatusInvalid      Status = "INVALID"
	StatusUnauthorized Status = "UNAUTHORIZED"
	StatusForbidden    Status = "FORBIDDEN"
	StatusConflict     Status = "CONFLICT"
	StatusError        Status = "ERROR"
)

// HTTPStatus maps the status to an HTTP status code. Unknown statuses map to
// 500.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusOK, "":
		return http.StatusOK
	case StatusCreated:
		return http.StatusCreated
	case StatusAccepted:
		return http.StatusAccepted
	case StatusNoContent:
		return http.StatusNoContent
	case StatusNotFound:
		return http.StatusNotFound
	case StatusInvalid:
		return http.StatusUnprocessableEntity
	case StatusUnauthorized:
		return http.StatusUnauthorized
	case StatusForbidden:
		return http.StatusForbidden
	case StatusConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Payload is the result of a Domain run that gets passed to the Responder.
type Payload struct {
	Status   Status
	Input    any
	Output   any
	Messages []string
	Err      error
}

func NewPayload(status Status, output any) *Payload {
	return &Payload{
		Status: status,
		Output: output,
	}
}
