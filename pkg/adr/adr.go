package adr

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/rebuy-de/adrkit/pkg/httperr"
	"github.com/rebuy-de/adrkit/pkg/httpmsg"
)

// Action handles a request. Returned errors are passed to the exception
// handler of the application.
type Action interface {
	Handle(req *httpmsg.Request, resp *httpmsg.Response) (*httpmsg.Response, error)
}

type ActionFunc func(req *httpmsg.Request, resp *httpmsg.Response) (*httpmsg.Response, error)

func (f ActionFunc) Handle(req *httpmsg.Request, resp *httpmsg.Response) (*httpmsg.Response, error) {
	return f(req, resp)
}

// Input extracts the domain input from the request.
type Input interface {
	Parse(req *httpmsg.Request) (any, error)
}

type InputFunc func(req *httpmsg.Request) (any, error)

func (f InputFunc) Parse(req *httpmsg.Request) (any, error) {
	return f(req)
}

// Domain runs the business logic for an input.
type Domain interface {
	Run(ctx context.Context, input any) (*Payload, error)
}

type DomainFunc func(ctx context.Context, input any) (*Payload, error)

func (f DomainFunc) Run(ctx context.Context, input any) (*Payload, error) {
	return f(ctx, input)
}

// Responder converts a Payload into a response.
type Responder interface {
	Respond(req *httpmsg.Request, resp *httpmsg.Response, payload *Payload) (*httpmsg.Response, error)
}

type ResponderFunc func(req *httpmsg.Request, resp *httpmsg.Response, payload *Payload) (*httpmsg.Response, error)

func (f ResponderFunc) Respond(req *httpmsg.Request, resp *httpmsg.Response, payload *Payload) (*httpmsg.Response, error) {
	return f(req, resp, payload)
}

// Triad is an Action built from an Input, a Domain and a Responder. Input and
// Responder are optional and default to DefaultInput and FormattedResponder.
type Triad struct {
	Input     Input
	Domain    Domain
	Responder Responder
}

func (t Triad) Handle(req *httpmsg.Request, resp *httpmsg.Response) (*httpmsg.Response, error) {
	if t.Domain == nil {
		return nil, errors.New("triad without domain")
	}

	input := t.Input
	if input == nil {
		input = DefaultInput()
	}

	responder := t.Responder
	if responder == nil {
		responder = NewFormattedResponder(nil)
	}

	in, err := input.Parse(req)
	if err != nil {
		return nil, httperr.Wrap(err, http.StatusBadRequest)
	}

	payload, err := t.Domain.Run(req.Context(), in)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		payload = &Payload{Status: StatusNoContent}
	}
	if payload.Input == nil {
		payload.Input = in
	}

	if payload.Status == StatusError {
		if payload.Err != nil {
			return nil, errors.WithStack(payload.Err)
		}
		return nil, errors.New("domain failed without error")
	}

	return responder.Respond(req, resp, payload)
}

// DefaultInput merges query parameters, the fields of a JSON object body and
// the request attributes into a map[string]any. Later sources overwrite
// earlier ones, so route parameters always win.
func DefaultInput() Input {
	return InputFunc(func(req *httpmsg.Request) (any, error) {
		input := map[string]any{}

		for key, values := range req.URI().Query() {
			if len(values) > 0 {
				input[key] = values[0]
			}
		}

		body := req.Body()
		if len(body) > 0 && isJSON(req) {
			fields := map[string]any{}
			err := json.Unmarshal(body, &fields)
			if err != nil {
				return nil, errors.Wrap(err, "decode json body")
			}
			for key, value := range fields {
				input[key] = value
			}
		}

		for key, value := range req.Attributes() {
			input[key] = value
		}

		return input, nil
	})
}

func isJSON(req *httpmsg.Request) bool {
	mediaType, _, err := mime.ParseMediaType(req.HeaderLine("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
