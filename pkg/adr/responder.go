package adr

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"

	"github.com/rebuy-de/adrkit/pkg/httpmsg"
	"github.com/rebuy-de/adrkit/pkg/negotiate"
)

const (
	mediaTypeJSON = "application/json"
	mediaTypeYAML = "application/yaml"
)

type envelope struct {
	Status   Status   `json:"status" yaml:"status"`
	Output   any      `json:"output,omitempty" yaml:"output,omitempty"`
	Messages []string `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// FormattedResponder encodes the payload as JSON or YAML, depending on the
// Accept header. JSON is used if nothing matches.
type FormattedResponder struct {
	negotiator negotiate.Negotiator
}

// NewFormattedResponder creates a FormattedResponder. A nil negotiator uses
// negotiate.New.
func NewFormattedResponder(n negotiate.Negotiator) *FormattedResponder {
	if n == nil {
		n = negotiate.New()
	}
	return &FormattedResponder{negotiator: n}
}

func (r *FormattedResponder) Respond(req *httpmsg.Request, resp *httpmsg.Response, payload *Payload) (*httpmsg.Response, error) {
	out, err := resp.WithStatus(payload.Status.HTTPStatus())
	if err != nil {
		return nil, err
	}

	if payload.Status == StatusNoContent {
		return out, nil
	}

	mediaType, ok := r.negotiator.Best(req.HeaderLine("Accept"), []string{mediaTypeJSON, mediaTypeYAML})
	if !ok {
		mediaType = mediaTypeJSON
	}

	data := envelope{
		Status:   payload.Status,
		Output:   payload.Output,
		Messages: payload.Messages,
	}

	var body []byte
	switch mediaType {
	case mediaTypeYAML:
		body, err = yaml.Marshal(data)
		if err != nil {
			return nil, errors.Wrap(err, "encode yaml payload")
		}
	default:
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, errors.Wrap(err, "encode json payload")
		}
		body = pretty.Pretty(raw)
	}

	return out.
		WithHeader("Content-Type", mediaType).
		WithBody(body), nil
}
