package exception

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rebuy-de/adrkit/pkg/digutil"
	"github.com/rebuy-de/adrkit/pkg/render"
)

// ErrEmptyPreferences is returned when constructing Preferences without any
// media type.
var ErrEmptyPreferences = errors.New("preferences must contain at least one media type")

// Preference maps a media type to the key of the render handler for it.
type Preference struct {
	MediaType string
	Renderer  digutil.Key
}

// Preferences is an ordered mapping of media types to render handler keys.
// The first media type is the fallback if content negotiation fails. It is
// not modified after construction.
type Preferences struct {
	entries []Preference
}

// NewPreferences creates Preferences in the given order. A media type that
// appears twice keeps its first position, but uses the last renderer.
func NewPreferences(pairs ...Preference) (*Preferences, error) {
	p := &Preferences{}
	for _, pair := range pairs {
		mediaType := strings.TrimSpace(pair.MediaType)
		if mediaType == "" {
			return nil, errors.Errorf("empty media type for renderer %q", string(pair.Renderer))
		}

		p.set(Preference{MediaType: mediaType, Renderer: pair.Renderer})
	}

	if len(p.entries) == 0 {
		return nil, errors.WithStack(ErrEmptyPreferences)
	}

	return p, nil
}

// DefaultPreferences prefers HTML, then JSON and plain text.
func DefaultPreferences() *Preferences {
	return &Preferences{entries: []Preference{
		{MediaType: "text/html", Renderer: render.KeyHTML},
		{MediaType: "application/json", Renderer: render.KeyJSON},
		{MediaType: "text/plain", Renderer: render.KeyPlain},
	}}
}

// ParsePreferences reads a YAML mapping from media type to renderer key. The
// order of the document is kept:
//
//	application/json: json
//	text/html: html
func ParsePreferences(data []byte) (*Preferences, error) {
	var node yaml.Node
	err := yaml.Unmarshal(data, &node)
	if err != nil {
		return nil, errors.Wrap(err, "parse preferences")
	}

	if node.Kind == 0 {
		return nil, errors.WithStack(ErrEmptyPreferences)
	}

	p := new(Preferences)
	err = p.UnmarshalYAML(&node)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UnmarshalYAML allows using Preferences directly in YAML config files.
func (p *Preferences) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}

	if node.Kind != yaml.MappingNode {
		return errors.Errorf("preferences must be a mapping, line %d", node.Line)
	}

	pairs := []Preference{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return errors.Errorf("preference in line %d must map a media type to a renderer key", key.Line)
		}
		pairs = append(pairs, Preference{
			MediaType: key.Value,
			Renderer:  digutil.Key(value.Value),
		})
	}

	parsed, err := NewPreferences(pairs...)
	if err != nil {
		return err
	}

	*p = *parsed
	return nil
}

func (p *Preferences) set(pref Preference) {
	for i := range p.entries {
		if p.entries[i].MediaType == pref.MediaType {
			p.entries[i].Renderer = pref.Renderer
			return
		}
	}
	p.entries = append(p.entries, pref)
}

// Types returns the media types in insertion order.
func (p *Preferences) Types() []string {
	types := make([]string, len(p.entries))
	for i, e := range p.entries {
		types[i] = e.MediaType
	}
	return types
}

// Default returns the first media type.
func (p *Preferences) Default() string {
	return p.entries[0].MediaType
}

// Lookup returns the renderer key for the media type.
func (p *Preferences) Lookup(mediaType string) (digutil.Key, bool) {
	for _, e := range p.entries {
		if strings.EqualFold(e.MediaType, mediaType) {
			return e.Renderer, true
		}
	}
	return "", false
}

// Entries returns a copy of all preferences.
func (p *Preferences) Entries() []Preference {
	return append([]Preference(nil), p.entries...)
}
