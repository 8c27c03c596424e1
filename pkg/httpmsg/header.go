package httpmsg

import (
	"net/http"
	"net/textproto"
	"sort"
	"strings"
)

// Header is an ordered multi-value header mapping. Names are canonicalized
// for lookup, but the order in which names were first set is kept. The zero
// value is an empty Header ready to use.
type Header struct {
	names  []string
	values map[string][]string
}

// HeaderFromHTTP converts a net/http header. Since http.Header is a map, the
// resulting names are sorted to get a stable order.
func HeaderFromHTTP(src http.Header) Header {
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Strings(names)

	var h Header
	for _, name := range names {
		h.Add(name, src[name]...)
	}
	return h
}

// Get returns the first value of the given header name.
func (h Header) Get(name string) string {
	values := h.values[textproto.CanonicalMIMEHeaderKey(name)]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Values returns a copy of all values of the given header name.
func (h Header) Values(name string) []string {
	values := h.values[textproto.CanonicalMIMEHeaderKey(name)]
	if len(values) == 0 {
		return nil
	}
	return append([]string(nil), values...)
}

// Line returns all values of the given name joined by a comma.
func (h Header) Line(name string) string {
	return strings.Join(h.values[textproto.CanonicalMIMEHeaderKey(name)], ", ")
}

func (h Header) Has(name string) bool {
	_, ok := h.values[textproto.CanonicalMIMEHeaderKey(name)]
	return ok
}

// Names returns the header names in insertion order.
func (h Header) Names() []string {
	return append([]string(nil), h.names...)
}

func (h Header) Len() int {
	return len(h.names)
}

// Set replaces all values of the given name. The position of an existing name
// is kept.
func (h *Header) Set(name string, values ...string) {
	key := textproto.CanonicalMIMEHeaderKey(name)
	if h.values == nil {
		h.values = map[string][]string{}
	}
	if _, ok := h.values[key]; !ok {
		h.names = append(h.names, key)
	}
	h.values[key] = append([]string(nil), values...)
}

// Add appends values to the given name without touching existing values.
func (h *Header) Add(name string, values ...string) {
	key := textproto.CanonicalMIMEHeaderKey(name)
	if h.values == nil {
		h.values = map[string][]string{}
	}
	if _, ok := h.values[key]; !ok {
		h.names = append(h.names, key)
	}
	h.values[key] = append(h.values[key], values...)
}

func (h *Header) Del(name string) {
	key := textproto.CanonicalMIMEHeaderKey(name)
	if _, ok := h.values[key]; !ok {
		return
	}
	delete(h.values, key)
	for i, n := range h.names {
		if n == key {
			h.names = append(h.names[:i:i], h.names[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy of the header.
func (h Header) Clone() Header {
	if h.values == nil {
		return Header{}
	}

	c := Header{
		names:  append([]string(nil), h.names...),
		values: make(map[string][]string, len(h.values)),
	}
	for k, v := range h.values {
		c.values[k] = append([]string(nil), v...)
	}
	return c
}

// HTTP converts the header into a net/http header.
func (h Header) HTTP() http.Header {
	out := make(http.Header, len(h.names))
	for _, name := range h.names {
		out[name] = append([]string(nil), h.values[name]...)
	}
	return out
}
