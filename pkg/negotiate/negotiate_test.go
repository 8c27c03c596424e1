package negotiate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBest(t *testing.T) {
	priorities := []string{"text/html", "application/json", "text/plain"}

	cases := []struct {
		name   string
		accept string
		want   string
		found  bool
	}{
		{name: "exact", accept: "application/json", want: "application/json", found: true},
		{name: "case insensitive", accept: "Application/JSON", want: "application/json", found: true},
		{name: "quality", accept: "text/html;q=0.5, application/json", want: "application/json", found: true},
		{name: "subtype wildcard", accept: "text/*", want: "text/html", found: true},
		{name: "full wildcard", accept: "*/*", want: "text/html", found: true},
		{name: "specific beats wildcard", accept: "*/*, text/plain", want: "text/plain", found: true},
		{name: "excluded", accept: "application/json;q=0", found: false},
		{name: "excluded with fallback", accept: "text/html;q=0, */*;q=0.1", want: "application/json", found: true},
		{name: "excluded by subtype wildcard", accept: "text/*;q=0, */*", want: "application/json", found: true},
		{name: "specific exclusion beats wildcard", accept: "text/*, text/html;q=0", want: "text/plain", found: true},
		{name: "wildcard quality beats lower exact", accept: "text/html;q=0.5, */*", want: "application/json", found: true},
		{name: "unknown", accept: "image/png", found: false},
		{name: "empty", accept: "", found: false},
	}

	n := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, found := n.Best(tc.accept, priorities)
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBestIgnoresPriorityParameters(t *testing.T) {
	got, found := New().Best("text/plain", []string{"application/json", "text/plain; charset=utf-8"})
	assert.True(t, found)
	assert.Equal(t, "text/plain; charset=utf-8", got)
}
