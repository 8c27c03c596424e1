package render

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rebuy-de/adrkit/pkg/digutil"
	"github.com/rebuy-de/adrkit/pkg/httperr"
	"github.com/rebuy-de/adrkit/pkg/testutil"
)

func exampleInfo() Info {
	return Info{
		ID:      "4f1c",
		Status:  http.StatusNotFound,
		Title:   "Not Found",
		Message: "no route for DELETE /missing",
		Kind:    "routing",
		Details: map[string]any{"path": "/missing"},
	}
}

func TestNewInfo(t *testing.T) {
	t.Run("client error", func(t *testing.T) {
		info := NewInfo(errors.New("bad input"), http.StatusBadRequest, false)
		assert.NotEmpty(t, info.ID)
		assert.Equal(t, "Bad Request", info.Title)
		assert.Equal(t, "bad input", info.Message)
		assert.Equal(t, "generic", info.Kind)
		assert.Empty(t, info.Trace)
	})

	t.Run("server error hides message", func(t *testing.T) {
		info := NewInfo(errors.New("password=hunter2"), http.StatusInternalServerError, false)
		assert.Equal(t, "Internal Server Error", info.Message)
	})

	t.Run("debug adds message and trace", func(t *testing.T) {
		info := NewInfo(errors.New("password=hunter2"), http.StatusInternalServerError, true)
		assert.Equal(t, "password=hunter2", info.Message)
		assert.NotEmpty(t, info.Trace)
	})

	t.Run("http error", func(t *testing.T) {
		err := httperr.ErrConflict.
			WithMessage("item 42 was modified").
			WithDetails(map[string]any{"id": 42})
		info := NewInfo(errors.Wrap(err, "update"), http.StatusConflict, false)
		assert.Equal(t, "item 42 was modified", info.Message)
		assert.Equal(t, "conflict", info.Code)
		assert.Equal(t, "http", info.Kind)
		assert.Equal(t, map[string]any{"id": 42}, info.Details)
	})

	t.Run("unique ids", func(t *testing.T) {
		a := NewInfo(errors.New("x"), 400, false)
		b := NewInfo(errors.New("x"), 400, false)
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestRendererStack(t *testing.T) {
	r := NewRenderer()
	ctx := context.Background()

	_, err := r.Render(ctx, exampleInfo())
	assert.True(t, errors.Is(err, ErrNoHandler))
	assert.Nil(t, r.PopHandler())

	r.PushHandler(PlainText())
	r.PushHandler(JSON())
	assert.Len(t, r.Handlers(), 2)

	out, err := r.Render(ctx, exampleInfo())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{"))

	assert.Equal(t, JSON(), r.PopHandler())

	out, err = r.RenderWith(ctx, YAML(), exampleInfo())
	require.NoError(t, err)
	assert.Contains(t, out, "status: 404")
	assert.Equal(t, []Handler{PlainText()}, r.Handlers())
}

func TestRenderWithIsolatesConcurrentCalls(t *testing.T) {
	r := NewRenderer()
	ctx := context.Background()

	handler := func(name string) Handler {
		return HandlerFunc(func(_ context.Context, _ Info) (string, error) {
			return name, nil
		})
	}

	wg := new(sync.WaitGroup)
	for i := 0; i < 50; i++ {
		name := []string{"a", "b", "c"}[i%3]
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := r.RenderWith(ctx, handler(name), exampleInfo())
			assert.NoError(t, err)
			assert.Equal(t, name, out)
		}()
	}
	wg.Wait()

	assert.Empty(t, r.Handlers())
}

func TestPlainText(t *testing.T) {
	out, err := PlainText().Render(context.Background(), exampleInfo())
	require.NoError(t, err)
	testutil.AssertGolden(t, "test-fixtures/plain.golden", []byte(out))
}

func TestJSON(t *testing.T) {
	out, err := JSON().Render(context.Background(), exampleInfo())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, float64(404), decoded["status"])
	assert.Equal(t, "4f1c", decoded["id"])
	assert.NotContains(t, decoded, "trace")
	assert.Contains(t, out, "\n  \"status\": 404")
}

func TestYAML(t *testing.T) {
	out, err := YAML().Render(context.Background(), exampleInfo())
	require.NoError(t, err)

	var decoded Info
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, exampleInfo(), decoded)
}

func TestXML(t *testing.T) {
	out, err := XML().Render(context.Background(), exampleInfo())
	require.NoError(t, err)

	assert.Contains(t, out, `<error id="4f1c">`)
	assert.Contains(t, out, `<status>404</status>`)
	assert.Contains(t, out, `<detail key="path">/missing</detail>`)
	assert.NotContains(t, out, `<trace>`)
}

func TestHTMLEscapes(t *testing.T) {
	info := exampleInfo()
	info.Message = `<script>alert("x")</script>`

	out, err := HTML().Render(context.Background(), info)
	require.NoError(t, err)

	assert.Contains(t, out, "<title>404 Not Found</title>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
}

func TestRegisterDefaults(t *testing.T) {
	r := digutil.NewResolver()
	require.NoError(t, r.Register(KeyJSON, func() Handler { return PlainText() }))
	require.NoError(t, RegisterDefaults(r))

	for _, key := range []digutil.Key{KeyHTML, KeyJSON, KeyPlain, KeyYAML, KeyXML} {
		assert.True(t, r.Has(key), key)
	}

	h, err := digutil.Make[Handler](r, KeyJSON)
	require.NoError(t, err)
	assert.Equal(t, PlainText(), h)
}
