package testutil_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rebuy-de/adrkit/pkg/httpmsg"
	"github.com/rebuy-de/adrkit/pkg/testutil"
)

type exampleData struct {
	Foo     string `json:"foo" yaml:"foo"`
	Bim     string `json:"bim" yaml:"bim"`
	Blubber int    `json:"blubber" yaml:"blubber"`
}

func TestAssertGoldenJSON(t *testing.T) {
	data := exampleData{
		Foo:     "bar",
		Bim:     "baz",
		Blubber: 42,
	}

	testutil.AssertGoldenJSON(t, "test-fixtures/example-golden.json", data)
	testutil.AssertGoldenYAML(t, "test-fixtures/example-golden.yaml", data)
}

func TestAssertGoldenResponse(t *testing.T) {
	resp, err := httpmsg.NewResponse().WithStatus(http.StatusMethodNotAllowed)
	require.NoError(t, err)

	resp = resp.
		WithHeader("Allow", "GET, PUT").
		WithHeader("Content-Type", "text/plain").
		WriteString("405 Method Not Allowed\n")

	testutil.AssertGoldenResponse(t, "test-fixtures/response.golden", resp)
}
