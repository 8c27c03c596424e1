// Package testutil contains golden file assertions.
//
// Golden files are updated instead of compared, when the environment variable
// TESTUTIL_UPDATE_GOLDEN is set:
//
//	TESTUTIL_UPDATE_GOLDEN=1 go test ./...
//
// The changes can be reviewed with the usual VCS diff afterwards.
package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	yaml "gopkg.in/yaml.v3"

	"github.com/rebuy-de/adrkit/pkg/httpmsg"
)

const GoldenUpdateEnv = `TESTUTIL_UPDATE_GOLDEN`

// TB is a subset of testing.TB, so every *testing.T can be used.
type TB interface {
	Helper()
	Error(args ...any)
	Errorf(format string, args ...any)
	Log(args ...any)
}

func updateGolden(filename string, data []byte) error {
	err := os.MkdirAll(filepath.Dir(filename), 0o755)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// readGolden treats a missing file as empty, so the diff shows everything as
// added.
func readGolden(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func unifiedDiff(filename string, golden, current []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(golden)),
		B:        difflib.SplitLines(string(current)),
		FromFile: filename,
		ToFile:   "Current",
		Context:  3,
		Eol:      "\n",
	})
}

// AssertGolden fails the test, if the content of filename differs from data,
// and logs a unified diff.
func AssertGolden(t TB, filename string, data []byte) bool {
	t.Helper()

	if os.Getenv(GoldenUpdateEnv) != "" {
		err := updateGolden(filename, data)
		if err != nil {
			t.Error(err)
			return false
		}
	}

	golden, err := readGolden(filename)
	if err != nil {
		t.Error(err)
		return false
	}

	if bytes.Equal(golden, data) {
		return true
	}

	t.Errorf("Generated data doesn't match golden file '%s'. Update it by setting the environment variable %s.",
		filename, GoldenUpdateEnv)

	diff, err := unifiedDiff(filename, golden, data)
	if err != nil {
		t.Error(err)
		return false
	}
	t.Log(diff)

	return false
}

// AssertGoldenYAML works like AssertGolden, but encodes the data as YAML.
func AssertGoldenYAML(t TB, filename string, data any) bool {
	t.Helper()

	generated, err := yaml.Marshal(data)
	if err != nil {
		t.Error(err)
		return false
	}

	return AssertGolden(t, filename, generated)
}

// AssertGoldenJSON works like AssertGolden, but encodes the data as indented
// JSON with a trailing newline.
func AssertGoldenJSON(t TB, filename string, data any) bool {
	t.Helper()

	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "    ")
	err := enc.Encode(data)
	if err != nil {
		t.Error(err)
		return false
	}

	return AssertGolden(t, filename, buf.Bytes())
}

// AssertGoldenResponse compares the wire format of the response with the
// golden file. Line endings are normalized to "\n" to keep the golden files
// readable.
func AssertGoldenResponse(t TB, filename string, resp *httpmsg.Response) bool {
	t.Helper()

	buf := new(bytes.Buffer)
	_, err := resp.WriteTo(buf)
	if err != nil {
		t.Error(err)
		return false
	}

	return AssertGolden(t, filename, bytes.ReplaceAll(buf.Bytes(), []byte("\r\n"), []byte("\n")))
}
