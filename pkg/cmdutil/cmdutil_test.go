package cmdutil

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChainsPreRuns(t *testing.T) {
	var calls []string

	hook := func(name string) Option {
		return func(cmd *cobra.Command) error {
			cmd.PersistentPreRun = func(*cobra.Command, []string) {
				calls = append(calls, name)
			}
			return nil
		}
	}

	cmd := New("test", "testing",
		hook("first"),
		hook("second"),
		WithRun(func(ctx context.Context, cmd *cobra.Command, args []string) {
			calls = append(calls, "run")
		}),
	)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"first", "second", "run"}, calls)
}

type exampleRunner struct {
	name string
	ran  bool
}

func (r *exampleRunner) Bind(cmd *cobra.Command) error {
	cmd.PersistentFlags().StringVar(&r.name, "name", "World", "Your name.")
	return nil
}

func (r *exampleRunner) Run(ctx context.Context) error {
	r.ran = true
	return nil
}

func TestWithRunner(t *testing.T) {
	runner := new(exampleRunner)
	cmd := New("test", "testing", WithRunner(runner))
	cmd.SetArgs([]string{"--name", "Gopher"})

	require.NoError(t, cmd.Execute())
	assert.True(t, runner.ran)
	assert.Equal(t, "Gopher", runner.name)
}

func TestLogFlags(t *testing.T) {
	flags := new(LogFlags)
	cmd := &cobra.Command{Use: "test"}
	flags.Bind(cmd)

	require.NoError(t, cmd.ParseFlags([]string{"-v", "--json-logs"}))
	assert.True(t, flags.Verbose)
	assert.True(t, flags.JSON)
	assert.Empty(t, flags.GELFAddress)

	handler, err := flags.Handler()
	require.NoError(t, err)
	assert.True(t, handler.Enabled(context.Background(), slog.LevelDebug))
	_, isJSON := handler.(*slog.JSONHandler)
	assert.True(t, isJSON)
}

func TestContextWithDelay(t *testing.T) {
	type key struct{}

	in, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "value"))
	out := ContextWithDelay(in, 20*time.Millisecond)
	assert.Equal(t, "value", out.Value(key{}))

	cancel()
	assert.NoError(t, out.Err())

	select {
	case <-out.Done():
	case <-time.After(time.Second):
		t.Fatal("delayed context was not cancelled")
	}
}

func TestMustIgnoresNil(t *testing.T) {
	buf := new(bytes.Buffer)
	defer slog.SetDefault(slog.Default())
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, nil)))

	assert.NotPanics(t, func() { Must(nil) })
	assert.Empty(t, buf.String())
}

func TestExitPanicsWithCode(t *testing.T) {
	defer func() {
		e := recover()
		require.NotNil(t, e)
		assert.Equal(t, exitCode{code: ExitCodeUsage}, e)
	}()

	Exit(ExitCodeUsage)
}

func TestVersionCommand(t *testing.T) {
	buf := new(bytes.Buffer)

	cmd := New("test", "testing", WithVersionCommand())
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Name:       unknown\n")
	assert.Contains(t, buf.String(), "CommitHash: unknown\n")
}
