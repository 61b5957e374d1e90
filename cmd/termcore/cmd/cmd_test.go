package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwlog "github.com/msto63/termcore/foundation/core/log"
	"github.com/msto63/termcore/foundation/term/command"
	"github.com/msto63/termcore/internal/audit"
	"github.com/msto63/termcore/internal/commands"
	"github.com/msto63/termcore/pkg/core/config"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := config.Default()
	cfg.Audit.Sinks = nil
	a, err := newApp(cfg, mdwlog.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		a.Close(ctx)
	})
	return a
}

func TestJoinLine(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"plain", []string{"echo", "hello"}, "echo hello"},
		{"space", []string{"echo", "hello world"}, `echo "hello world"`},
		{"quote", []string{"echo", `say "hi"`}, `echo "say \"hi\""`},
		{"empty arg", []string{"echo", ""}, `echo ""`},
		{"option", []string{"hash", "--algo=md5", "x"}, "hash --algo=md5 x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinLine(tt.args))
		})
	}
}

func TestRenderResult(t *testing.T) {
	assert.Equal(t, "", renderResult(command.Success("")))
	assert.Equal(t, "plain", renderResult(command.Success("plain")))

	out := renderResult(command.Error("bad\nworse"))
	assert.Contains(t, out, "bad")
	assert.Contains(t, out, "worse")
}

func TestShellSessionHandle(t *testing.T) {
	a := newTestApp(t)
	var buf bytes.Buffer
	s := &shellSession{app: a, mode: "general-purpose", out: &buf}

	assert.True(t, s.handle(context.Background(), "   "))
	assert.Empty(t, buf.String())

	assert.True(t, s.handle(context.Background(), "echo hi --upper"))
	assert.Equal(t, "HI\n", buf.String())

	buf.Reset()
	assert.True(t, s.handle(context.Background(), "clear"))
	assert.Equal(t, clearScreen, buf.String())

	buf.Reset()
	assert.True(t, s.handle(context.Background(), "mode Security-Assessment"))
	assert.Equal(t, "security-assessment", s.mode)
	assert.Contains(t, buf.String(), "Switched to mode security-assessment")

	buf.Reset()
	assert.True(t, s.handle(context.Background(), "mode lab"))
	assert.Equal(t, "lab", s.mode)
	assert.Contains(t, buf.String(), "unrecognized")

	buf.Reset()
	assert.True(t, s.handle(context.Background(), "mode"))
	assert.Contains(t, buf.String(), "Current mode: lab")

	assert.False(t, s.handle(context.Background(), "exit"))
	assert.False(t, s.handle(context.Background(), " quit "))
}

func TestCompleter(t *testing.T) {
	a := newTestApp(t)
	s := &shellSession{app: a, mode: "general-purpose"}
	c := s.completer(context.Background())

	line := []rune("ec")
	got, n := c.Do(line, len(line))
	assert.Equal(t, 2, n)
	assert.Contains(t, got, []rune("ho"))

	line = []rune("echo h")
	got, _ = c.Do(line, len(line))
	assert.Empty(t, got)
}

func TestApplyConfig(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	r := a.engine.Execute(ctx, "uuid", "general-purpose")
	require.Equal(t, command.StatusSuccess, r.Status)

	cfg := config.Default()
	cfg.Modes = map[string]config.ModeConfig{
		"general-purpose": {Disabled: []string{"uuid"}},
	}
	a.applyConfig(cfg)

	r = a.engine.Execute(ctx, "uuid", "general-purpose")
	assert.Equal(t, command.StatusError, r.Status)
	assert.Contains(t, r.Output, "Command not found: uuid")

	cfg.Modes = map[string]config.ModeConfig{
		commands.BaseKey: {Disabled: []string{"echo"}},
	}
	a.applyConfig(cfg)

	r = a.engine.Execute(ctx, "uuid", "general-purpose")
	assert.Equal(t, command.StatusSuccess, r.Status)
	r = a.engine.Execute(ctx, "echo x", "web-engineering")
	assert.Equal(t, command.StatusError, r.Status)
}

func TestAppCloseKeepsAuditOfLastExecution(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	cfg := config.Default()
	cfg.Audit.Sinks = []string{audit.SinkSQLite}
	cfg.Audit.SQLitePath = dbPath

	a, err := newApp(cfg, mdwlog.NewNop())
	require.NoError(t, err)

	r := a.engine.Execute(context.Background(), "echo persisted", "general-purpose")
	require.Equal(t, "persisted", r.Output)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Close(ctx))

	store, err := audit.NewSQLiteSink(dbPath)
	require.NoError(t, err)
	defer store.Close()

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "echo persisted", recent[0].Command)
	assert.Equal(t, "general-purpose", recent[0].Mode)
}

func TestDialAddress(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", dialAddress("0.0.0.0:8080"))
	assert.Equal(t, "127.0.0.1:9090", dialAddress(":9090"))
	assert.Equal(t, "10.0.0.2:8080", dialAddress("10.0.0.2:8080"))
	assert.Equal(t, "garbage", dialAddress("garbage"))
}

func TestHealthResult(t *testing.T) {
	assert.Equal(t, command.StatusInfo, healthResult("healthy").Status)
	assert.Equal(t, command.StatusWarning, healthResult("degraded").Status)
	assert.Equal(t, command.StatusError, healthResult("unhealthy").Status)
}

func TestExecCommand(t *testing.T) {
	t.Setenv("TERMCORE_CONFIG", "")
	t.Setenv("TERMCORE_AUDIT_SINKS", "none")
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		activeMode = ""
	})

	rootCmd.SetArgs([]string{"exec", "echo", "hello world"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "hello world\n", out.String())

	out.Reset()
	rootCmd.SetArgs([]string{"exec", "nosuch"})
	err := rootCmd.Execute()
	assert.ErrorIs(t, err, errCommandFailed)
	assert.Contains(t, out.String(), "Command not found")
}
