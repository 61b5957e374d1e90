// File: executor_test.go
// Title: Command Dispatcher Tests
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14

package executor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwlog "github.com/msto63/termcore/foundation/core/log"
	"github.com/msto63/termcore/foundation/term/command"
	"github.com/msto63/termcore/foundation/term/registry"
)

type testCatalog struct {
	base  []command.Descriptor
	modes map[string][]command.Descriptor
}

func (c testCatalog) Base() []command.Descriptor { return c.base }

func (c testCatalog) ForMode(mode string) ([]command.Descriptor, bool) {
	d, ok := c.modes[mode]
	return d, ok
}

func handlerDef(name string, h command.Handler) *command.Definition {
	return &command.Definition{
		CommandName: name,
		Summary:     "the " + name + " command",
		UsageText:   name + " [args...]",
		ExampleList: []string{name + " x"},
		Handler:     h,
	}
}

func echoHandler(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	return command.Success("%s", strings.Join(args, " ")), nil
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()

	cat := testCatalog{
		base: []command.Descriptor{
			handlerDef("echo", echoHandler),
			handlerDef("mode", func(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
				return command.Success("shadowed"), nil
			}),
		},
		modes: map[string][]command.Descriptor{
			"security-assessment": {
				handlerDef("scan", func(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
					return command.Warning("scanning %s", opts["type"]).WithData(args), nil
				}),
				handlerDef("fail", func(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
					return command.Result{}, errors.New("backend unreachable")
				}),
				handlerDef("explode", func(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
					panic("kaboom")
				}),
				handlerDef("hang", func(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
					<-ctx.Done()
					return command.Result{}, ctx.Err()
				}),
				handlerDef("silent", func(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
					return command.Result{Output: "no status"}, nil
				}),
			},
			"general-purpose": {},
		},
	}

	if opts.Logger == nil {
		opts.Logger = mdwlog.NewNop()
	}
	cache := registry.NewCache(cat, registry.CacheOptions{Logger: opts.Logger})
	e, err := New(cache, opts)
	require.NoError(t, err)
	return e
}

func TestNew_RequiresCache(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}

func TestExecute_EmptyInput(t *testing.T) {
	e := newTestEngine(t, Options{})

	for _, mode := range []string{"general-purpose", "security-assessment", "unknown-mode", ""} {
		for _, line := range []string{"", "   "} {
			res := e.Execute(context.Background(), line, mode)
			assert.Equal(t, command.Result{Output: "", Status: command.StatusSuccess}, res)
		}
	}
}

func TestExecute_RegisteredCommandResultUnchanged(t *testing.T) {
	e := newTestEngine(t, Options{})

	res := e.Execute(context.Background(), "scan 10.0.0.1 --type=full", "security-assessment")

	assert.Equal(t, command.StatusWarning, res.Status)
	assert.Equal(t, "scanning full", res.Output)
	assert.Equal(t, []string{"10.0.0.1"}, res.Data)
}

func TestExecute_EmptyStatusNormalized(t *testing.T) {
	e := newTestEngine(t, Options{})

	res := e.Execute(context.Background(), "silent", "security-assessment")

	assert.Equal(t, command.StatusSuccess, res.Status)
	assert.Equal(t, "no status", res.Output)
}

func TestExecute_UnknownCommand(t *testing.T) {
	e := newTestEngine(t, Options{})

	res := e.Execute(context.Background(), "nonexistent-command", "general-purpose")

	assert.Equal(t, command.StatusError, res.Status)
	assert.Contains(t, res.Output, "nonexistent-command")
	assert.Contains(t, res.Output, "help")
	assert.NotContains(t, res.Output, "Did you mean")
}

func TestExecute_UnknownCommandSuggestion(t *testing.T) {
	e := newTestEngine(t, Options{})

	res := e.Execute(context.Background(), "scna 10.0.0.1", "security-assessment")
	assert.Contains(t, res.Output, "Did you mean 'scan'?")

	res = e.Execute(context.Background(), "hlep", "general-purpose")
	assert.Contains(t, res.Output, "Did you mean 'help'?")
}

func TestExecute_ModeScopedCommandsInvisibleElsewhere(t *testing.T) {
	e := newTestEngine(t, Options{})

	res := e.Execute(context.Background(), "scan x", "general-purpose")
	assert.Equal(t, command.StatusError, res.Status)
}

func TestExecute_HelpListsEveryCommand(t *testing.T) {
	e := newTestEngine(t, Options{})

	res := e.Execute(context.Background(), "help", "security-assessment")

	require.Equal(t, command.StatusInfo, res.Status)
	for _, name := range []string{"echo", "scan", "fail", "explode", "hang", "silent", "help", "clear", "mode"} {
		assert.Contains(t, res.Output, name)
	}
	assert.Contains(t, res.Output, "the scan command")
}

func TestExecute_HelpForCommand(t *testing.T) {
	e := newTestEngine(t, Options{})

	res := e.Execute(context.Background(), "help scan", "security-assessment")

	require.Equal(t, command.StatusInfo, res.Status)
	assert.Contains(t, res.Output, "scan - the scan command")
	assert.Contains(t, res.Output, "Usage: scan [args...]")
	assert.Contains(t, res.Output, "scan x")
}

func TestExecute_HelpForUnknownFallsBackToList(t *testing.T) {
	e := newTestEngine(t, Options{})

	res := e.Execute(context.Background(), "help nope", "general-purpose")

	assert.Equal(t, command.StatusInfo, res.Status)
	assert.Contains(t, res.Output, "Available commands")
}

func TestExecute_HelpForBuiltin(t *testing.T) {
	e := newTestEngine(t, Options{})

	res := e.Execute(context.Background(), "help mode", "general-purpose")

	assert.Equal(t, command.StatusInfo, res.Status)
	assert.Contains(t, res.Output, "Show the active mode")
}

func TestExecute_ReservedNamesWin(t *testing.T) {
	e := newTestEngine(t, Options{})

	res := e.Execute(context.Background(), "mode", "security-assessment")

	assert.Equal(t, command.StatusInfo, res.Status)
	assert.Contains(t, res.Output, "security-assessment")
	assert.NotContains(t, res.Output, "shadowed")
}

func TestExecute_Clear(t *testing.T) {
	e := newTestEngine(t, Options{})

	res := e.Execute(context.Background(), "clear", "security-assessment")
	assert.Equal(t, command.Result{Output: "", Status: command.StatusSuccess}, res)
}

func TestExecute_ModeUnknownFallsBack(t *testing.T) {
	e := newTestEngine(t, Options{})

	res := e.Execute(context.Background(), "mode", "made-up")
	assert.Equal(t, command.StatusInfo, res.Status)
	assert.Contains(t, res.Output, "made-up")
	assert.Contains(t, res.Output, "base commands only")

	res = e.Execute(context.Background(), "echo still here", "made-up")
	assert.Equal(t, "still here", res.Output)
}

func TestExecute_HandlerFailures(t *testing.T) {
	e := newTestEngine(t, Options{HandlerTimeout: 50 * time.Millisecond})

	tests := []struct {
		name string
		line string
		want string
	}{
		{"returned error", "fail", "backend unreachable"},
		{"panic", "explode", "kaboom"},
		{"timeout", "hang", "timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Execute(context.Background(), tt.line, "security-assessment")

			assert.Equal(t, command.StatusError, res.Status)
			assert.Contains(t, res.Output, tt.want)
		})
	}
}

func TestExecute_CallerCancellation(t *testing.T) {
	e := newTestEngine(t, Options{HandlerTimeout: -1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.Execute(ctx, "hang", "security-assessment")

	assert.Equal(t, command.StatusError, res.Status)
	assert.Contains(t, res.Output, "canceled")
}

func TestExecute_InputTooLong(t *testing.T) {
	e := newTestEngine(t, Options{MaxInputLength: 16})

	res := e.Execute(context.Background(), "echo "+strings.Repeat("a", 32), "general-purpose")

	assert.Equal(t, command.StatusError, res.Status)
	assert.Contains(t, res.Output, "too long")
}

func TestExecute_DefaultMode(t *testing.T) {
	e := newTestEngine(t, Options{DefaultMode: "Security-Assessment"})

	res := e.Execute(context.Background(), "mode", "")
	assert.Contains(t, res.Output, "security-assessment")
}

func TestExecute_EmitsAuditRecord(t *testing.T) {
	records := make(chan AuditRecord, 4)
	e := newTestEngine(t, Options{Auditor: AuditorFunc(func(r AuditRecord) { records <- r })})

	res := e.Execute(context.Background(), "echo hi there", "General-Purpose")

	select {
	case rec := <-records:
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, "echo hi there", rec.Command)
		assert.Equal(t, res.Output, rec.Output)
		assert.Equal(t, "general-purpose", rec.Mode)
		assert.Equal(t, command.StatusSuccess, rec.Status)
		assert.Equal(t, BranchCommand, rec.Branch)
		assert.False(t, rec.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no audit record emitted")
	}
}

func TestExecute_AuditBranches(t *testing.T) {
	records := make(chan AuditRecord, 16)
	e := newTestEngine(t, Options{Auditor: AuditorFunc(func(r AuditRecord) { records <- r })})

	lines := map[string]Branch{
		"":        BranchEmpty,
		"help":    BranchHelp,
		"clear":   BranchClear,
		"mode":    BranchMode,
		"missing": BranchUnknown,
	}
	for line, want := range lines {
		e.Execute(context.Background(), line, "general-purpose")
		select {
		case rec := <-records:
			assert.Equal(t, want, rec.Branch, "line %q", line)
		case <-time.After(time.Second):
			t.Fatalf("no audit record for %q", line)
		}
	}
}

func TestExecute_AuditorCannotBlockOrBreakCaller(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	blocking := newTestEngine(t, Options{Auditor: AuditorFunc(func(AuditRecord) { <-block })})
	panicking := newTestEngine(t, Options{Auditor: AuditorFunc(func(AuditRecord) { panic("sink down") })})

	for _, e := range []*Engine{blocking, panicking} {
		done := make(chan command.Result, 1)
		go func() { done <- e.Execute(context.Background(), "echo ok", "general-purpose") }()

		select {
		case res := <-done:
			assert.Equal(t, "ok", res.Output)
		case <-time.After(time.Second):
			t.Fatal("execute blocked on the auditor")
		}
	}
}

func TestFlush_WaitsForPendingHandOffs(t *testing.T) {
	release := make(chan struct{})
	var delivered atomic.Int32
	e := newTestEngine(t, Options{Auditor: AuditorFunc(func(AuditRecord) {
		<-release
		delivered.Add(1)
	})})

	e.Execute(context.Background(), "echo a", "general-purpose")
	e.Execute(context.Background(), "echo b", "general-purpose")

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.Flush(short), context.DeadlineExceeded)

	close(release)
	require.NoError(t, e.Flush(context.Background()))
	assert.Equal(t, int32(2), delivered.Load())
}

func TestFlush_NothingPending(t *testing.T) {
	e := newTestEngine(t, Options{})
	assert.NoError(t, e.Flush(context.Background()))
}

func TestAuditRecord_JSONDuration(t *testing.T) {
	rec := AuditRecord{ID: "r1", Command: "echo", Status: command.StatusSuccess, Duration: 1500 * time.Microsecond}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 1.5, raw["duration_ms"])
	assert.Equal(t, "r1", raw["id"])
	assert.NotContains(t, raw, "Duration")

	var back AuditRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rec.Duration, back.Duration)
	assert.Equal(t, "echo", back.Command)
}

func TestReservedNames(t *testing.T) {
	assert.Equal(t, []string{"help", "clear", "mode"}, ReservedNames())
	assert.True(t, IsReserved("clear"))
	assert.False(t, IsReserved("echo"))
}

func TestEngine_Registry(t *testing.T) {
	e := newTestEngine(t, Options{DefaultMode: "security-assessment"})

	assert.True(t, e.Registry(context.Background(), "").Has("scan"))
	assert.False(t, e.Registry(context.Background(), "general-purpose").Has("scan"))
}
