package commands

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwlog "github.com/msto63/termcore/foundation/core/log"
	"github.com/msto63/termcore/foundation/term"
	"github.com/msto63/termcore/foundation/term/command"
	"github.com/msto63/termcore/foundation/term/registry"
)

func newEngine(t *testing.T) *term.Engine {
	t.Helper()
	cat, err := NewCatalog()
	require.NoError(t, err)

	e, err := term.New(cat, term.Options{Logger: mdwlog.NewNop()})
	require.NoError(t, err)
	return e
}

func run(t *testing.T, e *term.Engine, line, mode string) command.Result {
	t.Helper()
	return e.Execute(context.Background(), line, mode)
}

func TestModes(t *testing.T) {
	assert.Equal(t, []string{
		"general-purpose", "security-assessment", "binary-analysis", "business-operations",
		"web-engineering", "application-engineering", "physics-research",
	}, Modes())
	assert.Len(t, Describe(), 7)
	assert.True(t, IsMode(" Physics-Research"))
	assert.False(t, IsMode("cooking"))
}

func TestCatalog_TablesSatisfyContract(t *testing.T) {
	cat, err := NewCatalog()
	require.NoError(t, err)

	for _, d := range cat.Base() {
		assert.NoError(t, command.Validate(d), d.Name())
	}
	for _, mode := range Modes() {
		table, ok := cat.ForMode(mode)
		require.True(t, ok, mode)
		assert.GreaterOrEqual(t, len(table), 3, mode)
		assert.LessOrEqual(t, len(table), 5, mode)
		for _, d := range table {
			assert.NoError(t, command.Validate(d), "%s/%s", mode, d.Name())
		}
	}
}

func TestCatalog_RejectsInvalidTables(t *testing.T) {
	bad := newDef("broken", "", "broken", []string{"broken"}, runEcho)
	_, err := newCatalog(baseCommands(), map[string][]command.Descriptor{"x": {bad}})
	assert.Error(t, err)

	dup := newDef("echo", "again", "echo", []string{"echo"}, runEcho)
	_, err = newCatalog(append(baseCommands(), dup), nil)
	assert.Error(t, err)

	reserved := newDef("help", "shadow", "help", []string{"help"}, runEcho)
	_, err = newCatalog(baseCommands(), map[string][]command.Descriptor{"x": {reserved}})
	assert.ErrorContains(t, err, "built-in")
}

func TestModeOverridesBaseCommand(t *testing.T) {
	e := newEngine(t)

	base := run(t, e, "whoami", ModeGeneralPurpose)
	sec := run(t, e, "whoami", ModeSecurityAssessment)
	assert.NotContains(t, base.Output, "scope")
	assert.Contains(t, sec.Output, "scope")

	lab := run(t, e, "status", ModePhysicsResearch)
	assert.Contains(t, lab.Output, "Laboratory status")
	assert.Contains(t, run(t, e, "status", ModeWebEngineering).Output, "System operational")
}

func TestExecute_EmptyLineEveryMode(t *testing.T) {
	e := newEngine(t)

	for _, mode := range append(Modes(), "unknown") {
		assert.Equal(t, command.Result{Status: command.StatusSuccess}, run(t, e, "", mode), mode)
	}
}

func TestExecute_HelpEnumeratesEveryCommand(t *testing.T) {
	e := newEngine(t)

	for _, mode := range Modes() {
		res := run(t, e, "help", mode)
		require.Equal(t, command.StatusInfo, res.Status)
		for _, name := range e.Registry(context.Background(), mode).Names() {
			assert.Contains(t, res.Output, name, "mode %s", mode)
		}
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	e := newEngine(t)
	res := run(t, e, "nonexistent-command", ModeGeneralPurpose)

	assert.Equal(t, command.StatusError, res.Status)
	assert.Contains(t, res.Output, "help")
}

func TestExecute_UnknownModeUsesBase(t *testing.T) {
	e := newEngine(t)
	reg := e.Registry(context.Background(), "cooking")

	assert.Equal(t, []string{"date", "echo", "status", "version", "whoami"}, reg.Names())
}

func TestHandlers(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name   string
		mode   string
		line   string
		status command.Status
		want   string
	}{
		{"echo", ModeGeneralPurpose, `echo "hello world" --upper`, command.StatusSuccess, "HELLO WORLD"},
		{"date bad format", ModeGeneralPurpose, "date --format=julian", command.StatusError, "Unknown format"},
		{"calc power", ModeGeneralPurpose, "calc 2 ^ 10", command.StatusSuccess, "1024"},
		{"calc div zero", ModeGeneralPurpose, "calc 1 / 0", command.StatusError, "Division by zero"},
		{"calc missing", ModeGeneralPurpose, "calc 1", command.StatusError, "Usage"},
		{"scan comprehensive", ModeSecurityAssessment, "scan 192.168.1.1 --type=comprehensive", command.StatusSuccess, "6 open ports"},
		{"scan missing target", ModeSecurityAssessment, "scan", command.StatusError, "Missing argument"},
		{"brute", ModeSecurityAssessment, "brute ssh 192.168.1.1 --timeout=60", command.StatusWarning, "timeout 60s"},
		{"brute bad timeout", ModeSecurityAssessment, "brute ssh host --timeout=soon", command.StatusError, "--timeout"},
		{"hash sha256", ModeSecurityAssessment, "hash hello", command.StatusSuccess, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		{"hash md5", ModeSecurityAssessment, "hash --algo=md5 hello", command.StatusSuccess, "5d41402abc4b2a76b9719d911017c592"},
		{"hash unsupported", ModeSecurityAssessment, "hash --algo=crc hello", command.StatusError, "Unsupported"},
		{"vulns high", ModeSecurityAssessment, "vulns --severity=high", command.StatusWarning, "2 findings"},
		{"hexdump", ModeBinaryAnalysis, "hexdump --hex 7f454c46", command.StatusSuccess, "7f 45 4c 46"},
		{"entropy zero", ModeBinaryAnalysis, "entropy aaaa", command.StatusSuccess, "0.0000 bits/byte"},
		{"entropy one", ModeBinaryAnalysis, "entropy ab", command.StatusSuccess, "1.0000 bits/byte"},
		{"strings", ModeBinaryAnalysis, "strings 00414243440048656c6c6f00", command.StatusSuccess, "ABCD\nHello"},
		{"disasm", ModeBinaryAnalysis, "disasm 0x401000", command.StatusSuccess, "sub_401000"},
		{"disasm bad", ModeBinaryAnalysis, "disasm zz", command.StatusError, "Invalid address"},
		{"revenue quarter", ModeBusinessOperations, "revenue --quarter=q3", command.StatusSuccess, "$1,402,250.00"},
		{"margin", ModeBusinessOperations, "margin 120000 84000", command.StatusSuccess, "30.00%"},
		{"margin negative", ModeBusinessOperations, "margin 100 150", command.StatusWarning, "-50.00%"},
		{"forecast", ModeBusinessOperations, "forecast 1000 10 --periods=2", command.StatusSuccess, "$1,210.00"},
		{"deploy staging", ModeWebEngineering, "deploy --target=vercel --env=staging", command.StatusSuccess, "staging on vercel"},
		{"deploy production", ModeWebEngineering, "deploy --env=production", command.StatusWarning, "Production deploy"},
		{"deploy bad env", ModeWebEngineering, "deploy --env=moon", command.StatusError, "Unknown environment"},
		{"httpstatus", ModeWebEngineering, "httpstatus 404", command.StatusSuccess, "404 Not Found (client error)"},
		{"httpstatus invalid", ModeWebEngineering, "httpstatus 42", command.StatusError, "not an HTTP status code"},
		{"headers", ModeWebEngineering, "headers https://example.org", command.StatusWarning, "Content-Security-Policy"},
		{"lighthouse bad url", ModeWebEngineering, "lighthouse example", command.StatusError, "not an http(s) URL"},
		{"semver bump", ModeApplicationEngineering, "semver v1.4.2 --bump=minor", command.StatusSuccess, "1.4.2 -> 1.5.0"},
		{"semver prerelease", ModeApplicationEngineering, "semver 2.0.0-rc.1 --bump=patch", command.StatusSuccess, "-> 2.0.0"},
		{"semver invalid", ModeApplicationEngineering, "semver 1.02.3", command.StatusError, "Invalid version"},
		{"build", ModeApplicationEngineering, "build --target=linux/arm64 --release", command.StatusSuccess, "release binary for linux/arm64"},
		{"test coverage", ModeApplicationEngineering, "test --coverage", command.StatusSuccess, "coverage"},
		{"const", ModePhysicsResearch, "const planck", command.StatusSuccess, "6.62607015e-34"},
		{"const unknown", ModePhysicsResearch, "const flux", command.StatusError, "Unknown constant"},
		{"convert temperature", ModePhysicsResearch, "convert 100 c f", command.StatusSuccess, "= 212 f"},
		{"convert length", ModePhysicsResearch, "convert 1 mi km", command.StatusSuccess, "= 1.60934 km"},
		{"convert mismatch", ModePhysicsResearch, "convert 1 kg m", command.StatusError, "Cannot convert mass to length"},
		{"pendulum", ModePhysicsResearch, "pendulum 1", command.StatusSuccess, "T = 2.0064 s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, e, tt.line, tt.mode)
			assert.Equal(t, tt.status, res.Status, res.Output)
			assert.Contains(t, res.Output, tt.want)
		})
	}
}

func TestDate_UsesClock(t *testing.T) {
	saved := now
	defer func() { now = saved }()
	now = func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) }

	res, err := runDate(context.Background(), nil, map[string]string{"format": "date"})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14", res.Output)

	res, _ = runDate(context.Background(), nil, map[string]string{"format": "unix", "utc": "true"})
	assert.Equal(t, "1791970200", res.Output)
}

func TestUUID_Count(t *testing.T) {
	res, err := runUUID(context.Background(), nil, map[string]string{"count": "3"})
	require.NoError(t, err)

	ids := strings.Split(res.Output, "\n")
	assert.Len(t, ids, 3)
	assert.Len(t, ids[0], 36)
}

func TestMoney(t *testing.T) {
	tests := map[float64]string{
		0:          "$0.00",
		999.5:      "$999.50",
		1000:       "$1,000.00",
		1234567.89: "$1,234,567.89",
		-42:        "-$42.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, money(in))
	}
}

func TestShannon(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	assert.InDelta(t, 8.0, shannon(all), 1e-9)
	assert.Zero(t, shannon(nil))
}

func TestCatalog_SetDisabled(t *testing.T) {
	cat, err := NewCatalog()
	require.NoError(t, err)

	changed := cat.SetDisabled(map[string][]string{
		"Security-Assessment": {"brute"},
		BaseKey:               {"date"},
		"empty":               nil,
	})
	assert.Equal(t, []string{"base", "security-assessment"}, changed)
	assert.Equal(t, []string{"brute"}, cat.Disabled(ModeSecurityAssessment))

	reg := registry.Build(ModeSecurityAssessment, cat)
	assert.False(t, reg.Has("brute"))
	assert.False(t, reg.Has("date"))
	assert.True(t, reg.Has("scan"))
	assert.Len(t, cat.Table(ModeSecurityAssessment), 5, "unfiltered table")

	assert.Empty(t, cat.SetDisabled(map[string][]string{
		ModeSecurityAssessment: {"brute"},
		BaseKey:                {"date"},
	}))
	assert.Equal(t, []string{"security-assessment"}, cat.SetDisabled(map[string][]string{BaseKey: {"date"}}))
}

func TestCatalog_InvalidationRebuildsRegistry(t *testing.T) {
	cat, err := NewCatalog()
	require.NoError(t, err)
	e, err := term.New(cat, term.Options{Logger: mdwlog.NewNop()})
	require.NoError(t, err)

	assert.Equal(t, command.StatusSuccess, run(t, e, "hash x", ModeSecurityAssessment).Status)

	for _, key := range cat.SetDisabled(map[string][]string{ModeSecurityAssessment: {"hash"}}) {
		e.Invalidate(key)
	}
	assert.Equal(t, command.StatusError, run(t, e, "hash x", ModeSecurityAssessment).Status)
}
