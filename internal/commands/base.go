package commands

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/msto63/termcore/foundation/term/command"
	"github.com/msto63/termcore/pkg/core/version"
)

// now and startedAt are swapped in tests
var (
	now       = time.Now
	startedAt = time.Now()
)

func baseCommands() []command.Descriptor {
	return []command.Descriptor{
		newDef("echo", "Print the given text", "echo [text...] [--upper]",
			[]string{"echo hello world", `echo "quoted text" --upper`}, runEcho),
		newDef("date", "Show the current date and time", "date [--utc] [--format=rfc3339|unix|date]",
			[]string{"date", "date --utc --format=rfc3339"}, runDate),
		newDef("whoami", "Show the current operator", "whoami",
			[]string{"whoami"}, runWhoami),
		newDef("version", "Show interpreter version information", "version",
			[]string{"version"}, runVersion),
		newDef("status", "Show interpreter runtime status", "status",
			[]string{"status"}, runStatus),
	}
}

func runEcho(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	text := strings.Join(args, " ")
	if flag(opts, "upper") {
		text = strings.ToUpper(text)
	}
	return command.Success("%s", text), nil
}

func runDate(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	t := now()
	if flag(opts, "utc") {
		t = t.UTC()
	}

	switch format := opts["format"]; format {
	case "", "default":
		return command.Success("%s", t.Format(time.RFC1123)), nil
	case "rfc3339":
		return command.Success("%s", t.Format(time.RFC3339)), nil
	case "unix":
		return command.Success("%d", t.Unix()), nil
	case "date":
		return command.Success("%s", t.Format(time.DateOnly)), nil
	default:
		return command.Error("Unknown format %q. Use rfc3339, unix or date.", format), nil
	}
}

func runWhoami(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	name := operatorName()
	return command.Success("%s", name).WithData(map[string]string{"user": name}), nil
}

func operatorName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "operator"
}

func runVersion(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	info := version.Get()
	return command.Success("%s", info.String()).WithData(info), nil
}

func runStatus(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	uptime := now().Sub(startedAt).Truncate(time.Second)
	out := fmt.Sprintf("System operational\n  uptime:     %s\n  goroutines: %d\n  heap:       %.1f MiB",
		uptime, runtime.NumGoroutine(), float64(mem.HeapAlloc)/(1<<20))

	return command.Success("%s", out).WithData(map[string]interface{}{
		"uptime_seconds": int64(uptime.Seconds()),
		"goroutines":     runtime.NumGoroutine(),
		"heap_bytes":     mem.HeapAlloc,
	}), nil
}

// flag reports whether a boolean option is set
func flag(opts map[string]string, name string) bool {
	switch strings.ToLower(opts[name]) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// requireArgs returns an error result when fewer than n args were given
func requireArgs(args []string, n int, usage string) (command.Result, bool) {
	if len(args) < n {
		return command.Error("Missing argument. Usage: %s", usage), false
	}
	return command.Result{}, true
}
