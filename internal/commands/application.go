package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/msto63/termcore/foundation/term/command"
)

func applicationCommands() []command.Descriptor {
	return []command.Descriptor{
		newDef("semver", "Validate or bump a semantic version", "semver <version> [--bump=major|minor|patch]",
			[]string{"semver 1.4.2", "semver v1.4.2 --bump=minor"}, runSemver),
		newDef("build", "Build the project for a target platform", "build [--target=<os>/<arch>] [--release]",
			[]string{"build", "build --target=linux/arm64 --release"}, runBuild),
		newDef("test", "Run the project test suite", "test [package] [--coverage]",
			[]string{"test", "test ./internal/... --coverage"}, runTest),
		newDef("deps", "List outdated dependencies", "deps",
			[]string{"deps"}, runDeps),
	}
}

type semver struct {
	major, minor, patch int
	pre                 string
}

func (v semver) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
	if v.pre != "" {
		s += "-" + v.pre
	}
	return s
}

func parseSemver(s string) (semver, error) {
	s = strings.TrimPrefix(s, "v")
	core, pre, _ := strings.Cut(s, "-")
	core, _, _ = strings.Cut(core, "+")

	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return semver{}, fmt.Errorf("expected MAJOR.MINOR.PATCH")
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || (len(p) > 1 && p[0] == '0') {
			return semver{}, fmt.Errorf("invalid numeric component %q", p)
		}
		nums[i] = n
	}
	return semver{major: nums[0], minor: nums[1], patch: nums[2], pre: pre}, nil
}

func (v semver) bump(part string) (semver, error) {
	switch part {
	case "major":
		return semver{major: v.major + 1}, nil
	case "minor":
		return semver{major: v.major, minor: v.minor + 1}, nil
	case "patch":
		if v.pre != "" {
			// 1.2.3-rc.1 releases as 1.2.3
			return semver{major: v.major, minor: v.minor, patch: v.patch}, nil
		}
		return semver{major: v.major, minor: v.minor, patch: v.patch + 1}, nil
	}
	return semver{}, fmt.Errorf("unknown part %q", part)
}

func runSemver(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if res, ok := requireArgs(args, 1, "semver <version> [--bump=major|minor|patch]"); !ok {
		return res, nil
	}
	v, err := parseSemver(args[0])
	if err != nil {
		return command.Error("Invalid version %q: %v", args[0], err), nil
	}

	part, ok := opts["bump"]
	if !ok {
		return command.Success("%s is a valid semantic version", v).WithData(v.String()), nil
	}
	next, err := v.bump(part)
	if err != nil {
		return command.Error("%v. Use major, minor or patch.", err), nil
	}
	return command.Success("%s -> %s", v, next).WithData(next.String()), nil
}

func runBuild(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	target := opts["target"]
	if target == "" {
		target = "linux/amd64"
	}
	goos, goarch, ok := strings.Cut(target, "/")
	if !ok || goos == "" || goarch == "" {
		return command.Error("--target must look like <os>/<arch>"), nil
	}
	profile := "debug"
	if flag(opts, "release") {
		profile = "release"
	}
	return command.Success("Built %s binary for %s/%s in 4.2s (12.8 MiB)", profile, goos, goarch), nil
}

func runTest(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	pkg := "./..."
	if len(args) > 0 {
		pkg = args[0]
	}
	out := fmt.Sprintf("Testing %s\n  142 passed, 0 failed, 3 skipped in 6.1s", pkg)
	if flag(opts, "coverage") {
		out += "\n  coverage: 81.4% of statements"
	}
	return command.Success("%s", out), nil
}

func runDeps(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	out := "3 outdated dependencies\n" +
		"  github.com/spf13/cobra       v1.8.1  -> v1.9.1\n" +
		"  golang.org/x/sync            v0.18.0 -> v0.19.0\n" +
		"  google.golang.org/grpc       v1.77.0 -> v1.78.0"
	return command.Warning("%s", out), nil
}
