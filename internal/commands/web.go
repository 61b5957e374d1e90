package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/msto63/termcore/foundation/term/command"
)

func webCommands() []command.Descriptor {
	return []command.Descriptor{
		newDef("deploy", "Deploy the current project", "deploy [--target=<platform>] [--env=development|staging|production]",
			[]string{"deploy --target=vercel --env=staging", "deploy --env=production"}, runDeploy),
		newDef("httpstatus", "Explain an HTTP status code", "httpstatus <code>",
			[]string{"httpstatus 404", "httpstatus 503"}, runHTTPStatus),
		newDef("headers", "Audit the security headers of a URL", "headers <url>",
			[]string{"headers https://example.org"}, runHeaders),
		newDef("lighthouse", "Show a performance audit summary for a URL", "lighthouse <url>",
			[]string{"lighthouse https://example.org"}, runLighthouse),
	}
}

var environments = map[string]bool{"development": true, "staging": true, "production": true}

func runDeploy(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	target := opts["target"]
	if target == "" {
		target = "vercel"
	}
	env := opts["env"]
	if env == "" {
		env = "development"
	}
	if !environments[env] {
		return command.Error("Unknown environment %q. Use development, staging or production.", env), nil
	}

	host := fmt.Sprintf("https://app-%s.%s.example.app", env, target)
	data := map[string]string{"target": target, "env": env, "url": host}
	if env == "production" {
		return command.Warning("Deployed to %s on %s: %s\nProduction deploy, monitor error rates.", env, target, host).WithData(data), nil
	}
	return command.Success("Deployed to %s on %s: %s", env, target, host).WithData(data), nil
}

func runHTTPStatus(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if res, ok := requireArgs(args, 1, "httpstatus <code>"); !ok {
		return res, nil
	}
	code, err := strconv.Atoi(args[0])
	if err != nil || code < 100 || code > 599 {
		return command.Error("%q is not an HTTP status code", args[0]), nil
	}

	text := http.StatusText(code)
	if text == "" {
		return command.Warning("%d is unassigned (%s class)", code, statusClass(code)), nil
	}
	return command.Success("%d %s (%s)", code, text, statusClass(code)).
		WithData(map[string]interface{}{"code": code, "text": text}), nil
}

func statusClass(code int) string {
	switch code / 100 {
	case 1:
		return "informational"
	case 2:
		return "success"
	case 3:
		return "redirection"
	case 4:
		return "client error"
	default:
		return "server error"
	}
}

func parseURLArg(args []string) (*url.URL, command.Result, bool) {
	if res, ok := requireArgs(args, 1, "<url>"); !ok {
		return nil, res, false
	}
	u, err := url.Parse(args[0])
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, command.Error("%q is not an http(s) URL", args[0]), false
	}
	return u, command.Result{}, true
}

func runHeaders(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	u, res, ok := parseURLArg(args)
	if !ok {
		return res, nil
	}

	checks := []struct {
		header  string
		present bool
	}{
		{"Strict-Transport-Security", u.Scheme == "https"},
		{"Content-Security-Policy", false},
		{"X-Content-Type-Options", true},
		{"X-Frame-Options", true},
		{"Referrer-Policy", false},
	}

	var (
		sb      strings.Builder
		missing []string
	)
	fmt.Fprintf(&sb, "Security headers for %s", u.Host)
	for _, c := range checks {
		mark := "ok"
		if !c.present {
			mark = "MISSING"
			missing = append(missing, c.header)
		}
		fmt.Fprintf(&sb, "\n  %-27s %s", c.header, mark)
	}

	if len(missing) > 0 {
		return command.Warning("%s", sb.String()).WithData(missing), nil
	}
	return command.Success("%s", sb.String()), nil
}

func runLighthouse(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	u, res, ok := parseURLArg(args)
	if !ok {
		return res, nil
	}
	scores := map[string]int{"performance": 91, "accessibility": 98, "best-practices": 100, "seo": 92}
	out := fmt.Sprintf("Audit for %s\n  performance     %d\n  accessibility   %d\n  best-practices  %d\n  seo             %d",
		u.String(), scores["performance"], scores["accessibility"], scores["best-practices"], scores["seo"])
	return command.Success("%s", out).WithData(scores), nil
}
