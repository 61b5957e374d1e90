package commands

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"github.com/msto63/termcore/foundation/term/command"
)

func securityCommands() []command.Descriptor {
	return []command.Descriptor{
		newDef("scan", "Run a port scan against an authorized target", "scan <target> [--type=quick|comprehensive]",
			[]string{"scan 192.168.1.1", "scan 192.168.1.1 --type=comprehensive"}, runScan),
		newDef("brute", "Simulate a credential audit against a service", "brute <service> <target> [--timeout=<seconds>]",
			[]string{"brute ssh 192.168.1.1 --timeout=60"}, runBrute),
		newDef("hash", "Compute a message digest", "hash <text...> [--algo=sha256|sha1|sha512|md5]",
			[]string{"hash hello", "hash --algo=md5 hello world"}, runHash),
		newDef("vulns", "List known findings", "vulns [--severity=low|medium|high|critical]",
			[]string{"vulns", "vulns --severity=high"}, runVulns),
		newDef("whoami", "Show the operator and engagement scope", "whoami",
			[]string{"whoami"}, runSecurityWhoami),
	}
}

type openPort struct {
	Port    int    `json:"port"`
	Service string `json:"service"`
	Version string `json:"version"`
}

var quickPorts = []openPort{
	{22, "ssh", "OpenSSH 9.6"},
	{80, "http", "nginx 1.25"},
	{443, "https", "nginx 1.25"},
}

var comprehensivePorts = append(append([]openPort(nil), quickPorts...),
	openPort{3306, "mysql", "MySQL 8.0"},
	openPort{6379, "redis", "Redis 7.2"},
	openPort{8080, "http-alt", "Jetty 12"},
)

func runScan(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if res, ok := requireArgs(args, 1, "scan <target> [--type=quick|comprehensive]"); !ok {
		return res, nil
	}

	ports := quickPorts
	switch kind := opts["type"]; kind {
	case "", "quick":
	case "comprehensive":
		ports = comprehensivePorts
	default:
		return command.Error("Unknown scan type %q. Use quick or comprehensive.", kind), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Scan report for %s\n  PORT     SERVICE   VERSION\n", args[0])
	for _, p := range ports {
		fmt.Fprintf(&sb, "  %-8s %-9s %s\n", strconv.Itoa(p.Port)+"/tcp", p.Service, p.Version)
	}
	fmt.Fprintf(&sb, "%d open ports", len(ports))

	return command.Success("%s", sb.String()).WithData(ports), nil
}

func runBrute(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if res, ok := requireArgs(args, 2, "brute <service> <target> [--timeout=<seconds>]"); !ok {
		return res, nil
	}

	timeout := 30
	if raw, ok := opts["timeout"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return command.Error("--timeout must be a positive number of seconds"), nil
		}
		timeout = n
	}

	return command.Warning("Credential audit of %s on %s simulated (timeout %ds): 0 of 1000 candidates accepted. "+
		"Run only against systems you are authorized to test.", args[0], args[1], timeout), nil
}

var digests = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
}

func runHash(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if res, ok := requireArgs(args, 1, "hash <text...> [--algo=sha256|sha1|sha512|md5]"); !ok {
		return res, nil
	}

	algo := strings.ToLower(opts["algo"])
	if algo == "" {
		algo = "sha256"
	}
	newHash, ok := digests[algo]
	if !ok {
		return command.Error("Unsupported algorithm %q", algo), nil
	}

	h := newHash()
	h.Write([]byte(strings.Join(args, " ")))
	sum := hex.EncodeToString(h.Sum(nil))

	return command.Success("%s  %s", algo, sum).WithData(map[string]string{"algo": algo, "digest": sum}), nil
}

type finding struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
}

var findings = []finding{
	{"F-001", "critical", "Default credentials on admin console"},
	{"F-002", "high", "TLS 1.0 enabled on port 443"},
	{"F-003", "medium", "Missing Content-Security-Policy header"},
	{"F-004", "low", "Server banner discloses version"},
}

var severityRank = map[string]int{"low": 1, "medium": 2, "high": 3, "critical": 4}

func runVulns(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	threshold := 0
	if s, ok := opts["severity"]; ok {
		rank, known := severityRank[strings.ToLower(s)]
		if !known {
			return command.Error("Unknown severity %q", s), nil
		}
		threshold = rank
	}

	var (
		sb       strings.Builder
		selected []finding
	)
	for _, f := range findings {
		if severityRank[f.Severity] >= threshold {
			selected = append(selected, f)
			fmt.Fprintf(&sb, "  %s  %-8s  %s\n", f.ID, f.Severity, f.Title)
		}
	}
	if len(selected) == 0 {
		return command.Info("No findings at that severity"), nil
	}

	return command.Warning("%d findings:\n%s", len(selected), strings.TrimRight(sb.String(), "\n")).WithData(selected), nil
}

func runSecurityWhoami(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	name := operatorName()
	return command.Success("%s (security-assessment, scope: lab network 192.168.1.0/24)", name).
		WithData(map[string]string{"user": name, "scope": "192.168.1.0/24"}), nil
}
