package commands

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/msto63/termcore/foundation/term/command"
)

func binaryCommands() []command.Descriptor {
	return []command.Descriptor{
		newDef("hexdump", "Show a canonical hex dump of text", "hexdump <text...> [--hex]",
			[]string{"hexdump hello", "hexdump --hex 7f454c46"}, runHexdump),
		newDef("entropy", "Compute Shannon entropy in bits per byte", "entropy <text...> [--hex]",
			[]string{"entropy aaaa", "entropy --hex 00ff00ff"}, runEntropy),
		newDef("strings", "Extract printable runs from hex encoded bytes", "strings <hex> [--min=<n>]",
			[]string{"strings 00414243440048656c6c6f00", "strings --min=3 00414243"}, runStrings),
		newDef("disasm", "Disassemble the function at an address", "disasm <address>",
			[]string{"disasm 0x401000"}, runDisasm),
	}
}

// inputBytes reads the positional input as text, or as hex when --hex is set
func inputBytes(args []string, opts map[string]string) ([]byte, error) {
	joined := strings.Join(args, " ")
	if !flag(opts, "hex") {
		return []byte(joined), nil
	}
	return hex.DecodeString(strings.ReplaceAll(joined, " ", ""))
}

func runHexdump(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if res, ok := requireArgs(args, 1, "hexdump <text...> [--hex]"); !ok {
		return res, nil
	}
	data, err := inputBytes(args, opts)
	if err != nil {
		return command.Error("Invalid hex input: %v", err), nil
	}
	return command.Success("%s", strings.TrimRight(hex.Dump(data), "\n")).WithData(len(data)), nil
}

// shannon returns the entropy of data in bits per byte
func shannon(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}

	n := float64(len(data))
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

func runEntropy(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if res, ok := requireArgs(args, 1, "entropy <text...> [--hex]"); !ok {
		return res, nil
	}
	data, err := inputBytes(args, opts)
	if err != nil {
		return command.Error("Invalid hex input: %v", err), nil
	}

	h := shannon(data)
	verdict := "low, likely plain data"
	switch {
	case h > 7.5:
		verdict = "very high, likely compressed or encrypted"
	case h > 5:
		verdict = "moderate"
	}
	return command.Success("%.4f bits/byte over %d bytes (%s)", h, len(data), verdict).WithData(h), nil
}

func runStrings(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if res, ok := requireArgs(args, 1, "strings <hex> [--min=<n>]"); !ok {
		return res, nil
	}
	minLen := 4
	if raw, ok := opts["min"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return command.Error("--min must be a positive integer"), nil
		}
		minLen = n
	}

	data, err := hex.DecodeString(strings.Join(args, ""))
	if err != nil {
		return command.Error("Invalid hex input: %v", err), nil
	}

	found := printableRuns(data, minLen)
	if len(found) == 0 {
		return command.Info("No printable runs of %d or more bytes", minLen), nil
	}
	return command.Success("%s", strings.Join(found, "\n")).WithData(found), nil
}

func printableRuns(data []byte, minLen int) []string {
	var (
		runs []string
		cur  []byte
	)
	flush := func() {
		if len(cur) >= minLen {
			runs = append(runs, string(cur))
		}
		cur = cur[:0]
	}
	for _, b := range data {
		if b >= 0x20 && b < 0x7f {
			cur = append(cur, b)
			continue
		}
		flush()
	}
	flush()
	return runs
}

func runDisasm(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if res, ok := requireArgs(args, 1, "disasm <address>"); !ok {
		return res, nil
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(args[0]), "0x"), 16, 64)
	if err != nil {
		return command.Error("Invalid address %q", args[0]), nil
	}

	listing := []string{
		"push   rbp",
		"mov    rbp, rsp",
		"sub    rsp, 0x20",
		"mov    dword [rbp-0x14], edi",
		"call   0x401130",
		"leave",
		"ret",
	}
	sizes := []uint64{1, 3, 4, 3, 5, 1, 1}

	var sb strings.Builder
	fmt.Fprintf(&sb, "sub_%x:\n", addr)
	for i, ins := range listing {
		fmt.Fprintf(&sb, "  %#08x  %s\n", addr, ins)
		addr += sizes[i]
	}
	return command.Success("%s", strings.TrimRight(sb.String(), "\n")), nil
}
