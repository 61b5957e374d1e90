package commands

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/msto63/termcore/foundation/term/command"
)

func generalCommands() []command.Descriptor {
	return []command.Descriptor{
		newDef("calc", "Evaluate a binary arithmetic expression", "calc <a> <+|-|*|/|^|%> <b>",
			[]string{"calc 2 + 3", "calc 2 ^ 10"}, runCalc),
		newDef("uuid", "Generate random UUIDs", "uuid [--count=<n>]",
			[]string{"uuid", "uuid --count=3"}, runUUID),
		newDef("weather", "Show the weather report", "weather [location]",
			[]string{"weather", "weather Berlin"}, runWeather),
	}
}

func runCalc(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	const usage = "calc <a> <+|-|*|/|^|%> <b>"
	if res, ok := requireArgs(args, 3, usage); !ok {
		return res, nil
	}

	a, errA := strconv.ParseFloat(args[0], 64)
	b, errB := strconv.ParseFloat(args[2], 64)
	if errA != nil || errB != nil {
		return command.Error("Operands must be numbers. Usage: %s", usage), nil
	}

	var v float64
	switch args[1] {
	case "+":
		v = a + b
	case "-":
		v = a - b
	case "*", "x":
		v = a * b
	case "/":
		if b == 0 {
			return command.Error("Division by zero"), nil
		}
		v = a / b
	case "%":
		if b == 0 {
			return command.Error("Division by zero"), nil
		}
		v = math.Mod(a, b)
	case "^":
		v = math.Pow(a, b)
	default:
		return command.Error("Unknown operator %q. Usage: %s", args[1], usage), nil
	}

	return command.Success("%s", strconv.FormatFloat(v, 'g', -1, 64)).WithData(v), nil
}

func runUUID(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	count := 1
	if raw, ok := opts["count"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			return command.Error("--count must be between 1 and 100"), nil
		}
		count = n
	}

	ids := make([]string, count)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	return command.Success("%s", strings.Join(ids, "\n")).WithData(ids), nil
}

func runWeather(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	location := "local station"
	if len(args) > 0 {
		location = strings.Join(args, " ")
	}
	out := fmt.Sprintf("Weather for %s\n  conditions:  partly cloudy\n  temperature: 18°C\n  wind:        12 km/h NW\n  humidity:    64%%", location)
	return command.Success("%s", out), nil
}
