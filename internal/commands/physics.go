package commands

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/msto63/termcore/foundation/term/command"
)

func physicsCommands() []command.Descriptor {
	return []command.Descriptor{
		newDef("const", "Look up a physical constant (CODATA 2018)", "const [name]",
			[]string{"const", "const c", "const planck"}, runConst),
		newDef("convert", "Convert a value between units", "convert <value> <from> <to>",
			[]string{"convert 1 mi km", "convert 100 c f", "convert 1 ev j"}, runConvert),
		newDef("pendulum", "Compute the small-angle period of a pendulum", "pendulum <length-m> [--g=<m/s^2>]",
			[]string{"pendulum 1", "pendulum 2.5 --g=1.62"}, runPendulum),
		newDef("status", "Show laboratory instrument status", "status",
			[]string{"status"}, runLabStatus),
	}
}

type constant struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
}

var constants = map[string]constant{
	"c":     {"c", "speed of light in vacuum", 299792458, "m/s"},
	"h":     {"h", "Planck constant", 6.62607015e-34, "J s"},
	"g":     {"G", "Newtonian constant of gravitation", 6.67430e-11, "m^3 kg^-1 s^-2"},
	"e":     {"e", "elementary charge", 1.602176634e-19, "C"},
	"k":     {"k", "Boltzmann constant", 1.380649e-23, "J/K"},
	"na":    {"N_A", "Avogadro constant", 6.02214076e23, "mol^-1"},
	"me":    {"m_e", "electron mass", 9.1093837015e-31, "kg"},
	"mp":    {"m_p", "proton mass", 1.67262192369e-27, "kg"},
	"alpha": {"α", "fine-structure constant", 7.2973525693e-3, ""},
}

var constantAliases = map[string]string{
	"light":     "c",
	"planck":    "h",
	"gravity":   "g",
	"charge":    "e",
	"boltzmann": "k",
	"avogadro":  "na",
	"electron":  "me",
	"proton":    "mp",
}

func runConst(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if len(args) == 0 {
		keys := make([]string, 0, len(constants))
		for k := range constants {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sb strings.Builder
		sb.WriteString("Physical constants:")
		for _, k := range keys {
			c := constants[k]
			fmt.Fprintf(&sb, "\n  %-6s %-36s %.10g %s", k, c.Name, c.Value, c.Unit)
		}
		return command.Info("%s", sb.String()), nil
	}

	key := strings.ToLower(args[0])
	if alias, ok := constantAliases[key]; ok {
		key = alias
	}
	c, ok := constants[key]
	if !ok {
		return command.Error("Unknown constant %q. Run 'const' for the list.", args[0]), nil
	}
	return command.Success("%s (%s) = %.10g %s", c.Symbol, c.Name, c.Value, c.Unit).WithData(c), nil
}

// unit converts to and from the SI base of its dimension
type unit struct {
	dimension string
	toSI      func(float64) float64
	fromSI    func(float64) float64
}

func linear(dimension string, factor float64) unit {
	return unit{
		dimension: dimension,
		toSI:      func(v float64) float64 { return v * factor },
		fromSI:    func(v float64) float64 { return v / factor },
	}
}

var units = map[string]unit{
	"m":  linear("length", 1),
	"km": linear("length", 1000),
	"cm": linear("length", 0.01),
	"mm": linear("length", 0.001),
	"mi": linear("length", 1609.344),
	"ft": linear("length", 0.3048),
	"in": linear("length", 0.0254),
	"au": linear("length", 1.495978707e11),
	"ly": linear("length", 9.4607304725808e15),

	"kg": linear("mass", 1),
	"g":  linear("mass", 0.001),
	"lb": linear("mass", 0.45359237),

	"j":    linear("energy", 1),
	"kj":   linear("energy", 1000),
	"ev":   linear("energy", 1.602176634e-19),
	"cal":  linear("energy", 4.184),
	"kwh":  linear("energy", 3.6e6),
	"s":    linear("time", 1),
	"min":  linear("time", 60),
	"h":    linear("time", 3600),
	"day":  linear("time", 86400),
	"year": linear("time", 31557600),

	"k": linear("temperature", 1),
	"c": {
		dimension: "temperature",
		toSI:      func(v float64) float64 { return v + 273.15 },
		fromSI:    func(v float64) float64 { return v - 273.15 },
	},
	"f": {
		dimension: "temperature",
		toSI:      func(v float64) float64 { return (v-32)*5/9 + 273.15 },
		fromSI:    func(v float64) float64 { return (v-273.15)*9/5 + 32 },
	},
}

func runConvert(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if res, ok := requireArgs(args, 3, "convert <value> <from> <to>"); !ok {
		return res, nil
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return command.Error("%q is not a number", args[0]), nil
	}

	from, okFrom := units[strings.ToLower(args[1])]
	to, okTo := units[strings.ToLower(args[2])]
	switch {
	case !okFrom:
		return command.Error("Unknown unit %q", args[1]), nil
	case !okTo:
		return command.Error("Unknown unit %q", args[2]), nil
	case from.dimension != to.dimension:
		return command.Error("Cannot convert %s to %s", from.dimension, to.dimension), nil
	}

	out := to.fromSI(from.toSI(v))
	return command.Success("%g %s = %.6g %s", v, args[1], out, args[2]).WithData(out), nil
}

func runPendulum(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if res, ok := requireArgs(args, 1, "pendulum <length-m> [--g=<m/s^2>]"); !ok {
		return res, nil
	}
	length, err := strconv.ParseFloat(args[0], 64)
	if err != nil || length <= 0 {
		return command.Error("Length must be a positive number of meters"), nil
	}
	g := 9.80665
	if raw, ok := opts["g"]; ok {
		g, err = strconv.ParseFloat(raw, 64)
		if err != nil || g <= 0 {
			return command.Error("--g must be a positive acceleration"), nil
		}
	}

	period := 2 * math.Pi * math.Sqrt(length/g)
	return command.Success("T = %.4f s (L = %g m, g = %g m/s^2)", period, length, g).WithData(period), nil
}

func runLabStatus(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	out := "Laboratory status\n" +
		"  spectrometer      online   calibrated 2h ago\n" +
		"  cryostat          online   4.2 K\n" +
		"  laser bench       standby\n" +
		"  data acquisition  online   1.2 GB/s"
	return command.Success("%s", out), nil
}
