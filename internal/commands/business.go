package commands

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/msto63/termcore/foundation/term/command"
)

func businessCommands() []command.Descriptor {
	return []command.Descriptor{
		newDef("revenue", "Show quarterly revenue", "revenue [--quarter=Q1|Q2|Q3|Q4]",
			[]string{"revenue", "revenue --quarter=Q3"}, runRevenue),
		newDef("margin", "Compute gross margin from revenue and cost", "margin <revenue> <cost>",
			[]string{"margin 120000 84000"}, runMargin),
		newDef("forecast", "Project a value under compound growth", "forecast <value> <growth-percent> [--periods=<n>]",
			[]string{"forecast 1000 5", "forecast 250000 12.5 --periods=8"}, runForecast),
		newDef("kpi", "Show the key performance indicator dashboard", "kpi",
			[]string{"kpi"}, runKPI),
	}
}

var quarterlyRevenue = map[string]float64{
	"Q1": 1_240_000,
	"Q2": 1_315_500,
	"Q3": 1_402_250,
	"Q4": 1_588_900,
}

var quarters = []string{"Q1", "Q2", "Q3", "Q4"}

func runRevenue(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if q, ok := opts["quarter"]; ok {
		q = strings.ToUpper(q)
		v, known := quarterlyRevenue[q]
		if !known {
			return command.Error("Unknown quarter %q", q), nil
		}
		return command.Success("%s revenue: %s", q, money(v)).WithData(map[string]float64{q: v}), nil
	}

	var (
		sb    strings.Builder
		total float64
	)
	for _, q := range quarters {
		total += quarterlyRevenue[q]
		fmt.Fprintf(&sb, "  %s  %14s\n", q, money(quarterlyRevenue[q]))
	}
	fmt.Fprintf(&sb, "  FY  %14s", money(total))
	return command.Success("Revenue by quarter:\n%s", sb.String()).WithData(quarterlyRevenue), nil
}

func runMargin(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	if res, ok := requireArgs(args, 2, "margin <revenue> <cost>"); !ok {
		return res, nil
	}
	revenue, errR := strconv.ParseFloat(args[0], 64)
	cost, errC := strconv.ParseFloat(args[1], 64)
	if errR != nil || errC != nil {
		return command.Error("Revenue and cost must be numbers"), nil
	}
	if revenue <= 0 {
		return command.Error("Revenue must be positive"), nil
	}

	pct := (revenue - cost) / revenue * 100
	res := command.Success("Gross margin: %.2f%% (profit %s)", pct, money(revenue-cost))
	if pct < 0 {
		res = command.Warning("Negative gross margin: %.2f%% (loss %s)", pct, money(cost-revenue))
	}
	return res.WithData(math.Round(pct*100) / 100), nil
}

func runForecast(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	const usage = "forecast <value> <growth-percent> [--periods=<n>]"
	if res, ok := requireArgs(args, 2, usage); !ok {
		return res, nil
	}
	value, errV := strconv.ParseFloat(args[0], 64)
	growth, errG := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
	if errV != nil || errG != nil {
		return command.Error("Value and growth must be numbers. Usage: %s", usage), nil
	}

	periods := 4
	if raw, ok := opts["periods"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 40 {
			return command.Error("--periods must be between 1 and 40"), nil
		}
		periods = n
	}

	projection := make([]float64, periods)
	var sb strings.Builder
	for i := range projection {
		projection[i] = value * math.Pow(1+growth/100, float64(i+1))
		fmt.Fprintf(&sb, "\n  P%-3d %14s", i+1, money(projection[i]))
	}
	return command.Success("Forecast at %.2f%% per period:%s", growth, sb.String()).WithData(projection), nil
}

func runKPI(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
	out := "KPI dashboard\n" +
		"  customer acquisition cost   $412\n" +
		"  customer lifetime value     $5,870\n" +
		"  monthly churn               2.1%\n" +
		"  net promoter score          47"
	return command.Info("%s", out), nil
}

// money formats v as dollars with thousands separators
func money(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	whole := strconv.FormatInt(cents/100, 10)

	var sb strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	s := fmt.Sprintf("$%s.%02d", sb.String(), cents%100)
	if neg {
		return "-" + s
	}
	return s
}
