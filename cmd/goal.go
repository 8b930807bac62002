package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"folioval"

	"github.com/google/subcommands"
)

type goalCmd struct {
	target       float64
	contribution float64
	growth       float64
}

func (*goalCmd) Name() string     { return "goal" }
func (*goalCmd) Synopsis() string { return "estimate when a target equity will be reached" }
func (*goalCmd) Usage() string {
	return `fv goal [-t <target>] [-c <monthly_contribution>] [-g <annual_growth>]

  Simulates month-by-month compounding from the current equity until the
  target is reached. Flags override the configured goal.
`
}

func (c *goalCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.target, "t", 0, "Target equity, overrides the configuration")
	f.Float64Var(&c.contribution, "c", 0, "Monthly contribution, overrides the configuration")
	f.Float64Var(&c.growth, "g", 0, "Assumed annual growth as a ratio (0.05 for 5%), overrides the configuration")
}

func (c *goalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, cfg, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	goal := cfg.GoalInput()
	if c.target > 0 {
		goal.Target = c.target
	}
	if c.contribution > 0 {
		goal.MonthlyContribution = c.contribution
	}
	if c.growth != 0 {
		goal.AnnualGrowth = c.growth
	}
	if goal.Target <= 0 {
		fmt.Fprintln(os.Stderr, "Error: no goal target configured, use -t or set goal.target in the configuration.")
		return subcommands.ExitUsageError
	}

	series, err := engine.MonthlySeries(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing series: %v\n", err)
		return subcommands.ExitFailure
	}
	var current float64
	if len(series) > 0 {
		current = series[len(series)-1].TotalEquity.AsFloat()
	}

	p := folioval.ProjectGoal(current, goal.Target, goal.MonthlyContribution, goal.AnnualGrowth)
	switch {
	case p.Achieved:
		fmt.Printf("Target %.2f already achieved (current equity %.2f).\n", goal.Target, current)
	case p.Reached:
		fmt.Printf("Target %.2f reached in %d months (%.1f years) from equity %.2f.\n",
			goal.Target, p.Months, float64(p.Months)/12, current)
	default:
		fmt.Printf("Target %.2f not reachable within 100 years under the given assumptions.\n", goal.Target)
	}

	return subcommands.ExitSuccess
}
