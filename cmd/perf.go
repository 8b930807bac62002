package cmd

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/google/subcommands"
)

type perfCmd struct {
	initial float64
}

func (*perfCmd) Name() string     { return "perf" }
func (*perfCmd) Synopsis() string { return "display the portfolio performance summary" }
func (*perfCmd) Usage() string {
	return `fv perf [-initial <amount>]

  Computes CAGR, time-weighted return, maximum drawdown, recovery time,
  Sharpe and Sortino ratios, and annualized volatility over the realized
  monthly series.
`
}

func (c *perfCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.initial, "initial", 0, "Initial investment overriding the first month's equity as CAGR baseline")
}

func (c *perfCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, _, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	s, err := engine.PerformanceSummary(ctx, c.initial)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing summary: %v\n", err)
		return subcommands.ExitFailure
	}
	if s.Months == 0 {
		fmt.Println("No realized months yet.")
		return subcommands.ExitSuccess
	}

	cagr := s.CAGR.Value.SignedString()
	if !s.CAGR.Reliable {
		cagr += " (less than a year of history)"
	}
	sortino := fmt.Sprintf("%.2f", s.Sortino)
	if s.NoDownside || math.IsInf(s.Sortino, 1) {
		sortino = "no downside months"
	}

	rows := [][]string{
		{"Months", fmt.Sprintf("%d", s.Months)},
		{"Start equity", s.StartEquity.String()},
		{"End equity", s.EndEquity.String()},
		{"CAGR", cagr},
		{"TWR (cumulative)", s.TWR.SignedString()},
		{"TWR (annualized)", s.TWRAnnual.SignedString()},
		{"Max drawdown", s.MaxDrawdown.Max.String()},
		{"Recovery time", fmt.Sprintf("%d months", s.RecoveryTime)},
		{"Sharpe ratio", fmt.Sprintf("%.2f", s.Sharpe)},
		{"Sortino ratio", sortino},
		{"Volatility (annualized)", s.Volatility.String()},
	}
	table([]string{"METRIC", "VALUE"}, rows)

	return subcommands.ExitSuccess
}
