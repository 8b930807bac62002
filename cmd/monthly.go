package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"folioval"

	"github.com/google/subcommands"
)

type monthlyCmd struct {
	year     int
	category string
	project  int
	jsonOut  bool
}

func (*monthlyCmd) Name() string     { return "monthly" }
func (*monthlyCmd) Synopsis() string { return "display the monthly valuation series" }
func (*monthlyCmd) Usage() string {
	return `fv monthly [-y <year>] [-cat <category>] [-project <months>] [-json]

  Computes the gap-free monthly valuation series from the first transaction
  to the current month, with market value, cash balance, net cash flow and
  period return per month. Filters narrow the output after computation.
`
}

func (c *monthlyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "Keep only the months of this year")
	f.StringVar(&c.category, "cat", "", "Keep only the market value of this category")
	f.IntVar(&c.project, "project", 0, "Append this many forward-projected months")
	f.BoolVar(&c.jsonOut, "json", false, "Emit the series as JSON")
}

func (c *monthlyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, cfg, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.category != "" {
		known, err := engine.Categories()
		if err == nil && !slices.Contains(known, c.category) {
			fmt.Fprintf(os.Stderr, "Warning: no transaction has category %q.\n", c.category)
		}
	}
	series, err := engine.MonthlySeries(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing series: %v\n", err)
		return subcommands.ExitFailure
	}

	months := c.project
	if months == 0 {
		months = cfg.Projection.Months
	}
	if months > 0 {
		series = folioval.ProjectForward(series, months, cfg.Projection.AnnualGrowth)
	}
	series = folioval.FilterSeries(series, folioval.SeriesFilter{Year: c.year, Category: c.category})

	if c.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(series); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding series: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	rows := make([][]string, 0, len(series))
	for _, p := range series {
		note := ""
		if len(p.Unpriced) > 0 {
			note = "partial: " + strings.Join(p.Unpriced, ",")
		}
		if p.Projected {
			note = "projected"
		}
		rows = append(rows, []string{
			p.Month.String(), p.MarketValue.String(), p.CashBalance.String(),
			p.TotalEquity.String(), p.NetCashFlow.String(), p.PeriodReturn.SignedString(), note,
		})
	}
	table([]string{"MONTH", "MARKET", "CASH", "EQUITY", "FLOW", "RETURN", ""}, rows)

	return subcommands.ExitSuccess
}
