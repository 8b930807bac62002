package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"folioval"

	"github.com/google/subcommands"
)

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	date string
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display open positions for a specific date" }
func (*holdingCmd) Usage() string {
	return `fv holding [-d <date>]

  Displays the open positions and the cash balance on a given date, with the
  average cost basis of each position.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", folioval.Today().String(), "Date for the holdings report (YYYY-MM-DD)")
}

func (c *holdingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := folioval.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	engine, _, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	holdings, err := engine.Holdings(on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	cash, err := engine.CashBalance(on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing cash balance: %v\n", err)
		return subcommands.ExitFailure
	}

	rows := make([][]string, 0, len(holdings))
	for _, h := range holdings {
		rows = append(rows, []string{
			h.Instrument, h.Category, h.Quantity.String(),
			h.AvgPrice().String(), h.TotalCost.String(),
		})
	}
	table([]string{"INSTRUMENT", "CATEGORY", "QTY", "AVG PRICE", "COST BASIS"}, rows)
	fmt.Printf("\nCash balance on %s: %s\n", on, cash)

	return subcommands.ExitSuccess
}
