package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/google/subcommands"
)

type fetchCmd struct{}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch current prices for every instrument in the ledger" }
func (*fetchCmd) Usage() string {
	return `fv fetch

  Resolves the current price of every instrument ever traded and warms the
  price cache. Unresolved instruments are listed with their failure reason.
`
}

func (*fetchCmd) SetFlags(*flag.FlagSet) {}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, _, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	resolutions, err := engine.ResolvePrices(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving prices: %v\n", err)
		return subcommands.ExitFailure
	}

	instruments := make([]string, 0, len(resolutions))
	for id := range resolutions {
		instruments = append(instruments, id)
	}
	sort.Strings(instruments)

	rows := make([][]string, 0, len(instruments))
	failures := 0
	for _, id := range instruments {
		res := resolutions[id]
		if !res.Resolved() {
			failures++
			rows = append(rows, []string{id, "-", "-", fmt.Sprintf("unresolved: %v", res.Err)})
			continue
		}
		s := res.Snapshot
		rows = append(rows, []string{id, fmt.Sprintf("%.4f", s.Price), s.Source, s.AsOf.Format("2006-01-02 15:04")})
	}
	table([]string{"INSTRUMENT", "PRICE", "SOURCE", "AS OF"}, rows)

	if failures > 0 {
		fmt.Fprintf(os.Stderr, "\n%d of %d instruments unresolved.\n", failures, len(instruments))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
