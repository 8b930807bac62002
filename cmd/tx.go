package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"folioval"

	"github.com/google/subcommands"
)

type txCmd struct {
	head int
	tail int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list all transactions in the ledger" }
func (*txCmd) Usage() string {
	return `fv tx [-head <n>] [-tail <n>]

  Lists transactions from the ledger in chronological order.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}

	engine, _, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	transactions, warnings, err := engine.Transactions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	if c.head > 0 && len(transactions) > c.head {
		transactions = transactions[:c.head]
	}
	if c.tail > 0 && len(transactions) > c.tail {
		transactions = transactions[len(transactions)-c.tail:]
	}

	rows := make([][]string, 0, len(transactions))
	for _, tx := range transactions {
		kind := string(tx.Kind)
		if tx.IsCash {
			if tx.Kind == folioval.KindBuy {
				kind = "deposit"
			} else {
				kind = "withdraw"
			}
		}
		rows = append(rows, []string{
			tx.ID, tx.Date.String(), kind, tx.Instrument,
			tx.Quantity.String(), tx.UnitPrice.String(), tx.Commission.String(), tx.Category,
		})
	}
	table([]string{"ID", "DATE", "KIND", "INSTRUMENT", "QTY", "PRICE", "FEE", "CATEGORY"}, rows)

	return subcommands.ExitSuccess
}
