package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"folioval"

	"github.com/google/subcommands"
)

// appendTransaction stores a new transaction through the engine.
func appendTransaction(tx folioval.Transaction) subcommands.ExitStatus {
	engine, cfg, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := engine.AppendTransaction(tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error appending transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Successfully appended transaction %s to %s\n", tx.ID, cfg.LedgerFile)
	return subcommands.ExitSuccess
}

// --- Buy Command ---

type buyCmd struct {
	date       string
	instrument string
	quantity   float64
	price      float64
	commission float64
	category   string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "purchase units to open or add to a position" }
func (*buyCmd) Usage() string {
	return `fv buy -i <instrument> -q <quantity> -p <price> [-d <date>] [-fee <commission>] [-cat <category>]

  Purchases units of an instrument. The commission becomes part of the cost basis.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", folioval.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.instrument, "i", "", "Instrument symbol")
	f.Float64Var(&c.quantity, "q", 0, "Number of units")
	f.Float64Var(&c.price, "p", 0, "Price per unit")
	f.Float64Var(&c.commission, "fee", 0, "Commission charged by the broker")
	f.StringVar(&c.category, "cat", "", "Classification label (e.g. stock, etf, crypto)")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.instrument == "" || c.quantity <= 0 || c.price <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := folioval.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	tx := folioval.NewBuy(newID(), day, c.instrument, folioval.Q(c.quantity), folioval.M(c.price, ""), folioval.M(c.commission, ""))
	tx.Category = c.category
	return appendTransaction(tx)
}

// --- Sell Command ---

type sellCmd struct {
	date       string
	instrument string
	quantity   float64
	price      float64
	commission float64
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell units to trim or close a position" }
func (*sellCmd) Usage() string {
	return `fv sell -i <instrument> -q <quantity> -p <price> [-d <date>] [-fee <commission>]

  Sells units of an instrument. The net proceeds are credited to the cash account.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", folioval.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.instrument, "i", "", "Instrument symbol")
	f.Float64Var(&c.quantity, "q", 0, "Number of units")
	f.Float64Var(&c.price, "p", 0, "Price per unit")
	f.Float64Var(&c.commission, "fee", 0, "Commission charged by the broker")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.instrument == "" || c.quantity <= 0 || c.price <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := folioval.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	tx := folioval.NewSell(newID(), day, c.instrument, folioval.Q(c.quantity), folioval.M(c.price, ""), folioval.M(c.commission, ""))
	return appendTransaction(tx)
}

// --- Deposit Command ---

type depositCmd struct {
	date   string
	amount float64
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "record a cash deposit into the portfolio" }
func (*depositCmd) Usage() string {
	return `fv deposit -a <amount> [-d <date>]

  Records an external cash contribution. Deposits count as net cash flow.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", folioval.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.Float64Var(&c.amount, "a", 0, "Amount of cash deposited")
}

func (c *depositCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := folioval.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return appendTransaction(folioval.NewDeposit(newID(), day, folioval.M(c.amount, "")))
}

// --- Withdraw Command ---

type withdrawCmd struct {
	date   string
	amount float64
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "record a cash withdrawal from the portfolio" }
func (*withdrawCmd) Usage() string {
	return `fv withdraw -a <amount> [-d <date>]

  Records an external cash withdrawal. Withdrawals count as negative net cash flow.
`
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", folioval.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.Float64Var(&c.amount, "a", 0, "Amount of cash withdrawn")
}

func (c *withdrawCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := folioval.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return appendTransaction(folioval.NewWithdraw(newID(), day, folioval.M(c.amount, "")))
}

// --- Remove Command ---

type removeCmd struct{}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove a transaction by id" }
func (*removeCmd) Usage() string {
	return `fv remove <id>

  Removes a transaction from the ledger. Prefer appending an offsetting
  transaction; removal exists for correcting ingestion mistakes.
`
}

func (*removeCmd) SetFlags(*flag.FlagSet) {}

func (c *removeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	engine, _, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := engine.RemoveTransaction(f.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error removing transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Removed transaction %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
