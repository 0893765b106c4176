package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/token"
)

// row is a single line of output.
type row struct {
	label string
	addr  ledger.Address
	bump  string
}

// query describes which addresses to derive.
type query struct {
	owner   ledger.Address
	domain  string
	tickers []string
	offset  int
	limit   int
}

type lister func(query) ([]row, error)

var listers = map[string]lister{
	"escrow": listEscrows,
	"token":  listTokenAccounts,
}

//nolint
func main() {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	ownerFl := fl.String("owner", "", "Address of the depositor or account owner.")
	domainFl := fl.String("domain", "escrow", "Escrow domain tag, as configured in genesis.")
	offsetFl := fl.Int("offset", 0, "Ignore first N nonces.")
	limitFl := fl.Int("limit", 20, "Print N escrow addresses.")
	headerFl := fl.Bool("header", true, "Display header")
	fl.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage:
	%s <extension> -owner <address> [options] [tickers]

Print derived addresses for selected extension.

Available extensions are: %s

Escrow record and custody addresses are derived from the depositor and
a nonce, token accounts from the owner and a ticker. Knowing them upfront
is required to build a deposit message or a genesis file.

`, os.Args[0], listerNames())
		fl.PrintDefaults()
	}
	fl.Parse(os.Args[1:])

	if fl.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Extension name is required.")
		fmt.Fprintf(os.Stderr, "Available extensions: %s\n", listerNames())
		os.Exit(2)
	}
	owner, err := ledger.ParseAddress(*ownerFl)
	if err != nil || owner == nil {
		fmt.Fprintln(os.Stderr, "Valid owner address is required.")
		os.Exit(2)
	}
	if *offsetFl < 0 {
		fmt.Fprintln(os.Stderr, "Offset must not be negative.")
		os.Exit(2)
	}
	if *limitFl < 1 {
		fmt.Fprintln(os.Stderr, "Limit must be greater than zero.")
		os.Exit(2)
	}
	list, ok := listers[fl.Arg(0)]
	if !ok {
		fmt.Fprintln(os.Stderr, "Unknown name.")
		os.Exit(2)
	}
	rows, err := list(query{
		owner:   owner,
		domain:  *domainFl,
		tickers: fl.Args()[1:],
		offset:  *offsetFl,
		limit:   *limitFl,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot derive addresses: %s\n", err)
		os.Exit(1)
	}
	printRows(os.Stdout, rows, *headerFl)
}

func listerNames() string {
	var names []string
	for n := range listers {
		names = append(names, n)
	}
	return strings.Join(names, ", ")
}

func listEscrows(q query) ([]row, error) {
	conf := escrow.Configuration{DomainTag: q.domain}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	rows := make([]row, 0, 2*q.limit)
	for n := uint64(q.offset); n < uint64(q.offset+q.limit); n++ {
		rec, rb, err := escrow.RecordCondition(conf, q.owner, n)
		if err != nil {
			return nil, err
		}
		cus, cb, err := escrow.CustodyCondition(conf, q.owner, n)
		if err != nil {
			return nil, err
		}
		rows = append(rows,
			row{label: fmt.Sprintf("%d record", n), addr: rec.Address(), bump: fmt.Sprint(rb)},
			row{label: fmt.Sprintf("%d custody", n), addr: cus.Address(), bump: fmt.Sprint(cb)},
		)
	}
	return rows, nil
}

func listTokenAccounts(q query) ([]row, error) {
	rows := make([]row, 0, len(q.tickers))
	for _, t := range q.tickers {
		if !token.IsTicker(t) {
			return nil, errors.Wrapf(errors.ErrInput, "ticker %q", t)
		}
		addr, err := token.AssociatedAddress(q.owner, t)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row{label: t, addr: addr, bump: "-"})
	}
	return rows, nil
}

func printRows(out io.Writer, rows []row, header bool) {
	w := tabwriter.NewWriter(out, 2, 0, 2, ' ', 0)
	defer w.Flush()

	if header {
		fmt.Fprintln(w, "name\taddress\tbump")
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.label, r.addr, r.bump)
	}
}
