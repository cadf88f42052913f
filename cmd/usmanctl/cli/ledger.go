package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/usman-global/usman-books/internal/accounting/reports"
	"github.com/usman-global/usman-books/internal/reporting"
)

func newLedgerCommand(e *env) *cobra.Command {
	var rf rangeFlags
	var q reporting.LedgerQuery
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Running ledger of an account or entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if q.AccountID == "" && q.EntityID == "" {
				return errors.New("ledger: --account or --entity is required")
			}
			rng, err := rf.resolve(e.opts.Now())
			if err != nil {
				return err
			}
			q.Range = rng
			if _, err := e.load(cmd.Context()); err != nil {
				return err
			}
			ledger, err := e.reports.Ledger(cmd.Context(), q)
			if err != nil {
				return err
			}
			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), ledger)
			}
			return renderLedger(cmd, ledger)
		},
	}
	rf.bind(cmd)
	cmd.Flags().StringVar(&q.AccountID, "account", "", "Account id")
	cmd.Flags().StringVar(&q.EntityID, "entity", "", "Entity id")
	cmd.Flags().StringVar(&q.Currency, "currency", "", "Foreign currency view, e.g. EUR")
	return cmd
}

func renderLedger(cmd *cobra.Command, ledger reports.Ledger) error {
	subject := ledger.Filter.AccountID
	if ledger.Filter.EntityID != "" {
		subject += "/" + ledger.Filter.EntityID
	}
	title := "Ledger " + subject + " " + ledger.From.Format("2006-01-02") + " to " + ledger.To.Format("2006-01-02")
	fcy := ledger.Currency != "" && ledger.Currency != "USD"
	headers := []string{"Date", "Voucher", "Description", "Debit", "Credit", "Balance"}
	if fcy {
		headers = append(headers, ledger.Currency+" Balance")
	}
	g := newGrid(title, headers...).numbers(3, 4, 5, 6)
	opening := []string{"", "", "Opening balance", "", "", reports.FormatBalance(ledger.Opening)}
	if fcy {
		opening = append(opening, reports.FormatBalance(ledger.OpeningFCY))
	}
	g.add(opening...)
	for _, row := range ledger.Rows {
		cells := []string{row.Date.Format("2006-01-02"), row.VoucherID, row.Description, blank(row.Debit), blank(row.Credit), reports.FormatBalance(row.Balance)}
		if fcy {
			fcyBalance := ""
			if row.FCY != nil {
				fcyBalance = reports.FormatBalance(row.FCY.Balance)
				if row.FCY.Estimated {
					fcyBalance += " *"
				}
			}
			cells = append(cells, fcyBalance)
		}
		g.add(cells...)
	}
	g.footer = []string{"", "", "Closing balance", amount(ledger.TotalDebit), amount(ledger.TotalCredit), reports.FormatBalance(ledger.Closing)}
	if fcy {
		g.footer = append(g.footer, reports.FormatBalance(ledger.ClosingFCY))
	}
	return g.render(cmd.OutOrStdout())
}
