package cli

import (
	"github.com/spf13/cobra"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/accounting/reports"
	"github.com/usman-global/usman-books/internal/reporting"
)

func newReportCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print financial statements",
	}
	cmd.AddCommand(
		newTrialBalanceCommand(e),
		newProfitAndLossCommand(e),
		newBalanceSheetCommand(e),
		newSummaryCommand(e),
	)
	return cmd
}

func newTrialBalanceCommand(e *env) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:     "tb",
		Aliases: []string{"trial-balance"},
		Short:   "Trial balance grouped by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := rf.resolve(e.opts.Now())
			if err != nil {
				return err
			}
			if _, err := e.load(cmd.Context()); err != nil {
				return err
			}
			tb, err := e.reports.TrialBalance(cmd.Context(), rng)
			if err != nil {
				return err
			}
			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), tb)
			}
			g := newGrid("Trial balance "+rangeLabel(rng), "Code", "Account", "Opening", "Debit", "Credit", "Closing").numbers(2, 3, 4, 5)
			for _, group := range tb.Groups {
				for _, acc := range group.Accounts {
					g.add(acc.Code, acc.Name, amount(acc.Opening), blank(acc.Debit), blank(acc.Credit), amount(acc.Closing))
				}
			}
			g.footer = []string{"", "Total", amount(tb.TotalOpening), amount(tb.TotalDebit), amount(tb.TotalCredit), amount(tb.TotalClosing)}
			return g.render(cmd.OutOrStdout())
		},
	}
	rf.bind(cmd)
	return cmd
}

func newProfitAndLossCommand(e *env) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:     "pl",
		Aliases: []string{"profit-and-loss"},
		Short:   "Profit and loss for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := rf.resolve(e.opts.Now())
			if err != nil {
				return err
			}
			if _, err := e.load(cmd.Context()); err != nil {
				return err
			}
			pl, err := e.reports.ProfitAndLoss(cmd.Context(), rng)
			if err != nil {
				return err
			}
			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), pl)
			}
			g := newGrid("Profit and loss "+rangeLabel(rng), "Section", "Code", "Account", "Amount").numbers(3)
			for _, section := range []reports.ProfitAndLossSection{pl.Revenue, pl.Expense} {
				for _, acc := range section.Accounts {
					g.add(section.Label, acc.Code, acc.Name, amount(acc.Amount))
				}
				g.add(section.Label, "", "Total", amount(section.Total))
			}
			g.footer = []string{"", "", "Net income", amount(pl.NetIncome)}
			return g.render(cmd.OutOrStdout())
		},
	}
	rf.bind(cmd)
	return cmd
}

func newBalanceSheetCommand(e *env) *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:     "bs",
		Aliases: []string{"balance-sheet"},
		Short:   "Balance sheet as of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseAsOf(asOf, e.opts.Now())
			if err != nil {
				return err
			}
			if _, err := e.load(cmd.Context()); err != nil {
				return err
			}
			bs, err := e.reports.BalanceSheet(cmd.Context(), day)
			if err != nil {
				return err
			}
			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), bs)
			}
			g := newGrid("Balance sheet as of "+day.Format("2006-01-02"), "Section", "Code", "Account", "Balance").numbers(3)
			for _, section := range []reports.BalanceSheetSection{bs.Assets, bs.Liabilities, bs.Equity} {
				for _, acc := range section.Accounts {
					g.add(section.Label, acc.Code, acc.Name, amount(acc.Balance))
				}
				g.add(section.Label, "", "Total", amount(section.Total))
			}
			g.add("", "", "Liabilities and equity", amount(bs.TotalLiabilitiesAndEquity))
			status := "Balanced"
			if !bs.Balanced {
				status = "Difference"
			}
			g.footer = []string{"", "", status, amount(bs.Difference)}
			return g.render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "Statement day, YYYY-MM-DD (default: today)")
	return cmd
}

func newSummaryCommand(e *env) *cobra.Command {
	var rf rangeFlags
	var entityType, category string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Opening, movement and closing per entity or account",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := rf.resolve(e.opts.Now())
			if err != nil {
				return err
			}
			if _, err := e.load(cmd.Context()); err != nil {
				return err
			}
			rows, err := e.reports.Summary(cmd.Context(), reporting.SummaryQuery{
				EntityType: accounting.EntityType(entityType),
				Category:   accounting.Category(category),
				Range:      rng,
			})
			if err != nil {
				return err
			}
			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			g := newGrid("Summary "+rangeLabel(rng), "ID", "Name", "Opening", "Debit", "Credit", "Closing").numbers(2, 3, 4, 5)
			for _, row := range rows {
				g.add(row.ID, row.Name, reports.FormatBalance(row.Opening), blank(row.Debit), blank(row.Credit), reports.FormatBalance(row.Closing))
			}
			return g.render(cmd.OutOrStdout())
		},
	}
	rf.bind(cmd)
	cmd.Flags().StringVar(&entityType, "entity-type", "", "Entity type, e.g. customer or supplier")
	cmd.Flags().StringVar(&category, "category", "", "Account category to summarise")
	return cmd
}

func rangeLabel(rng reporting.Range) string {
	return rng.From.Format("2006-01-02") + " to " + rng.To.Format("2006-01-02")
}
