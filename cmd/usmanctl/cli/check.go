package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that every voucher balances and the balance sheet ties",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.load(cmd.Context()); err != nil {
				return err
			}
			imbalances, err := e.reports.Integrity(cmd.Context())
			if err != nil {
				return err
			}
			bs, err := e.reports.BalanceSheet(cmd.Context(), e.opts.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if e.jsonOut {
				if err := writeJSON(out, map[string]any{
					"balanced":             len(imbalances) == 0 && bs.Balanced,
					"imbalances":           imbalances,
					"balanceSheetBalanced": bs.Balanced,
					"difference":           bs.Difference,
				}); err != nil {
					return err
				}
			} else {
				for _, im := range imbalances {
					_, _ = fmt.Fprintf(out, "voucher %s: debit %s credit %s\n", im.VoucherID, amount(im.Debit), amount(im.Credit))
				}
				if !bs.Balanced {
					_, _ = fmt.Fprintf(out, "balance sheet off by %s\n", amount(bs.Difference))
				}
				if len(imbalances) == 0 && bs.Balanced {
					_, _ = fmt.Fprintln(out, "ok: books balance")
				}
			}
			if len(imbalances) > 0 || !bs.Balanced {
				return ErrImbalanced
			}
			return nil
		},
	}
}
