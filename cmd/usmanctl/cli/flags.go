package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/reporting"
)

type rangeFlags struct {
	from string
	to   string
}

func (f *rangeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "First day, YYYY-MM-DD (default: first of the current month)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day, YYYY-MM-DD (default: today)")
}

func (f *rangeFlags) resolve(now time.Time) (reporting.Range, error) {
	var rng reporting.Range
	var err error
	if f.to != "" {
		if rng.To, err = parseDay("--to", f.to); err != nil {
			return rng, err
		}
	} else {
		rng.To = accounting.Day(now)
	}
	if f.from != "" {
		if rng.From, err = parseDay("--from", f.from); err != nil {
			return rng, err
		}
	} else {
		rng.From = time.Date(rng.To.Year(), rng.To.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	if rng.From.After(rng.To) {
		return rng, fmt.Errorf("--from %s is after --to %s", f.from, rng.To.Format("2006-01-02"))
	}
	return rng, nil
}

func parseAsOf(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return accounting.Day(now), nil
	}
	return parseDay("--as-of", value)
}

func parseDay(flag, value string) (time.Time, error) {
	t, err := accounting.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date %q (expected YYYY-MM-DD)", flag, value)
	}
	return t, nil
}
