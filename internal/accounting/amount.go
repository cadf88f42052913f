package accounting

import "github.com/shopspring/decimal"

// Tolerance is the largest difference treated as equal for money totals.
var Tolerance = decimal.NewFromFloat(0.01)

// Round2 rounds an amount to cents.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Sum adds amounts without accumulating binary floating point drift.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Float64()
	return f
}

// NearlyEqual reports whether a and b differ by less than one cent.
func NearlyEqual(a, b float64) bool {
	diff := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return diff.LessThan(Tolerance)
}
