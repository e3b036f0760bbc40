package components

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatUSD renders an exact amount with thousands separators, rounded half
// away from zero to at most two decimals, e.g. "$1,234.5".
func FormatUSD(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + "$" + humanize.CommafWithDigits(rounded.InexactFloat64(), 2)
}

// FormatUSDFloat is FormatUSD for values already converted for charting.
func FormatUSDFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return FormatUSD(decimal.NewFromFloat(v))
}

type usdUnit struct {
	scale  decimal.Decimal
	suffix string
	digits int32
}

var usdUnits = []usdUnit{
	{decimal.New(1, 9), "B", 2},
	{decimal.New(1, 6), "M", 2},
	{decimal.New(1, 3), "K", 1},
}

// FormatUSDCompact abbreviates large amounts, e.g. "$1.23M". The unit is
// picked after rounding so 999,999 reads "$1M" rather than "$1000K".
func FormatUSDCompact(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}

	d := decimal.NewFromFloat(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	for _, u := range usdUnits {
		scaled := d.Div(u.scale).Round(u.digits)
		if scaled.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return sign + "$" + humanize.FtoaWithDigits(scaled.InexactFloat64(), int(u.digits)) + u.suffix
		}
	}
	return sign + "$" + humanize.FtoaWithDigits(d.Round(2).InexactFloat64(), 2)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatChange renders a signed percentage, e.g. "+12.5%".
func FormatChange(percent float64) string {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", percent)
}

// PercentChange returns how much current differs from reference in percent.
// A zero reference yields NaN.
func PercentChange(current, reference float64) float64 {
	if reference == 0 {
		return math.NaN()
	}
	return (current - reference) / reference * 100
}

// SharePercent returns part as a percentage of total, 0 when total is not
// positive.
func SharePercent(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	return part.Div(total).InexactFloat64() * 100
}
