package comparison

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Savings is worst minus best over the row's visible vendors.
func Savings(row ComparisonRow) decimal.Decimal {
	best, worst, ok := bounds(row)
	if !ok {
		return decimal.Zero
	}
	return worst.Sub(best)
}

// SavingsPercent is Savings relative to the worst total, rounded to two
// places. A zero worst total yields zero.
func SavingsPercent(row ComparisonRow) decimal.Decimal {
	_, worst, ok := bounds(row)
	if !ok || worst.IsZero() {
		return decimal.Zero
	}
	return Savings(row).Div(worst).Mul(hundred).Round(2)
}

// Summarize rolls the rows of a (usually policy-filtered) result into a
// savings summary. Rows without vendors are skipped.
func Summarize(result ComparisonResult) SavingsSummary {
	summary := SavingsSummary{
		ReportingCurrency:     result.ReportingCurrency,
		TotalSavings:          decimal.Zero,
		AverageSavingsPercent: decimal.Zero,
		HighestSavings:        decimal.Zero,
		Products:              []ProductSavings{},
	}
	percentSum := decimal.Zero
	for _, row := range result.Rows {
		best, worst, ok := bounds(row)
		if !ok {
			continue
		}
		savings := Savings(row)
		percent := SavingsPercent(row)
		summary.Products = append(summary.Products, ProductSavings{
			ProductCode:    row.ProductCode,
			ProductName:    row.ProductName,
			BestVendor:     row.BestVendor,
			BestTotal:      best,
			WorstTotal:     worst,
			Savings:        savings,
			SavingsPercent: percent,
			VendorCount:    len(row.Vendors),
		})
		summary.TotalSavings = summary.TotalSavings.Add(savings)
		percentSum = percentSum.Add(percent)
		if savings.GreaterThan(summary.HighestSavings) {
			summary.HighestSavings = savings
			summary.HighestSavingsProduct = row.ProductCode
		}
	}
	if n := len(summary.Products); n > 0 {
		summary.AverageSavingsPercent = percentSum.Div(decimal.NewFromInt(int64(n))).Round(2)
	}
	return summary
}

func bounds(row ComparisonRow) (best, worst decimal.Decimal, ok bool) {
	if len(row.Vendors) == 0 {
		return decimal.Zero, decimal.Zero, false
	}
	best = row.Vendors[0].TotalInReportingCurrency
	worst = best
	for _, v := range row.Vendors[1:] {
		if v.TotalInReportingCurrency.LessThan(best) {
			best = v.TotalInReportingCurrency
		}
		if v.TotalInReportingCurrency.GreaterThan(worst) {
			worst = v.TotalInReportingCurrency
		}
	}
	return best, worst, true
}
