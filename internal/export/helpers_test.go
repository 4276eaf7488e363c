package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/teklifbul/mukayese-backend/internal/comparison"
	"github.com/teklifbul/mukayese-backend/pkg/enums"
)

var renderTime = time.Date(2025, 3, 12, 14, 5, 0, 0, time.UTC)

func rowWithVendors(code string, n int) comparison.ComparisonRow {
	row := comparison.ComparisonRow{
		ProductCode: code,
		ProductName: "Ürün " + code,
		Quantity:    decimal.NewFromInt(2),
		Unit:        "adet",
	}
	for i := 0; i < n; i++ {
		price := decimal.NewFromInt(int64(10 * (i + 1)))
		row.Vendors = append(row.Vendors, comparison.RankedVendorOffer{
			VendorOffer: comparison.VendorOffer{
				Vendor:    fmt.Sprintf("V%02d", i+1),
				Quantity:  decimal.NewFromInt(2),
				Currency:  enums.CurrencyTRY,
				UnitPrice: price,
			},
			Total:                    price.Mul(decimal.NewFromInt(2)),
			TotalInReportingCurrency: price.Mul(decimal.NewFromInt(2)),
			Rank:                     i + 1,
			IsBest:                   i == 0,
		})
	}
	if n > 0 {
		row.BestVendor = row.Vendors[0].Vendor
		row.BestTotal = row.Vendors[0].TotalInReportingCurrency
	}
	return row
}

func resultWith(rows ...comparison.ComparisonRow) comparison.ComparisonResult {
	result := comparison.ComparisonResult{
		RequestID:         "TLP-42",
		ReportingCurrency: enums.CurrencyTRY,
		Rows:              rows,
		TotalProducts:     len(rows),
		AppliedRates: []comparison.AppliedRate{
			{From: enums.CurrencyUSD, To: enums.CurrencyTRY, Rate: decimal.RequireFromString("30.5")},
		},
		GeneratedAt: renderTime,
	}
	for _, row := range rows {
		if row.BestVendor != "" && (result.BestOverallVendor == "" || row.BestTotal.LessThan(result.BestOverallTotal)) {
			result.BestOverallVendor = row.BestVendor
			result.BestOverallTotal = row.BestTotal
		}
	}
	return result
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	data, err := BuildDefaultTemplate()
	require.NoError(t, err)
	r, err := NewRenderer(StaticTemplate(data), WithRenderClock(func() time.Time { return renderTime }))
	require.NoError(t, err)
	return r
}

func openWorkbook(t *testing.T, body []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func rawValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func formula(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellFormula(sheet, cell)
	require.NoError(t, err)
	return strings.TrimPrefix(v, "=")
}

func commentText(c excelize.Comment) string {
	var b strings.Builder
	b.WriteString(c.Text)
	for _, run := range c.Paragraph {
		b.WriteString(run.Text)
	}
	return b.String()
}
