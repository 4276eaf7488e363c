package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/teklifbul/mukayese-backend/internal/comparison"
	"github.com/teklifbul/mukayese-backend/pkg/enums"
)

const (
	csvDelimiter = ';'
	utf8BOM      = "\ufeff"
)

var csvHeader = []string{
	"Sıra",
	"Ürün Kodu",
	"Ürün Adı",
	"Miktar",
	"Birim",
	"Firma",
	"Firma Sırası",
	"En Uygun",
	"Birim Fiyat",
	"Para Birimi",
	"Teklif Miktarı",
	"Nakliye",
	"Toplam",
	"Toplam (Raporlama)",
	"Raporlama Para Birimi",
	"KDV %",
	"Marka",
	"Teslim Süresi (gün)",
	"Teslim Tarihi",
	"Ödeme Şekli",
	"Not",
}

// RenderCSV writes one line per (product, vendor) with computed literals only.
// A product without visible vendors still gets a line with empty vendor fields.
func (r *Renderer) RenderCSV(result comparison.ComparisonResult) (Document, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	w.Comma = csvDelimiter
	if err := w.Write(csvHeader); err != nil {
		return Document{}, renderFailed(err)
	}

	reporting := result.ReportingCurrency.String()
	for i, row := range result.Rows {
		fixed := []string{
			strconv.Itoa(i + 1),
			row.ProductCode,
			row.ProductName,
			row.Quantity.String(),
			row.Unit,
		}
		if len(row.Vendors) == 0 {
			record := append(append([]string{}, fixed...), make([]string, len(csvHeader)-len(fixed))...)
			if err := w.Write(record); err != nil {
				return Document{}, renderFailed(err)
			}
			continue
		}
		for _, v := range row.Vendors {
			record := append(append([]string{}, fixed...), vendorFields(v, reporting)...)
			if err := w.Write(record); err != nil {
				return Document{}, renderFailed(err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Document{}, renderFailed(err)
	}

	return Document{
		Filename:    Filename(enums.ExportModeCSV, r.now()),
		ContentType: enums.ExportModeCSV.ContentType() + "; charset=utf-8",
		Body:        buf.Bytes(),
		Sheets:      0,
	}, nil
}

func vendorFields(v comparison.RankedVendorOffer, reporting string) []string {
	best := "Hayır"
	if v.IsBest {
		best = "Evet"
	}
	vat, lead, delivery := "", "", ""
	if v.VATRate != nil {
		vat = v.VATRate.String()
	}
	if v.LeadTimeDays != nil {
		lead = strconv.Itoa(*v.LeadTimeDays)
	}
	if v.DeliveryDate != nil {
		delivery = v.DeliveryDate.Format("2006-01-02")
	}
	return []string{
		v.Vendor,
		strconv.Itoa(v.Rank),
		best,
		v.UnitPrice.String(),
		v.Currency.String(),
		v.Quantity.String(),
		v.ShippingCost.String(),
		v.Total.StringFixed(2),
		v.TotalInReportingCurrency.StringFixed(2),
		reporting,
		vat,
		v.Brand,
		lead,
		delivery,
		v.PaymentTerms,
		v.Notes,
	}
}
