package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/teklifbul/mukayese-backend/internal/comparison"
	"github.com/teklifbul/mukayese-backend/pkg/enums"
	pkgerrors "github.com/teklifbul/mukayese-backend/pkg/errors"
)

const commentAuthor = "Mukayese"

// Document is a rendered export ready to be streamed as an attachment.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
	Sheets      int
}

// Filename builds mukayese_<timestamp>.<ext> for the mode.
func Filename(mode enums.ExportMode, at time.Time) string {
	return fmt.Sprintf("mukayese_%s.%s", at.Format("2006-01-02_1504"), mode.FileExtension())
}

// Renderer turns comparison results into spreadsheet or CSV documents.
type Renderer struct {
	template TemplateSource
	layout   Layout
	now      func() time.Time
	printer  *message.Printer
}

type RendererOption func(*Renderer)

func WithLayout(layout Layout) RendererOption {
	return func(r *Renderer) { r.layout = layout }
}

func WithRenderClock(now func() time.Time) RendererOption {
	return func(r *Renderer) { r.now = now }
}

func NewRenderer(template TemplateSource, opts ...RendererOption) (*Renderer, error) {
	if template == nil {
		return nil, fmt.Errorf("template source required")
	}
	r := &Renderer{
		template: template,
		layout:   DefaultLayout(),
		now:      time.Now,
		printer:  message.NewPrinter(language.Turkish),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.layout.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Render dispatches on mode.
func (r *Renderer) Render(ctx context.Context, mode enums.ExportMode, result comparison.ComparisonResult, cfg comparison.MembershipConfig) (Document, error) {
	switch mode {
	case enums.ExportModeTemplate:
		return r.RenderTemplate(ctx, result, cfg)
	case enums.ExportModeCSV:
		return r.RenderCSV(result)
	default:
		return Document{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported export mode %q", mode))
	}
}

// RenderTemplate fills the workbook template. Vendors beyond the per-sheet
// capacity spill onto copies of the first sheet; every sheet carries all
// products. The whole document is produced or nothing is.
func (r *Renderer) RenderTemplate(ctx context.Context, result comparison.ComparisonResult, cfg comparison.MembershipConfig) (Document, error) {
	data, err := r.template.Load(ctx)
	if err != nil {
		return Document{}, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Document{}, templateUnavailable("workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Document{}, templateUnavailable("workbook", fmt.Errorf("no sheets"))
	}
	base := sheets[0]

	perSheet := cfg.MaxVendorsPerSheet
	if perSheet < 1 || perSheet > len(r.layout.Slots) {
		perSheet = len(r.layout.Slots)
	}
	windows := Windows(MaxVendors(result.Rows), perSheet)

	layout := r.layout
	if extra := len(result.Rows) - layout.Capacity(); extra > 0 {
		if err := growDataRegion(f, base, layout, extra); err != nil {
			return Document{}, renderFailed(err)
		}
		layout = layout.Grow(extra)
	}

	names, err := prepareSheets(f, base, windows)
	if err != nil {
		return Document{}, renderFailed(err)
	}

	w := sheetWriter{f: f, layout: layout, printer: r.printer, result: result}
	for i, window := range windows {
		if err := w.write(names[i], window); err != nil {
			return Document{}, renderFailed(err)
		}
	}

	if idx, err := f.GetSheetIndex(names[0]); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return Document{}, renderFailed(err)
	}
	return Document{
		Filename:    Filename(enums.ExportModeTemplate, r.now()),
		ContentType: enums.ExportModeTemplate.ContentType(),
		Body:        buf.Bytes(),
		Sheets:      len(windows),
	}, nil
}

// growDataRegion inserts rows above the totals row and gives them the style
// of the last template data row.
func growDataRegion(f *excelize.File, sheet string, layout Layout, extra int) error {
	if err := f.InsertRows(sheet, layout.TotalsRow, extra); err != nil {
		return fmt.Errorf("insert rows: %w", err)
	}
	first, last := layout.DataEndRow+1, layout.DataEndRow+extra
	for _, col := range layout.Columns() {
		style, err := f.GetCellStyle(sheet, cellName(col, layout.DataEndRow))
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cellName(col, first), cellName(col, last), style); err != nil {
			return err
		}
	}
	return nil
}

// prepareSheets copies the untouched base sheet once per extra window, then
// renames the base when the workbook has more than one sheet.
func prepareSheets(f *excelize.File, base string, windows []Window) ([]string, error) {
	names := make([]string, len(windows))
	if len(windows) == 1 {
		names[0] = base
		return names, nil
	}
	baseIdx, err := f.GetSheetIndex(base)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(windows); i++ {
		names[i] = windows[i].SheetName()
		idx, err := f.NewSheet(names[i])
		if err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", names[i], err)
		}
		if err := f.CopySheet(baseIdx, idx); err != nil {
			return nil, fmt.Errorf("copy sheet %s: %w", names[i], err)
		}
	}
	names[0] = windows[0].SheetName()
	if err := f.SetSheetName(base, names[0]); err != nil {
		return nil, err
	}
	return names, nil
}

type sheetWriter struct {
	f       *excelize.File
	layout  Layout
	printer *message.Printer
	result  comparison.ComparisonResult
}

func (w sheetWriter) write(sheet string, window Window) error {
	if err := w.header(sheet, window); err != nil {
		return err
	}
	for i, row := range w.result.Rows {
		if err := w.dataRow(sheet, w.layout.DataStartRow+i, i, row, window.Slice(row)); err != nil {
			return fmt.Errorf("row %s: %w", row.ProductCode, err)
		}
	}
	if err := w.totals(sheet, window); err != nil {
		return err
	}
	return w.footer(sheet, window)
}

func (w sheetWriter) set(sheet, cell string, value any) error {
	return w.f.SetCellValue(sheet, cell, value)
}

func (w sheetWriter) header(sheet string, window Window) error {
	l := w.layout
	requestLabel := w.result.RequestID
	if requestLabel == "" {
		requestLabel = "Tümü"
	}
	usdRate := any("-")
	if rate, ok := w.result.RateFor(enums.CurrencyUSD); ok {
		usdRate = rate.InexactFloat64()
	}
	values := []struct {
		cell  string
		value any
	}{
		{l.TitleCell, templateTitle},
		{l.RequestCell, requestLabel},
		{l.DateCell, w.result.GeneratedAt.Format("02.01.2006 15:04")},
		{l.CurrencyCell, w.result.ReportingCurrency.String()},
		{l.USDRateCell, usdRate},
	}
	for _, v := range values {
		if err := w.set(sheet, v.cell, v.value); err != nil {
			return err
		}
	}

	for slot := range l.Slots {
		title := ""
		if slot < window.Size() {
			title = fmt.Sprintf("%d. Firma", window.Start+slot+1)
		}
		if err := w.set(sheet, l.SlotCell(slot, SlotUnitPrice, l.HeaderRow), title); err != nil {
			return err
		}
		label := fmt.Sprintf("Toplam (%s)", w.result.ReportingCurrency)
		if err := w.set(sheet, l.SlotCell(slot, SlotReportingTotal, l.SubHeaderRow), label); err != nil {
			return err
		}
		if err := w.set(sheet, l.SlotCell(slot, SlotVAT, l.SubHeaderRow), fmt.Sprintf("KDV %% (%d)", slot+1)); err != nil {
			return err
		}
		// older templates may not hide the VAT columns themselves
		if err := w.f.SetColVisible(sheet, string(l.Slots[slot].VAT), false); err != nil {
			return err
		}
	}
	return nil
}

// dataRow writes the fixed columns and one slot per vendor in the window.
// Rows without vendors keep empty slots so positions line up across sheets.
func (w sheetWriter) dataRow(sheet string, rowNum, index int, row comparison.ComparisonRow, vendors []comparison.RankedVendorOffer) error {
	l := w.layout
	fixed := []struct {
		cell  string
		value any
	}{
		{l.FixedCell(RoleNo, rowNum), index + 1},
		{l.FixedCell(RoleName, rowNum), row.ProductName},
		{l.FixedCell(RoleQuantity, rowNum), row.Quantity.InexactFloat64()},
		{l.FixedCell(RoleUnit, rowNum), row.Unit},
	}
	for _, v := range fixed {
		if err := w.set(sheet, v.cell, v.value); err != nil {
			return err
		}
	}

	for slot, vendor := range vendors {
		if slot >= len(l.Slots) {
			break
		}
		priceCell := l.SlotCell(slot, SlotUnitPrice, rowNum)
		totalCell := l.SlotCell(slot, SlotTotal, rowNum)
		if err := w.set(sheet, priceCell, vendor.UnitPrice.InexactFloat64()); err != nil {
			return err
		}
		if err := w.f.SetCellFormula(sheet, totalCell, lineTotalFormula(l, rowNum, priceCell, row, vendor)); err != nil {
			return err
		}
		if err := w.set(sheet, l.SlotCell(slot, SlotVAT, rowNum), vatRate(vendor).InexactFloat64()); err != nil {
			return err
		}
		rate, ok := w.result.RateFor(vendor.Currency)
		if !ok {
			return fmt.Errorf("no applied rate for %s", vendor.Currency)
		}
		formula := reportingTotalFormula(totalCell, vendor.ShippingCost, rate)
		if err := w.f.SetCellFormula(sheet, l.SlotCell(slot, SlotReportingTotal, rowNum), formula); err != nil {
			return err
		}
		if err := w.f.AddComment(sheet, excelize.Comment{
			Author: commentAuthor,
			Cell:   priceCell,
			Text:   vendorNote(vendor),
		}); err != nil {
			return err
		}
	}
	return nil
}

// Formulas are stored without the leading "=" as in the workbook XML.

func lineTotalFormula(l Layout, rowNum int, priceCell string, row comparison.ComparisonRow, vendor comparison.RankedVendorOffer) string {
	if vendor.Quantity.Equal(row.Quantity) {
		return fmt.Sprintf("%s*%s", l.FixedCell(RoleQuantity, rowNum), priceCell)
	}
	return fmt.Sprintf("%s*%s", priceCell, vendor.Quantity.String())
}

func reportingTotalFormula(totalCell string, shipping, rate decimal.Decimal) string {
	expr := totalCell
	if !shipping.IsZero() {
		expr = fmt.Sprintf("%s+%s", totalCell, shipping.String())
	}
	if rate.Equal(decimal.NewFromInt(1)) {
		return expr
	}
	if !shipping.IsZero() {
		expr = "(" + expr + ")"
	}
	return fmt.Sprintf("%s*%s", expr, rate.String())
}

// totals writes, per visible slot, the net sum of the reporting column and
// the VAT-inclusive sum weighted by the slot's VAT column, so editing a rate
// in the sheet updates the total.
func (w sheetWriter) totals(sheet string, window Window) error {
	l := w.layout
	for slot := 0; slot < window.Size() && slot < len(l.Slots); slot++ {
		first := l.SlotCell(slot, SlotReportingTotal, l.DataStartRow)
		last := l.SlotCell(slot, SlotReportingTotal, l.DataEndRow)
		vatFirst := l.SlotCell(slot, SlotVAT, l.DataStartRow)
		vatLast := l.SlotCell(slot, SlotVAT, l.DataEndRow)

		net := fmt.Sprintf("SUM(%s:%s)", first, last)
		gross := fmt.Sprintf("SUMPRODUCT(%s:%s,1+%s:%s/100)", first, last, vatFirst, vatLast)
		if err := w.f.SetCellFormula(sheet, l.SlotCell(slot, SlotTotal, l.TotalsRow), net); err != nil {
			return err
		}
		if err := w.f.SetCellFormula(sheet, l.SlotCell(slot, SlotReportingTotal, l.TotalsRow), gross); err != nil {
			return err
		}
	}
	return nil
}

func vatRate(v comparison.RankedVendorOffer) decimal.Decimal {
	if v.VATRate != nil {
		return *v.VATRate
	}
	return comparison.DefaultVATRate
}

func (w sheetWriter) footer(sheet string, window Window) error {
	l := w.layout
	vendors := windowVendors(w.result.Rows, window)

	var payment, delivery, notes []string
	for _, v := range vendors {
		if v.PaymentTerms != "" {
			payment = append(payment, v.Vendor+": "+v.PaymentTerms)
		}
		if d := deliveryTerms(v); d != "" {
			delivery = append(delivery, v.Vendor+": "+d)
		}
		if v.Notes != "" {
			notes = append(notes, v.Vendor+": "+v.Notes)
		}
	}

	best := "-"
	if w.result.BestOverallVendor != "" {
		best = fmt.Sprintf("%s (%s %s)", w.result.BestOverallVendor,
			w.printer.Sprintf("%.2f", w.result.BestOverallTotal.InexactFloat64()), w.result.ReportingCurrency)
	}

	lines := []struct {
		row  int
		text string
	}{
		{l.PaymentRow, "Ödeme Şekli: " + joinOrDash(payment)},
		{l.DeliveryRow, "Teslim Şekli: " + joinOrDash(delivery)},
		{l.NotesRow, "Notlar: " + joinOrDash(notes)},
		{l.BestVendorRow, "En uygun firma: " + best},
	}
	for _, line := range lines {
		if err := w.set(sheet, l.FooterCell(line.row), line.text); err != nil {
			return err
		}
	}
	return nil
}

// windowVendors lists the first offer of each vendor shown in the window, in
// order of appearance.
func windowVendors(rows []comparison.ComparisonRow, window Window) []comparison.RankedVendorOffer {
	seen := map[string]struct{}{}
	var out []comparison.RankedVendorOffer
	for _, row := range rows {
		for _, v := range window.Slice(row) {
			if _, ok := seen[v.Vendor]; ok {
				continue
			}
			seen[v.Vendor] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func deliveryTerms(v comparison.RankedVendorOffer) string {
	var parts []string
	if v.LeadTimeDays != nil {
		parts = append(parts, fmt.Sprintf("%d gün", *v.LeadTimeDays))
	}
	if v.DeliveryDate != nil {
		parts = append(parts, v.DeliveryDate.Format("02.01.2006"))
	}
	if v.ShippingType != "" {
		parts = append(parts, v.ShippingType)
	}
	return strings.Join(parts, ", ")
}

func vendorNote(v comparison.RankedVendorOffer) string {
	lines := []string{"Firma: " + v.Vendor, "Para birimi: " + v.Currency.String()}
	if v.Brand != "" {
		lines = append(lines, "Marka: "+v.Brand)
	}
	if v.VATRate != nil {
		lines = append(lines, "KDV: %"+v.VATRate.String())
	}
	if v.MinOrderQty != nil {
		lines = append(lines, "Min. sipariş: "+v.MinOrderQty.String())
	}
	return strings.Join(lines, "\n")
}

func joinOrDash(parts []string) string {
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "; ")
}

func renderFailed(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to render comparison export")
}
