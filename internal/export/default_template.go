package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const (
	templateSheet = "Mukayese"
	templateTitle = "TEKLİF MUKAYESE FORMU"
)

// BuildDefaultTemplate creates the comparison workbook that matches
// DefaultLayout. Deployments may replace it with a branded copy as long as the
// cell map stays the same.
func BuildDefaultTemplate() ([]byte, error) {
	layout := DefaultLayout()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return nil, err
	}

	styles, err := newTemplateStyles(f)
	if err != nil {
		return nil, err
	}

	set := func(cell string, value any) {
		if err == nil {
			err = f.SetCellValue(templateSheet, cell, value)
		}
	}
	style := func(from, to string, id int) {
		if err == nil {
			err = f.SetCellStyle(templateSheet, from, to, id)
		}
	}
	merge := func(from, to string) {
		if err == nil {
			err = f.MergeCell(templateSheet, from, to)
		}
	}

	set(layout.TitleCell, templateTitle)
	merge(layout.TitleCell, cellName(layout.Slots[3].UnitPrice, 3))
	style(layout.TitleCell, layout.TitleCell, styles.title)

	labelCol := layout.Slots[len(layout.Slots)-1].UnitPrice
	for cell, label := range map[string]string{
		layout.RequestCell:  "Talep No",
		layout.DateCell:     "Tarih",
		layout.CurrencyCell: "Para Birimi",
		layout.USDRateCell:  "USD Kuru",
	} {
		row, _, splitErr := splitRow(cell)
		if splitErr != nil {
			return nil, splitErr
		}
		set(cellName(labelCol, row), label)
		style(cellName(labelCol, row), cellName(labelCol, row), styles.label)
	}

	fixedLabels := map[FixedRole]string{RoleNo: "No", RoleName: "Ürün", RoleQuantity: "Miktar", RoleUnit: "Birim"}
	for role, label := range fixedLabels {
		top := layout.FixedCell(role, layout.HeaderRow)
		set(top, label)
		merge(top, layout.FixedCell(role, layout.SubHeaderRow))
	}
	for i, slot := range layout.Slots {
		first := layout.SlotCell(i, SlotUnitPrice, layout.HeaderRow)
		set(first, fmt.Sprintf("%d. Firma", i+1))
		merge(first, layout.SlotCell(i, SlotReportingTotal, layout.HeaderRow))
		set(cellName(slot.UnitPrice, layout.SubHeaderRow), "Birim Fiyat")
		set(cellName(slot.Total, layout.SubHeaderRow), "Toplam")
		set(cellName(slot.ReportingTotal, layout.SubHeaderRow), "Toplam (Raporlama)")
		set(cellName(slot.VAT, layout.SubHeaderRow), fmt.Sprintf("KDV %% (%d)", i+1))
		if err == nil {
			err = f.SetColVisible(templateSheet, string(slot.VAT), false)
		}
	}
	firstCol, lastCol := layout.Fixed[RoleNo], layout.Slots[len(layout.Slots)-1].ReportingTotal
	style(cellName(firstCol, layout.HeaderRow), cellName(lastCol, layout.SubHeaderRow), styles.header)

	style(cellName(firstCol, layout.DataStartRow), cellName(layout.Fixed[RoleUnit], layout.DataEndRow), styles.text)
	style(cellName(layout.Slots[0].UnitPrice, layout.DataStartRow), cellName(lastCol, layout.DataEndRow), styles.money)

	set(layout.FixedCell(RoleName, layout.TotalsRow), "TOPLAM (KDV hariç / KDV dahil)")
	merge(layout.FixedCell(RoleName, layout.TotalsRow), layout.FixedCell(RoleUnit, layout.TotalsRow))
	style(cellName(firstCol, layout.TotalsRow), cellName(lastCol, layout.TotalsRow), styles.total)

	for _, row := range []int{layout.PaymentRow, layout.DeliveryRow, layout.NotesRow, layout.BestVendorRow} {
		merge(layout.FooterCell(row), cellName(lastCol, row+1))
		style(layout.FooterCell(row), layout.FooterCell(row), styles.footer)
	}

	if err == nil {
		err = f.SetColWidth(templateSheet, string(layout.Fixed[RoleName]), string(layout.Fixed[RoleName]), 36)
	}
	if err == nil {
		err = f.SetColWidth(templateSheet, string(layout.Slots[0].UnitPrice), string(lastCol), 14)
	}
	if err != nil {
		return nil, fmt.Errorf("build template: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefaultTemplate writes the default template to path, creating parent
// directories. An existing file is left alone unless overwrite is set.
func WriteDefaultTemplate(path string, overwrite bool) (bool, error) {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}
	data, err := BuildDefaultTemplate()
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create template dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write template file: %w", err)
	}
	return true, nil
}

type templateStyles struct {
	title  int
	label  int
	header int
	text   int
	money  int
	total  int
	footer int
}

func newTemplateStyles(f *excelize.File) (templateStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "999999", Style: 1},
		{Type: "top", Color: "999999", Style: 1},
		{Type: "right", Color: "999999", Style: 1},
		{Type: "bottom", Color: "999999", Style: 1},
	}
	moneyFmt := "#,##0.00"

	var s templateStyles
	var err error
	create := func(style *excelize.Style) int {
		if err != nil {
			return 0
		}
		var id int
		id, err = f.NewStyle(style)
		return id
	}

	s.title = create(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	s.label = create(&excelize.Style{Font: &excelize.Font{Bold: true}})
	s.header = create(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	s.text = create(&excelize.Style{Border: border})
	s.money = create(&excelize.Style{Border: border, CustomNumFmt: &moneyFmt})
	s.total = create(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
		Border:       border,
		CustomNumFmt: &moneyFmt,
	})
	s.footer = create(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	return s, err
}

func splitRow(cell string) (int, string, error) {
	col, row, err := excelize.SplitCellName(cell)
	return row, col, err
}
