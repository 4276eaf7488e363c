package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Column is a spreadsheet column letter.
type Column string

// FixedRole names a column that is the same on every sheet.
type FixedRole int

const (
	RoleNo FixedRole = iota
	RoleName
	RoleQuantity
	RoleUnit
)

// SlotRole names one of the columns of a vendor slot.
type SlotRole int

const (
	SlotUnitPrice SlotRole = iota
	SlotTotal
	SlotReportingTotal
	SlotVAT
)

// VendorSlot is the column group used for one ranked vendor on a sheet. VAT
// is a hidden column outside the visible group holding each row's VAT rate.
type VendorSlot struct {
	UnitPrice      Column
	Total          Column
	ReportingTotal Column
	VAT            Column
}

func (s VendorSlot) column(role SlotRole) Column {
	switch role {
	case SlotTotal:
		return s.Total
	case SlotReportingTotal:
		return s.ReportingTotal
	case SlotVAT:
		return s.VAT
	default:
		return s.UnitPrice
	}
}

// Layout is the cell map of the comparison template. Row numbers are 1-based
// and refer to the template before any rows are inserted.
type Layout struct {
	TitleCell    string
	RequestCell  string
	DateCell     string
	CurrencyCell string
	USDRateCell  string

	HeaderRow    int
	SubHeaderRow int
	DataStartRow int
	DataEndRow   int
	TotalsRow    int

	Fixed map[FixedRole]Column
	Slots []VendorSlot

	FooterColumn  Column
	PaymentRow    int
	DeliveryRow   int
	NotesRow      int
	BestVendorRow int
}

// DefaultLayout matches assets/templates/mukayese.xlsx.
func DefaultLayout() Layout {
	return Layout{
		TitleCell:    "F2",
		RequestCell:  "T1",
		DateCell:     "T2",
		CurrencyCell: "T3",
		USDRateCell:  "T4",

		HeaderRow:    7,
		SubHeaderRow: 8,
		DataStartRow: 9,
		DataEndRow:   20,
		TotalsRow:    21,

		Fixed: map[FixedRole]Column{
			RoleNo:       "B",
			RoleName:     "C",
			RoleQuantity: "D",
			RoleUnit:     "E",
		},
		Slots: []VendorSlot{
			{UnitPrice: "F", Total: "G", ReportingTotal: "H", VAT: "U"},
			{UnitPrice: "I", Total: "J", ReportingTotal: "K", VAT: "V"},
			{UnitPrice: "L", Total: "M", ReportingTotal: "N", VAT: "W"},
			{UnitPrice: "O", Total: "P", ReportingTotal: "Q", VAT: "X"},
			{UnitPrice: "R", Total: "S", ReportingTotal: "T", VAT: "Y"},
		},

		FooterColumn:  "B",
		PaymentRow:    22,
		DeliveryRow:   24,
		NotesRow:      28,
		BestVendorRow: 31,
	}
}

// Capacity is the number of product rows the template holds without inserting rows.
func (l Layout) Capacity() int {
	return l.DataEndRow - l.DataStartRow + 1
}

// Validate checks the layout is internally consistent.
func (l Layout) Validate() error {
	if l.DataStartRow <= l.SubHeaderRow || l.DataEndRow < l.DataStartRow || l.TotalsRow <= l.DataEndRow {
		return fmt.Errorf("layout rows out of order")
	}
	if len(l.Slots) == 0 {
		return fmt.Errorf("layout has no vendor slots")
	}
	for i, slot := range l.Slots {
		if slot.UnitPrice == "" || slot.Total == "" || slot.ReportingTotal == "" || slot.VAT == "" {
			return fmt.Errorf("layout slot %d is missing a column", i)
		}
	}
	for _, role := range []FixedRole{RoleNo, RoleName, RoleQuantity, RoleUnit} {
		if l.Fixed[role] == "" {
			return fmt.Errorf("layout missing fixed column %d", role)
		}
	}
	for _, row := range []int{l.PaymentRow, l.DeliveryRow, l.NotesRow, l.BestVendorRow} {
		if row <= l.TotalsRow {
			return fmt.Errorf("footer row %d overlaps the data region", row)
		}
	}
	return nil
}

// Grow returns the layout after extra rows were inserted above the totals
// row. DataEndRow, TotalsRow and every footer row move down.
func (l Layout) Grow(extra int) Layout {
	if extra <= 0 {
		return l
	}
	l.DataEndRow += extra
	l.TotalsRow += extra
	l.PaymentRow += extra
	l.DeliveryRow += extra
	l.NotesRow += extra
	l.BestVendorRow += extra
	return l
}

// FixedCell addresses a fixed column on the given row.
func (l Layout) FixedCell(role FixedRole, row int) string {
	return cellName(l.Fixed[role], row)
}

// SlotCell addresses one column of vendor slot i on the given row.
func (l Layout) SlotCell(slot int, role SlotRole, row int) string {
	return cellName(l.Slots[slot].column(role), row)
}

// FooterCell addresses the footer column on the given row.
func (l Layout) FooterCell(row int) string {
	return cellName(l.FooterColumn, row)
}

// Columns lists every column the data region writes to, left to right.
func (l Layout) Columns() []Column {
	cols := []Column{l.Fixed[RoleNo], l.Fixed[RoleName], l.Fixed[RoleQuantity], l.Fixed[RoleUnit]}
	for _, slot := range l.Slots {
		cols = append(cols, slot.UnitPrice, slot.Total, slot.ReportingTotal)
	}
	for _, slot := range l.Slots {
		cols = append(cols, slot.VAT)
	}
	return cols
}

func cellName(col Column, row int) string {
	name, err := excelize.JoinCellName(string(col), row)
	if err != nil {
		// Layout columns are constants; an invalid one is a programming error.
		panic(fmt.Sprintf("export: invalid cell %s%d: %v", col, row, err))
	}
	return name
}
