package export

import (
	"fmt"

	"github.com/teklifbul/mukayese-backend/internal/comparison"
)

// Window is a half-open range [Start, End) of vendor rank positions shown on
// one sheet.
type Window struct {
	Index int
	Start int
	End   int
}

// Size is the number of vendor slots the window covers.
func (w Window) Size() int {
	return w.End - w.Start
}

// SheetName labels the window with 1-based vendor positions.
func (w Window) SheetName() string {
	if w.Size() == 0 {
		return "Firmalar"
	}
	return fmt.Sprintf("Firmalar %d-%d", w.Start+1, w.End)
}

// Windows partitions maxVendors rank positions into windows of perSheet.
// There is always at least one window so products render even when no
// vendor is visible.
func Windows(maxVendors, perSheet int) []Window {
	if perSheet < 1 {
		perSheet = 1
	}
	if maxVendors <= 0 {
		return []Window{{Index: 0, Start: 0, End: 0}}
	}
	windows := make([]Window, 0, (maxVendors+perSheet-1)/perSheet)
	for start := 0; start < maxVendors; start += perSheet {
		end := start + perSheet
		if end > maxVendors {
			end = maxVendors
		}
		windows = append(windows, Window{Index: len(windows), Start: start, End: end})
	}
	return windows
}

// MaxVendors is the widest visible vendor list across rows.
func MaxVendors(rows []comparison.ComparisonRow) int {
	max := 0
	for _, row := range rows {
		if n := len(row.Vendors); n > max {
			max = n
		}
	}
	return max
}

// Slice returns the vendors of row that fall inside the window.
func (w Window) Slice(row comparison.ComparisonRow) []comparison.RankedVendorOffer {
	if w.Start >= len(row.Vendors) {
		return nil
	}
	end := w.End
	if end > len(row.Vendors) {
		end = len(row.Vendors)
	}
	return row.Vendors[w.Start:end]
}
