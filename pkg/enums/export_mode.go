package enums

import (
	"fmt"
	"strings"
)

// ExportMode selects the rendered document format for comparison exports.
type ExportMode string

const (
	ExportModeTemplate ExportMode = "template"
	ExportModeCSV      ExportMode = "csv"
)

var validExportModes = []ExportMode{
	ExportModeTemplate,
	ExportModeCSV,
}

// String implements fmt.Stringer.
func (m ExportMode) String() string {
	return string(m)
}

// IsValid reports whether the mode is recognized.
func (m ExportMode) IsValid() bool {
	for _, candidate := range validExportModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseExportMode converts a raw string into an ExportMode.
func ParseExportMode(value string) (ExportMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validExportModes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid export mode %q", value)
}

// FileExtension returns the attachment extension for the mode.
func (m ExportMode) FileExtension() string {
	if m == ExportModeCSV {
		return "csv"
	}
	return "xlsx"
}

// ContentType returns the MIME type served for the mode.
func (m ExportMode) ContentType() string {
	if m == ExportModeCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
