package enums

import "testing"

func TestParseCurrencyNormalizes(t *testing.T) {
	got, err := ParseCurrency(" usd ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != CurrencyUSD {
		t.Fatalf("expected USD, got %s", got)
	}
	if _, err := ParseCurrency("XXY"); err == nil {
		t.Fatalf("expected error for unknown code")
	}
	if _, err := ParseCurrency(""); err == nil {
		t.Fatalf("expected error for empty code")
	}
}

func TestCurrencyIsValidRequiresUpperCase(t *testing.T) {
	if !CurrencyTRY.IsValid() {
		t.Fatalf("TRY should be valid")
	}
	if Currency("try").IsValid() {
		t.Fatalf("lower-case codes must be parsed first")
	}
}

func TestParseMembershipTier(t *testing.T) {
	tier, err := ParseMembershipTier("Premium")
	if err != nil || tier != MembershipTierPremium {
		t.Fatalf("expected premium, got %q (%v)", tier, err)
	}
	if _, err := ParseMembershipTier("gold"); err == nil {
		t.Fatalf("expected error for unknown tier")
	}
}

func TestExportModeAttachmentMetadata(t *testing.T) {
	cases := []struct {
		mode        ExportMode
		ext         string
		contentType string
	}{
		{ExportModeTemplate, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{ExportModeCSV, "csv", "text/csv"},
	}
	for _, tc := range cases {
		if got := tc.mode.FileExtension(); got != tc.ext {
			t.Fatalf("%s: expected extension %s, got %s", tc.mode, tc.ext, got)
		}
		if got := tc.mode.ContentType(); got != tc.contentType {
			t.Fatalf("%s: expected content type %s, got %s", tc.mode, tc.contentType, got)
		}
	}
	if _, err := ParseExportMode("pdf"); err == nil {
		t.Fatalf("expected error for pdf")
	}
}

func TestParseOfferStatus(t *testing.T) {
	if s, err := ParseOfferStatus("active"); err != nil || s != OfferStatusActive {
		t.Fatalf("expected active, got %q (%v)", s, err)
	}
	if OfferStatus("archived").IsValid() {
		t.Fatalf("archived is not a known status")
	}
}
