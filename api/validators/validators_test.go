package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teklifbul/mukayese-backend/pkg/enums"
	pkgerrors "github.com/teklifbul/mukayese-backend/pkg/errors"
)

func TestParseComparisonQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/compare?requestId=%20TLP-42%20&membership=premium&maxVendorsPerSheet=2", nil)
	q, err := ParseComparisonQuery(req)
	require.NoError(t, err)
	assert.Equal(t, "TLP-42", q.RequestID)
	assert.Equal(t, "premium", q.Membership.Tier)
	assert.Nil(t, q.Membership.MaxVendorsPerRow)
	require.NotNil(t, q.Membership.MaxVendorsPerSheet)
	assert.Equal(t, 2, *q.Membership.MaxVendorsPerSheet)
}

func TestParseComparisonQueryRejectsBadNumbers(t *testing.T) {
	for _, raw := range []string{"maxVendorsPerRow=abc", "maxVendorsPerRow=-1", "maxVendorsPerSheet=0", "maxVendorsPerSheet=6"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/compare?"+raw, nil)
		_, err := ParseComparisonQuery(req)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), raw)
	}
}

func TestParseComparisonQueryLimitsRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/compare?requestId="+strings.Repeat("x", 65), nil)
	_, err := ParseComparisonQuery(req)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{"requestId": "must be at most 64"}, typed.Details())
}

func TestParseExportMode(t *testing.T) {
	mode, err := ParseExportMode(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, enums.ExportModeTemplate, mode)

	mode, err = ParseExportMode(httptest.NewRequest(http.MethodGet, "/x?mode=CSV", nil))
	require.NoError(t, err)
	assert.Equal(t, enums.ExportModeCSV, mode)

	_, err = ParseExportMode(httptest.NewRequest(http.MethodGet, "/x?mode=pdf", nil))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeCompareBody(t *testing.T) {
	body := `{"offers":[{"vendor":"A","urun_kodu":"P1","quantity":"2","currency":"USD","unitPrice":"10.5","shippingCost":"0"}],"membership":{"tier":"premium"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare", strings.NewReader(body))

	var dest CompareBody
	require.NoError(t, DecodeJSONBody(req, &dest))
	require.Len(t, dest.Offers, 1)
	assert.Equal(t, "P1", dest.Offers[0].Code())
	assert.Equal(t, "10.5", dest.Offers[0].UnitPrice.String())
	assert.Equal(t, "premium", dest.Membership.Request().Tier)
}

func TestDecodeCompareBodyRequiresOffers(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare", strings.NewReader(`{"offers":[]}`))
	var dest CompareBody
	err := DecodeJSONBody(req, &dest)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Contains(t, typed.Details(), "offers")
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare", strings.NewReader(`{"offers":[{"vendor":"A"}],"extra":1}`))
	var dest CompareBody
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &dest), pkgerrors.CodeValidation))
}

func TestDecodeRatesBody(t *testing.T) {
	var ok RatesBody
	require.NoError(t, DecodeJSONBody(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"rates":{"USD_TRY":"32.1"}}`)), &ok))
	assert.Equal(t, "32.1", ok.Rates["USD_TRY"])

	var bad RatesBody
	err := DecodeJSONBody(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"rates":{"USD_TRY":"abc"}}`)), &bad)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var empty RatesBody
	err = DecodeJSONBody(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"rates":{}}`)), &empty)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "abc", SanitizeString(" abc ", 0))
}
