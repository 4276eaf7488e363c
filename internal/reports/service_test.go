package reports

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teklifbul/mukayese-backend/internal/comparison"
	"github.com/teklifbul/mukayese-backend/internal/export"
	"github.com/teklifbul/mukayese-backend/internal/fx"
	"github.com/teklifbul/mukayese-backend/pkg/config"
	"github.com/teklifbul/mukayese-backend/pkg/enums"
	pkgerrors "github.com/teklifbul/mukayese-backend/pkg/errors"
	"github.com/teklifbul/mukayese-backend/pkg/logger"
	"github.com/teklifbul/mukayese-backend/pkg/metrics"
	"github.com/teklifbul/mukayese-backend/pkg/visibility"
)

type stubOffers struct {
	products   []comparison.Product
	offers     []comparison.VendorOffer
	err        error
	requestIDs []string
}

func (s *stubOffers) ListProducts(_ context.Context, requestID string) ([]comparison.Product, error) {
	s.requestIDs = append(s.requestIDs, requestID)
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func (s *stubOffers) ListOffers(_ context.Context, _ string) ([]comparison.VendorOffer, error) {
	return s.offers, nil
}

type stubRenderer struct {
	doc  export.Document
	err  error
	cfgs []comparison.MembershipConfig
}

func (s *stubRenderer) Render(_ context.Context, mode enums.ExportMode, _ comparison.ComparisonResult, cfg comparison.MembershipConfig) (export.Document, error) {
	s.cfgs = append(s.cfgs, cfg)
	if s.err != nil {
		return export.Document{}, s.err
	}
	doc := s.doc
	doc.Filename = "mukayese." + mode.FileExtension()
	return doc, nil
}

func membershipDefaults() config.MembershipConfig {
	return config.MembershipConfig{DefaultTier: "standard", StandardMaxVendorsPerRow: 3, MaxVendorsPerSheet: 5}
}

func newEngine(t *testing.T) *comparison.Engine {
	t.Helper()
	table, err := fx.ParseTable(map[string]string{"USD_TRY": "30.5"})
	require.NoError(t, err)
	normalizer, err := fx.NewNormalizer(enums.CurrencyTRY, table.WithDerived())
	require.NoError(t, err)
	engine, err := comparison.NewEngine(normalizer)
	require.NoError(t, err)
	return engine
}

func fiveVendorOffers() *stubOffers {
	one := decimal.NewFromInt(1)
	var offers []comparison.VendorOffer
	for i, vendor := range []string{"E", "D", "C", "B", "A"} {
		offers = append(offers, comparison.VendorOffer{
			Vendor: vendor, ProductCode: "P1", Quantity: one, Currency: enums.CurrencyTRY,
			UnitPrice: decimal.NewFromInt(int64(500 - 100*i)),
		})
	}
	return &stubOffers{
		products: []comparison.Product{{Code: "P1", Name: "Vida", Unit: "adet", Quantity: one}},
		offers:   offers,
	}
}

type fixture struct {
	svc      Service
	offers   *stubOffers
	renderer *stubRenderer
	logs     *bytes.Buffer
	reg      *prometheus.Registry
}

func newFixture(t *testing.T, repo *stubOffers, maxProducts int) fixture {
	t.Helper()
	logs := &bytes.Buffer{}
	reg := prometheus.NewRegistry()
	renderer := &stubRenderer{doc: export.Document{Body: []byte("doc"), Sheets: 1}}
	svc, err := NewService(ServiceParams{
		Offers:            repo,
		Engine:            newEngine(t),
		Renderer:          renderer,
		Membership:        membershipDefaults(),
		MaxExportProducts: maxProducts,
		Metrics:           metrics.NewExportMetrics(reg),
		Logger:            logger.New(logger.Options{ServiceName: "test", Output: logs}),
	})
	require.NoError(t, err)
	return fixture{svc: svc, offers: repo, renderer: renderer, logs: logs, reg: reg}
}

func TestCompareAppliesDefaultMembership(t *testing.T) {
	fix := newFixture(t, fiveVendorOffers(), 10)

	result, err := fix.svc.Compare(context.Background(), Query{RequestID: " R1 "})
	require.NoError(t, err)
	assert.Equal(t, []string{"R1"}, fix.offers.requestIDs)
	require.Len(t, result.Rows, 1)
	require.Len(t, result.Rows[0].Vendors, 3)
	assert.Equal(t, "A", result.Rows[0].Vendors[0].Vendor)
	assert.Equal(t, enums.MembershipTierStandard, result.Membership.Tier)
}

func TestComparePremiumSeesAllVendors(t *testing.T) {
	fix := newFixture(t, fiveVendorOffers(), 10)
	result, err := fix.svc.Compare(context.Background(), Query{Membership: visibility.MembershipRequest{Tier: "premium"}})
	require.NoError(t, err)
	assert.Len(t, result.Rows[0].Vendors, 5)
}

func TestCompareUnknownRequestIsNotFound(t *testing.T) {
	fix := newFixture(t, &stubOffers{}, 10)
	_, err := fix.svc.Compare(context.Background(), Query{RequestID: "missing"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCompareRepositoryFailureIsDependency(t *testing.T) {
	fix := newFixture(t, &stubOffers{err: errors.New("conn refused")}, 10)
	_, err := fix.svc.Compare(context.Background(), Query{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestCompareSkipsStoredOffersForUnknownProducts(t *testing.T) {
	repo := fiveVendorOffers()
	repo.offers = append(repo.offers, comparison.VendorOffer{
		Vendor: "Z", LegacyProductCode: "OLD-9", Quantity: decimal.NewFromInt(1), Currency: enums.CurrencyTRY,
		UnitPrice: decimal.NewFromInt(1),
	})
	fix := newFixture(t, repo, 10)

	result, err := fix.svc.Compare(context.Background(), Query{RequestID: "R1", Membership: visibility.MembershipRequest{Tier: "premium"}})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Len(t, result.Rows[0].Vendors, 5)
	assert.Equal(t, "A", result.Rows[0].BestVendor)
	assert.Contains(t, fix.logs.String(), "offers reference unknown products")
	assert.Contains(t, fix.logs.String(), "OLD-9")
	assert.Contains(t, fix.logs.String(), `"request_scope":"R1"`)

	doc, err := fix.svc.Export(context.Background(), Query{}, enums.ExportModeCSV)
	require.NoError(t, err)
	assert.Equal(t, "mukayese.csv", doc.Filename)
}

func TestCompareRejectsBadMembershipBeforeFetching(t *testing.T) {
	repo := fiveVendorOffers()
	fix := newFixture(t, repo, 10)
	_, err := fix.svc.Compare(context.Background(), Query{Membership: visibility.MembershipRequest{Tier: "gold"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, repo.requestIDs)
}

func TestSavingsUsesVisibleVendors(t *testing.T) {
	fix := newFixture(t, fiveVendorOffers(), 10)
	summary, err := fix.svc.Savings(context.Background(), Query{})
	require.NoError(t, err)
	// visible totals 100, 200, 300
	assert.Equal(t, "200", summary.TotalSavings.String())
	assert.Equal(t, "P1", summary.HighestSavingsProduct)
}

func TestRanking(t *testing.T) {
	fix := newFixture(t, fiveVendorOffers(), 10)
	row, err := fix.svc.Ranking(context.Background(), "P1", Query{Membership: visibility.MembershipRequest{Tier: "premium"}})
	require.NoError(t, err)
	assert.Len(t, row.Vendors, 5)

	_, err = fix.svc.Ranking(context.Background(), "P9", Query{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = fix.svc.Ranking(context.Background(), " ", Query{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCompareInlineSynthesizesProducts(t *testing.T) {
	fix := newFixture(t, &stubOffers{}, 10)
	offers := fiveVendorOffers().offers

	result, err := fix.svc.CompareInline(context.Background(), nil, offers, visibility.MembershipRequest{})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "P1", result.Rows[0].ProductCode)
	assert.Len(t, result.Rows[0].Vendors, 3)

	_, err = fix.svc.CompareInline(context.Background(), nil, nil, visibility.MembershipRequest{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestExportPassesResolvedConfig(t *testing.T) {
	fix := newFixture(t, fiveVendorOffers(), 10)
	perSheet := 2
	doc, err := fix.svc.Export(context.Background(), Query{
		Membership: visibility.MembershipRequest{Tier: "premium", MaxVendorsPerSheet: &perSheet},
	}, enums.ExportModeTemplate)
	require.NoError(t, err)
	assert.Equal(t, "mukayese.xlsx", doc.Filename)
	require.Len(t, fix.renderer.cfgs, 1)
	assert.Equal(t, 2, fix.renderer.cfgs[0].MaxVendorsPerSheet)
	assert.Equal(t, 1.0, counterValue(t, fix.reg, "template", metrics.ExportResultOK))
}

func TestExportEnforcesProductCap(t *testing.T) {
	repo := fiveVendorOffers()
	repo.products = append(repo.products, comparison.Product{Code: "P2", Name: "Somun", Quantity: decimal.NewFromInt(1)})
	repo.offers = append(repo.offers, comparison.VendorOffer{
		Vendor: "A", ProductCode: "P2", Quantity: decimal.NewFromInt(1), Currency: enums.CurrencyTRY, UnitPrice: decimal.NewFromInt(5),
	})
	fix := newFixture(t, repo, 1)

	_, err := fix.svc.Export(context.Background(), Query{}, enums.ExportModeCSV)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, fix.renderer.cfgs, "renderer must not run above the cap")
	assert.Equal(t, 1.0, counterValue(t, fix.reg, "csv", metrics.ExportResultInvalid))
}

func TestExportRejectsUnknownMode(t *testing.T) {
	fix := newFixture(t, fiveVendorOffers(), 10)
	_, err := fix.svc.Export(context.Background(), Query{}, enums.ExportMode("pdf"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestExportLogsInternalFailures(t *testing.T) {
	fix := newFixture(t, fiveVendorOffers(), 10)
	fix.renderer.err = pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("boom"), "failed to render comparison export")

	_, err := fix.svc.Export(context.Background(), Query{RequestID: ""}, enums.ExportModeTemplate)
	require.Error(t, err)
	assert.Contains(t, fix.logs.String(), "comparison export failed")
	assert.Contains(t, fix.logs.String(), `"membership":"standard"`)
	assert.Contains(t, fix.logs.String(), `"export_mode":"template"`)
	assert.Equal(t, 1.0, counterValue(t, fix.reg, "template", metrics.ExportResultInternal))
}

func TestExportTemplateUnavailableIsDistinct(t *testing.T) {
	fix := newFixture(t, fiveVendorOffers(), 10)
	fix.renderer.err = pkgerrors.Wrap(pkgerrors.CodeTemplate, export.ErrTemplateUnavailable, "export template unavailable")

	_, err := fix.svc.Export(context.Background(), Query{}, enums.ExportModeTemplate)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTemplate))
	assert.Equal(t, 1.0, counterValue(t, fix.reg, "template", metrics.ExportResultTemplate))
}

func TestNewServiceValidatesParams(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}

func counterValue(t *testing.T, reg *prometheus.Registry, mode, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "mukayese_export_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range m.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["mode"] == mode && labels["result"] == result {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
