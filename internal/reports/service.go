package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teklifbul/mukayese-backend/internal/comparison"
	"github.com/teklifbul/mukayese-backend/internal/export"
	"github.com/teklifbul/mukayese-backend/internal/offers"
	"github.com/teklifbul/mukayese-backend/pkg/config"
	"github.com/teklifbul/mukayese-backend/pkg/enums"
	pkgerrors "github.com/teklifbul/mukayese-backend/pkg/errors"
	"github.com/teklifbul/mukayese-backend/pkg/logger"
	"github.com/teklifbul/mukayese-backend/pkg/metrics"
	"github.com/teklifbul/mukayese-backend/pkg/visibility"
)

// Query scopes a comparison to one demand (or all of them) and a viewer tier.
type Query struct {
	RequestID  string
	Membership visibility.MembershipRequest
}

// Service runs comparisons over stored offers and renders exports.
type Service interface {
	Compare(ctx context.Context, q Query) (comparison.ComparisonResult, error)
	CompareInline(ctx context.Context, products []comparison.Product, offers []comparison.VendorOffer, membership visibility.MembershipRequest) (comparison.ComparisonResult, error)
	Savings(ctx context.Context, q Query) (comparison.SavingsSummary, error)
	Ranking(ctx context.Context, productCode string, q Query) (comparison.ComparisonRow, error)
	Export(ctx context.Context, q Query, mode enums.ExportMode) (export.Document, error)
}

type engine interface {
	Compare(requestID string, products []comparison.Product, offers []comparison.VendorOffer) (comparison.ComparisonResult, error)
	CompareKnown(requestID string, products []comparison.Product, offers []comparison.VendorOffer) (comparison.ComparisonResult, []string, error)
}

type renderer interface {
	Render(ctx context.Context, mode enums.ExportMode, result comparison.ComparisonResult, cfg comparison.MembershipConfig) (export.Document, error)
}

type ServiceParams struct {
	Offers            offers.Repository
	Engine            engine
	Renderer          renderer
	Membership        config.MembershipConfig
	MaxExportProducts int
	Metrics           *metrics.ExportMetrics
	Logger            *logger.Logger
}

type service struct {
	offers      offers.Repository
	engine      engine
	renderer    renderer
	membership  config.MembershipConfig
	maxProducts int
	metrics     *metrics.ExportMetrics
	logg        *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Offers == nil {
		return nil, fmt.Errorf("offer repository required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("comparison engine required")
	}
	if params.Renderer == nil {
		return nil, fmt.Errorf("export renderer required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.MaxExportProducts <= 0 {
		return nil, fmt.Errorf("max export products must be positive")
	}
	return &service{
		offers:      params.Offers,
		engine:      params.Engine,
		renderer:    params.Renderer,
		membership:  params.Membership,
		maxProducts: params.MaxExportProducts,
		metrics:     params.Metrics,
		logg:        params.Logger,
	}, nil
}

func (s *service) Compare(ctx context.Context, q Query) (comparison.ComparisonResult, error) {
	result, _, err := s.compare(ctx, q)
	return result, err
}

// CompareInline ranks a posted payload without touching storage.
func (s *service) CompareInline(ctx context.Context, products []comparison.Product, offers []comparison.VendorOffer, membership visibility.MembershipRequest) (comparison.ComparisonResult, error) {
	cfg, err := visibility.ResolveMembership(membership, s.membership)
	if err != nil {
		return comparison.ComparisonResult{}, err
	}
	if len(offers) == 0 {
		return comparison.ComparisonResult{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one offer is required")
	}
	if len(products) == 0 {
		products = productsFromOffers(offers)
	}
	result, err := s.engine.Compare("", products, offers)
	if err != nil {
		return comparison.ComparisonResult{}, err
	}
	return visibility.ApplyMembership(result, cfg), nil
}

// Savings is computed over the vendors the viewer can see.
func (s *service) Savings(ctx context.Context, q Query) (comparison.SavingsSummary, error) {
	result, _, err := s.compare(ctx, q)
	if err != nil {
		return comparison.SavingsSummary{}, err
	}
	return comparison.Summarize(result), nil
}

func (s *service) Ranking(ctx context.Context, productCode string, q Query) (comparison.ComparisonRow, error) {
	code := strings.TrimSpace(productCode)
	if code == "" {
		return comparison.ComparisonRow{}, pkgerrors.New(pkgerrors.CodeValidation, "product code is required")
	}
	result, _, err := s.compare(ctx, q)
	if err != nil {
		return comparison.ComparisonRow{}, err
	}
	for _, row := range result.Rows {
		if row.ProductCode == code {
			return row, nil
		}
	}
	return comparison.ComparisonRow{}, pkgerrors.New(pkgerrors.CodeNotFound, "no offers for product").
		WithDetails(map[string]any{"productCode": code})
}

// Export compares, enforces the product cap and renders the document. Internal
// render faults are logged with the request context before being returned.
func (s *service) Export(ctx context.Context, q Query, mode enums.ExportMode) (export.Document, error) {
	started := time.Now()
	doc, err := s.export(ctx, q, mode)
	s.metrics.Observe(mode.String(), exportResult(err), time.Since(started))
	if err == nil {
		s.metrics.ObserveSheets(doc.Sheets)
	}
	return doc, err
}

func (s *service) export(ctx context.Context, q Query, mode enums.ExportMode) (export.Document, error) {
	if !mode.IsValid() {
		return export.Document{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid export mode %q", mode)).
			WithDetails(map[string]any{"fields": map[string]string{"mode": "must be template or csv"}})
	}
	result, cfg, err := s.compare(ctx, q)
	if err != nil {
		return export.Document{}, err
	}
	if len(result.Rows) > s.maxProducts {
		return export.Document{}, pkgerrors.New(pkgerrors.CodeValidation, "too many products to export").
			WithDetails(map[string]any{"products": len(result.Rows), "maxProducts": s.maxProducts})
	}

	ctx = s.logg.WithRequestScope(ctx, q.RequestID)
	ctx = s.logg.WithMembership(ctx, cfg.Tier.String())
	ctx = s.logg.WithFields(ctx, map[string]any{"export_mode": mode.String(), "product_count": len(result.Rows)})

	doc, err := s.renderer.Render(ctx, mode, result, cfg)
	switch {
	case err == nil:
		s.logg.Info(ctx, "comparison exported")
		return doc, nil
	case pkgerrors.IsCode(err, pkgerrors.CodeTemplate):
		s.logg.Warn(ctx, "export template unavailable")
	default:
		s.logg.Error(ctx, "comparison export failed", err)
	}
	return export.Document{}, err
}

func (s *service) compare(ctx context.Context, q Query) (comparison.ComparisonResult, comparison.MembershipConfig, error) {
	cfg, err := visibility.ResolveMembership(q.Membership, s.membership)
	if err != nil {
		return comparison.ComparisonResult{}, comparison.MembershipConfig{}, err
	}
	requestID := strings.TrimSpace(q.RequestID)

	products, err := s.offers.ListProducts(ctx, requestID)
	if err != nil {
		return comparison.ComparisonResult{}, cfg, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	if requestID != "" && len(products) == 0 {
		return comparison.ComparisonResult{}, cfg, pkgerrors.New(pkgerrors.CodeNotFound, "request not found").
			WithDetails(map[string]any{"requestId": requestID})
	}
	rawOffers, err := s.offers.ListOffers(ctx, requestID)
	if err != nil {
		return comparison.ComparisonResult{}, cfg, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list offers")
	}

	// stored offers can point at products that were never imported
	result, skipped, err := s.engine.CompareKnown(requestID, products, rawOffers)
	if len(skipped) > 0 {
		s.logg.Warn(s.logg.WithFields(s.logg.WithRequestScope(ctx, requestID), map[string]any{
			"skipped_codes": skipped,
		}), "offers reference unknown products; skipping")
	}
	if err != nil {
		return comparison.ComparisonResult{}, cfg, err
	}
	return visibility.ApplyMembership(result, cfg), cfg, nil
}

// productsFromOffers synthesizes a catalog for inline payloads that only
// carry offers. The first offer of each code supplies quantity and unit.
func productsFromOffers(offers []comparison.VendorOffer) []comparison.Product {
	seen := map[string]struct{}{}
	var products []comparison.Product
	for _, offer := range offers {
		code := offer.Code()
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		products = append(products, comparison.Product{
			Code:     code,
			Name:     code,
			Unit:     offer.Unit,
			Quantity: offer.Quantity,
		})
	}
	return products
}

func exportResult(err error) string {
	switch {
	case err == nil:
		return metrics.ExportResultOK
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation), pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return metrics.ExportResultInvalid
	case pkgerrors.IsCode(err, pkgerrors.CodeTemplate):
		return metrics.ExportResultTemplate
	default:
		return metrics.ExportResultInternal
	}
}
