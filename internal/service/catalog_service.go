package service

import (
	"context"
	"fmt"
	"strconv"

	"storefront/internal/catalog"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalogue projection service.
func NewCatalogService(productRepo repository.ProductRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

// List produces the flat listing projection.
func (s *catalogService) List(ctx context.Context, query ListingQuery) ([]model.ListingItem, error) {
	limit := query.Limit
	if limit < 0 {
		limit = 0
	}
	if limit > 100 {
		limit = 100
	}

	products, err := s.productRepo.List(ctx, repository.ListingFilter{
		CategorySlug: query.Category,
		Search:       query.Search,
		Sort:         query.Sort,
		Limit:        limit,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	items := catalog.ProjectListing(products)

	s.logger.Debug().
		Int("products", len(products)).
		Int("items", len(items)).
		Msg("listing projected")

	return items, nil
}

// Resolve maps a parsed reference plus an optional explicit variant id and
// attribute selection to one effective view. The explicit variant id takes
// priority over a virtual-id suffix, which takes priority over an
// attribute selection, which takes priority over the first persisted
// variant.
func (s *catalogService) Resolve(ctx context.Context, ref catalog.Ref, variantID int64, selection map[string]string) (*model.EffectiveView, error) {
	pv, err := s.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if pv == nil || pv.Product.Status == model.ProductStatusArchived {
		return nil, model.ErrProductNotFound
	}

	if variantID == 0 && ref.Kind == catalog.RefVirtual {
		variantID = ref.VariantID
	}

	v, err := catalog.SelectVariant(*pv, variantID, selection)
	if err != nil {
		return nil, err
	}

	view := catalog.MergeView(*pv, v)
	return &view, nil
}

// fetch loads the product a reference points at. The base half of a
// virtual id may itself be a numeric id or a slug.
func (s *catalogService) fetch(ctx context.Context, ref catalog.Ref) (*model.ProductWithVariants, error) {
	switch ref.Kind {
	case catalog.RefNumericID:
		return s.productRepo.GetByID(ctx, ref.ID)
	case catalog.RefVirtual:
		if id, err := strconv.ParseInt(ref.Slug, 10, 64); err == nil && id > 0 {
			return s.productRepo.GetByID(ctx, id)
		}
		return s.productRepo.GetBySlug(ctx, ref.Slug)
	default:
		return s.productRepo.GetBySlug(ctx, ref.Slug)
	}
}
