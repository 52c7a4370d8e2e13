package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/variant"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo     repository.ProductRepository
	maxCombinations int
	logger          zerolog.Logger
}

// NewProductService creates a new product service. maxCombinations bounds
// the cartesian product a single generation request may expand to.
func NewProductService(productRepo repository.ProductRepository, maxCombinations int, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo:     productRepo,
		maxCombinations: maxCombinations,
		logger:          logger.With().Str("service", "product").Logger(),
	}
}

// Create persists a product together with explicitly listed variants.
func (s *productService) Create(ctx context.Context, req *CreateProductRequest) (*model.ProductWithVariants, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, model.ErrMissingName
	}
	if req.Images.Main == "" {
		return nil, model.ErrMissingMainImage
	}

	product := s.buildProduct(req)

	variants := make([]model.Variant, len(req.Variants))
	for i, in := range req.Variants {
		if in.Name == "" || in.SKU == "" {
			return nil, model.NewValidationError(model.ErrCodeMissingField,
				fmt.Sprintf("variant %d: name and sku are required", i))
		}
		variants[i] = model.Variant{
			Name:          in.Name,
			SKU:           strings.ToUpper(in.SKU),
			Price:         in.Price,
			OriginalPrice: in.OriginalPrice,
			Stock:         in.Stock,
			Attributes:    in.Attributes,
			Image:         in.Image,
			Description:   in.Description,
		}
		if variants[i].Attributes == nil {
			variants[i].Attributes = model.AxisValues{}
		}
	}

	created, err := s.productRepo.CreateWithVariants(ctx, product, variants)
	if err != nil {
		s.logger.Warn().Err(err).Str("slug", product.Slug).Msg("product creation failed")
		return nil, err
	}

	s.logger.Info().
		Int64("product_id", created.Product.ID).
		Int("variant_count", len(created.Variants)).
		Msg("product created")

	return created, nil
}

// Generate persists a product whose variants are produced by the
// attribute combinator.
func (s *productService) Generate(ctx context.Context, req *GenerateProductRequest) (*model.ProductWithVariants, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, model.ErrMissingName
	}
	if req.Images.Main == "" {
		return nil, model.ErrMissingMainImage
	}
	if len(req.Options) == 0 {
		return nil, model.ErrMissingAxes
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}

	drafts, err := variant.Generate(variant.GenerateInput{
		ProductName: req.Name,
		Slug:        slug,
		BaseSKU:     req.BaseSKU,
		BasePrice:   req.BasePrice,
		BaseStock:   req.BaseStock,
		MainImage:   req.Images.Main,
		Axes:        req.Options,
		Overrides:   req.VariantOverrides,
		ImageMap:    req.ImageMap,
	}, variant.EmptyAxesNone, s.maxCombinations)
	if err != nil {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("variant generation rejected")
		return nil, model.NewValidationError(model.ErrCodeTooManyVariants, err.Error())
	}

	// The parent product advertises every axis with its full value set.
	attributes := make(model.AxisValues, len(req.Options))
	for _, axis := range req.Options {
		attributes[axis.Name] = axis.Values
	}

	product := &model.Product{
		Slug:             slug,
		Name:             req.Name,
		Tagline:          req.Tagline,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Price:            req.BasePrice,
		Attributes:       attributes,
		Images:           normaliseImages(req.Images),
		Benefits:         req.Benefits,
		ExposeVariants:   req.ExposeVariants,
		Status:           defaultStatus(req.Status),
		CategorySlug:     req.CategorySlug,
	}

	variants := make([]model.Variant, len(drafts))
	for i, d := range drafts {
		variants[i] = model.Variant{
			Name:          d.Name,
			SKU:           d.SKU,
			Price:         d.Price,
			OriginalPrice: d.OriginalPrice,
			Stock:         d.Stock,
			Attributes:    d.Attributes,
		}
		if d.Image != "" && d.Image != req.Images.Main {
			image := d.Image
			variants[i].Image = &image
		}
	}

	created, err := s.productRepo.CreateWithVariants(ctx, product, variants)
	if err != nil {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("generated product creation failed")
		return nil, err
	}

	metrics.VariantsGenerated.Add(float64(len(created.Variants)))
	s.logger.Info().
		Int64("product_id", created.Product.ID).
		Int("variant_count", len(created.Variants)).
		Msg("product generated")

	return created, nil
}

// Update applies a partial update to a product.
func (s *productService) Update(ctx context.Context, id int64, req *UpdateProductRequest) (*model.Product, error) {
	existing, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if existing == nil {
		return nil, model.ErrProductNotFound
	}

	p := existing.Product
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Tagline != nil {
		p.Tagline = *req.Tagline
	}
	if req.ShortDescription != nil {
		p.ShortDescription = *req.ShortDescription
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.OriginalPrice != nil {
		p.OriginalPrice = req.OriginalPrice
	}
	if req.Attributes != nil {
		p.Attributes = *req.Attributes
	}
	if req.Images != nil {
		if req.Images.Main == "" {
			return nil, model.ErrMissingMainImage
		}
		p.Images = normaliseImages(*req.Images)
	}
	if req.Benefits != nil {
		p.Benefits = *req.Benefits
	}
	if req.ExposeVariants != nil {
		p.ExposeVariants = *req.ExposeVariants
	}
	if req.Status != nil {
		switch *req.Status {
		case model.ProductStatusDraft, model.ProductStatusPublished, model.ProductStatusArchived:
			p.Status = *req.Status
		default:
			return nil, model.NewValidationError(model.ErrCodeMissingField,
				fmt.Sprintf("invalid product status %q", *req.Status))
		}
	}
	if req.CategorySlug != nil {
		p.CategorySlug = *req.CategorySlug
	}

	if err := s.productRepo.Update(ctx, &p); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("product_id", id).Msg("product updated")
	return &p, nil
}

// Delete removes an unreferenced product and its variants.
func (s *productService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", id).Msg("product deletion failed")
		return err
	}
	s.logger.Info().Int64("product_id", id).Msg("product deleted")
	return nil
}

func (s *productService) buildProduct(req *CreateProductRequest) *model.Product {
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}
	attributes := req.Attributes
	if attributes == nil {
		attributes = model.AxisValues{}
	}
	return &model.Product{
		Slug:             slug,
		Name:             req.Name,
		Tagline:          req.Tagline,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Price:            req.Price,
		OriginalPrice:    req.OriginalPrice,
		Attributes:       attributes,
		Images:           normaliseImages(req.Images),
		Benefits:         req.Benefits,
		ExposeVariants:   req.ExposeVariants,
		Status:           defaultStatus(req.Status),
		CategorySlug:     req.CategorySlug,
	}
}

func defaultStatus(status string) string {
	if status == "" {
		return model.ProductStatusDraft
	}
	return status
}

func normaliseImages(images model.Images) model.Images {
	if images.Gallery == nil {
		images.Gallery = []string{}
	}
	return images
}

// Slugify lowercases a name and collapses whitespace runs to hyphens.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), "-")
}
