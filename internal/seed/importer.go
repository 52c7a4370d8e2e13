package seed

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// Importer expands compact products through the attribute combinator and
// persists them. Products whose slug already exists are skipped, so a
// restart with the same document is harmless.
type Importer struct {
	products service.ProductService
	logger   zerolog.Logger
}

// NewImporter creates a new catalogue importer.
func NewImporter(products service.ProductService, logger zerolog.Logger) *Importer {
	return &Importer{
		products: products,
		logger:   logger.With().Str("component", "seed-importer").Logger(),
	}
}

// Run loads the compact document at src and imports every product.
func (i *Importer) Run(ctx context.Context, loader Loader, src string) error {
	compact, err := loader.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("failed to load seed document: %w", err)
	}

	imported, skipped := 0, 0
	for _, cp := range compact {
		req := &service.GenerateProductRequest{
			Name:             cp.Name,
			Slug:             cp.Slug,
			BaseSKU:          cp.BaseSKU,
			Tagline:          cp.Tagline,
			ShortDescription: cp.ShortDescription,
			Description:      cp.Description,
			BasePrice:        cp.BasePrice,
			BaseStock:        cp.BaseStock,
			Options:          cp.Options,
			VariantOverrides: cp.VariantOverrides,
			ImageMap:         cp.ImageMap,
			Images:           cp.Images,
			Benefits:         cp.Benefits,
			ExposeVariants:   cp.ExposeVariants,
			Status:           defaultSeedStatus(cp.Status),
			CategorySlug:     cp.CategorySlug,
		}

		created, err := i.products.Generate(ctx, req)
		if err != nil {
			if errors.Is(err, model.ErrDuplicateSlug) {
				i.logger.Debug().Str("name", cp.Name).Msg("product already seeded, skipping")
				skipped++
				continue
			}
			return fmt.Errorf("failed to import product %q: %w", cp.Name, err)
		}

		i.logger.Info().
			Str("slug", created.Product.Slug).
			Int("variants", len(created.Variants)).
			Msg("product imported")
		imported++
	}

	i.logger.Info().
		Int("imported", imported).
		Int("skipped", skipped).
		Msg("catalogue seeding completed")

	return nil
}

// Seeded catalogues are meant to be browsable immediately.
func defaultSeedStatus(status string) string {
	if status == "" {
		return model.ProductStatusPublished
	}
	return status
}
