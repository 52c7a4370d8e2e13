package catalog

import (
	"strconv"

	"storefront/internal/model"
)

// ProjectListing flattens products with their variants into listing rows.
// A product marked to expose its variants as cards contributes one virtual
// row per variant and its own base row is suppressed; any other product
// contributes a single base row priced at its cheapest variant (ties go to
// the first variant in persisted order), or its own price when it has no
// variants.
func ProjectListing(products []model.ProductWithVariants) []model.ListingItem {
	items := make([]model.ListingItem, 0, len(products))

	for _, pv := range products {
		p := pv.Product

		if p.ExposeVariants && len(pv.Variants) > 0 {
			for _, v := range pv.Variants {
				variantID := v.ID
				items = append(items, model.ListingItem{
					ID:            EncodeVirtualID(p.Slug, v.ID),
					ProductID:     p.ID,
					VariantID:     &variantID,
					Slug:          p.Slug,
					Name:          v.Name,
					Price:         v.Price,
					OriginalPrice: v.OriginalPrice,
					Image:         variantImage(p, v),
					CategorySlug:  p.CategorySlug,
					CreatedAt:     p.CreatedAt,
				})
			}
			continue
		}

		item := model.ListingItem{
			ID:            strconv.FormatInt(p.ID, 10),
			ProductID:     p.ID,
			Slug:          p.Slug,
			Name:          p.Name,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			Image:         p.Images.Main,
			CategorySlug:  p.CategorySlug,
			CreatedAt:     p.CreatedAt,
		}
		if cheapest := cheapestVariant(pv.Variants); cheapest != nil {
			item.Price = cheapest.Price
			item.OriginalPrice = cheapest.OriginalPrice
		}
		items = append(items, item)
	}

	return items
}

// cheapestVariant returns the lowest-priced variant, first in persisted
// order among ties, or nil for an empty slice.
func cheapestVariant(variants []model.Variant) *model.Variant {
	var best *model.Variant
	for i := range variants {
		if best == nil || variants[i].Price < best.Price {
			best = &variants[i]
		}
	}
	return best
}

func variantImage(p model.Product, v model.Variant) string {
	if v.Image != nil && *v.Image != "" {
		return *v.Image
	}
	return p.Images.Main
}
