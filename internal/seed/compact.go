// Package seed imports catalogue products from a compact document in
// which each product carries option axes instead of enumerated variants.
// The attribute combinator expands them at import time.
package seed

import (
	"storefront/internal/model"
	"storefront/internal/variant"
)

// CompactProduct is one entry of a compact catalogue document.
type CompactProduct struct {
	Name             string             `json:"name"`
	Slug             string             `json:"slug,omitempty"`
	BaseSKU          string             `json:"baseSku,omitempty"`
	Tagline          string             `json:"tagline,omitempty"`
	ShortDescription string             `json:"shortDescription,omitempty"`
	Description      string             `json:"description,omitempty"`
	BasePrice        int64              `json:"basePrice"`
	BaseStock        int                `json:"baseStock"`
	Options          []variant.Axis     `json:"options"`
	VariantOverrides []variant.Override `json:"variantOverrides,omitempty"`
	ImageMap         map[string]string  `json:"imageMap,omitempty"`
	Images           model.Images       `json:"images"`
	Benefits         []string           `json:"benefits,omitempty"`
	ExposeVariants   bool               `json:"exposeVariants"`
	Status           string             `json:"status,omitempty"`
	CategorySlug     string             `json:"categorySlug,omitempty"`
}
