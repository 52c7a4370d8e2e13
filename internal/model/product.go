package model

import "time"

// Product statuses.
const (
	ProductStatusDraft     = "DRAFT"
	ProductStatusPublished = "PUBLISHED"
	ProductStatusArchived  = "ARCHIVED"
)

// AxisValues maps an option axis name (e.g. "Flavor") to its values.
// On a product the slice holds every selectable value in declaration order;
// on a variant it holds exactly one value.
type AxisValues map[string][]string

// First returns the single selected value for an axis on a variant,
// or "" when the axis is absent.
func (a AxisValues) First(axis string) string {
	if vals, ok := a[axis]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// Images holds the main product image and an optional gallery.
type Images struct {
	Main    string   `json:"main"`
	Gallery []string `json:"gallery"`
}

// Product represents a catalogue product in the store.
// Prices are integer minor currency units (e.g. paise).
type Product struct {
	ID               int64      `json:"id" db:"id"`
	Slug             string     `json:"slug" db:"slug"`
	Name             string     `json:"name" db:"name"`
	Tagline          string     `json:"tagline,omitempty" db:"tagline"`
	ShortDescription string     `json:"shortDescription,omitempty" db:"short_description"`
	Description      string     `json:"description,omitempty" db:"description"`
	Price            int64      `json:"price" db:"price"`
	OriginalPrice    *int64     `json:"originalPrice,omitempty" db:"original_price"`
	Attributes       AxisValues `json:"attributes" db:"attributes"`
	Images           Images     `json:"images" db:"images"`
	Benefits         []string   `json:"benefits,omitempty" db:"benefits"`
	ExposeVariants   bool       `json:"exposeVariants" db:"expose_variants"`
	Status           string     `json:"status" db:"status"`
	CategorySlug     string     `json:"categorySlug,omitempty" db:"category_slug"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

// Variant represents one concrete, independently priced and stocked
// combination of axis values belonging to a product.
type Variant struct {
	ID            int64      `json:"id" db:"id"`
	ProductID     int64      `json:"productId" db:"product_id"`
	Name          string     `json:"name" db:"name"`
	SKU           string     `json:"sku" db:"sku"`
	Price         int64      `json:"price" db:"price"`
	OriginalPrice *int64     `json:"originalPrice,omitempty" db:"original_price"`
	Stock         int        `json:"stock" db:"stock"`
	Attributes    AxisValues `json:"attributes" db:"attributes"`
	Image         *string    `json:"image,omitempty" db:"image"`
	Description   *string    `json:"description,omitempty" db:"description"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// ProductWithVariants pairs a product with its variants in persisted order.
type ProductWithVariants struct {
	Product  Product   `json:"product"`
	Variants []Variant `json:"variants"`
}

// ListingItem is one row of the catalogue listing projection. For a variant
// exposed as its own card, ID carries the composite virtual identifier and
// VariantID is set; otherwise ID is the product id in decimal form.
type ListingItem struct {
	ID            string    `json:"id"`
	ProductID     int64     `json:"productId"`
	VariantID     *int64    `json:"variantId,omitempty"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Price         int64     `json:"price"`
	OriginalPrice *int64    `json:"originalPrice,omitempty"`
	Image         string    `json:"image"`
	CategorySlug  string    `json:"categorySlug,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// EffectiveView is the merged display object for a resolved product/variant
// pair: variant-level overrides win field by field over product-level values.
type EffectiveView struct {
	Product       Product    `json:"product"`
	Variant       *Variant   `json:"variant,omitempty"`
	Name          string     `json:"name"`
	Price         int64      `json:"price"`
	OriginalPrice *int64     `json:"originalPrice,omitempty"`
	Stock         int        `json:"stock"`
	Images        Images     `json:"images"`
	Description   string     `json:"description,omitempty"`
	Attributes    AxisValues `json:"attributes"`
}
