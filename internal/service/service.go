package service

import (
	"context"

	"storefront/internal/catalog"
	"storefront/internal/model"
	"storefront/internal/variant"

	"github.com/google/uuid"
)

// VariantInput is an explicitly authored variant in a create request.
type VariantInput struct {
	Name          string           `json:"name"`
	SKU           string           `json:"sku"`
	Price         int64            `json:"price"`
	OriginalPrice *int64           `json:"originalPrice,omitempty"`
	Stock         int              `json:"stock"`
	Attributes    model.AxisValues `json:"attributes"`
	Image         *string          `json:"image,omitempty"`
	Description   *string          `json:"description,omitempty"`
}

// CreateProductRequest creates a product with explicitly listed variants.
type CreateProductRequest struct {
	Name             string           `json:"name"`
	Slug             string           `json:"slug,omitempty"`
	Tagline          string           `json:"tagline,omitempty"`
	ShortDescription string           `json:"shortDescription,omitempty"`
	Description      string           `json:"description,omitempty"`
	Price            int64            `json:"price"`
	OriginalPrice    *int64           `json:"originalPrice,omitempty"`
	Attributes       model.AxisValues `json:"attributes,omitempty"`
	Images           model.Images     `json:"images"`
	Benefits         []string         `json:"benefits,omitempty"`
	ExposeVariants   bool             `json:"exposeVariants"`
	Status           string           `json:"status,omitempty"`
	CategorySlug     string           `json:"categorySlug,omitempty"`
	Variants         []VariantInput   `json:"variants,omitempty"`
}

// GenerateProductRequest creates a product whose variants are expanded
// from a compact set of option axes.
type GenerateProductRequest struct {
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

// UpdateProductRequest carries a partial product update; nil fields are
// left unchanged.
type UpdateProductRequest struct {
	Name             *string           `json:"name,omitempty"`
	Tagline          *string           `json:"tagline,omitempty"`
	ShortDescription *string           `json:"shortDescription,omitempty"`
	Description      *string           `json:"description,omitempty"`
	Price            *int64            `json:"price,omitempty"`
	OriginalPrice    *int64            `json:"originalPrice,omitempty"`
	Attributes       *model.AxisValues `json:"attributes,omitempty"`
	Images           *model.Images     `json:"images,omitempty"`
	Benefits         *[]string         `json:"benefits,omitempty"`
	ExposeVariants   *bool             `json:"exposeVariants,omitempty"`
	Status           *string           `json:"status,omitempty"`
	CategorySlug     *string           `json:"categorySlug,omitempty"`
}

// ListingQuery carries the catalogue listing filters.
type ListingQuery struct {
	Category string
	Search   string
	Sort     string
	Limit    int
}

// ProductService defines operations for catalogue administration.
type ProductService interface {
	// Create persists a product together with explicitly listed variants.
	Create(ctx context.Context, req *CreateProductRequest) (*model.ProductWithVariants, error)

	// Generate persists a product whose variants are produced by the
	// attribute combinator from the request's option axes.
	Generate(ctx context.Context, req *GenerateProductRequest) (*model.ProductWithVariants, error)

	// Update applies a partial update to a product.
	Update(ctx context.Context, id int64, req *UpdateProductRequest) (*model.Product, error)

	// Delete removes an unreferenced product and its variants.
	Delete(ctx context.Context, id int64) error
}

// CatalogService defines the read-side catalogue projections.
type CatalogService interface {
	// List produces the flat listing projection.
	List(ctx context.Context, query ListingQuery) ([]model.ListingItem, error)

	// Resolve maps a parsed reference plus an optional explicit variant id
	// and attribute selection to one effective view.
	Resolve(ctx context.Context, ref catalog.Ref, variantID int64, selection map[string]string) (*model.EffectiveView, error)
}

// OrderService defines order creation and reads.
type OrderService interface {
	// Create validates a cart against the catalogue, derives verified
	// totals and persists the order atomically. A request whose payment
	// reference matches an existing order is an idempotent replay.
	Create(ctx context.Context, req *model.CreateOrderRequest) (*model.CreateOrderResponse, error)

	// GetByID retrieves an order with its items and audit trail.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// ListRecent retrieves the most recent orders across all users.
	ListRecent(ctx context.Context, limit int) ([]model.Order, error)
}
