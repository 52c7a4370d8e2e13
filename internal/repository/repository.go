package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListingFilter narrows the catalogue listing query.
type ListingFilter struct {
	CategorySlug string
	Search       string
	// Sort is one of "asc", "desc" (price), "oldest", "newest" (default).
	Sort  string
	Limit int
}

// ProductRepository defines the interface for product and variant data
// access operations.
type ProductRepository interface {
	// CreateWithVariants inserts a product and its variants atomically.
	// Duplicate slugs and SKUs surface as Conflict domain errors.
	CreateWithVariants(ctx context.Context, product *model.Product, variants []model.Variant) (*model.ProductWithVariants, error)

	// List retrieves published products with their variants, filtered and
	// sorted for the listing projection. Variants are returned in
	// persisted order.
	List(ctx context.Context, filter ListingFilter) ([]model.ProductWithVariants, error)

	// GetByID retrieves a product with its variants, or nil when absent.
	GetByID(ctx context.Context, id int64) (*model.ProductWithVariants, error)

	// GetBySlug retrieves a product with its variants, or nil when absent.
	GetBySlug(ctx context.Context, slug string) (*model.ProductWithVariants, error)

	// Update persists the mutable fields of a product row.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product and its variants. It fails with a Conflict
	// domain error while any order item references the product.
	Delete(ctx context.Context, id int64) error

	// GetVariantsByIDs retrieves variants by id, in no guaranteed order.
	GetVariantsByIDs(ctx context.Context, ids []int64) ([]model.Variant, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Insert writes the order header within the provided transaction.
	// A duplicate payment reference surfaces as ErrPaymentReferenceTaken.
	Insert(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// InsertItems writes the order line items within the provided transaction.
	InsertItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// InsertEvent appends an audit event within the provided transaction.
	InsertEvent(ctx context.Context, tx pgx.Tx, event *model.OrderEvent) error

	// GetByPaymentReference retrieves the order carrying the given
	// idempotency token, or nil when none exists.
	GetByPaymentReference(ctx context.Context, reference string) (*model.Order, error)

	// GetByID retrieves an order with its items and events, or nil.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// ListRecent retrieves the most recent orders across all users.
	ListRecent(ctx context.Context, limit int) ([]model.Order, error)
}
