package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `
	id, slug, name, tagline, short_description, description, price,
	original_price, attributes, images, benefits, expose_variants, status,
	category_slug, created_at, updated_at`

const variantColumns = `
	id, product_id, name, sku, price, original_price, stock, attributes,
	image, description, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// CreateWithVariants inserts a product and its variants in one transaction.
func (r *productRepository) CreateWithVariants(ctx context.Context, product *model.Product, variants []model.Variant) (*model.ProductWithVariants, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	insertProduct := `
		INSERT INTO products (
			slug, name, tagline, short_description, description, price,
			original_price, attributes, images, benefits, expose_variants,
			status, category_slug
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(ctx, insertProduct,
		product.Slug, product.Name, product.Tagline, product.ShortDescription,
		product.Description, product.Price, product.OriginalPrice,
		product.Attributes, product.Images, product.Benefits,
		product.ExposeVariants, product.Status, product.CategorySlug,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "products_slug_key") {
			err = model.ErrDuplicateSlug
			return nil, err
		}
		r.logger.Error().Err(err).Str("slug", product.Slug).Msg("failed to insert product")
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	insertVariant := `
		INSERT INTO variants (
			product_id, name, sku, price, original_price, stock, attributes,
			image, description
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	for i := range variants {
		variants[i].ProductID = product.ID
		err = tx.QueryRow(ctx, insertVariant,
			product.ID, variants[i].Name, variants[i].SKU, variants[i].Price,
			variants[i].OriginalPrice, variants[i].Stock, variants[i].Attributes,
			variants[i].Image, variants[i].Description,
		).Scan(&variants[i].ID, &variants[i].CreatedAt, &variants[i].UpdatedAt)
		if err != nil {
			if isUniqueViolation(err, "variants_sku_key") {
				err = model.ErrDuplicateSKU
				return nil, err
			}
			r.logger.Error().Err(err).Str("sku", variants[i].SKU).Msg("failed to insert variant")
			return nil, fmt.Errorf("failed to insert variant: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product creation: %w", err)
	}

	r.logger.Debug().
		Int64("product_id", product.ID).
		Int("variant_count", len(variants)).
		Msg("product created")

	return &model.ProductWithVariants{Product: *product, Variants: variants}, nil
}

// List retrieves published products with their variants for the listing
// projection.
func (r *productRepository) List(ctx context.Context, filter ListingFilter) ([]model.ProductWithVariants, error) {
	var (
		conditions = []string{"status = 'PUBLISHED'"}
		args       []any
	)

	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		conditions = append(conditions, fmt.Sprintf("category_slug = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("lower(name) LIKE $%d", len(args)))
	}

	orderBy := "created_at DESC"
	switch filter.Sort {
	case "asc":
		orderBy = "price ASC"
	case "desc":
		orderBy = "price DESC"
	case "oldest":
		orderBy = "created_at ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM products WHERE %s ORDER BY %s",
		productColumns, strings.Join(conditions, " AND "), orderBy)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return r.attachVariants(ctx, products)
}

// GetByID retrieves a product with its variants.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.ProductWithVariants, error) {
	return r.getOne(ctx, fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns), id)
}

// GetBySlug retrieves a product with its variants.
func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*model.ProductWithVariants, error) {
	return r.getOne(ctx, fmt.Sprintf("SELECT %s FROM products WHERE slug = $1", productColumns), slug)
}

func (r *productRepository) getOne(ctx context.Context, query string, arg any) (*model.ProductWithVariants, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	withVariants, err := r.attachVariants(ctx, []model.Product{p})
	if err != nil {
		return nil, err
	}
	return &withVariants[0], nil
}

// Update persists the mutable fields of a product row.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, tagline = $3, short_description = $4, description = $5,
			price = $6, original_price = $7, attributes = $8, images = $9,
			benefits = $10, expose_variants = $11, status = $12,
			category_slug = $13, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		product.ID, product.Name, product.Tagline, product.ShortDescription,
		product.Description, product.Price, product.OriginalPrice,
		product.Attributes, product.Images, product.Benefits,
		product.ExposeVariants, product.Status, product.CategorySlug,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", product.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

// Delete removes a product and its variants unless order items reference it.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	var referenced bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM order_items WHERE product_id = $1)", id,
	).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("failed to check order references: %w", err)
	}
	if referenced {
		return model.ErrProductReferenced
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if _, err = tx.Exec(ctx, "DELETE FROM variants WHERE product_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete variants: %w", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = model.ErrProductNotFound
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit product deletion: %w", err)
	}

	r.logger.Debug().Int64("product_id", id).Msg("product deleted")
	return nil
}

// GetVariantsByIDs retrieves variants by id.
func (r *productRepository) GetVariantsByIDs(ctx context.Context, ids []int64) ([]model.Variant, error) {
	if len(ids) == 0 {
		return []model.Variant{}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM variants WHERE id = ANY($1)", variantColumns)

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query variants by IDs")
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	var variants []model.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}
	return variants, nil
}

// attachVariants loads the variants of the given products in persisted
// order and zips them onto their owners.
func (r *productRepository) attachVariants(ctx context.Context, products []model.Product) ([]model.ProductWithVariants, error) {
	result := make([]model.ProductWithVariants, len(products))
	byID := make(map[int64]int, len(products))
	ids := make([]int64, len(products))
	for i, p := range products {
		result[i] = model.ProductWithVariants{Product: p}
		byID[p.ID] = i
		ids[i] = p.ID
	}
	if len(ids) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(
		"SELECT %s FROM variants WHERE product_id = ANY($1) ORDER BY product_id, id",
		variantColumns)

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query variants")
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		if i, ok := byID[v.ProductID]; ok {
			result[i].Variants = append(result[i].Variants, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}
	return result, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Tagline, &p.ShortDescription,
		&p.Description, &p.Price, &p.OriginalPrice, &p.Attributes, &p.Images,
		&p.Benefits, &p.ExposeVariants, &p.Status, &p.CategorySlug,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan product: %w", err)
	}
	return p, nil
}

func scanVariant(row pgx.Row) (model.Variant, error) {
	var v model.Variant
	err := row.Scan(
		&v.ID, &v.ProductID, &v.Name, &v.SKU, &v.Price, &v.OriginalPrice,
		&v.Stock, &v.Attributes, &v.Image, &v.Description,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return v, fmt.Errorf("failed to scan variant: %w", err)
	}
	return v, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation on the named constraint (any constraint when name is empty).
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
