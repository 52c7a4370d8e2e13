package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ErrPaymentReferenceTaken signals that another order already carries the
// payment reference being inserted. The storage layer's unique index makes
// this the authoritative duplicate check under concurrent submissions.
var ErrPaymentReferenceTaken = errors.New("payment reference already used by an existing order")

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Insert writes the order header within the provided transaction.
func (r *orderRepository) Insert(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, email, payment_reference, status,
			subtotal, tax, shipping, total, currency
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		order.ID, order.UserID, order.Email, order.PaymentReference,
		order.Status, order.Subtotal, order.Tax, order.Shipping,
		order.Total, order.Currency,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "orders_payment_reference_idx") {
			return ErrPaymentReferenceTaken
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to insert order")
		return fmt.Errorf("failed to insert order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order header inserted")

	return nil
}

// InsertItems writes the order line items within the provided transaction.
func (r *orderRepository) InsertItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (
			id, order_id, product_id, variant_id, quantity, price,
			name, variant_name, sku
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, item.ProductID, item.VariantID,
			item.Quantity, item.Price, item.Name, item.VariantName, item.SKU)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Int64("variant_id", items[i].VariantID).
				Msg("failed to insert order item")
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items inserted")

	return nil
}

// InsertEvent appends an audit event within the provided transaction.
func (r *orderRepository) InsertEvent(ctx context.Context, tx pgx.Tx, event *model.OrderEvent) error {
	query := `
		INSERT INTO order_events (id, order_id, status)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := tx.QueryRow(ctx, query, event.ID, event.OrderID, event.Status).
		Scan(&event.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", event.OrderID.String()).
			Msg("failed to insert order event")
		return fmt.Errorf("failed to insert order event: %w", err)
	}
	return nil
}

const orderColumns = `
	id, user_id, email, payment_reference, status, subtotal, tax, shipping,
	total, currency, created_at, updated_at`

// GetByPaymentReference retrieves the order carrying the given idempotency
// token, or nil when none exists.
func (r *orderRepository) GetByPaymentReference(ctx context.Context, reference string) (*model.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE payment_reference = $1", orderColumns)

	order, err := scanOrder(r.pool.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("payment_reference", reference).Msg("failed to query order by payment reference")
		return nil, fmt.Errorf("failed to query order by payment reference: %w", err)
	}
	return &order, nil
}

// GetByID retrieves an order with its items and events.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE id = $1", orderColumns)

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, variant_id, quantity, price,
			name, variant_name, sku
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.VariantID, &item.Quantity, &item.Price, &item.Name,
			&item.VariantName, &item.SKU)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	eventsQuery := `
		SELECT id, order_id, status, created_at
		FROM order_events
		WHERE order_id = $1
		ORDER BY created_at, id
	`

	eventRows, err := r.pool.Query(ctx, eventsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query order events: %w", err)
	}
	defer eventRows.Close()

	var events []model.OrderEvent
	for eventRows.Next() {
		var event model.OrderEvent
		if err := eventRows.Scan(&event.ID, &event.OrderID, &event.Status, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order event: %w", err)
		}
		events = append(events, event)
	}
	if err := eventRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order events: %w", err)
	}

	return &model.OrderDetail{Order: order, Items: items, Events: events}, nil
}

// ListByUser retrieves a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM orders WHERE user_id = $1 ORDER BY created_at DESC", orderColumns)
	return r.listOrders(ctx, query, userID)
}

// ListRecent retrieves the most recent orders across all users.
func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM orders ORDER BY created_at DESC LIMIT $1", orderColumns)
	return r.listOrders(ctx, query, limit)
}

func (r *orderRepository) listOrders(ctx context.Context, query string, arg any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.Email, &o.PaymentReference, &o.Status,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.Total, &o.Currency,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, err
		}
		return o, fmt.Errorf("failed to scan order: %w", err)
	}
	return o, nil
}
