package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/broker"
	"storefront/internal/identity"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderService implements OrderService. Unit prices are always re-derived
// from the persisted variants; client-supplied prices are never used.
type orderService struct {
	orderRepo       repository.OrderRepository
	productRepo     repository.ProductRepository
	identity        identity.Client   // optional
	publisher       broker.Publisher  // optional
	defaultCurrency string
	logger          zerolog.Logger
}

// NewOrderService creates a new order service. identityClient and
// publisher may be nil; both are best-effort collaborators.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	identityClient identity.Client,
	publisher broker.Publisher,
	defaultCurrency string,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:       orderRepo,
		productRepo:     productRepo,
		identity:        identityClient,
		publisher:       publisher,
		defaultCurrency: defaultCurrency,
		logger:          logger.With().Str("service", "order").Logger(),
	}
}

// Create validates a cart against the catalogue, derives verified totals
// and persists the order atomically.
func (s *orderService) Create(ctx context.Context, req *model.CreateOrderRequest) (*model.CreateOrderResponse, error) {
	// The idempotency check runs before any other validation so a
	// retried payment callback replays cleanly even if the catalogue has
	// changed since the first submission.
	if ref := paymentReference(req); ref != "" {
		existing, err := s.orderRepo.GetByPaymentReference(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to check payment reference: %w", err)
		}
		if existing != nil {
			s.logger.Info().
				Str("order_id", existing.ID.String()).
				Str("payment_reference", ref).
				Msg("duplicate order request replayed")
			metrics.OrdersReplayed.Inc()
			return &model.CreateOrderResponse{Success: true, OrderID: existing.ID, Replayed: true}, nil
		}
	}

	if err := s.validateRequest(req); err != nil {
		metrics.OrdersFailed.WithLabelValues("validation").Inc()
		return nil, err
	}

	lines, subtotal, err := s.verifyLines(ctx, req.Items)
	if err != nil {
		metrics.OrdersFailed.WithLabelValues("validation").Inc()
		s.logger.Warn().Err(err).Str("user_id", req.UserID).Msg("cart validation failed")
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	order := &model.Order{
		ID:               uuid.New(),
		UserID:           req.UserID,
		Email:            req.Email,
		PaymentReference: req.PaymentReference,
		Status:           model.OrderStatusPending,
		Subtotal:         subtotal,
		Tax:              req.Tax,
		Shipping:         req.Shipping,
		Total:            subtotal + req.Tax + req.Shipping,
		Currency:         currency,
	}

	s.enrichEmail(ctx, order)

	resp, err := s.persist(ctx, order, lines)
	if err != nil {
		return nil, err
	}
	if resp.Replayed {
		return resp, nil
	}

	metrics.OrdersCreated.Inc()
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(lines)).
		Int64("total", order.Total).
		Msg("order created")

	s.publishCreated(ctx, order)

	return resp, nil
}

// verifyLines re-validates every cart line against the catalogue before
// any write and returns the line items with authoritative unit prices.
func (s *orderService) verifyLines(ctx context.Context, items []model.OrderLineRequest) ([]model.OrderItem, int64, error) {
	variantIDs := make([]int64, len(items))
	for i, item := range items {
		variantIDs[i] = item.VariantID
	}

	variants, err := s.productRepo.GetVariantsByIDs(ctx, variantIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load variants: %w", err)
	}
	byID := make(map[int64]*model.Variant, len(variants))
	for i := range variants {
		byID[variants[i].ID] = &variants[i]
	}

	productNames := make(map[int64]string)

	var subtotal int64
	lines := make([]model.OrderItem, len(items))
	for i, item := range items {
		v, ok := byID[item.VariantID]
		if !ok || v.ProductID != item.ProductID {
			return nil, 0, model.ErrVariantNotFound
		}

		name, ok := productNames[v.ProductID]
		if !ok {
			pv, err := s.productRepo.GetByID(ctx, v.ProductID)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to load product %d: %w", v.ProductID, err)
			}
			if pv == nil {
				return nil, 0, model.ErrProductNotFound
			}
			name = pv.Product.Name
			productNames[v.ProductID] = name
		}

		lines[i] = model.OrderItem{
			ID:          uuid.New(),
			ProductID:   v.ProductID,
			VariantID:   v.ID,
			Quantity:    item.Quantity,
			Price:       v.Price,
			Name:        name,
			VariantName: v.Name,
			SKU:         v.SKU,
		}
		subtotal += v.Price * int64(item.Quantity)
	}

	return lines, subtotal, nil
}

// persist writes header, items and the initial audit event in one
// transaction. A concurrent duplicate payment reference is resolved by
// returning the winning order instead of an error.
func (s *orderService) persist(ctx context.Context, order *model.Order, lines []model.OrderItem) (*model.CreateOrderResponse, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		metrics.OrdersFailed.WithLabelValues("db").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback order transaction")
			}
		}
	}()

	if err = s.orderRepo.Insert(ctx, tx, order); err != nil {
		if errors.Is(err, repository.ErrPaymentReferenceTaken) {
			return s.replayAfterRace(ctx, tx, order)
		}
		metrics.OrdersFailed.WithLabelValues("db").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range lines {
		lines[i].OrderID = order.ID
	}
	if err = s.orderRepo.InsertItems(ctx, tx, lines); err != nil {
		metrics.OrdersFailed.WithLabelValues("db").Inc()
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	event := &model.OrderEvent{ID: uuid.New(), OrderID: order.ID, Status: model.EventOrderPlaced}
	if err = s.orderRepo.InsertEvent(ctx, tx, event); err != nil {
		metrics.OrdersFailed.WithLabelValues("db").Inc()
		return nil, fmt.Errorf("failed to record order event: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		metrics.OrdersFailed.WithLabelValues("db").Inc()
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return &model.CreateOrderResponse{Success: true, OrderID: order.ID}, nil
}

// replayAfterRace handles a payment-reference unique violation raised by a
// concurrent duplicate submission: abandon our transaction and return the
// order that won the race.
func (s *orderService) replayAfterRace(ctx context.Context, tx pgx.Tx, order *model.Order) (*model.CreateOrderResponse, error) {
	if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		s.logger.Error().Err(rbErr).Msg("failed to rollback losing order transaction")
	}

	ref := ""
	if order.PaymentReference != nil {
		ref = *order.PaymentReference
	}

	existing, err := s.orderRepo.GetByPaymentReference(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing order after duplicate insert: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("duplicate payment reference %q but no existing order found", ref)
	}

	s.logger.Info().
		Str("order_id", existing.ID.String()).
		Str("payment_reference", ref).
		Msg("concurrent duplicate order resolved to existing order")
	metrics.OrdersReplayed.Inc()

	return &model.CreateOrderResponse{Success: true, OrderID: existing.ID, Replayed: true}, nil
}

// enrichEmail fills a missing order email from the identity provider.
// Failures are logged and ignored; enrichment must never block creation.
func (s *orderService) enrichEmail(ctx context.Context, order *model.Order) {
	if s.identity == nil || (order.Email != nil && *order.Email != "") {
		return
	}

	email, err := s.identity.EmailForUser(ctx, order.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", order.UserID).Msg("failed to fetch user email for order")
		return
	}
	order.Email = &email
}

// publishCreated emits the order.created event; failures are logged only.
func (s *orderService) publishCreated(ctx context.Context, order *model.Order) {
	if s.publisher == nil {
		return
	}

	email := ""
	if order.Email != nil {
		email = *order.Email
	}
	event := &broker.OrderCreatedEvent{
		OrderID:   order.ID.String(),
		UserID:    order.UserID,
		Email:     email,
		Total:     order.Total,
		Currency:  order.Currency,
		CreatedAt: time.Now(),
	}

	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to publish order.created event")
	}
}

// GetByID retrieves an order with its items and audit trail.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	detail, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if detail == nil {
		return nil, model.ErrOrderNotFound
	}
	return detail, nil
}

// ListByUser retrieves a user's orders, newest first.
func (s *orderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, model.ErrMissingUserID
	}
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list user orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListRecent retrieves the most recent orders across all users.
func (s *orderService) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	orders, err := s.orderRepo.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list recent orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// validateRequest checks every line before any read or write so a single
// bad line rejects the whole order.
func (s *orderService) validateRequest(req *model.CreateOrderRequest) error {
	if req == nil || req.UserID == "" {
		return model.ErrMissingUserID
	}
	if len(req.Items) == 0 {
		return model.ErrNoOrderItems
	}
	if req.Tax < 0 || req.Shipping < 0 {
		return model.NewValidationError(model.ErrCodeMissingField, "Tax and shipping cannot be negative")
	}

	for i, item := range req.Items {
		if item.ProductID <= 0 {
			return model.NewValidationError(model.ErrCodeMissingField,
				fmt.Sprintf("item %d: product ID is required", i))
		}
		if item.VariantID <= 0 {
			return model.ErrMissingVariantID
		}
		if item.Quantity < 1 {
			return model.ErrInvalidQuantity
		}
	}
	return nil
}

func paymentReference(req *model.CreateOrderRequest) string {
	if req == nil || req.PaymentReference == nil {
		return ""
	}
	return *req.PaymentReference
}
