package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func cartVariants() []model.Variant {
	return []model.Variant{
		{ID: 11, ProductID: 1, Name: "Protein Powder - Vanilla / 500g", SKU: "PROT-VANILLA-500G", Price: 999, Stock: 50},
		{ID: 21, ProductID: 2, Name: "Shaker - Black", SKU: "SHAKE-BLACK", Price: 400, Stock: 200},
	}
}

func cartRequest() *model.CreateOrderRequest {
	ref := "pay_abc"
	return &model.CreateOrderRequest{
		UserID:           "user_1",
		PaymentReference: &ref,
		Tax:              50,
		Shipping:         40,
		Items: []model.OrderLineRequest{
			{ProductID: 1, VariantID: 11, Quantity: 2},
			{ProductID: 2, VariantID: 21, Quantity: 1},
		},
	}
}

func setupCatalogMocks(productRepo *MockProductRepository) {
	productRepo.On("GetVariantsByIDs", mock.Anything, []int64{11, 21}).Return(cartVariants(), nil)
	productRepo.On("GetByID", mock.Anything, int64(1)).Return(&model.ProductWithVariants{
		Product: model.Product{ID: 1, Name: "Protein Powder"},
	}, nil)
	productRepo.On("GetByID", mock.Anything, int64(2)).Return(&model.ProductWithVariants{
		Product: model.Product{ID: 2, Name: "Shaker Bottle"},
	}, nil)
}

func newOrderServiceForTest(orderRepo *MockOrderRepository, productRepo *MockProductRepository) OrderService {
	return NewOrderService(orderRepo, productRepo, nil, nil, "INR", zerolog.Nop())
}

func TestOrderService_Create_Success(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	tx := new(MockTx)

	setupCatalogMocks(productRepo)
	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(nil, nil)
	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("Insert", ctx, tx, mock.MatchedBy(func(o *model.Order) bool {
		return o.UserID == "user_1" &&
			o.Status == model.OrderStatusPending &&
			o.Subtotal == 2398 &&
			o.Tax == 50 &&
			o.Shipping == 40 &&
			o.Total == 2488 &&
			o.Currency == "INR"
	})).Return(nil)
	orderRepo.On("InsertItems", ctx, tx, mock.MatchedBy(func(items []model.OrderItem) bool {
		if len(items) != 2 {
			return false
		}
		first := items[0]
		return first.ProductID == 1 &&
			first.VariantID == 11 &&
			first.Quantity == 2 &&
			first.Price == 999 &&
			first.Name == "Protein Powder" &&
			first.VariantName == "Protein Powder - Vanilla / 500g" &&
			first.SKU == "PROT-VANILLA-500G" &&
			first.OrderID != uuid.Nil
	})).Return(nil)
	orderRepo.On("InsertEvent", ctx, tx, mock.MatchedBy(func(e *model.OrderEvent) bool {
		return e.Status == model.EventOrderPlaced
	})).Return(nil)
	tx.On("Commit", ctx).Return(nil)

	svc := newOrderServiceForTest(orderRepo, productRepo)
	resp, err := svc.Create(ctx, cartRequest())

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Success)
	assert.False(t, resp.Replayed)
	assert.NotEqual(t, uuid.Nil, resp.OrderID)
	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
	tx.AssertExpectations(t)
	tx.AssertNotCalled(t, "Rollback", mock.Anything)
}

func TestOrderService_Create_UnitPricesAreAuthoritative(t *testing.T) {
	// The request schema carries no prices at all; even a client that
	// tampers with the JSON cannot influence the charged amounts, which are
	// always re-read from the variants.
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	tx := new(MockTx)

	setupCatalogMocks(productRepo)
	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(nil, nil)
	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("Insert", ctx, tx, mock.Anything).Return(nil)
	orderRepo.On("InsertItems", ctx, tx, mock.MatchedBy(func(items []model.OrderItem) bool {
		return items[0].Price == 999 && items[1].Price == 400
	})).Return(nil)
	orderRepo.On("InsertEvent", ctx, tx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)

	svc := newOrderServiceForTest(orderRepo, productRepo)
	_, err := svc.Create(ctx, cartRequest())

	require.NoError(t, err)
	orderRepo.AssertExpectations(t)
}

func TestOrderService_Create_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)

	existingID := uuid.New()
	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(&model.Order{ID: existingID}, nil)

	svc := newOrderServiceForTest(orderRepo, productRepo)
	resp, err := svc.Create(ctx, cartRequest())

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, resp.Replayed)
	assert.Equal(t, existingID, resp.OrderID)

	// A replay performs no catalogue reads and no writes.
	orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
	productRepo.AssertNotCalled(t, "GetVariantsByIDs", mock.Anything, mock.Anything)
}

func TestOrderService_Create_ReplayEvenWhenCartWouldFailValidation(t *testing.T) {
	// The idempotency check runs before validation: a retried callback
	// replays even if the catalogue changed since the first submission.
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)

	existingID := uuid.New()
	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(&model.Order{ID: existingID}, nil)

	req := cartRequest()
	req.Items = nil // would be ErrNoOrderItems on a fresh submission

	svc := newOrderServiceForTest(orderRepo, productRepo)
	resp, err := svc.Create(ctx, req)

	require.NoError(t, err)
	assert.True(t, resp.Replayed)
	assert.Equal(t, existingID, resp.OrderID)
}

func TestOrderService_Create_ValidationRejectsBeforeAnyWrite(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		mutate      func(*model.CreateOrderRequest)
		expectError error
	}{
		{
			name:        "Missing user id",
			mutate:      func(r *model.CreateOrderRequest) { r.UserID = "" },
			expectError: model.ErrMissingUserID,
		},
		{
			name:        "Empty cart",
			mutate:      func(r *model.CreateOrderRequest) { r.Items = nil },
			expectError: model.ErrNoOrderItems,
		},
		{
			name:        "Missing variant id on one line rejects the whole order",
			mutate:      func(r *model.CreateOrderRequest) { r.Items[1].VariantID = 0 },
			expectError: model.ErrMissingVariantID,
		},
		{
			name:        "Zero quantity",
			mutate:      func(r *model.CreateOrderRequest) { r.Items[0].Quantity = 0 },
			expectError: model.ErrInvalidQuantity,
		},
		{
			name:        "Negative quantity",
			mutate:      func(r *model.CreateOrderRequest) { r.Items[0].Quantity = -2 },
			expectError: model.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(MockOrderRepository)
			productRepo := new(MockProductRepository)
			orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(nil, nil)

			req := cartRequest()
			tt.mutate(req)

			svc := newOrderServiceForTest(orderRepo, productRepo)
			resp, err := svc.Create(ctx, req)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.expectError)
			orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
			productRepo.AssertNotCalled(t, "GetVariantsByIDs", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_Create_UnknownVariant(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)

	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(nil, nil)
	// Only the first variant exists.
	productRepo.On("GetVariantsByIDs", ctx, []int64{11, 21}).Return(cartVariants()[:1], nil)
	productRepo.On("GetByID", mock.Anything, int64(1)).Return(&model.ProductWithVariants{
		Product: model.Product{ID: 1, Name: "Protein Powder"},
	}, nil)

	svc := newOrderServiceForTest(orderRepo, productRepo)
	resp, err := svc.Create(ctx, cartRequest())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, model.ErrVariantNotFound)
	orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_Create_VariantUnderWrongProduct(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)

	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(nil, nil)

	variants := cartVariants()
	variants[1].ProductID = 99 // variant exists but belongs elsewhere
	productRepo.On("GetVariantsByIDs", ctx, []int64{11, 21}).Return(variants, nil)
	productRepo.On("GetByID", mock.Anything, int64(1)).Return(&model.ProductWithVariants{
		Product: model.Product{ID: 1, Name: "Protein Powder"},
	}, nil)

	svc := newOrderServiceForTest(orderRepo, productRepo)
	resp, err := svc.Create(ctx, cartRequest())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, model.ErrVariantNotFound)
	orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_Create_RollsBackOnItemFailure(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	tx := new(MockTx)

	setupCatalogMocks(productRepo)
	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(nil, nil)
	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("Insert", ctx, tx, mock.Anything).Return(nil)
	orderRepo.On("InsertItems", ctx, tx, mock.Anything).Return(errors.New("connection reset"))
	tx.On("Rollback", ctx).Return(nil)

	svc := newOrderServiceForTest(orderRepo, productRepo)
	resp, err := svc.Create(ctx, cartRequest())

	assert.Nil(t, resp)
	require.Error(t, err)
	tx.AssertCalled(t, "Rollback", ctx)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
	orderRepo.AssertNotCalled(t, "InsertEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Create_ConcurrentDuplicateResolvesToWinner(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	tx := new(MockTx)

	winnerID := uuid.New()
	setupCatalogMocks(productRepo)
	// Not present at the pre-check, but inserted by a concurrent request
	// before our insert lands.
	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(nil, nil).Once()
	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("Insert", ctx, tx, mock.Anything).Return(repository.ErrPaymentReferenceTaken)
	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(&model.Order{ID: winnerID}, nil).Once()
	tx.On("Rollback", ctx).Return(nil)

	svc := newOrderServiceForTest(orderRepo, productRepo)
	resp, err := svc.Create(ctx, cartRequest())

	require.NoError(t, err)
	assert.True(t, resp.Replayed)
	assert.Equal(t, winnerID, resp.OrderID)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
	orderRepo.AssertNotCalled(t, "InsertItems", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Create_EnrichesMissingEmail(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	identityClient := new(MockIdentityClient)
	tx := new(MockTx)

	setupCatalogMocks(productRepo)
	identityClient.On("EmailForUser", ctx, "user_1").Return("user@example.com", nil)
	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(nil, nil)
	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("Insert", ctx, tx, mock.MatchedBy(func(o *model.Order) bool {
		return o.Email != nil && *o.Email == "user@example.com"
	})).Return(nil)
	orderRepo.On("InsertItems", ctx, tx, mock.Anything).Return(nil)
	orderRepo.On("InsertEvent", ctx, tx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)

	svc := NewOrderService(orderRepo, productRepo, identityClient, nil, "INR", zerolog.Nop())
	_, err := svc.Create(ctx, cartRequest())

	require.NoError(t, err)
	identityClient.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
}

func TestOrderService_Create_IdentityFailureDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	identityClient := new(MockIdentityClient)
	tx := new(MockTx)

	setupCatalogMocks(productRepo)
	identityClient.On("EmailForUser", ctx, "user_1").Return("", errors.New("identity unavailable"))
	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(nil, nil)
	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("Insert", ctx, tx, mock.MatchedBy(func(o *model.Order) bool {
		return o.Email == nil
	})).Return(nil)
	orderRepo.On("InsertItems", ctx, tx, mock.Anything).Return(nil)
	orderRepo.On("InsertEvent", ctx, tx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)

	svc := NewOrderService(orderRepo, productRepo, identityClient, nil, "INR", zerolog.Nop())
	resp, err := svc.Create(ctx, cartRequest())

	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestOrderService_Create_SubmittedEmailWinsOverIdentity(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	identityClient := new(MockIdentityClient)
	tx := new(MockTx)

	setupCatalogMocks(productRepo)
	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(nil, nil)
	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("Insert", ctx, tx, mock.MatchedBy(func(o *model.Order) bool {
		return o.Email != nil && *o.Email == "submitted@example.com"
	})).Return(nil)
	orderRepo.On("InsertItems", ctx, tx, mock.Anything).Return(nil)
	orderRepo.On("InsertEvent", ctx, tx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)

	req := cartRequest()
	email := "submitted@example.com"
	req.Email = &email

	svc := NewOrderService(orderRepo, productRepo, identityClient, nil, "INR", zerolog.Nop())
	_, err := svc.Create(ctx, req)

	require.NoError(t, err)
	identityClient.AssertNotCalled(t, "EmailForUser", mock.Anything, mock.Anything)
}

func TestOrderService_Create_PublishesCreatedEvent(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	tx := new(MockTx)

	setupCatalogMocks(productRepo)
	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(nil, nil)
	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("Insert", ctx, tx, mock.Anything).Return(nil)
	orderRepo.On("InsertItems", ctx, tx, mock.Anything).Return(nil)
	orderRepo.On("InsertEvent", ctx, tx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)
	publisher.On("PublishOrderCreated", ctx, mock.Anything).Return(nil)

	svc := NewOrderService(orderRepo, productRepo, nil, publisher, "INR", zerolog.Nop())
	_, err := svc.Create(ctx, cartRequest())

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestOrderService_Create_PublishFailureDoesNotFailOrder(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	tx := new(MockTx)

	setupCatalogMocks(productRepo)
	orderRepo.On("GetByPaymentReference", ctx, "pay_abc").Return(nil, nil)
	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("Insert", ctx, tx, mock.Anything).Return(nil)
	orderRepo.On("InsertItems", ctx, tx, mock.Anything).Return(nil)
	orderRepo.On("InsertEvent", ctx, tx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)
	publisher.On("PublishOrderCreated", ctx, mock.Anything).Return(errors.New("broker down"))

	svc := NewOrderService(orderRepo, productRepo, nil, publisher, "INR", zerolog.Nop())
	resp, err := svc.Create(ctx, cartRequest())

	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestOrderService_Create_NoPaymentReferenceSkipsIdempotencyCheck(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	tx := new(MockTx)

	setupCatalogMocks(productRepo)
	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("Insert", ctx, tx, mock.Anything).Return(nil)
	orderRepo.On("InsertItems", ctx, tx, mock.Anything).Return(nil)
	orderRepo.On("InsertEvent", ctx, tx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)

	req := cartRequest()
	req.PaymentReference = nil

	svc := newOrderServiceForTest(orderRepo, productRepo)
	resp, err := svc.Create(ctx, req)

	require.NoError(t, err)
	assert.True(t, resp.Success)
	orderRepo.AssertNotCalled(t, "GetByPaymentReference", mock.Anything, mock.Anything)
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		productRepo := new(MockProductRepository)

		id := uuid.New()
		orderRepo.On("GetByID", ctx, id).Return(&model.OrderDetail{
			Order:  model.Order{ID: id},
			Items:  []model.OrderItem{{VariantID: 11}},
			Events: []model.OrderEvent{{Status: model.EventOrderPlaced}},
		}, nil)

		svc := newOrderServiceForTest(orderRepo, productRepo)
		detail, err := svc.GetByID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, id, detail.Order.ID)
		assert.Len(t, detail.Items, 1)
		assert.Len(t, detail.Events, 1)
	})

	t.Run("Not found", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		productRepo := new(MockProductRepository)

		id := uuid.New()
		orderRepo.On("GetByID", ctx, id).Return(nil, nil)

		svc := newOrderServiceForTest(orderRepo, productRepo)
		_, err := svc.GetByID(ctx, id)

		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

func TestOrderService_ListByUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		productRepo := new(MockProductRepository)
		orderRepo.On("ListByUser", ctx, "user_1").Return([]model.Order{{UserID: "user_1"}}, nil)

		svc := newOrderServiceForTest(orderRepo, productRepo)
		orders, err := svc.ListByUser(ctx, "user_1")

		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})

	t.Run("Missing user id", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		productRepo := new(MockProductRepository)

		svc := newOrderServiceForTest(orderRepo, productRepo)
		_, err := svc.ListByUser(ctx, "")

		assert.ErrorIs(t, err, model.ErrMissingUserID)
	})
}

func TestOrderService_ListRecent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		limit         int
		expectedLimit int
	}{
		{name: "Default limit", limit: 0, expectedLimit: 10},
		{name: "Explicit limit", limit: 25, expectedLimit: 25},
		{name: "Clamped to 100", limit: 500, expectedLimit: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(MockOrderRepository)
			productRepo := new(MockProductRepository)
			orderRepo.On("ListRecent", ctx, tt.expectedLimit).Return([]model.Order{}, nil)

			svc := newOrderServiceForTest(orderRepo, productRepo)
			_, err := svc.ListRecent(ctx, tt.limit)

			require.NoError(t, err)
			orderRepo.AssertExpectations(t)
		})
	}
}
