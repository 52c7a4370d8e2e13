package service

import (
	"context"
	"testing"

	"storefront/internal/catalog"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listedProduct() model.ProductWithVariants {
	return model.ProductWithVariants{
		Product: model.Product{
			ID:             1,
			Slug:           "protein-powder",
			Name:           "Protein Powder",
			Price:          999,
			Attributes:     model.AxisValues{"Flavor": {"Vanilla", "Chocolate"}},
			Images:         model.Images{Main: "/images/main.jpg"},
			ExposeVariants: true,
			Status:         model.ProductStatusPublished,
		},
		Variants: []model.Variant{
			{ID: 10, ProductID: 1, Name: "Protein Powder - Vanilla", Price: 999,
				Attributes: model.AxisValues{"Flavor": {"Vanilla"}}},
			{ID: 11, ProductID: 1, Name: "Protein Powder - Chocolate", Price: 1099,
				Attributes: model.AxisValues{"Flavor": {"Chocolate"}}},
		},
	}
}

func TestCatalogService_List(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("Projects exposed variants as cards", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("List", ctx, repository.ListingFilter{Sort: "asc", Limit: 20}).
			Return([]model.ProductWithVariants{listedProduct()}, nil)

		svc := NewCatalogService(repo, logger)
		items, err := svc.List(ctx, ListingQuery{Sort: "asc", Limit: 20})

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "protein-powder-v-10", items[0].ID)
		assert.Equal(t, "protein-powder-v-11", items[1].ID)
		repo.AssertExpectations(t)
	})

	t.Run("Clamps the limit to 100", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("List", ctx, repository.ListingFilter{Limit: 100}).
			Return([]model.ProductWithVariants{}, nil)

		svc := NewCatalogService(repo, logger)
		_, err := svc.List(ctx, ListingQuery{Limit: 5000})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Negative limit treated as unbounded", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("List", ctx, repository.ListingFilter{Limit: 0}).
			Return([]model.ProductWithVariants{}, nil)

		svc := NewCatalogService(repo, logger)
		_, err := svc.List(ctx, ListingQuery{Limit: -3})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Passes category and search filters through", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("List", ctx, repository.ListingFilter{
			CategorySlug: "supplements",
			Search:       "protein",
			Sort:         "desc",
		}).Return([]model.ProductWithVariants{}, nil)

		svc := NewCatalogService(repo, logger)
		_, err := svc.List(ctx, ListingQuery{Category: "supplements", Search: "protein", Sort: "desc"})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestCatalogService_Resolve(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("By numeric id defaults to first variant", func(t *testing.T) {
		pv := listedProduct()
		repo := new(MockProductRepository)
		repo.On("GetByID", ctx, int64(1)).Return(&pv, nil)

		svc := NewCatalogService(repo, logger)
		view, err := svc.Resolve(ctx, catalog.Ref{Kind: catalog.RefNumericID, ID: 1}, 0, nil)

		require.NoError(t, err)
		require.NotNil(t, view.Variant)
		assert.Equal(t, int64(10), view.Variant.ID)
		assert.Equal(t, "Protein Powder - Vanilla", view.Name)
	})

	t.Run("By slug with attribute selection", func(t *testing.T) {
		pv := listedProduct()
		repo := new(MockProductRepository)
		repo.On("GetBySlug", ctx, "protein-powder").Return(&pv, nil)

		svc := NewCatalogService(repo, logger)
		view, err := svc.Resolve(ctx,
			catalog.Ref{Kind: catalog.RefSlug, Slug: "protein-powder"},
			0, map[string]string{"Flavor": "Chocolate"})

		require.NoError(t, err)
		require.NotNil(t, view.Variant)
		assert.Equal(t, int64(11), view.Variant.ID)
		assert.Equal(t, int64(1099), view.Price)
	})

	t.Run("Virtual id resolves its variant", func(t *testing.T) {
		pv := listedProduct()
		repo := new(MockProductRepository)
		repo.On("GetBySlug", ctx, "protein-powder").Return(&pv, nil)

		svc := NewCatalogService(repo, logger)
		view, err := svc.Resolve(ctx,
			catalog.Ref{Kind: catalog.RefVirtual, Slug: "protein-powder", VariantID: 11}, 0, nil)

		require.NoError(t, err)
		require.NotNil(t, view.Variant)
		assert.Equal(t, int64(11), view.Variant.ID)
	})

	t.Run("Virtual id with numeric base loads by id", func(t *testing.T) {
		pv := listedProduct()
		repo := new(MockProductRepository)
		repo.On("GetByID", ctx, int64(1)).Return(&pv, nil)

		svc := NewCatalogService(repo, logger)
		view, err := svc.Resolve(ctx,
			catalog.Ref{Kind: catalog.RefVirtual, Slug: "1", VariantID: 10}, 0, nil)

		require.NoError(t, err)
		require.NotNil(t, view.Variant)
		assert.Equal(t, int64(10), view.Variant.ID)
		repo.AssertExpectations(t)
	})

	t.Run("Explicit variant id overrides the virtual suffix", func(t *testing.T) {
		pv := listedProduct()
		repo := new(MockProductRepository)
		repo.On("GetBySlug", ctx, "protein-powder").Return(&pv, nil)

		svc := NewCatalogService(repo, logger)
		view, err := svc.Resolve(ctx,
			catalog.Ref{Kind: catalog.RefVirtual, Slug: "protein-powder", VariantID: 10}, 11, nil)

		require.NoError(t, err)
		assert.Equal(t, int64(11), view.Variant.ID)
	})

	t.Run("Unknown product", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("GetBySlug", ctx, "missing").Return(nil, nil)

		svc := NewCatalogService(repo, logger)
		_, err := svc.Resolve(ctx, catalog.Ref{Kind: catalog.RefSlug, Slug: "missing"}, 0, nil)

		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("Archived product resolves as not found", func(t *testing.T) {
		pv := listedProduct()
		pv.Product.Status = model.ProductStatusArchived
		repo := new(MockProductRepository)
		repo.On("GetBySlug", ctx, "protein-powder").Return(&pv, nil)

		svc := NewCatalogService(repo, logger)
		_, err := svc.Resolve(ctx, catalog.Ref{Kind: catalog.RefSlug, Slug: "protein-powder"}, 0, nil)

		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("Unknown variant under the product", func(t *testing.T) {
		pv := listedProduct()
		repo := new(MockProductRepository)
		repo.On("GetBySlug", ctx, "protein-powder").Return(&pv, nil)

		svc := NewCatalogService(repo, logger)
		_, err := svc.Resolve(ctx,
			catalog.Ref{Kind: catalog.RefVirtual, Slug: "protein-powder", VariantID: 999}, 0, nil)

		assert.ErrorIs(t, err, model.ErrVariantNotFound)
	})

	t.Run("Unknown selection axis is a validation error", func(t *testing.T) {
		pv := listedProduct()
		repo := new(MockProductRepository)
		repo.On("GetBySlug", ctx, "protein-powder").Return(&pv, nil)

		svc := NewCatalogService(repo, logger)
		_, err := svc.Resolve(ctx,
			catalog.Ref{Kind: catalog.RefSlug, Slug: "protein-powder"},
			0, map[string]string{"Material": "Steel"})

		require.Error(t, err)
		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.ErrCodeUnknownAxis, domainErr.Code)
	})
}
