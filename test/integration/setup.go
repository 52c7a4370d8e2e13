package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/variant"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing. It mirrors
// migrations/schema.sql.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id              BIGSERIAL PRIMARY KEY,
			slug            VARCHAR(255) NOT NULL,
			name            VARCHAR(255) NOT NULL,
			tagline         TEXT NOT NULL DEFAULT '',
			short_description TEXT NOT NULL DEFAULT '',
			description     TEXT NOT NULL DEFAULT '',
			price           BIGINT NOT NULL CHECK (price >= 0),
			original_price  BIGINT,
			attributes      JSONB NOT NULL DEFAULT '{}',
			images          JSONB NOT NULL DEFAULT '{}',
			benefits        JSONB NOT NULL DEFAULT '[]',
			expose_variants BOOLEAN NOT NULL DEFAULT FALSE,
			status          VARCHAR(20) NOT NULL DEFAULT 'DRAFT',
			category_slug   VARCHAR(255) NOT NULL DEFAULT '',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT products_slug_key UNIQUE (slug)
		);

		CREATE TABLE IF NOT EXISTS variants (
			id              BIGSERIAL PRIMARY KEY,
			product_id      BIGINT NOT NULL REFERENCES products(id),
			name            VARCHAR(255) NOT NULL,
			sku             VARCHAR(255) NOT NULL,
			price           BIGINT NOT NULL CHECK (price >= 0),
			original_price  BIGINT,
			stock           INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			attributes      JSONB NOT NULL DEFAULT '{}',
			image           TEXT,
			description     TEXT,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT variants_sku_key UNIQUE (sku)
		);

		CREATE INDEX IF NOT EXISTS variants_product_id_idx ON variants(product_id);
		CREATE INDEX IF NOT EXISTS products_category_slug_idx ON products(category_slug);
		CREATE INDEX IF NOT EXISTS products_status_idx ON products(status);

		CREATE TABLE IF NOT EXISTS orders (
			id                UUID PRIMARY KEY,
			user_id           VARCHAR(255) NOT NULL,
			email             VARCHAR(255),
			payment_reference VARCHAR(255),
			status            VARCHAR(50) NOT NULL DEFAULT 'PLACED',
			subtotal          BIGINT NOT NULL CHECK (subtotal >= 0),
			tax               BIGINT NOT NULL DEFAULT 0 CHECK (tax >= 0),
			shipping          BIGINT NOT NULL DEFAULT 0 CHECK (shipping >= 0),
			total             BIGINT NOT NULL CHECK (total >= 0),
			currency          CHAR(3) NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE UNIQUE INDEX IF NOT EXISTS orders_payment_reference_idx
			ON orders(payment_reference)
			WHERE payment_reference IS NOT NULL;

		CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders(user_id);

		CREATE TABLE IF NOT EXISTS order_items (
			id           UUID PRIMARY KEY,
			order_id     UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id   BIGINT NOT NULL REFERENCES products(id),
			variant_id   BIGINT NOT NULL REFERENCES variants(id),
			quantity     INTEGER NOT NULL CHECK (quantity > 0),
			price        BIGINT NOT NULL CHECK (price >= 0),
			name         VARCHAR(255) NOT NULL,
			variant_name VARCHAR(255) NOT NULL DEFAULT '',
			sku          VARCHAR(255) NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS order_items_order_id_idx ON order_items(order_id);
		CREATE INDEX IF NOT EXISTS order_items_product_id_idx ON order_items(product_id);

		CREATE TABLE IF NOT EXISTS order_events (
			id         UUID PRIMARY KEY,
			order_id   UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			status     VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS order_events_order_id_idx ON order_events(order_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedCatalog generates two published products through the attribute
// combinator: an exposed four-variant protein powder and an unexposed
// two-variant shaker bottle. It returns them in that order.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) []*model.ProductWithVariants {
	t.Helper()

	ctx := context.Background()
	logger := zerolog.Nop()
	productRepo := repository.NewProductRepository(pool, logger)
	products := service.NewProductService(productRepo, 256, logger)

	override := int64(119900)
	requests := []*service.GenerateProductRequest{
		{
			Name:      "Protein Powder",
			BaseSKU:   "PROT",
			BasePrice: 99900,
			BaseStock: 50,
			Options: []variant.Axis{
				{Name: "Flavor", Values: []string{"Vanilla", "Chocolate"}},
				{Name: "Size", Values: []string{"500g", "1kg"}},
			},
			VariantOverrides: []variant.Override{
				{Match: map[string]string{"Flavor": "Vanilla", "Size": "1kg"}, Price: &override},
			},
			Images:         model.Images{Main: "/images/protein-main.jpg"},
			ExposeVariants: true,
			Status:         model.ProductStatusPublished,
			CategorySlug:   "supplements",
		},
		{
			Name:      "Shaker Bottle",
			BaseSKU:   "SHAKE",
			BasePrice: 40000,
			BaseStock: 100,
			Options: []variant.Axis{
				{Name: "Color", Values: []string{"Black", "Blue"}},
			},
			Images:       model.Images{Main: "/images/shaker-main.jpg"},
			Status:       model.ProductStatusPublished,
			CategorySlug: "accessories",
		},
	}

	seeded := make([]*model.ProductWithVariants, 0, len(requests))
	for _, req := range requests {
		created, err := products.Generate(ctx, req)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", req.Name, err)
		}
		seeded = append(seeded, created)
	}
	return seeded
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_events", "order_items", "orders", "variants", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
