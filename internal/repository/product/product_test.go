package product

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestPostgres_UpsertListGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Product{
		ID:       "iphone-15",
		Name:     "iPhone 15",
		Category: "phone",
		Price:    20000000,
		Stock:    10,
		Variants: &domain.VariantSchema{
			Kind:   domain.OptionKindPhone,
			Colors: []domain.ColorOption{{Value: "black"}, {Value: "blue", Image: "https://img.example/blue.jpg"}},
			Storages: []domain.StorageOption{
				{Value: "128GB"},
				{Value: "256GB", Price: 23000000, Stock: 4, HasStock: true},
			},
		},
	})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if p.ID != "iphone-15" {
		t.Fatalf("expected ID kept, got %s", p.ID)
	}

	updated, err := repo.Upsert(ctx, domain.Product{
		ID:        "iphone-15",
		Name:      "iPhone 15",
		Category:  "phone",
		Price:     20000000,
		SalePrice: 18500000,
		Stock:     8,
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.SalePrice != 18500000 {
		t.Fatalf("unexpected updated product %+v", updated)
	}

	got, err := repo.GetByID(ctx, "iphone-15")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SalePrice != 18500000 || got.Stock != 8 {
		t.Fatalf("unexpected product %+v", got)
	}
	if got.Variants != nil {
		t.Fatalf("update without variants must clear the schema, got %+v", got.Variants)
	}

	if _, err := repo.GetByID(ctx, "missing"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := repo.ListByCategory(ctx, "phone")
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 product, got %d", len(list))
	}
}

func TestPostgres_VariantsRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	if _, err := repo.Upsert(ctx, domain.Product{
		ID:       "mb-air",
		Name:     "MacBook Air",
		Category: "laptop",
		Price:    30000000,
		Stock:    5,
		Variants: &domain.VariantSchema{
			Kind: domain.OptionKindLaptop,
			Configs: []domain.ConfigOption{
				{Value: "8GB/256GB"},
				{Value: "16GB/512GB", Price: 36000000, Stock: 2, HasStock: true},
			},
		},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.GetByID(ctx, "mb-air")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Variants == nil || got.Variants.Kind != domain.OptionKindLaptop {
		t.Fatalf("unexpected variants %+v", got.Variants)
	}
	if len(got.Variants.Configs) != 2 || !got.Variants.Configs[1].HasStock {
		t.Fatalf("config overrides lost: %+v", got.Variants.Configs)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
