package category

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/migrate"
)

func TestPostgres_ListAggregatesProducts(t *testing.T) {
	ctx := context.Background()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO products (id, name, category, price, stock) VALUES
		('p1', 'Phone A', 'phone', 100, 1),
		('p2', 'Phone B', 'phone', 200, 1),
		('p3', 'Laptop A', 'laptop', 300, 1),
		('p4', 'Uncategorized', '', 400, 1)
	`); err != nil {
		t.Fatalf("insert products: %v", err)
	}

	repo := NewPostgres(pool)
	cats, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	if cats[0].Name != "laptop" || cats[0].ProductCount != 1 {
		t.Fatalf("unexpected first category %+v", cats[0])
	}
	if cats[1].Name != "phone" || cats[1].ProductCount != 2 {
		t.Fatalf("unexpected second category %+v", cats[1])
	}
}
