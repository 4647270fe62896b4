package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

// Apply inserts demo catalog products for manual testing. It is idempotent:
// the repository upserts by product id.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) error {
	repo := productrepo.NewPostgres(pool, logger)

	for _, p := range demoProducts() {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}

func demoProducts() []domain.Product {
	return []domain.Product{
		{
			ID:       "iphone-15-pro",
			Name:     "iPhone 15 Pro",
			Category: "phone",
			Price:    28990000,
			Stock:    25,
			Image:    "https://cdn.example.com/iphone-15-pro.jpg",
			Variants: &domain.VariantSchema{
				Kind: domain.OptionKindPhone,
				Colors: []domain.ColorOption{
					{Value: "Titan Tự Nhiên", Image: "https://cdn.example.com/iphone-15-pro-natural.jpg"},
					{Value: "Titan Xanh", Image: "https://cdn.example.com/iphone-15-pro-blue.jpg"},
				},
				Storages: []domain.StorageOption{
					{Value: "128GB"},
					{Value: "256GB", Price: 32990000},
					{Value: "512GB", Price: 38990000},
				},
				Combinations: []domain.VariantCombo{
					{Key: "color:Titan Xanh|storage:512GB", Price: 39490000, Stock: 3},
				},
			},
		},
		{
			ID:        "galaxy-s24",
			Name:      "Samsung Galaxy S24",
			Category:  "phone",
			Price:     22990000,
			SalePrice: 19990000,
			Stock:     40,
			Image:     "https://cdn.example.com/galaxy-s24.jpg",
			Variants: &domain.VariantSchema{
				Kind: domain.OptionKindPhone,
				Colors: []domain.ColorOption{
					{Value: "Đen"},
					{Value: "Tím"},
				},
				Storages: []domain.StorageOption{
					{Value: "256GB"},
					{Value: "512GB", Price: 22490000},
				},
			},
		},
		{
			ID:       "macbook-pro-14",
			Name:     "MacBook Pro 14",
			Category: "laptop",
			Price:    42990000,
			Stock:    10,
			Image:    "https://cdn.example.com/macbook-pro-14.jpg",
			Variants: &domain.VariantSchema{
				Kind: domain.OptionKindLaptop,
				Configs: []domain.ConfigOption{
					{Value: "M3 / 8GB / 512GB"},
					{Value: "M3 Pro / 18GB / 512GB", Price: 52990000, Stock: 4, HasStock: true},
				},
			},
		},
		{
			ID:       "airpods-pro-2",
			Name:     "AirPods Pro 2",
			Category: "accessory",
			Price:    5990000,
			Stock:    120,
			Image:    "https://cdn.example.com/airpods-pro-2.jpg",
		},
	}
}
