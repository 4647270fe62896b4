package importer

import (
	"context"
	"strings"
	"testing"

	"storefront/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.items = append(s.items, p)
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `id,name,category,price,salePrice,stock,image,variant.color,variant.colorImage,variant.storage,variant.config,variant.price,variant.stock
iphone-15,iPhone 15,phone,19990000,18490000,30,https://cdn.example.com/iphone-15.jpg,,,,,,
,,,,,,,Xanh,https://cdn.example.com/iphone-15-blue.jpg,,,,
,,,,,,,,,256GB,,22990000,12
mbp-14,MacBook Pro 14,laptop,42990000,,8,https://cdn.example.com/mbp-14.jpg,,,,,,
,,,,,,,,,,M3 Pro / 18GB / 512GB,52990000,4`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 products imported, got %d", count)
	}
	if len(repo.items) != 2 {
		t.Fatalf("expected 2 products saved, got %d", len(repo.items))
	}

	phone := repo.items[0]
	if phone.ID != "iphone-15" || phone.Price != 19990000 || phone.SalePrice != 18490000 || phone.Stock != 30 {
		t.Fatalf("unexpected product data: %+v", phone)
	}
	if phone.Variants == nil || phone.Variants.Kind != domain.OptionKindPhone {
		t.Fatalf("expected phone variant schema, got %+v", phone.Variants)
	}
	if len(phone.Variants.Colors) != 1 || phone.Variants.Colors[0].Image == "" {
		t.Fatalf("expected one color with image, got %+v", phone.Variants.Colors)
	}
	storage := phone.Variants.Storages[0]
	if storage.Value != "256GB" || storage.Price != 22990000 || storage.Stock != 12 || !storage.HasStock {
		t.Fatalf("unexpected storage option: %+v", storage)
	}

	laptop := repo.items[1]
	if laptop.Variants == nil || laptop.Variants.Kind != domain.OptionKindLaptop {
		t.Fatalf("expected laptop variant schema, got %+v", laptop.Variants)
	}
	cfg := laptop.Variants.Configs[0]
	if cfg.Value != "M3 Pro / 18GB / 512GB" || cfg.Price != 52990000 || cfg.Stock != 4 || !cfg.HasStock {
		t.Fatalf("unexpected config option: %+v", cfg)
	}
}

func TestCSVImporter_RejectsMissingPrice(t *testing.T) {
	csvData := `id,name,category,price
broken,Broken Product,phone,`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatal("expected error for product without price")
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected no products saved, got %d", len(repo.items))
	}
}

func TestCSVImporter_SkipsBlankRows(t *testing.T) {
	csvData := `id,name,category,price,stock
,,,,
airpods,AirPods Pro 2,accessory,5990000,100
,,,,`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 1 || len(repo.items) != 1 {
		t.Fatalf("expected 1 product, got count=%d saved=%d", count, len(repo.items))
	}
	if repo.items[0].Variants != nil {
		t.Fatalf("expected no variant schema, got %+v", repo.items[0].Variants)
	}
}
