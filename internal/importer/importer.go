package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products. A row
// with a product id starts a new product; rows without one are variant
// continuation rows for the product above them.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

type csvRow struct {
	ID        string
	Name      string
	Category  string
	Price     int64
	SalePrice int64
	Stock     int
	Image     string

	VariantColor      string
	VariantColorImage string
	VariantStorage    string
	VariantConfig     string
	VariantPrice      int64
	VariantStock      int
	VariantHasStock   bool
}

// Run parses CSV rows and upserts products grouped by product id.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *domain.Product
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}

		if row.ID != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = productFromRow(row)
			applyVariant(current, row)
			continue
		}

		// Continuation rows declare variant dimensions for the current product.
		if current != nil {
			applyVariant(current, row)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p *domain.Product) error {
	if p.ID == "" || p.Name == "" || p.Price <= 0 {
		return fmt.Errorf("invalid product row (missing required fields) for id %q", p.ID)
	}
	if _, err := i.productRepo.Upsert(ctx, *p); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.ID, err)
	}
	return nil
}

func productFromRow(row *csvRow) *domain.Product {
	return &domain.Product{
		ID:        row.ID,
		Name:      row.Name,
		Category:  row.Category,
		Price:     row.Price,
		SalePrice: row.SalePrice,
		Stock:     row.Stock,
		Image:     row.Image,
	}
}

func applyVariant(p *domain.Product, row *csvRow) {
	if row.VariantColor == "" && row.VariantStorage == "" && row.VariantConfig == "" {
		return
	}
	if p.Variants == nil {
		p.Variants = &domain.VariantSchema{}
	}
	schema := p.Variants

	if row.VariantConfig != "" {
		schema.Kind = domain.OptionKindLaptop
		schema.Configs = append(schema.Configs, domain.ConfigOption{
			Value:    row.VariantConfig,
			Price:    row.VariantPrice,
			Stock:    row.VariantStock,
			HasStock: row.VariantHasStock,
		})
		return
	}

	schema.Kind = domain.OptionKindPhone
	if row.VariantColor != "" {
		schema.Colors = append(schema.Colors, domain.ColorOption{
			Value: row.VariantColor,
			Image: row.VariantColorImage,
		})
	}
	if row.VariantStorage != "" {
		schema.Storages = append(schema.Storages, domain.StorageOption{
			Value:    row.VariantStorage,
			Price:    row.VariantPrice,
			Stock:    row.VariantStock,
			HasStock: row.VariantHasStock,
		})
	}
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		ID:                pick(record, index, "id"),
		Name:              pick(record, index, "name"),
		Category:          pick(record, index, "category"),
		Image:             pick(record, index, "image"),
		VariantColor:      pick(record, index, "variant.color"),
		VariantColorImage: pick(record, index, "variant.colorImage"),
		VariantStorage:    pick(record, index, "variant.storage"),
		VariantConfig:     pick(record, index, "variant.config"),
	}

	hasVariant := row.VariantColor != "" || row.VariantStorage != "" || row.VariantConfig != ""
	if row.ID == "" && !hasVariant {
		return nil
	}

	row.Price = pickInt64(record, index, "price")
	row.SalePrice = pickInt64(record, index, "salePrice")
	row.Stock = int(pickInt64(record, index, "stock"))
	row.VariantPrice = pickInt64(record, index, "variant.price")
	if s := pick(record, index, "variant.stock"); s != "" {
		n, err := strconv.Atoi(s)
		if err == nil {
			row.VariantStock = n
			row.VariantHasStock = true
		}
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func pickInt64(record []string, index map[string]int, key string) int64 {
	v := pick(record, index, key)
	if v == "" {
		return 0
	}
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}
