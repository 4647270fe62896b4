package domain

// Resolved is the effective unit price, stock and display image for one
// variant combination.
type Resolved struct {
	Price        int64
	Stock        int
	Image        string
	VariantPrice int64
}

// ResolveVariant resolves the effective price, stock and image for a product
// under the given selection. Priority order: an exactly matching row of the
// per-combination table wins; then a dimension-declared price; then a
// dimension-declared stock; finally the product's own price, sale price and
// stock. Image resolution is independent: a selected color carrying an image
// overrides the product image.
//
// A malformed or partial schema falls through to the product defaults; the
// function never fails.
func ResolveVariant(p Product, opts *Options) Resolved {
	res := Resolved{
		Price: basePrice(p),
		Stock: p.Stock,
		Image: p.Image,
	}
	if opts != nil && p.Variants != nil {
		if img := colorImage(p.Variants, opts.Color); img != "" {
			res.Image = img
		}
	}
	if opts == nil || p.Variants == nil {
		return res
	}

	if combo, ok := matchCombination(p.Variants, opts); ok {
		if combo.Price > 0 {
			res.Price = combo.Price
			res.VariantPrice = combo.Price
		}
		res.Stock = combo.Stock
		return res
	}

	price, stock, hasStock := dimensionOverrides(p.Variants, opts)
	if price > 0 {
		res.Price = price
		res.VariantPrice = price
	}
	if hasStock {
		res.Stock = stock
	}
	return res
}

// ComboKey builds the composite combination key for a selection, in the same
// form the catalog declares its per-combination table.
func (o *Options) ComboKey() string {
	if o == nil {
		return ""
	}
	switch {
	case o.Config != "":
		return "config:" + o.Config
	case o.Color != "" && o.Storage != "":
		return "color:" + o.Color + "|storage:" + o.Storage
	}
	return ""
}

func basePrice(p Product) int64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.Price
}

func matchCombination(schema *VariantSchema, opts *Options) (VariantCombo, bool) {
	key := opts.ComboKey()
	if key == "" {
		return VariantCombo{}, false
	}
	for _, combo := range schema.Combinations {
		if combo.Key == key {
			return combo, true
		}
	}
	return VariantCombo{}, false
}

func dimensionOverrides(schema *VariantSchema, opts *Options) (price int64, stock int, hasStock bool) {
	if opts.Storage != "" {
		for _, s := range schema.Storages {
			if s.Value != opts.Storage {
				continue
			}
			if s.Price > 0 {
				price = s.Price
			}
			if s.HasStock {
				stock, hasStock = s.Stock, true
			}
		}
	}
	if opts.Config != "" {
		for _, c := range schema.Configs {
			if c.Value != opts.Config {
				continue
			}
			if c.Price > 0 {
				price = c.Price
			}
			if c.HasStock {
				stock, hasStock = c.Stock, true
			}
		}
	}
	return price, stock, hasStock
}

func colorImage(schema *VariantSchema, color string) string {
	if color == "" {
		return ""
	}
	for _, c := range schema.Colors {
		if c.Value == color {
			return c.Image
		}
	}
	return ""
}
