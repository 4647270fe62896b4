package domain

// Product is the catalog read model consumed by the cart. The catalog itself
// is owned by an external service; only the fields the resolver and the cart
// snapshot need are carried here.
type Product struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category,omitempty"`
	Price     int64          `json:"price"`
	SalePrice int64          `json:"salePrice,omitempty"`
	Stock     int            `json:"stock"`
	Image     string         `json:"image,omitempty"`
	Variants  *VariantSchema `json:"variants,omitempty"`
}

// VariantSchema declares a product's variant dimensions. Kind decides which
// dimensions apply: phone products combine color and storage, laptop products
// pick a single config.
type VariantSchema struct {
	Kind         OptionKind      `json:"kind"`
	Colors       []ColorOption   `json:"colors,omitempty"`
	Storages     []StorageOption `json:"storages,omitempty"`
	Configs      []ConfigOption  `json:"configs,omitempty"`
	Combinations []VariantCombo  `json:"combinations,omitempty"`
}

// ColorOption may carry its own image, which overrides the product image when
// that color is selected.
type ColorOption struct {
	Value string `json:"value"`
	Image string `json:"image,omitempty"`
}

// StorageOption may declare its own price and stock. HasStock distinguishes a
// declared zero stock from an absent declaration.
type StorageOption struct {
	Value    string `json:"value"`
	Price    int64  `json:"price,omitempty"`
	Stock    int    `json:"stock,omitempty"`
	HasStock bool   `json:"hasStock,omitempty"`
}

// ConfigOption may declare its own price and stock.
type ConfigOption struct {
	Value    string `json:"value"`
	Price    int64  `json:"price,omitempty"`
	Stock    int    `json:"stock,omitempty"`
	HasStock bool   `json:"hasStock,omitempty"`
}

// VariantCombo is one row of the flat per-combination table. Key follows the
// composite form "color:<v>|storage:<v>" for phones and "config:<v>" for
// laptops.
type VariantCombo struct {
	Key   string `json:"key"`
	Price int64  `json:"price,omitempty"`
	Stock int    `json:"stock"`
}

// Category is a catalog grouping derived from the products table.
type Category struct {
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}
