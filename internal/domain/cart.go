package domain

import "github.com/google/uuid"

// LineItem is one row of the cart, identified by product plus canonical
// option key. Price and image fields are a snapshot taken from the variant
// resolver at add time.
type LineItem struct {
	ID               string   `json:"id"`
	ProductID        string   `json:"productId"`
	Name             string   `json:"name"`
	UnitPrice        int64    `json:"unitPrice"`
	SalePrice        int64    `json:"salePrice,omitempty"`
	Image            string   `json:"image,omitempty"`
	Quantity         int      `json:"quantity"`
	StockAtSelection int      `json:"stockAtSelection"`
	Options          *Options `json:"options,omitempty"`
}

// EffectivePrice is the unit price used everywhere totals are computed:
// the resolved variant price first, then the sale price, then the list price.
func (li LineItem) EffectivePrice() int64 {
	if li.Options != nil && li.Options.VariantPrice > 0 {
		return li.Options.VariantPrice
	}
	if li.SalePrice > 0 {
		return li.SalePrice
	}
	return li.UnitPrice
}

// Subtotal is the line's contribution to the cart total.
func (li LineItem) Subtotal() int64 {
	return li.EffectivePrice() * int64(li.Quantity)
}

// Cart holds the line items of one owner plus totals and the checkout
// selection. TotalItems and TotalAmount are always recomputed as a fold over
// Items, never mutated independently.
type Cart struct {
	Items       []LineItem `json:"items"`
	TotalItems  int        `json:"totalItems"`
	TotalAmount int64      `json:"totalAmount"`
	SelectedIDs []string   `json:"selectedIds,omitempty"`
}

// AddLineInput is the add-to-cart request after variant resolution.
type AddLineInput struct {
	ProductID        string
	Name             string
	UnitPrice        int64
	SalePrice        int64
	Image            string
	Quantity         int
	StockAtSelection int
	Options          *Options
}

// AddLine merges the input into an existing line with the same product and
// canonical option key, or appends a new line with a fresh id. Returns the id
// of the affected line. Stock limits are enforced by callers before this runs.
func (c *Cart) AddLine(in AddLineInput) string {
	key := in.Options.CanonicalKey()
	for i := range c.Items {
		item := &c.Items[i]
		if item.ProductID == in.ProductID && item.Options.CanonicalKey() == key {
			item.Quantity += in.Quantity
			c.Recompute()
			return item.ID
		}
	}
	line := LineItem{
		ID:               uuid.NewString(),
		ProductID:        in.ProductID,
		Name:             in.Name,
		UnitPrice:        in.UnitPrice,
		SalePrice:        in.SalePrice,
		Image:            in.Image,
		Quantity:         in.Quantity,
		StockAtSelection: in.StockAtSelection,
		Options:          in.Options,
	}
	c.Items = append(c.Items, line)
	c.Recompute()
	return line.ID
}

// SetLineQuantity replaces the quantity of one line. Unknown ids are a no-op;
// quantities below one are rejected by the caller layer, not clamped here.
func (c *Cart) SetLineQuantity(itemID string, quantity int) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			break
		}
	}
	c.Recompute()
}

// RemoveLine drops a line and its selection entry.
func (c *Cart) RemoveLine(itemID string) {
	items := c.Items[:0]
	for _, item := range c.Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	c.Items = items
	c.Deselect(itemID)
	c.Recompute()
}

// ClearLines empties the cart and the selection.
func (c *Cart) ClearLines() {
	c.Items = nil
	c.SelectedIDs = nil
	c.Recompute()
}

// ToggleSelect flips one line's membership in the checkout selection. Items
// are never mutated by selection operations.
func (c *Cart) ToggleSelect(itemID string) {
	for i, id := range c.SelectedIDs {
		if id == itemID {
			c.SelectedIDs = append(c.SelectedIDs[:i], c.SelectedIDs[i+1:]...)
			return
		}
	}
	c.SelectedIDs = append(c.SelectedIDs, itemID)
}

// SelectAll selects every line or clears the selection.
func (c *Cart) SelectAll(selected bool) {
	if !selected {
		c.SelectedIDs = nil
		return
	}
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ID)
	}
	c.SelectedIDs = ids
}

// Deselect removes one id from the selection if present.
func (c *Cart) Deselect(itemID string) {
	for i, id := range c.SelectedIDs {
		if id == itemID {
			c.SelectedIDs = append(c.SelectedIDs[:i], c.SelectedIDs[i+1:]...)
			return
		}
	}
}

// IsSelected reports membership in the checkout selection.
func (c *Cart) IsSelected(itemID string) bool {
	for _, id := range c.SelectedIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// Recompute folds Items into TotalItems and TotalAmount. Every mutation ends
// with this fold; no other code writes the totals.
func (c *Cart) Recompute() {
	c.TotalItems = 0
	c.TotalAmount = 0
	for _, item := range c.Items {
		c.TotalItems += item.Quantity
		c.TotalAmount += item.Subtotal()
	}
}

// SelectedSubtotal is the checkout subtotal over the selected lines only.
func (c *Cart) SelectedSubtotal() int64 {
	var total int64
	for _, item := range c.Items {
		if c.IsSelected(item.ID) {
			total += item.Subtotal()
		}
	}
	return total
}

// PruneSelection drops selected ids that no longer match a live line, keeping
// the selection consistent after the remote store replaces the item set.
func (c *Cart) PruneSelection() {
	if len(c.SelectedIDs) == 0 {
		return
	}
	live := make(map[string]struct{}, len(c.Items))
	for _, item := range c.Items {
		live[item.ID] = struct{}{}
	}
	kept := c.SelectedIDs[:0]
	for _, id := range c.SelectedIDs {
		if _, ok := live[id]; ok {
			kept = append(kept, id)
		}
	}
	c.SelectedIDs = kept
}
