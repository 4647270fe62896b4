package domain

import "testing"

func addInput(productID string, qty int, opts *Options) AddLineInput {
	return AddLineInput{
		ProductID:        productID,
		Name:             "Product " + productID,
		UnitPrice:        1000000,
		Quantity:         qty,
		StockAtSelection: 10,
		Options:          opts,
	}
}

func TestAddLineMergesSameConfiguration(t *testing.T) {
	var cart Cart
	first := cart.AddLine(addInput("p1", 1, nil))
	second := cart.AddLine(addInput("p1", 2, nil))
	if first != second {
		t.Fatalf("expected merge into one line, got ids %q and %q", first, second)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", cart.Items[0].Quantity)
	}
	if cart.TotalItems != 3 || cart.TotalAmount != 3000000 {
		t.Fatalf("unexpected totals: %d items, %d amount", cart.TotalItems, cart.TotalAmount)
	}
}

func TestAddLineDistinctConfigurations(t *testing.T) {
	var cart Cart
	cart.AddLine(addInput("p1", 1, &Options{Color: "red"}))
	cart.AddLine(addInput("p1", 1, &Options{Color: "blue"}))
	if len(cart.Items) != 2 {
		t.Fatalf("expected two distinct lines, got %d", len(cart.Items))
	}
}

func TestAddLineNilOptionsOnlyMatchNil(t *testing.T) {
	var cart Cart
	cart.AddLine(addInput("p1", 1, nil))
	cart.AddLine(addInput("p1", 1, &Options{Color: "red"}))
	if len(cart.Items) != 2 {
		t.Fatalf("expected option-less and optioned lines to stay distinct, got %d", len(cart.Items))
	}
}

func TestTotalsAreAPureFold(t *testing.T) {
	var cart Cart
	id := cart.AddLine(addInput("p1", 2, nil))
	cart.AddLine(addInput("p2", 1, &Options{Config: "i5", VariantPrice: 2500000}))
	cart.SetLineQuantity(id, 5)
	cart.RemoveLine("missing")

	var items, amount = 0, int64(0)
	for _, item := range cart.Items {
		items += item.Quantity
		amount += item.EffectivePrice() * int64(item.Quantity)
	}
	if cart.TotalItems != items || cart.TotalAmount != amount {
		t.Fatalf("maintained totals diverged from fold: %d/%d vs %d/%d",
			cart.TotalItems, cart.TotalAmount, items, amount)
	}
}

func TestEffectivePricePrecedence(t *testing.T) {
	li := LineItem{
		UnitPrice: 120,
		SalePrice: 80,
		Options:   &Options{VariantPrice: 100},
		Quantity:  1,
	}
	if got := li.EffectivePrice(); got != 100 {
		t.Fatalf("expected variant price to win, got %d", got)
	}
	li.Options = nil
	if got := li.EffectivePrice(); got != 80 {
		t.Fatalf("expected sale price, got %d", got)
	}
	li.SalePrice = 0
	if got := li.EffectivePrice(); got != 120 {
		t.Fatalf("expected list price, got %d", got)
	}
}

func TestSetLineQuantityUnknownIDIsNoop(t *testing.T) {
	var cart Cart
	cart.AddLine(addInput("p1", 2, nil))
	cart.SetLineQuantity("missing", 9)
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected quantity change: %d", cart.Items[0].Quantity)
	}
}

func TestRemoveLineDropsSelection(t *testing.T) {
	var cart Cart
	id := cart.AddLine(addInput("p1", 1, nil))
	cart.ToggleSelect(id)
	cart.RemoveLine(id)
	if len(cart.Items) != 0 || len(cart.SelectedIDs) != 0 {
		t.Fatalf("expected empty cart and selection, got %+v", cart)
	}
}

func TestSelectionOperations(t *testing.T) {
	var cart Cart
	a := cart.AddLine(addInput("p1", 1, nil))
	b := cart.AddLine(addInput("p2", 2, nil))

	cart.ToggleSelect(a)
	if !cart.IsSelected(a) || cart.IsSelected(b) {
		t.Fatalf("unexpected selection state: %v", cart.SelectedIDs)
	}
	cart.ToggleSelect(a)
	if cart.IsSelected(a) {
		t.Fatalf("toggle did not deselect")
	}

	cart.SelectAll(true)
	if len(cart.SelectedIDs) != 2 {
		t.Fatalf("expected all selected, got %v", cart.SelectedIDs)
	}
	cart.SelectAll(false)
	if len(cart.SelectedIDs) != 0 {
		t.Fatalf("expected empty selection, got %v", cart.SelectedIDs)
	}
}

func TestSelectedSubtotalExcludesDeselected(t *testing.T) {
	var cart Cart
	id := cart.AddLine(addInput("p1", 3, nil))
	cart.ToggleSelect(id)
	if got := cart.SelectedSubtotal(); got != 3000000 {
		t.Fatalf("expected selected subtotal 3000000, got %d", got)
	}
	cart.ToggleSelect(id)
	if got := cart.SelectedSubtotal(); got != 0 {
		t.Fatalf("expected checkout subtotal 0 after deselect, got %d", got)
	}
}

func TestClearLines(t *testing.T) {
	var cart Cart
	id := cart.AddLine(addInput("p1", 1, nil))
	cart.ToggleSelect(id)
	cart.ClearLines()
	if len(cart.Items) != 0 || len(cart.SelectedIDs) != 0 || cart.TotalAmount != 0 {
		t.Fatalf("clear left state behind: %+v", cart)
	}
}

func TestPruneSelection(t *testing.T) {
	var cart Cart
	id := cart.AddLine(addInput("p1", 1, nil))
	cart.SelectedIDs = []string{id, "stale"}
	cart.PruneSelection()
	if len(cart.SelectedIDs) != 1 || cart.SelectedIDs[0] != id {
		t.Fatalf("expected stale id pruned, got %v", cart.SelectedIDs)
	}
}
