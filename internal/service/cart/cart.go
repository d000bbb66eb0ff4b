package cart

import (
	"github.com/google/uuid"

	"github.com/mvribeiro/suplemarket/internal/models"
)

// Item is a storefront product plus the quantity the visitor wants. The
// product snapshot carries the stock used for clamping.
type Item struct {
	Product  models.Product `json:"product"`
	Quantity float64        `json:"quantity"`
}

func (i Item) Subtotal() float64 {
	return i.Product.SalePrice * i.Quantity
}

// Cart is one visitor's in-progress selection. It is never persisted and is
// only ever touched from that visitor's session, so it carries no lock of
// its own.
type Cart struct {
	items []Item
}

func New() *Cart {
	return &Cart{}
}

// clamp raises sub-unit requests to 1, then caps at the available stock.
// Stock wins: fractional stock below 1 yields exactly that stock, never more.
func clamp(qty, stock float64) float64 {
	if qty < 1 {
		qty = 1
	}
	if qty > stock {
		qty = stock
	}
	return qty
}

// AddItem merges into an existing entry or appends a new one, clamping the
// resulting quantity to the product's current stock.
func (c *Cart) AddItem(p models.Product, qty float64) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.items {
		if c.items[i].Product.ID == p.ID {
			c.items[i].Quantity = clamp(c.items[i].Quantity+qty, p.Quantity)
			c.items[i].Product = p
			return
		}
	}
	c.items = append(c.items, Item{Product: p, Quantity: clamp(qty, p.Quantity)})
}

// SetQuantity removes the entry when qty drops to zero or below, otherwise
// clamps it to the product's stock.
func (c *Cart) SetQuantity(productID uuid.UUID, qty float64) {
	if qty <= 0 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = clamp(qty, c.items[i].Product.Quantity)
			return
		}
	}
}

func (c *Cart) RemoveItem(productID uuid.UUID) {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy; callers cannot mutate cart state through it.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}

// ItemCount sums cart quantities, not distinct entries.
func (c *Cart) ItemCount() float64 {
	var count float64
	for _, it := range c.items {
		count += it.Quantity
	}
	return count
}

func (c *Cart) Empty() bool {
	return len(c.items) == 0
}
