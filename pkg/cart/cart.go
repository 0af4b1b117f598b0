// Package cart holds the shopping-cart pricing engine shared by the shop panels.
//
// A Cart is not safe for concurrent use; callers that share one across
// goroutines must guard it themselves.
package cart

import (
	"errors"
	"math"
)

var (
	ErrInvalidQuantity = errors.New("cart: invalid quantity")
	ErrItemNotFound    = errors.New("cart: item not found")
	ErrInvalidItem     = errors.New("cart: invalid item")
)

// Item is what a caller offers to AddItem. MaxStock == 0 means unbounded.
type Item struct {
	Key       string
	Label     string
	UnitPrice int64
	MaxStock  int
}

// Line is one entry of the cart.
type Line struct {
	Key       string `json:"item"`
	Label     string `json:"label"`
	UnitPrice int64  `json:"price"`
	Quantity  int    `json:"amount"`
	MaxStock  int    `json:"maxStock,omitempty"`
}

func (l Line) LineTotal() int64 { return l.UnitPrice * int64(l.Quantity) }

func (l Line) bounded() bool { return l.MaxStock > 0 }

type Totals struct {
	TotalUnits      int   `json:"totalUnits"`
	Subtotal        int64 `json:"subtotal"`
	DiscountPercent int   `json:"discountPercent"`
	DiscountAmount  int64 `json:"discountAmount"`
	Total           int64 `json:"total"`
}

// MaxAmount bounds the subtotal and the total unit count of a cart so the
// discount arithmetic stays within int64.
const MaxAmount int64 = math.MaxInt64 / 100

type Cart struct {
	tiers Tiers
	lines []Line
	index map[string]int
}

// New returns an empty cart priced with tiers. An empty tier list disables discounts.
func New(tiers Tiers) (*Cart, error) {
	if err := tiers.Validate(); err != nil {
		return nil, err
	}
	own := make(Tiers, len(tiers))
	copy(own, tiers)
	return &Cart{tiers: own, index: map[string]int{}}, nil
}

// AddItem merges qty units of item into the cart. The returned flag reports
// that the stock bound cut the request short; the clamped quantity is kept.
// A request that would push the cart past MaxAmount fails with
// ErrInvalidQuantity and changes nothing.
func (c *Cart) AddItem(item Item, qty int) (stockExceeded bool, err error) {
	if qty <= 0 || int64(qty) > MaxAmount {
		return false, ErrInvalidQuantity
	}
	if item.Key == "" || item.UnitPrice < 0 || item.MaxStock < 0 {
		return false, ErrInvalidItem
	}

	if i, ok := c.index[item.Key]; ok {
		l := &c.lines[i]
		want := int64(l.Quantity) + int64(qty)
		if l.bounded() && want > int64(l.MaxStock) {
			want = int64(l.MaxStock)
			stockExceeded = true
		}
		if !c.fits(l.Key, l.UnitPrice, want) {
			return false, ErrInvalidQuantity
		}
		l.Quantity = int(want)
		return stockExceeded, nil
	}

	l := Line{
		Key:       item.Key,
		Label:     item.Label,
		UnitPrice: item.UnitPrice,
		Quantity:  qty,
		MaxStock:  item.MaxStock,
	}
	if l.bounded() && l.Quantity > l.MaxStock {
		l.Quantity = l.MaxStock
		stockExceeded = true
	}
	if !c.fits(l.Key, l.UnitPrice, int64(l.Quantity)) {
		return false, ErrInvalidQuantity
	}
	c.index[l.Key] = len(c.lines)
	c.lines = append(c.lines, l)
	return stockExceeded, nil
}

func (c *Cart) RemoveItem(key string) {
	i, ok := c.index[key]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, key)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].Key] = j
	}
}

// SetQuantity clamps qty into [1, MaxStock]; a line is never removed this way.
func (c *Cart) SetQuantity(key string, qty int) (stockExceeded bool, err error) {
	i, ok := c.index[key]
	if !ok {
		return false, ErrItemNotFound
	}
	l := &c.lines[i]
	if qty < 1 {
		qty = 1
	}
	if l.bounded() && qty > l.MaxStock {
		qty = l.MaxStock
		stockExceeded = true
	}
	if !c.fits(key, l.UnitPrice, int64(qty)) {
		return false, ErrInvalidQuantity
	}
	l.Quantity = qty
	return stockExceeded, nil
}

// fits reports whether holding qty units of key at price keeps the cart's
// subtotal and unit count within MaxAmount.
func (c *Cart) fits(key string, price, qty int64) bool {
	if qty > MaxAmount || (price > 0 && qty > MaxAmount/price) {
		return false
	}
	units, sub := qty, price*qty
	for _, l := range c.lines {
		if l.Key == key {
			continue
		}
		units += int64(l.Quantity)
		sub += l.LineTotal()
	}
	return units <= MaxAmount && sub <= MaxAmount
}

func (c *Cart) Clear() {
	c.lines = nil
	c.index = map[string]int{}
}

func (c *Cart) Totals() Totals {
	var t Totals
	for _, l := range c.lines {
		t.TotalUnits += l.Quantity
		t.Subtotal += l.LineTotal()
	}
	if t.TotalUnits > 0 {
		t.DiscountPercent = c.tiers.PercentFor(t.TotalUnits)
	}
	t.DiscountAmount = t.Subtotal * int64(t.DiscountPercent) / 100
	t.Total = t.Subtotal - t.DiscountAmount
	return t
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Line(key string) (Line, bool) {
	i, ok := c.index[key]
	if !ok {
		return Line{}, false
	}
	return c.lines[i], true
}

func (c *Cart) Len() int    { return len(c.lines) }
func (c *Cart) Empty() bool { return len(c.lines) == 0 }

func (c *Cart) Tiers() Tiers {
	out := make(Tiers, len(c.tiers))
	copy(out, c.tiers)
	return out
}
