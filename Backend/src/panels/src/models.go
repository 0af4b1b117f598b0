package main

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/killerderoo/fx-restaurant/pkg/bridge"
	"github.com/killerderoo/fx-restaurant/pkg/cart"
	"github.com/killerderoo/fx-restaurant/pkg/invoice"
)

// Money is an amount in the smallest currency unit.
type Money int64

func (m Money) String() string { return "$" + humanize.Comma(int64(m)) }

type LineView struct {
	Item      string `json:"item"`
	Label     string `json:"label"`
	Price     int64  `json:"price"`
	Amount    int    `json:"amount"`
	MaxStock  int    `json:"maxStock,omitempty"`
	LineTotal int64  `json:"lineTotal"`
	Display   string `json:"display"`
}

type TotalsView struct {
	cart.Totals
	SubtotalText  string `json:"subtotalText"`
	DiscountText  string `json:"discountText"`
	DiscountLabel string `json:"discountLabel,omitempty"`
	TotalText     string `json:"totalText"`
}

type SessionView struct {
	ID          string             `json:"id"`
	Kind        Kind               `json:"kind"`
	Restaurant  string             `json:"restaurant,omitempty"`
	Categories  []bridge.Category  `json:"categories,omitempty"`
	Items       []bridge.StockItem `json:"items,omitempty"`
	Lines       []LineView         `json:"lines"`
	Totals      TotalsView         `json:"totals"`
	CanPurchase bool               `json:"canPurchase"`
	Warning     string             `json:"warning,omitempty"`
}

func toLineView(l cart.Line) LineView {
	return LineView{
		Item:      l.Key,
		Label:     l.Label,
		Price:     l.UnitPrice,
		Amount:    l.Quantity,
		MaxStock:  l.MaxStock,
		LineTotal: l.LineTotal(),
		Display:   fmt.Sprintf("%dx %s = %s", l.Quantity, Money(l.UnitPrice), Money(l.LineTotal())),
	}
}

func toTotalsView(t cart.Totals) TotalsView {
	v := TotalsView{
		Totals:       t,
		SubtotalText: Money(t.Subtotal).String(),
		DiscountText: "-" + Money(t.DiscountAmount).String(),
		TotalText:    Money(t.Total).String(),
	}
	if t.DiscountPercent > 0 {
		v.DiscountLabel = fmt.Sprintf("Discount (%d%%)", t.DiscountPercent)
	}
	return v
}

type PurchaseResult struct {
	Success bool                 `json:"success"`
	Error   bridge.ErrorCategory `json:"error,omitempty"`
	Message string               `json:"message,omitempty"`
	Totals  TotalsView           `json:"totals"`
	Session *SessionView         `json:"session,omitempty"`

	lines []cart.Line
	err   error
}

type InvoiceResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Amount  int64          `json:"amount"`
	Items   []invoice.Item `json:"items"`
}
