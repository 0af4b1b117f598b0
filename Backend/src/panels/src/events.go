package main

import "time"

// Routing keys on the events exchange.
const (
	RKPurchaseCompleted = "shop.purchase.completed"
	RKPurchaseFailed    = "shop.purchase.failed"
	RKInvoiceSent       = "cashier.invoice.sent"
	RKInvoiceFailed     = "cashier.invoice.failed"
)

type PurchaseLineEvt struct {
	Item   string `json:"item"`
	Price  int64  `json:"price"`
	Amount int    `json:"amount"`
}

type PurchaseEvent struct {
	SessionID     string            `json:"session_id"`
	Panel         Kind              `json:"panel"`
	Restaurant    string            `json:"restaurant,omitempty"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	Items         []PurchaseLineEvt `json:"items"`
	Subtotal      int64             `json:"subtotal"`
	Discount      int64             `json:"discount"`
	Total         int64             `json:"total"`
	Error         string            `json:"error,omitempty"`
	At            time.Time         `json:"at"`
}

type InvoiceEvent struct {
	TargetID      int       `json:"target_id"`
	TargetName    string    `json:"target_name"`
	Amount        int64     `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	Items         string    `json:"items"`
	At            time.Time `json:"at"`
}
