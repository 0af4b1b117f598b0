package bridge

import "errors"

var ErrMalformedPayload = errors.New("bridge: malformed payload")

// ErrorCategory is the failure reason the host returns for a purchase.
type ErrorCategory string

const (
	ErrorNone              ErrorCategory = ""
	ErrorEmptyCart         ErrorCategory = "empty_cart"
	ErrorOutOfStock        ErrorCategory = "out_of_stock"
	ErrorInsufficientFunds ErrorCategory = "insufficient_funds"
	ErrorPaymentFailed     ErrorCategory = "payment_failed"
	ErrorInventoryFull     ErrorCategory = "inventory_full"
	ErrorInvalidPayment    ErrorCategory = "invalid_payment"
	ErrorUnknown           ErrorCategory = "unknown"
)

var messages = map[ErrorCategory]string{
	ErrorEmptyCart:         "Your cart is empty",
	ErrorOutOfStock:        "Item is no longer in stock",
	ErrorInsufficientFunds: "Not enough money",
	ErrorPaymentFailed:     "Payment failed",
	ErrorInventoryFull:     "Inventory is full",
	ErrorInvalidPayment:    "Invalid payment method",
}

// ParseErrorCategory maps anything the host sends outside the fixed set to ErrorUnknown.
func ParseErrorCategory(s string) ErrorCategory {
	c := ErrorCategory(s)
	if c == ErrorNone {
		return ErrorNone
	}
	if _, ok := messages[c]; ok {
		return c
	}
	return ErrorUnknown
}

func (c ErrorCategory) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return "An error occurred"
}

func (c ErrorCategory) Error() string { return string(c) }
