// Package bridge defines the records exchanged with the host process and a
// client for its local HTTP callbacks.
package bridge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/killerderoo/fx-restaurant/pkg/invoice"
)

const (
	ActionOpenIngredientShop = "openIngredientShop"
	ActionOpenOfflineShop    = "openOfflineShop"
	ActionOpenCashier        = "openCashier"
)

const (
	PaymentCash = "cash"
	PaymentBank = "bank"
)

func ValidPaymentMethod(m string) bool { return m == PaymentCash || m == PaymentBank }

type CatalogItem struct {
	Item  string `json:"item"`
	Label string `json:"label"`
	Price int64  `json:"price"`
}

type Category struct {
	Label string        `json:"label"`
	Icon  string        `json:"icon,omitempty"`
	Items []CatalogItem `json:"items"`
}

type StockItem struct {
	CatalogItem
	Stock int `json:"stock"`
}

type OpenIngredientShop struct {
	Action     string     `json:"action"`
	Categories []Category `json:"categories"`
}

type OpenOfflineShop struct {
	Action     string      `json:"action"`
	Restaurant string      `json:"restaurant"`
	Items      []StockItem `json:"items"`
}

type OpenCashier struct {
	Action     string `json:"action"`
	Restaurant string `json:"restaurant"`
}

// Open is one of the panel open messages; exactly one field is set.
type Open struct {
	Ingredient *OpenIngredientShop
	Offline    *OpenOfflineShop
	Cashier    *OpenCashier
}

func (o Open) Action() string {
	switch {
	case o.Ingredient != nil:
		return ActionOpenIngredientShop
	case o.Offline != nil:
		return ActionOpenOfflineShop
	case o.Cashier != nil:
		return ActionOpenCashier
	}
	return ""
}

// DecodeOpen dispatches on the action field and validates the message it names.
func DecodeOpen(data []byte) (Open, error) {
	var head struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Open{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch head.Action {
	case ActionOpenIngredientShop:
		var m OpenIngredientShop
		if err := json.Unmarshal(data, &m); err != nil {
			return Open{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if err := m.Validate(); err != nil {
			return Open{}, err
		}
		return Open{Ingredient: &m}, nil
	case ActionOpenOfflineShop:
		var m OpenOfflineShop
		if err := json.Unmarshal(data, &m); err != nil {
			return Open{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if err := m.Validate(); err != nil {
			return Open{}, err
		}
		return Open{Offline: &m}, nil
	case ActionOpenCashier:
		var m OpenCashier
		if err := json.Unmarshal(data, &m); err != nil {
			return Open{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return Open{Cashier: &m}, nil
	case "":
		return Open{}, fmt.Errorf("%w: missing action", ErrMalformedPayload)
	default:
		return Open{}, fmt.Errorf("%w: unknown action %q", ErrMalformedPayload, head.Action)
	}
}

func (it CatalogItem) validate() error {
	if strings.TrimSpace(it.Item) == "" {
		return fmt.Errorf("%w: item without key", ErrMalformedPayload)
	}
	if it.Price < 0 {
		return fmt.Errorf("%w: item %q has negative price", ErrMalformedPayload, it.Item)
	}
	return nil
}

func (m *OpenIngredientShop) Validate() error {
	seen := map[string]bool{}
	for _, c := range m.Categories {
		for _, it := range c.Items {
			if err := it.validate(); err != nil {
				return err
			}
			if seen[it.Item] {
				return fmt.Errorf("%w: duplicate item %q", ErrMalformedPayload, it.Item)
			}
			seen[it.Item] = true
		}
	}
	return nil
}

func (m *OpenOfflineShop) Validate() error {
	if strings.TrimSpace(m.Restaurant) == "" {
		return fmt.Errorf("%w: missing restaurant", ErrMalformedPayload)
	}
	seen := map[string]bool{}
	for _, it := range m.Items {
		if err := it.validate(); err != nil {
			return err
		}
		if it.Stock < 0 {
			return fmt.Errorf("%w: item %q has negative stock", ErrMalformedPayload, it.Item)
		}
		if seen[it.Item] {
			return fmt.Errorf("%w: duplicate item %q", ErrMalformedPayload, it.Item)
		}
		seen[it.Item] = true
	}
	return nil
}

type PurchaseLine struct {
	Item   string `json:"item"`
	Label  string `json:"label"`
	Price  int64  `json:"price"`
	Amount int    `json:"amount"`
}

type PurchaseRequest struct {
	Total         int64          `json:"total"`
	PaymentMethod string         `json:"paymentMethod,omitempty"`
	Items         []PurchaseLine `json:"items"`
}

type PurchaseResponse struct {
	Success bool          `json:"success"`
	Error   ErrorCategory `json:"error,omitempty"`
}

type InvoiceRequest struct {
	TargetID      int            `json:"targetId"`
	TargetName    string         `json:"targetName"`
	Amount        int64          `json:"amount"`
	PaymentMethod string         `json:"paymentMethod"`
	Items         []invoice.Item `json:"items"`
}

type InvoiceResponse struct {
	Success bool `json:"success"`
}

type Player struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

type NearbyPlayersResponse struct {
	Players []Player `json:"players"`
}
