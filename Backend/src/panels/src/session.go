package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/killerderoo/fx-restaurant/pkg/bridge"
	"github.com/killerderoo/fx-restaurant/pkg/cart"
)

type Kind string

const (
	KindIngredient Kind = "ingredient"
	KindOffline    Kind = "offline"
)

func (k Kind) closeCallback() string {
	if k == KindOffline {
		return bridge.CallbackCloseOfflineShop
	}
	return bridge.CallbackCloseIngredientShop
}

// maxAddAmount caps a single ingredient add, as the shop's amount input does.
const maxAddAmount = 999

var (
	ErrUnknownItem     = errors.New("item not sold in this panel")
	ErrSessionClosed   = errors.New("panel session closed")
	ErrSessionNotFound = errors.New("panel session not found")
)

// HostBridge is the part of the host process the panels depend on.
type HostBridge interface {
	PurchaseItems(ctx context.Context, req bridge.PurchaseRequest) (bridge.PurchaseResponse, error)
	PurchaseOfflineShop(ctx context.Context, req bridge.PurchaseRequest) (bridge.PurchaseResponse, error)
	CreateInvoice(ctx context.Context, req bridge.InvoiceRequest) (bridge.InvoiceResponse, error)
	NearbyPlayers(ctx context.Context) ([]bridge.Player, error)
	Close(ctx context.Context, callback string) error
}

type catalogEntry struct {
	item  bridge.CatalogItem
	stock int
}

// Session is the state of one open shop panel. All access goes through its mutex.
type Session struct {
	ID         string
	Kind       Kind
	Restaurant string
	CreatedAt  time.Time

	mu         sync.Mutex
	categories []bridge.Category
	stockItems []bridge.StockItem
	catalog    map[string]catalogEntry
	cart       *cart.Cart
	closed     bool
}

func NewIngredientSession(id string, msg *bridge.OpenIngredientShop, tiers cart.Tiers) (*Session, error) {
	c, err := cart.New(tiers)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:         id,
		Kind:       KindIngredient,
		CreatedAt:  time.Now(),
		categories: msg.Categories,
		catalog:    map[string]catalogEntry{},
		cart:       c,
	}
	for _, cat := range msg.Categories {
		for _, it := range cat.Items {
			s.catalog[it.Item] = catalogEntry{item: it}
		}
	}
	return s, nil
}

// NewOfflineSession builds an offline shop session; these carts never discount.
func NewOfflineSession(id string, msg *bridge.OpenOfflineShop) (*Session, error) {
	c, err := cart.New(nil)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:         id,
		Kind:       KindOffline,
		Restaurant: msg.Restaurant,
		CreatedAt:  time.Now(),
		stockItems: msg.Items,
		catalog:    map[string]catalogEntry{},
		cart:       c,
	}
	for _, it := range msg.Items {
		s.catalog[it.Item] = catalogEntry{item: it.CatalogItem, stock: it.Stock}
	}
	return s, nil
}

// Add puts qty units of a catalog item in the cart. Offline shops add one
// unit per call, bounded by the item's stock.
func (s *Session) Add(key string, qty int) (stockExceeded bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrSessionClosed
	}

	e, ok := s.catalog[key]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownItem, key)
	}
	it := cart.Item{Key: e.item.Item, Label: e.item.Label, UnitPrice: e.item.Price}
	if s.Kind == KindOffline {
		if e.stock == 0 {
			return false, bridge.ErrorOutOfStock
		}
		it.MaxStock = e.stock
		qty = 1
	} else if qty > maxAddAmount {
		return false, fmt.Errorf("%w: at most %d per add", cart.ErrInvalidQuantity, maxAddAmount)
	}
	return s.cart.AddItem(it, qty)
}

func (s *Session) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.cart.RemoveItem(key)
	return nil
}

func (s *Session) SetQuantity(key string, qty int) (stockExceeded bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrSessionClosed
	}
	return s.cart.SetQuantity(key, qty)
}

func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.cart.Clear()
	return nil
}

func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() SessionView {
	v := SessionView{
		ID:          s.ID,
		Kind:        s.Kind,
		Restaurant:  s.Restaurant,
		Categories:  s.categories,
		Items:       s.stockItems,
		Lines:       []LineView{},
		Totals:      toTotalsView(s.cart.Totals()),
		CanPurchase: !s.closed && !s.cart.Empty(),
	}
	for _, l := range s.cart.Lines() {
		v.Lines = append(v.Lines, toLineView(l))
	}
	return v
}

// Purchase submits the cart to the host and waits for its answer. The cart
// is cleared only when the host reports success. A discarded session returns
// ErrSessionClosed and never reaches the host.
func (s *Session) Purchase(ctx context.Context, host HostBridge, method string) (PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := s.cart.Totals()
	res := PurchaseResult{Totals: toTotalsView(totals), lines: s.cart.Lines()}
	fail := func(cat bridge.ErrorCategory, err error) PurchaseResult {
		res.Error = cat
		res.Message = cat.Message()
		res.err = err
		return res
	}

	if s.closed {
		return PurchaseResult{}, ErrSessionClosed
	}
	if s.cart.Empty() {
		return fail(bridge.ErrorEmptyCart, nil), nil
	}

	req := bridge.PurchaseRequest{Total: totals.Total}
	if s.Kind == KindOffline {
		if !bridge.ValidPaymentMethod(method) {
			return fail(bridge.ErrorInvalidPayment, nil), nil
		}
		req.PaymentMethod = method
	}
	for _, l := range res.lines {
		req.Items = append(req.Items, bridge.PurchaseLine{
			Item:   l.Key,
			Label:  l.Label,
			Price:  l.UnitPrice,
			Amount: l.Quantity,
		})
	}

	var (
		resp bridge.PurchaseResponse
		err  error
	)
	if s.Kind == KindOffline {
		resp, err = host.PurchaseOfflineShop(ctx, req)
	} else {
		resp, err = host.PurchaseItems(ctx, req)
	}
	if err != nil {
		return fail(bridge.ErrorPaymentFailed, err), nil
	}
	if !resp.Success {
		return fail(resp.Error, nil), nil
	}

	s.cart.Clear()
	res.Success = true
	return res, nil
}

// discard drops the cart; later commands fail with ErrSessionClosed.
func (s *Session) discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	s.closed = true
}
