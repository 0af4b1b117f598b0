package main

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/killerderoo/fx-restaurant/pkg/bridge"
	"github.com/killerderoo/fx-restaurant/pkg/cart"
)

// fakeHost answers like the game host would. Responses are fixed per test.
type fakeHost struct {
	mu sync.Mutex

	purchase    bridge.PurchaseResponse
	purchaseErr error
	invoice     bridge.InvoiceResponse
	invoiceErr  error
	players     []bridge.Player
	playersErr  error

	purchases []bridge.PurchaseRequest
	offline   []bridge.PurchaseRequest
	invoices  []bridge.InvoiceRequest
	closed    []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		purchase: bridge.PurchaseResponse{Success: true},
		invoice:  bridge.InvoiceResponse{Success: true},
	}
}

func (f *fakeHost) PurchaseItems(_ context.Context, req bridge.PurchaseRequest) (bridge.PurchaseResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases = append(f.purchases, req)
	return f.purchase, f.purchaseErr
}

func (f *fakeHost) PurchaseOfflineShop(_ context.Context, req bridge.PurchaseRequest) (bridge.PurchaseResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = append(f.offline, req)
	return f.purchase, f.purchaseErr
}

func (f *fakeHost) CreateInvoice(_ context.Context, req bridge.InvoiceRequest) (bridge.InvoiceResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoices = append(f.invoices, req)
	return f.invoice, f.invoiceErr
}

func (f *fakeHost) NearbyPlayers(context.Context) ([]bridge.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.players, f.playersErr
}

func (f *fakeHost) Close(_ context.Context, callback string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, callback)
	return nil
}

func (f *fakeHost) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.purchases) + len(f.offline)
}

type published struct {
	key string
	v   any
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *fakePublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{key: key, v: v})
	return nil
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.msgs))
	for i, m := range p.msgs {
		out[i] = m.key
	}
	return out
}

const ingredientOpen = `{
	"action": "openIngredientShop",
	"categories": [
		{"label": "Basics", "icon": "wheat", "items": [
			{"item": "flour", "label": "Flour", "price": 10},
			{"item": "sugar", "label": "Sugar", "price": 7}
		]},
		{"label": "Meat", "items": [
			{"item": "beef", "label": "Beef", "price": 45}
		]}
	]
}`

const offlineOpen = `{
	"action": "openOfflineShop",
	"restaurant": "burgershot",
	"items": [
		{"item": "burger", "label": "Burger", "price": 120, "stock": 2},
		{"item": "cola", "label": "Cola", "price": 30, "stock": 0}
	]
}`

func newTestJournal(t *testing.T) Journal {
	t.Helper()
	db, err := openSQLite(filepath.Join(t.TempDir(), "panels.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrate(context.Background(), db))
	return NewSQLiteJournal(db)
}

type testEnv struct {
	svc     *Service
	host    *fakeHost
	events  *fakePublisher
	journal Journal
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	reg, err := NewRegistry(16)
	require.NoError(t, err)
	env := &testEnv{host: newFakeHost(), events: &fakePublisher{}, journal: newTestJournal(t)}
	env.svc = NewService(reg, env.host, env.journal, env.events, cart.DefaultIngredientTiers(), time.Second)
	return env
}
