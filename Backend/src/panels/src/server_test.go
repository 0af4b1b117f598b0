package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killerderoo/fx-restaurant/pkg/bridge"
)

const nuiOrigin = "https://cfx-nui-fx-restaurant"

func newTestServer(t *testing.T) (*httptest.Server, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	srv := httptest.NewServer(NewServer(env.svc).Handler([]string{nuiOrigin}))
	t.Cleanup(srv.Close)
	return srv, env
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHTTP_IngredientShopFlow(t *testing.T) {
	srv, env := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/sessions", ingredientOpen)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	view := decodeBody[SessionView](t, resp)
	require.NotEmpty(t, view.ID)
	assert.Len(t, view.Categories, 2)
	base := srv.URL + "/sessions/" + view.ID

	resp = do(t, http.MethodPost, base+"/items", `{"item":"flour","amount":24}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decodeBody[SessionView](t, resp)
	assert.Equal(t, 5, view.Totals.DiscountPercent)

	resp = do(t, http.MethodPut, base+"/items/flour", `{"amount":25}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decodeBody[SessionView](t, resp)
	assert.Equal(t, 10, view.Totals.DiscountPercent)
	assert.Equal(t, int64(225), view.Totals.Total)
	assert.Empty(t, view.Warning)

	resp = do(t, http.MethodPost, base+"/purchase", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decodeBody[PurchaseResult](t, resp)
	assert.True(t, res.Success)
	assert.Len(t, env.host.purchases, 1)

	resp = do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decodeBody[SessionView](t, resp)
	assert.Empty(t, view.Lines)

	resp = do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{bridge.CallbackCloseIngredientShop}, env.host.closed)

	resp = do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTP_OfflineShopStockWarningAndFailure(t *testing.T) {
	srv, env := newTestServer(t)
	env.host.purchase = bridge.PurchaseResponse{Success: false, Error: bridge.ErrorInsufficientFunds}

	view := decodeBody[SessionView](t, do(t, http.MethodPost, srv.URL+"/sessions", offlineOpen))
	base := srv.URL + "/sessions/" + view.ID

	for i := 0; i < 2; i++ {
		resp := do(t, http.MethodPost, base+"/items", `{"item":"burger"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp := do(t, http.MethodPost, base+"/items", `{"item":"burger"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decodeBody[SessionView](t, resp)
	assert.Equal(t, warnStockExceeded, view.Warning)
	assert.Equal(t, 2, view.Lines[0].Amount)

	resp = do(t, http.MethodPost, base+"/items", `{"item":"cola"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	eb := decodeBody[errorBody](t, resp)
	assert.Equal(t, "out_of_stock", eb.Error)

	resp = do(t, http.MethodPost, base+"/purchase", `{"paymentMethod":"cash"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decodeBody[PurchaseResult](t, resp)
	assert.False(t, res.Success)
	assert.Equal(t, bridge.ErrorInsufficientFunds, res.Error)
	assert.Equal(t, "Not enough money", res.Message)
	assert.Len(t, res.Session.Lines, 1)

	resp = do(t, http.MethodDelete, base+"/items/burger", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, http.MethodPost, base+"/purchase", `{"paymentMethod":"cash"}`)
	res = decodeBody[PurchaseResult](t, resp)
	assert.Equal(t, bridge.ErrorEmptyCart, res.Error)
}

func TestHTTP_ErrorStatuses(t *testing.T) {
	srv, _ := newTestServer(t)
	view := decodeBody[SessionView](t, do(t, http.MethodPost, srv.URL+"/sessions", ingredientOpen))
	base := srv.URL + "/sessions/" + view.ID

	tests := []struct {
		name         string
		method, path string
		body         string
		status       int
		code         string
	}{
		{"bad open", http.MethodPost, "/sessions", `{"action":"openIngredientShop","categories":[{"items":[{"item":"","price":1}]}]}`, http.StatusBadRequest, "malformed_payload"},
		{"unknown session", http.MethodGet, "/sessions/nope", "", http.StatusNotFound, "session_not_found"},
		{"unknown item", http.MethodPost, "/sessions/" + view.ID + "/items", `{"item":"caviar","amount":1}`, http.StatusNotFound, "item_not_found"},
		{"zero amount", http.MethodPost, "/sessions/" + view.ID + "/items", `{"item":"flour","amount":0}`, http.StatusUnprocessableEntity, "invalid_quantity"},
		{"amount over per-add cap", http.MethodPost, "/sessions/" + view.ID + "/items", `{"item":"flour","amount":1000}`, http.StatusUnprocessableEntity, "invalid_quantity"},
		{"overflowing amount", http.MethodPost, "/sessions/" + view.ID + "/items", `{"item":"flour","amount":4611686018427387904}`, http.StatusUnprocessableEntity, "invalid_quantity"},
		{"bad json", http.MethodPost, "/sessions/" + view.ID + "/items", `{"item":`, http.StatusBadRequest, "malformed_payload"},
		{"set missing line", http.MethodPut, "/sessions/" + view.ID + "/items/sugar", `{"amount":2}`, http.StatusNotFound, "item_not_found"},
		{"invoice no customer", http.MethodPost, "/cashier/invoice", `{"amount":10,"paymentMethod":"cash"}`, http.StatusUnprocessableEntity, "invalid_invoice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			eb := decodeBody[errorBody](t, resp)
			assert.Equal(t, tt.code, eb.Error)
		})
	}

	resp := do(t, http.MethodDelete, base+"/items", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTP_OverflowingQuantityLeavesCart(t *testing.T) {
	srv, env := newTestServer(t)
	view := decodeBody[SessionView](t, do(t, http.MethodPost, srv.URL+"/sessions", ingredientOpen))
	base := srv.URL + "/sessions/" + view.ID

	resp := do(t, http.MethodPost, base+"/items", `{"item":"flour","amount":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPut, base+"/items/flour", `{"amount":4611686018427387904}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, http.MethodPost, base+"/purchase", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decodeBody[PurchaseResult](t, resp)
	require.True(t, res.Success)
	require.Len(t, env.host.purchases, 1)
	assert.Equal(t, int64(20), env.host.purchases[0].Total)
}

func TestHTTP_Cashier(t *testing.T) {
	srv, env := newTestServer(t)
	env.host.players = []bridge.Player{{ID: 2, Name: "Ana", Distance: 2.1}}

	resp := do(t, http.MethodGet, srv.URL+"/cashier/players", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	players := decodeBody[bridge.NearbyPlayersResponse](t, resp)
	require.Len(t, players.Players, 1)

	resp = do(t, http.MethodPost, srv.URL+"/cashier/invoice",
		`{"targetId":2,"targetName":"Ana","amount":300,"paymentMethod":"bank","notes":"2x Burger"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decodeBody[InvoiceResult](t, resp)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Items[0].Amount)

	env.host.playersErr = errors.New("down")
	resp = do(t, http.MethodGet, srv.URL+"/cashier/players", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestHTTP_ExportAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/journal/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	resp = do(t, http.MethodGet, srv.URL+"/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTP_CORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/sessions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", nuiOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, nuiOrigin, resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}
