package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Host callback names.
const (
	CallbackPurchaseItems       = "purchaseItems"
	CallbackPurchaseOfflineShop = "purchaseOfflineShop"
	CallbackCreateInvoice       = "createInvoice"
	CallbackGetNearbyPlayers    = "getNearbyPlayers"
	CallbackCloseIngredientShop = "closeIngredientShop"
	CallbackCloseOfflineShop    = "closeOfflineShop"
	CallbackCloseCashier        = "closeCashier"
)

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Call posts req as JSON to the named callback and decodes the reply into resp.
// resp may be nil when the reply body does not matter.
func (c *Client) Call(ctx context.Context, callback string, req, resp any) error {
	if req == nil {
		req = struct{}{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("bridge: encode %s: %w", callback, err)
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+callback, bytes.NewReader(body))
	if err != nil {
		return err
	}
	hreq.Header.Set("Content-Type", "application/json; charset=UTF-8")

	hresp, err := c.http.Do(hreq)
	if err != nil {
		return fmt.Errorf("bridge: %s: %w", callback, err)
	}
	defer hresp.Body.Close()

	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(hresp.Body, 512))
		return fmt.Errorf("bridge: %s: status %d: %s", callback, hresp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if resp == nil {
		_, _ = io.Copy(io.Discard, hresp.Body)
		return nil
	}
	if err := json.NewDecoder(hresp.Body).Decode(resp); err != nil {
		return fmt.Errorf("%w: %s reply: %v", ErrMalformedPayload, callback, err)
	}
	return nil
}

func (c *Client) purchase(ctx context.Context, callback string, req PurchaseRequest) (PurchaseResponse, error) {
	var resp PurchaseResponse
	if err := c.Call(ctx, callback, req, &resp); err != nil {
		return PurchaseResponse{}, err
	}
	resp.Error = ParseErrorCategory(string(resp.Error))
	if !resp.Success && resp.Error == ErrorNone {
		resp.Error = ErrorUnknown
	}
	return resp, nil
}

func (c *Client) PurchaseItems(ctx context.Context, req PurchaseRequest) (PurchaseResponse, error) {
	return c.purchase(ctx, CallbackPurchaseItems, req)
}

func (c *Client) PurchaseOfflineShop(ctx context.Context, req PurchaseRequest) (PurchaseResponse, error) {
	return c.purchase(ctx, CallbackPurchaseOfflineShop, req)
}

func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest) (InvoiceResponse, error) {
	var resp InvoiceResponse
	err := c.Call(ctx, CallbackCreateInvoice, req, &resp)
	return resp, err
}

func (c *Client) NearbyPlayers(ctx context.Context) ([]Player, error) {
	var resp NearbyPlayersResponse
	if err := c.Call(ctx, CallbackGetNearbyPlayers, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Players == nil {
		resp.Players = []Player{}
	}
	return resp.Players, nil
}

// Close tells the host a panel was closed; the reply is ignored.
func (c *Client) Close(ctx context.Context, callback string) error {
	return c.Call(ctx, callback, nil, nil)
}
