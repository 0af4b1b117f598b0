package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/killerderoo/fx-restaurant/pkg/bridge"
	"github.com/killerderoo/fx-restaurant/pkg/invoice"
)

var (
	ErrNoCustomer     = errors.New("select a customer")
	ErrInvalidAmount  = errors.New("amount must be greater than zero")
	ErrInvalidPayment = errors.New("invalid payment method")
)

// InvoiceForm is what the cashier terminal submits.
type InvoiceForm struct {
	TargetID      int    `json:"targetId"`
	TargetName    string `json:"targetName"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"paymentMethod"`
	Notes         string `json:"notes"`
}

func (f InvoiceForm) Validate() error {
	switch {
	case f.TargetID <= 0:
		return ErrNoCustomer
	case f.Amount <= 0:
		return ErrInvalidAmount
	case !bridge.ValidPaymentMethod(f.PaymentMethod):
		return ErrInvalidPayment
	}
	return nil
}

// Invoice sends a bill to a nearby player. Validation errors are returned
// before anything reaches the host.
func (s *Service) Invoice(ctx context.Context, f InvoiceForm) (InvoiceResult, error) {
	f.TargetName = strings.TrimSpace(f.TargetName)
	if err := f.Validate(); err != nil {
		return InvoiceResult{}, err
	}

	items := invoice.ParseNotes(f.Notes)
	req := bridge.InvoiceRequest{
		TargetID:      f.TargetID,
		TargetName:    f.TargetName,
		Amount:        f.Amount,
		PaymentMethod: f.PaymentMethod,
		Items:         items,
	}

	hctx, cancel := context.WithTimeout(ctx, s.hostTimeout)
	defer cancel()
	resp, err := s.host.CreateInvoice(hctx, req)

	res := InvoiceResult{Amount: f.Amount, Items: items, Success: err == nil && resp.Success}
	logger := log.With().Int("target", f.TargetID).Int64("amount", f.Amount).Str("method", f.PaymentMethod).Logger()
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("invoice failed")
		res.Message = "Failed to send invoice"
	case !resp.Success:
		logger.Warn().Msg("invoice rejected by host")
		res.Message = "Failed to send invoice"
	default:
		logger.Info().Int("items", len(items)).Msg("invoice sent")
		res.Message = "Invoice sent"
	}

	s.recordInvoice(context.WithoutCancel(ctx), f, items, res.Success)
	return res, nil
}

func (s *Service) recordInvoice(ctx context.Context, f InvoiceForm, items []invoice.Item, ok bool) {
	now := time.Now()
	summary := invoice.Summary(items)
	if err := s.journal.RecordInvoice(ctx, InvoiceRecord{
		TargetID:      f.TargetID,
		TargetName:    f.TargetName,
		Amount:        f.Amount,
		PaymentMethod: f.PaymentMethod,
		Items:         summary,
		Success:       ok,
		CreatedAt:     now,
	}); err != nil {
		log.Error().Err(err).Msg("journal: record invoice failed")
	}

	key := RKInvoiceSent
	if !ok {
		key = RKInvoiceFailed
	}
	evt := InvoiceEvent{
		TargetID:      f.TargetID,
		TargetName:    f.TargetName,
		Amount:        f.Amount,
		PaymentMethod: f.PaymentMethod,
		Items:         summary,
		At:            now,
	}
	if err := s.events.PublishJSON(ctx, key, evt); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("publish failed")
	}
}

// NearbyPlayers lists the players the host says are close to the cashier.
func (s *Service) NearbyPlayers(ctx context.Context) ([]bridge.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, s.hostTimeout)
	defer cancel()
	players, err := s.host.NearbyPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if players == nil {
		players = []bridge.Player{}
	}
	return players, nil
}
