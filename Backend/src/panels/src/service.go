package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/killerderoo/fx-restaurant/pkg/bridge"
	"github.com/killerderoo/fx-restaurant/pkg/cart"
	"github.com/killerderoo/fx-restaurant/pkg/invoice"
)

// Service is the controller behind the panel endpoints: it owns the open
// sessions and is the only thing that talks to the host.
type Service struct {
	sessions    *Registry
	host        HostBridge
	journal     Journal
	events      Publisher
	tiers       cart.Tiers
	hostTimeout time.Duration
}

func NewService(sessions *Registry, host HostBridge, journal Journal, events Publisher, tiers cart.Tiers, hostTimeout time.Duration) *Service {
	if hostTimeout <= 0 {
		hostTimeout = 5 * time.Second
	}
	return &Service{
		sessions:    sessions,
		host:        host,
		journal:     journal,
		events:      events,
		tiers:       tiers,
		hostTimeout: hostTimeout,
	}
}

// Open validates a host open message and starts a session for it.
func (s *Service) Open(raw []byte) (*Session, error) {
	msg, err := bridge.DecodeOpen(raw)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	var sess *Session
	switch {
	case msg.Ingredient != nil:
		sess, err = NewIngredientSession(id, msg.Ingredient, s.tiers)
	case msg.Offline != nil:
		sess, err = NewOfflineSession(id, msg.Offline)
	default:
		return nil, fmt.Errorf("%w: %s has no cart session", bridge.ErrMalformedPayload, msg.Action())
	}
	if err != nil {
		return nil, err
	}

	s.sessions.Put(sess)
	log.Info().Str("session", id).Str("kind", string(sess.Kind)).Msg("panel opened")
	return sess, nil
}

func (s *Service) Session(id string) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Close discards the session and tells the host the panel went away.
func (s *Service) Close(ctx context.Context, id string) error {
	sess, ok := s.sessions.Remove(id)
	if !ok {
		return ErrSessionNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, s.hostTimeout)
	defer cancel()
	if err := s.host.Close(ctx, sess.Kind.closeCallback()); err != nil {
		log.Warn().Err(err).Str("session", id).Msg("host close callback failed")
	}
	log.Info().Str("session", id).Msg("panel closed")
	return nil
}

func (s *Service) Purchase(ctx context.Context, id, method string) (PurchaseResult, error) {
	sess, err := s.Session(id)
	if err != nil {
		return PurchaseResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.hostTimeout)
	defer cancel()
	res, err := sess.Purchase(ctx, s.host, method)
	if err != nil {
		return PurchaseResult{}, err
	}

	logger := log.With().Str("session", id).Str("kind", string(sess.Kind)).Int64("total", res.Totals.Total).Logger()
	if res.Success {
		logger.Info().Int("units", res.Totals.TotalUnits).Msg("purchase completed")
	} else {
		logger.Warn().Err(res.err).Str("category", string(res.Error)).Msg("purchase failed")
	}

	s.recordPurchase(context.WithoutCancel(ctx), sess, method, res)

	view := sess.View()
	res.Session = &view
	return res, nil
}

func (s *Service) recordPurchase(ctx context.Context, sess *Session, method string, res PurchaseResult) {
	if sess.Kind != KindOffline {
		method = ""
	}
	rec := PurchaseRecord{
		SessionID:       sess.ID,
		Panel:           sess.Kind,
		Restaurant:      sess.Restaurant,
		PaymentMethod:   method,
		Units:           res.Totals.TotalUnits,
		Subtotal:        res.Totals.Subtotal,
		DiscountPercent: res.Totals.DiscountPercent,
		Discount:        res.Totals.DiscountAmount,
		Total:           res.Totals.Total,
		Success:         res.Success,
		ErrorCategory:   string(res.Error),
		Items:           summarizeLines(res.lines),
		CreatedAt:       time.Now(),
	}
	if err := s.journal.RecordPurchase(ctx, rec); err != nil {
		log.Error().Err(err).Str("session", sess.ID).Msg("journal: record purchase failed")
	}

	evt := PurchaseEvent{
		SessionID:     sess.ID,
		Panel:         sess.Kind,
		Restaurant:    sess.Restaurant,
		PaymentMethod: method,
		Subtotal:      res.Totals.Subtotal,
		Discount:      res.Totals.DiscountAmount,
		Total:         res.Totals.Total,
		Error:         string(res.Error),
		At:            rec.CreatedAt,
	}
	for _, l := range res.lines {
		evt.Items = append(evt.Items, PurchaseLineEvt{Item: l.Key, Price: l.UnitPrice, Amount: l.Quantity})
	}
	key := RKPurchaseCompleted
	if !res.Success {
		key = RKPurchaseFailed
	}
	if err := s.events.PublishJSON(ctx, key, evt); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("publish failed")
	}
}

func summarizeLines(lines []cart.Line) string {
	items := make([]invoice.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, invoice.Item{Amount: l.Quantity, Name: l.Key})
	}
	return invoice.Summary(items)
}
