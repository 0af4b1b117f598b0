// HTTP surface consumed by the NUI panels
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/killerderoo/fx-restaurant/pkg/bridge"
	"github.com/killerderoo/fx-restaurant/pkg/cart"
)

const maxBody = 1 << 20

const warnStockExceeded = "stock_exceeded"

type Server struct {
	svc *Service
}

func NewServer(svc *Service) *Server {
	return &Server{svc: svc}
}

// Handler returns the routed mux wrapped in CORS for the given origins.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.handleOpen)
	mux.HandleFunc("GET /sessions/{id}", s.handleView)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleClose)
	mux.HandleFunc("POST /sessions/{id}/items", s.handleAdd)
	mux.HandleFunc("PUT /sessions/{id}/items/{item}", s.handleSetQuantity)
	mux.HandleFunc("DELETE /sessions/{id}/items/{item}", s.handleRemove)
	mux.HandleFunc("DELETE /sessions/{id}/items", s.handleClear)
	mux.HandleFunc("POST /sessions/{id}/purchase", s.handlePurchase)
	mux.HandleFunc("GET /cashier/players", s.handlePlayers)
	mux.HandleFunc("POST /cashier/invoice", s.handleInvoice)
	mux.HandleFunc("GET /journal/export", s.handleExport)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(accessLog(mux))
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", bridge.ErrMalformedPayload, err))
		return
	}
	sess, err := s.svc.Open(raw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Session(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Close(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addRequest struct {
	Item   string `json:"item"`
	Amount int    `json:"amount"`
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Session(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req addRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	exceeded, err := sess.Add(req.Item, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeView(w, sess, exceeded)
}

type quantityRequest struct {
	Amount int `json:"amount"`
}

func (s *Server) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Session(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req quantityRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	exceeded, err := sess.SetQuantity(r.PathValue("item"), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeView(w, sess, exceeded)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Session(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := sess.Remove(r.PathValue("item")); err != nil {
		writeError(w, err)
		return
	}
	writeView(w, sess, false)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Session(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := sess.Clear(); err != nil {
		writeError(w, err)
		return
	}
	writeView(w, sess, false)
}

type purchaseRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	// ingredient purchases carry no body
	if err := decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, err)
		return
	}
	res, err := s.svc.Purchase(r.Context(), r.PathValue("id"), req.PaymentMethod)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.svc.NearbyPlayers(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("nearby players lookup failed")
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "host_unavailable", Message: "Could not reach the host"})
		return
	}
	writeJSON(w, http.StatusOK, bridge.NearbyPlayersResponse{Players: players})
}

func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	var form InvoiceForm
	if err := decode(w, r, &form); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.svc.Invoice(r.Context(), form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := fmt.Sprintf("panels-journal-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := ExportJournal(r.Context(), s.svc.journal, w); err != nil {
		log.Error().Err(err).Msg("journal export failed")
		http.Error(w, "export failed", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.svc.sessions.Len()})
}

func writeView(w http.ResponseWriter, sess *Session, exceeded bool) {
	v := sess.View()
	if exceeded {
		v.Warning = warnStockExceeded
	}
	writeJSON(w, http.StatusOK, v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", bridge.ErrMalformedPayload, err)
	}
	return nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	msg := err.Error()
	var cat bridge.ErrorCategory
	if errors.As(err, &cat) {
		msg = cat.Message()
	}
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

func statusFor(err error) (int, string) {
	var cat bridge.ErrorCategory
	switch {
	case errors.Is(err, bridge.ErrMalformedPayload), errors.Is(err, cart.ErrInvalidItem):
		return http.StatusBadRequest, "malformed_payload"
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionClosed):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, ErrUnknownItem), errors.Is(err, cart.ErrItemNotFound):
		return http.StatusNotFound, "item_not_found"
	case errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity, "invalid_quantity"
	case errors.Is(err, ErrNoCustomer), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidPayment):
		return http.StatusUnprocessableEntity, "invalid_invoice"
	case errors.As(err, &cat):
		return http.StatusConflict, string(cat)
	}
	return http.StatusInternalServerError, "internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("write response")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("http")
	})
}
