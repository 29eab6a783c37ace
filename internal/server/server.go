// Package server exposes the HTTP surface: provider webhook endpoints for
// USSD and messaging callbacks, vendor registration, a transaction debug
// listing, health, and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kulapay/internal/dispatch"
	"kulapay/internal/models"
	"kulapay/internal/notify"
	"kulapay/internal/storage"
)

// Server holds the handler dependencies.
type Server struct {
	dispatcher *dispatch.Dispatcher
	store      storage.Store
	notifier   notify.Notifier
}

// New creates a Server around the dispatcher, store, and notifier.
func New(dispatcher *dispatch.Dispatcher, store storage.Store, notifier notify.Notifier) *Server {
	return &Server{dispatcher: dispatcher, store: store, notifier: notifier}
}

// Handler builds the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/ussd", s.handleUSSD)
	r.Post("/messaging/callback", s.handleMessagingCallback)
	r.Post("/whatsapp", s.handleWhatsApp)
	r.Post("/vendors", s.handleCreateVendor)
	r.Get("/transactions", s.handleListTransactions)

	return r
}

// handleUSSD serves the Africa's Talking USSD callback. The gateway posts
// form fields sessionId, serviceCode, phoneNumber, and text (the full
// accumulated input) and expects a plain-text CON/END response.
func (s *Server) handleUSSD(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	event := dispatch.SessionEvent{
		SessionID:   r.PostFormValue("sessionId"),
		ServiceCode: r.PostFormValue("serviceCode"),
		Phone:       r.PostFormValue("phoneNumber"),
		Text:        r.PostFormValue("text"),
	}

	reply, err := s.dispatcher.HandleSession(r.Context(), event)
	if err != nil {
		slog.Error("USSD handling failed", "session_id", event.SessionID, "error", err)
		http.Error(w, "END An error occurred. Please try again later.", http.StatusInternalServerError)
		return
	}

	if reply.Notification != nil {
		s.notifyAsync(*reply.Notification)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	prefix := "END "
	if reply.Continue {
		prefix = "CON "
	}
	_, _ = w.Write([]byte(prefix + reply.Text))
}

// inboundMessage is the unified messaging callback payload. SMS callbacks
// arrive form-encoded; chat callbacks arrive as JSON.
type inboundMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

func (m inboundMessage) body() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Message
}

// handleMessagingCallback serves the unified SMS/chat inbound webhook.
// The vendor's reply is delivered out-of-band through the notifier; the
// provider gets a JSON status body.
func (s *Server) handleMessagingCallback(w http.ResponseWriter, r *http.Request) {
	var msg inboundMessage
	channel := notify.ChannelSMS

	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	if strings.Contains(contentType, "application/json") {
		channel = notify.ChannelChat
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request format"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request format"})
			return
		}
		msg.From = r.PostFormValue("from")
		msg.To = r.PostFormValue("to")
		msg.Text = r.PostFormValue("text")
		msg.Message = r.PostFormValue("message")
	}

	if msg.From == "" || msg.body() == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing 'from' or 'text' field"})
		return
	}

	event := dispatch.MessageEvent{From: msg.From, Channel: channel, Text: msg.body()}
	reply, err := s.dispatcher.HandleMessage(r.Context(), event)
	if err != nil {
		slog.Error("message handling failed", "from", msg.From, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	// Reply to the vendor over the channel the message came in on, then
	// any customer confirmation.
	s.notifyAsync(notify.Instruction{To: msg.From, Channel: channel, Message: reply.Text})
	if reply.Notification != nil {
		s.notifyAsync(*reply.Notification)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "processed",
		"message": reply.Text,
		"channel": string(channel),
	})
}

// whatsAppRequest is the chat webhook payload.
type whatsAppRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

// handleWhatsApp serves the conversational chat endpoint: the reply text
// goes straight back in the response body.
func (s *Server) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req whatsAppRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PhoneNumber == "" || req.Message == "" {
		http.Error(w, "missing phoneNumber or message", http.StatusBadRequest)
		return
	}

	event := dispatch.MessageEvent{From: req.PhoneNumber, Channel: notify.ChannelChat, Text: req.Message}
	reply, err := s.dispatcher.HandleMessage(r.Context(), event)
	if err != nil {
		slog.Error("chat handling failed", "from", req.PhoneNumber, "error", err)
		http.Error(w, "An error occurred. Please try again later.", http.StatusInternalServerError)
		return
	}

	if reply.Notification != nil {
		s.notifyAsync(*reply.Notification)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(reply.Text))
}

// createVendorRequest registers a vendor out-of-band.
type createVendorRequest struct {
	PhoneNumber  string `json:"phone_number"`
	BusinessName string `json:"business_name"`
}

func (s *Server) handleCreateVendor(w http.ResponseWriter, r *http.Request) {
	var req createVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.PhoneNumber == "" || req.BusinessName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone_number and business_name are required"})
		return
	}

	vendor := &models.Vendor{Phone: req.PhoneNumber, BusinessName: req.BusinessName}
	if err := s.store.CreateVendor(r.Context(), vendor); err != nil {
		if errors.Is(err, storage.ErrVendorExists) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "vendor already exists"})
			return
		}
		slog.Error("vendor creation failed", "phone", req.PhoneNumber, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"phone_number":  req.PhoneNumber,
		"business_name": req.BusinessName,
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	txs, err := s.store.ListAllTransactions(r.Context(), skip, limit)
	if err != nil {
		slog.Error("transaction listing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	type txJSON struct {
		ID            string  `json:"id"`
		VendorPhone   string  `json:"vendor_phone"`
		CustomerPhone string  `json:"customer_phone"`
		Amount        float64 `json:"amount"`
		PaymentType   string  `json:"payment_type"`
		CreatedAt     int64   `json:"created_at"`
	}
	out := make([]txJSON, len(txs))
	for i, tx := range txs {
		out[i] = txJSON{
			ID:            tx.ID,
			VendorPhone:   tx.VendorPhone,
			CustomerPhone: tx.CustomerPhone,
			Amount:        tx.Amount,
			PaymentType:   string(tx.PaymentType),
			CreatedAt:     tx.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

// notifyAsync delivers a notification off the request path. A failed send
// is logged and never affects the already-committed transaction.
func (s *Server) notifyAsync(instruction notify.Instruction) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.notifier.Send(ctx, instruction.To, instruction.Channel, instruction.Message); err != nil {
			slog.Warn("notification failed",
				"to", instruction.To,
				"channel", string(instruction.Channel),
				"error", err,
			)
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
