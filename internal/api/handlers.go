/*
Package api
File: handlers.go
Description:
    HTTP handlers for the REST API and the dispatcher for WebSocket intents.
    Both paths drive the same engine and scheduler:

    - Reads (state, upgrades) take a snapshot; they never hold the engine lock
      while encoding.
    - Clicks are buffered in the scheduler and credited on its next tick.
    - Purchases go straight to the engine; the resulting event is broadcast
      by the purchase listener installed with WatchPurchases.
*/

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/engine"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/scheduler"
)

// MaxClicksPerRequest bounds the count a single click request may buffer.
const MaxClicksPerRequest = 1000

// Request DTOs

type ClickRequest struct {
	Count int `json:"count"`
}

type PurchaseRequest struct {
	UpgradeID *int `json:"upgrade_id"`
}

type CurrencyRequest struct {
	Currency *float64 `json:"currency"`
}

// Response DTOs

type ClickResponse struct {
	Pending int `json:"pending"`
}

type PurchaseResponse struct {
	Level int             `json:"level"`
	State engine.Snapshot `json:"state"`
}

// PurchaseRejection is sent to a WebSocket client whose purchase failed.
type PurchaseRejection struct {
	UpgradeID int     `json:"upgrade_id"`
	Reason    string  `json:"reason"`
	Cost      float64 `json:"cost,omitempty"`
}

// Server exposes one game over HTTP and WebSocket.
type Server struct {
	eng   *engine.Engine
	sched *scheduler.Scheduler
	hub   *Hub
	debug bool
}

// NewServer builds a server and its hub. Start the hub with Hub().Run.
func NewServer(eng *engine.Engine, sched *scheduler.Scheduler, debug bool) *Server {
	s := &Server{eng: eng, sched: sched, debug: debug}
	s.hub = NewHub(s.handleIntent)
	return s
}

// Hub returns the server's WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Routes returns the full handler tree, CORS included.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Information
	mux.HandleFunc("GET /api/state", s.handleGetState)
	mux.HandleFunc("GET /api/upgrades", s.handleGetUpgrades)

	// Actions
	mux.HandleFunc("POST /api/click", s.handleClick)
	mux.HandleFunc("POST /api/purchase", s.handlePurchase)
	if s.debug {
		mux.HandleFunc("POST /api/debug/currency", s.handleSetCurrency)
		log.Println("API: debug endpoints enabled")
	}

	// Real-time
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(s.hub, w, r)
	})

	return CORS(mux)
}

// PublishState broadcasts the current snapshot to every WebSocket client.
func (s *Server) PublishState() {
	s.hub.Publish("state", s.eng.Snapshot())
}

// WatchPurchases broadcasts every completed purchase until the returned function is called.
func (s *Server) WatchPurchases() (unsubscribe func()) {
	return s.eng.Subscribe(func(ev engine.PurchaseEvent) {
		s.hub.Publish("upgrade_purchased", ev)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API: encode response: %v", err)
	}
}

// handleGetState returns the live progression snapshot.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Snapshot())
}

// handleGetUpgrades returns the static catalog in display order.
func (s *Server) handleGetUpgrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Catalog().All())
}

// handleClick buffers clicks for the next tick.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if req.Count <= 0 || req.Count > MaxClicksPerRequest {
		http.Error(w, "count must be between 1 and 1000", http.StatusBadRequest)
		return
	}

	s.sched.AddClicks(req.Count)
	writeJSON(w, http.StatusAccepted, ClickResponse{Pending: s.sched.Pending()})
}

// handlePurchase buys one level of an upgrade.
func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UpgradeID == nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	level, err := s.eng.Purchase(*req.UpgradeID)
	switch {
	case errors.Is(err, engine.ErrUnknownUpgrade):
		log.Printf("ENGINE: %v", err)
		http.Error(w, "Upgrade not found", http.StatusNotFound)
		return
	case errors.Is(err, engine.ErrInsufficientFunds):
		http.Error(w, "Insufficient Currency", http.StatusPaymentRequired)
		return
	case err != nil:
		log.Printf("ENGINE: purchase %d: %v", *req.UpgradeID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, PurchaseResponse{Level: level, State: s.eng.Snapshot()})
}

// handleSetCurrency overwrites the balance. Registered only in debug mode.
func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var req CurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Currency == nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := s.eng.SetCurrency(*req.Currency); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Printf("API: debug currency set to %.2f", *req.Currency)
	writeJSON(w, http.StatusOK, s.eng.Snapshot())
}

// handleIntent dispatches one WebSocket message.
func (s *Server) handleIntent(c *Client, msg Inbound) {
	switch msg.Type {
	case "click":
		req := ClickRequest{Count: 1}
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				log.Printf("WS: bad click payload from %s: %v", c.ID, err)
				return
			}
		}
		if req.Count <= 0 || req.Count > MaxClicksPerRequest {
			log.Printf("WS: click count %d from %s out of range", req.Count, c.ID)
			return
		}
		s.sched.AddClicks(req.Count)

	case "purchase":
		var req PurchaseRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil || req.UpgradeID == nil {
			log.Printf("WS: bad purchase payload from %s", c.ID)
			return
		}
		id := *req.UpgradeID
		if _, err := s.eng.Purchase(id); err != nil {
			rejection := PurchaseRejection{UpgradeID: id, Reason: err.Error()}
			var funds *engine.InsufficientFundsError
			if errors.As(err, &funds) {
				rejection.Reason = engine.ErrInsufficientFunds.Error()
				rejection.Cost = funds.Cost
			} else if errors.Is(err, engine.ErrUnknownUpgrade) {
				log.Printf("ENGINE: %v (from %s)", err, c.ID)
			}
			s.hub.Reply(c, "purchase_rejected", rejection)
		}

	default:
		log.Printf("WS: unknown message type %q from %s", msg.Type, c.ID)
	}
}
