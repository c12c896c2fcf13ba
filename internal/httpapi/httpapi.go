// Package httpapi is the HTTP request router: session creation, token
// discovery, metadata lookup, and the push-channel upgrade. Routing itself
// is an external collaborator per spec (§1); it exists only to get
// requests to the session engine, push adapter, and façades below it.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/klingon-exchange/trade-with-me/internal/metadatastore"
	"github.com/klingon-exchange/trade-with-me/internal/tokenservice"
	"github.com/klingon-exchange/trade-with-me/pkg/logging"
)

// wsHandler is satisfied by wsadapter.Adapter. Declared here rather than
// imported to keep httpapi from depending on the websocket library.
type wsHandler interface {
	HandleConnection(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID)
}

// tradeCreator is satisfied by traderepo.Service.
type tradeCreator interface {
	CreateTradeSession(initiatorAddress string) (uuid.UUID, error)
}

// tokenFetcher is satisfied by tokenservice.Service.
type tokenFetcher interface {
	FetchTokens(ctx context.Context, walletAddress string) ([]tokenservice.TokenAccount, error)
}

// metadataGetter is satisfied by metadatastore.Store.
type metadataGetter interface {
	Get(mintAddress string) (*metadatastore.TokenMetadata, error)
}

// Server wires the HTTP surface to the session-creation façade, token
// discovery service, metadata store, and push-channel adapter.
type Server struct {
	trades   tradeCreator
	tokens   tokenFetcher
	metadata metadataGetter
	ws       wsHandler
	log      *logging.Logger

	server *http.Server
}

// New returns a Server with routes registered but not yet listening.
func New(trades tradeCreator, tokens tokenFetcher, metadata metadataGetter, ws wsHandler, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Default()
	}
	s := &Server{trades: trades, tokens: tokens, metadata: metadata, ws: ws, log: log.Component("httpapi")}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /tokens", s.handleTokens)
	mux.HandleFunc("GET /tokens/metadata", s.handleTokenMetadata)
	mux.HandleFunc("POST /trading_session", s.handleCreateTradingSession)
	mux.HandleFunc("GET /ws/trading_session/{session_id}", s.handleTradingSessionWS)

	s.server = &http.Server{
		Handler:      corsMiddleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// ListenAndServe starts serving on addr. It blocks until the server stops.
func (s *Server) ListenAndServe(addr string) error {
	s.server.Addr = addr
	s.log.Info("http server listening", "addr", addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Hello, World!"))
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "missing address query parameter", http.StatusBadRequest)
		return
	}

	tokens, err := s.tokens.FetchTokens(r.Context(), address)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tokens": tokens})
}

func (s *Server) handleTokenMetadata(w http.ResponseWriter, r *http.Request) {
	mint := r.URL.Query().Get("mint_address")
	if mint == "" {
		http.Error(w, "missing mint_address query parameter", http.StatusBadRequest)
		return
	}

	meta, err := s.metadata.Get(mint)
	if errors.Is(err, metadatastore.ErrNotFound) {
		http.Error(w, "no metadata cached for mint "+mint, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

type createTradingSessionRequest struct {
	InitiatorAddress string `json:"initiatorAddress"`
}

func (s *Server) handleCreateTradingSession(w http.ResponseWriter, r *http.Request) {
	var req createTradingSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	if req.InitiatorAddress == "" {
		http.Error(w, "initiatorAddress is required", http.StatusBadRequest)
		return
	}

	id, err := s.trades.CreateTradeSession(req.InitiatorAddress)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"uuid": id.String()})
}

func (s *Server) handleTradingSessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.PathValue("session_id"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	s.ws.HandleConnection(w, r, sessionID)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// corsMiddleware permits cross-origin requests from any client, matching
// the spec's "CORS permissive" requirement (§6).
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
