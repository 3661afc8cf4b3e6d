// Package api exposes the coordination service over HTTP: intent creation,
// signature collection, submission, and the operational endpoints (health,
// readiness, status, metrics).
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quorum-hq/cosigner/pkg/chainclient"
	"github.com/quorum-hq/cosigner/pkg/circuitbreaker"
	"github.com/quorum-hq/cosigner/pkg/intents"
	"github.com/quorum-hq/cosigner/pkg/models"
)

// Server is the coordination HTTP server
type Server struct {
	port          string
	coordinator   *intents.Coordinator
	store         *intents.MemoryStore
	client        *chainclient.Client
	breaker       *circuitbreaker.CircuitBreaker
	metricsAPIKey string
}

// NewServer creates a new coordination server
func NewServer(port string, coordinator *intents.Coordinator, store *intents.MemoryStore, client *chainclient.Client, breaker *circuitbreaker.CircuitBreaker, metricsAPIKey string) *Server {
	return &Server{
		port:          port,
		coordinator:   coordinator,
		store:         store,
		client:        client,
		breaker:       breaker,
		metricsAPIKey: metricsAPIKey,
	}
}

// CreateIntentRequest is the request body for intent creation
type CreateIntentRequest struct {
	Account     string            `json:"account"`
	ChainID     int               `json:"chain_id"`
	KeyHash     string            `json:"key_hash"`
	SequenceKey string            `json:"sequence_key,omitempty"`
	Calls       []models.CallView `json:"calls"`
}

// CreateIntentResponse is the response body for intent creation
type CreateIntentResponse struct {
	IntentID  string   `json:"intent_id"`
	Digest    string   `json:"digest"`
	Threshold int      `json:"threshold"`
	Owners    []string `json:"owners"`
}

// SubmitSignatureRequest is the request body for signature submission
type SubmitSignatureRequest struct {
	Signature string `json:"signature"`
}

// SubmitSignatureResponse is the response body for signature submission
type SubmitSignatureResponse struct {
	Accepted  bool `json:"accepted"`
	Duplicate bool `json:"duplicate"`
	Collected int  `json:"collected"`
	Threshold int  `json:"threshold"`
	Ready     bool `json:"ready"`
}

// SubmitIntentResponse is the response body for intent submission
type SubmitIntentResponse struct {
	TxHash string `json:"tx_hash"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// metricsAuthMiddleware is a middleware that checks for a valid API key
func (s *Server) metricsAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth if no API key is configured
		if s.metricsAPIKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		// Get API key from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		// Check if the header has the correct format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		// Validate API key
		if parts[1] != s.metricsAPIKey {
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/intents", s.handleCreateIntent)
	mux.HandleFunc("GET /api/v1/intents/{id}", s.handleGetIntent)
	mux.HandleFunc("POST /api/v1/intents/{id}/signatures", s.handleSubmitSignature)
	mux.HandleFunc("POST /api/v1/intents/{id}/submit", s.handleSubmitIntent)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		if s.client == nil || s.client.Client == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Chain client not connected"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ready"))
	})

	mux.HandleFunc("GET /status", s.handleStatus)

	mux.HandleFunc("POST /circuit/reset", func(w http.ResponseWriter, r *http.Request) {
		if s.breaker == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("No circuit breaker configured"))
			return
		}
		s.breaker.Reset()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Circuit breaker reset"))
	})

	// Expose Prometheus metrics with API key authentication
	mux.Handle("GET /metrics", s.metricsAuthMiddleware(promhttp.Handler()))

	return mux
}

// Start starts the coordination server
func (s *Server) Start() {
	log.Printf("Starting coordination server on port %s", s.port)
	if err := http.ListenAndServe(":"+s.port, s.Handler()); err != nil {
		log.Printf("Coordination server error: %v", err)
	}
}

func (s *Server) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	createReq, err := parseCreateRequest(&req, s.client.ChainID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.coordinator.CreateIntent(r.Context(), *createReq)
	if err != nil {
		// Chain-read failures are the upstream's fault, not the caller's
		status := http.StatusBadRequest
		if errors.Is(err, intents.ErrChainRead) {
			status = http.StatusBadGateway
		}
		writeError(w, status, err)
		return
	}

	owners := make([]string, 0, len(result.Owners))
	for _, owner := range result.Owners {
		owners = append(owners, owner.Hex())
	}

	writeJSON(w, http.StatusCreated, CreateIntentResponse{
		IntentID:  result.IntentID,
		Digest:    result.Digest.Hex(),
		Threshold: result.Threshold,
		Owners:    owners,
	})
}

func (s *Server) handleGetIntent(w http.ResponseWriter, r *http.Request) {
	intent, err := s.coordinator.GetIntent(r.PathValue("id"))
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, intent.View())
}

func (s *Server) handleSubmitSignature(w http.ResponseWriter, r *http.Request) {
	var req SubmitSignatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	signature, err := hexutil.Decode(req.Signature)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid signature encoding: %v", err))
		return
	}

	result, err := s.coordinator.SubmitSignature(r.Context(), r.PathValue("id"), signature)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	writeJSON(w, http.StatusOK, SubmitSignatureResponse{
		Accepted:  result.Accepted,
		Duplicate: result.Duplicate,
		Collected: result.Collected,
		Threshold: result.Threshold,
		Ready:     result.Ready,
	})
}

func (s *Server) handleSubmitIntent(w http.ResponseWriter, r *http.Request) {
	result, err := s.coordinator.SubmitIntent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	writeJSON(w, http.StatusOK, SubmitIntentResponse{
		TxHash: result.TxHash.Hex(),
		Status: string(result.Outcome),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	circuitStatus := "closed"
	if s.breaker != nil && s.breaker.IsOpen() {
		circuitStatus = "open"
	}

	status := map[string]interface{}{
		"chain_id":         s.client.ChainID,
		"rpc_url":          s.client.RPCURL,
		"keystore_address": s.client.KeystoreAddress,
		"connected":        s.client.Client != nil,
		"circuit":          circuitStatus,
		"collecting":       s.store.Count(models.StatusCollecting),
		"submitted":        s.store.Count(models.StatusSubmitted),
		"confirmed":        s.store.Count(models.StatusConfirmed),
		"failed":           s.store.Count(models.StatusFailed),
	}

	if s.client.Auth != nil {
		status["relayer_address"] = s.client.Auth.From.Hex()
	}

	// Get latest block number if connected
	if s.client.Client != nil {
		blockNumber, err := s.client.GetLatestBlockNumber(r.Context())
		if err == nil {
			status["latest_block"] = blockNumber
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Printf("Error encoding status JSON: %v", err)
	}
}

// parseCreateRequest validates and converts the wire-level create request
func parseCreateRequest(req *CreateIntentRequest, chainID int) (*intents.CreateRequest, error) {
	if !common.IsHexAddress(req.Account) {
		return nil, fmt.Errorf("invalid account address: %s", req.Account)
	}
	if req.ChainID != 0 && req.ChainID != chainID {
		return nil, fmt.Errorf("chain ID %d is not served by this coordinator (serving %d)", req.ChainID, chainID)
	}
	if len(req.KeyHash) != 66 || !strings.HasPrefix(req.KeyHash, "0x") {
		return nil, fmt.Errorf("invalid key hash: %s", req.KeyHash)
	}

	seqKey := big.NewInt(0)
	if req.SequenceKey != "" {
		parsed, ok := new(big.Int).SetString(req.SequenceKey, 10)
		if !ok || parsed.Sign() < 0 {
			return nil, fmt.Errorf("invalid sequence key: %s", req.SequenceKey)
		}
		seqKey = parsed
	}

	calls := make([]models.Call, 0, len(req.Calls))
	for i, callView := range req.Calls {
		if !common.IsHexAddress(callView.To) {
			return nil, fmt.Errorf("call %d: invalid to address: %s", i, callView.To)
		}
		value, ok := new(big.Int).SetString(callView.Value, 10)
		if !ok {
			return nil, fmt.Errorf("call %d: invalid value: %s", i, callView.Value)
		}
		data := []byte{}
		if callView.Data != "" && callView.Data != "0x" {
			decoded, err := hexutil.Decode(callView.Data)
			if err != nil {
				return nil, fmt.Errorf("call %d: invalid data: %v", i, err)
			}
			data = decoded
		}
		calls = append(calls, models.Call{
			To:    common.HexToAddress(callView.To),
			Value: value,
			Data:  data,
		})
	}

	return &intents.CreateRequest{
		Account:     common.HexToAddress(req.Account),
		KeyHash:     common.HexToHash(req.KeyHash),
		SequenceKey: seqKey,
		Calls:       calls,
	}, nil
}

// statusForError maps coordinator errors to HTTP status codes
func statusForError(err error) int {
	var nonceErr *intents.NonceMismatchError
	switch {
	case errors.Is(err, intents.ErrIntentNotFound):
		return http.StatusNotFound
	case errors.Is(err, intents.ErrDigestMismatch), errors.Is(err, intents.ErrIntentNotCollecting), errors.As(err, &nonceErr):
		return http.StatusConflict
	case errors.Is(err, intents.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, intents.ErrSignerNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, intents.ErrInsufficientSignatures):
		return http.StatusBadRequest
	case errors.Is(err, intents.ErrRelayerUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, intents.ErrChainRead):
		return http.StatusBadGateway
	case errors.Is(err, intents.ErrBroadcastFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
