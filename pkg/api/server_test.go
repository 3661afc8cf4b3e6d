package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorum-hq/cosigner/pkg/chainclient"
	"github.com/quorum-hq/cosigner/pkg/intents"
	"github.com/quorum-hq/cosigner/pkg/models"
)

// stubBackend is a minimal AccountBackend for handler tests
type stubBackend struct {
	nonce     *big.Int
	digest    common.Hash
	threshold int
	owners    []common.Hash
	configErr error

	// validSignatures maps raw signature bytes to the owner they recover to
	validSignatures map[string]common.Hash
}

func (s *stubBackend) GetNonce(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return new(big.Int).Set(s.nonce), nil
}

func (s *stubBackend) ComputeDigest(context.Context, common.Address, []models.Call, *big.Int) (common.Hash, error) {
	return s.digest, nil
}

func (s *stubBackend) ValidateSignature(_ context.Context, _ common.Address, _ common.Hash, signature []byte) (bool, common.Hash, error) {
	owner, valid := s.validSignatures[string(signature)]
	return valid, owner, nil
}

func (s *stubBackend) PolicyConfig(context.Context, common.Address, common.Hash) (int, []common.Hash, error) {
	if s.configErr != nil {
		return 0, nil, s.configErr
	}
	return s.threshold, s.owners, nil
}

// stubRelayer is a minimal Relayer for handler tests
type stubRelayer struct {
	txHash common.Hash
}

func (s *stubRelayer) Broadcast(context.Context, common.Address, common.Hash, []byte) (common.Hash, error) {
	return s.txHash, nil
}

func (s *stubRelayer) Wait(context.Context, common.Hash) (bool, error) {
	return true, nil
}

var (
	ownerA = common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000a1")
	ownerB = common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000b2")
)

func newTestServer(metricsAPIKey string) (*Server, *stubBackend) {
	backend := &stubBackend{
		nonce:           big.NewInt(3),
		digest:          common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111"),
		threshold:       2,
		owners:          []common.Hash{ownerA, ownerB},
		validSignatures: make(map[string]common.Hash),
	}
	relayer := &stubRelayer{
		txHash: common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222"),
	}

	store := intents.NewMemoryStore()
	coordinator := intents.NewCoordinator(store, backend, relayer, nil, 8453, nil)
	client := &chainclient.Client{ChainID: 8453, RPCURL: "http://localhost:8545"}

	return NewServer("0", coordinator, store, client, nil, metricsAPIKey), backend
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func validCreateBody() CreateIntentRequest {
	return CreateIntentRequest{
		Account: "0x1000000000000000000000000000000000000001",
		ChainID: 8453,
		KeyHash: "0x00000000000000000000000000000000000000000000000000000000000000ee",
		Calls: []models.CallView{
			{To: "0x2000000000000000000000000000000000000002", Value: "1000000", Data: "0x"},
		},
	}
}

// TestCreateIntentEndpoint verifies the create flow over HTTP
func TestCreateIntentEndpoint(t *testing.T) {
	server, _ := newTestServer("")
	handler := server.Handler()

	recorder := doJSON(t, handler, http.MethodPost, "/api/v1/intents", validCreateBody())
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var resp CreateIntentResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.IntentID)
	assert.Equal(t, 2, resp.Threshold)
	assert.Len(t, resp.Owners, 2)

	// The created intent is retrievable
	got := doJSON(t, handler, http.MethodGet, "/api/v1/intents/"+resp.IntentID, nil)
	require.Equal(t, http.StatusOK, got.Code)

	var view models.IntentView
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &view))
	assert.Equal(t, "collecting", view.Status)
	assert.Equal(t, "3", view.Nonce)
	assert.Equal(t, "1000000", view.Calls[0].Value)
}

// TestCreateIntentEndpointValidation verifies wire-level input checks
func TestCreateIntentEndpointValidation(t *testing.T) {
	server, _ := newTestServer("")
	handler := server.Handler()

	tests := []struct {
		name   string
		mutate func(*CreateIntentRequest)
	}{
		{name: "Bad account", mutate: func(r *CreateIntentRequest) { r.Account = "nope" }},
		{name: "Wrong chain", mutate: func(r *CreateIntentRequest) { r.ChainID = 1 }},
		{name: "Bad key hash", mutate: func(r *CreateIntentRequest) { r.KeyHash = "0x123" }},
		{name: "Bad call value", mutate: func(r *CreateIntentRequest) { r.Calls[0].Value = "one" }},
		{name: "Bad call address", mutate: func(r *CreateIntentRequest) { r.Calls[0].To = "zzz" }},
		{name: "Bad sequence key", mutate: func(r *CreateIntentRequest) { r.SequenceKey = "-5" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := validCreateBody()
			tc.mutate(&body)
			recorder := doJSON(t, handler, http.MethodPost, "/api/v1/intents", body)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}

// TestCreateIntentEndpointChainFailure verifies a chain read failure during
// creation surfaces as an upstream error, not a client error
func TestCreateIntentEndpointChainFailure(t *testing.T) {
	server, backend := newTestServer("")
	backend.configErr = errors.New("connection reset")

	recorder := doJSON(t, server.Handler(), http.MethodPost, "/api/v1/intents", validCreateBody())
	assert.Equal(t, http.StatusBadGateway, recorder.Code, recorder.Body.String())
}

// TestGetIntentEndpointNotFound verifies the 404 mapping
func TestGetIntentEndpointNotFound(t *testing.T) {
	server, _ := newTestServer("")
	recorder := doJSON(t, server.Handler(), http.MethodGet, "/api/v1/intents/missing", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

// TestSignatureEndpoint verifies collection over HTTP and the error mappings
func TestSignatureEndpoint(t *testing.T) {
	server, backend := newTestServer("")
	handler := server.Handler()

	created := doJSON(t, handler, http.MethodPost, "/api/v1/intents", validCreateBody())
	require.Equal(t, http.StatusCreated, created.Code)
	var createResp CreateIntentResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createResp))

	sig := append(bytes.Repeat([]byte{0xaa}, 65), 0x00)
	backend.validSignatures[string(sig)] = ownerA

	t.Run("Accepted", func(t *testing.T) {
		body := SubmitSignatureRequest{Signature: "0x" + common.Bytes2Hex(sig)}
		recorder := doJSON(t, handler, http.MethodPost, "/api/v1/intents/"+createResp.IntentID+"/signatures", body)
		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

		var resp SubmitSignatureResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.True(t, resp.Accepted)
		assert.Equal(t, 1, resp.Collected)
		assert.False(t, resp.Ready)
	})

	t.Run("Invalid signature maps to 401", func(t *testing.T) {
		body := SubmitSignatureRequest{Signature: "0x" + common.Bytes2Hex(append(bytes.Repeat([]byte{0xcc}, 65), 0x00))}
		recorder := doJSON(t, handler, http.MethodPost, "/api/v1/intents/"+createResp.IntentID+"/signatures", body)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Non-owner maps to 403", func(t *testing.T) {
		outsiderSig := append(bytes.Repeat([]byte{0xdd}, 65), 0x00)
		backend.validSignatures[string(outsiderSig)] = common.HexToHash("0xdd")

		body := SubmitSignatureRequest{Signature: "0x" + common.Bytes2Hex(outsiderSig)}
		recorder := doJSON(t, handler, http.MethodPost, "/api/v1/intents/"+createResp.IntentID+"/signatures", body)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("Malformed hex maps to 400", func(t *testing.T) {
		body := SubmitSignatureRequest{Signature: "zz"}
		recorder := doJSON(t, handler, http.MethodPost, "/api/v1/intents/"+createResp.IntentID+"/signatures", body)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

// TestSubmitEndpoint verifies submission over HTTP, including the premature
// submission mapping
func TestSubmitEndpoint(t *testing.T) {
	server, backend := newTestServer("")
	handler := server.Handler()

	created := doJSON(t, handler, http.MethodPost, "/api/v1/intents", validCreateBody())
	require.Equal(t, http.StatusCreated, created.Code)
	var createResp CreateIntentResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createResp))
	submitPath := "/api/v1/intents/" + createResp.IntentID + "/submit"

	recorder := doJSON(t, handler, http.MethodPost, submitPath, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code, "below threshold maps to 400")

	for i, owner := range []common.Hash{ownerA, ownerB} {
		sig := append(bytes.Repeat([]byte{byte(0xa0 + i)}, 65), 0x00)
		backend.validSignatures[string(sig)] = owner
		body := SubmitSignatureRequest{Signature: "0x" + common.Bytes2Hex(sig)}
		sigResp := doJSON(t, handler, http.MethodPost, "/api/v1/intents/"+createResp.IntentID+"/signatures", body)
		require.Equal(t, http.StatusOK, sigResp.Code)
	}

	recorder = doJSON(t, handler, http.MethodPost, submitPath, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resp SubmitIntentResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "confirmed", resp.Status)
	assert.NotEmpty(t, resp.TxHash)

	recorder = doJSON(t, handler, http.MethodPost, submitPath, nil)
	assert.Equal(t, http.StatusConflict, recorder.Code, "a terminal intent cannot be resubmitted")
}

// TestHealthEndpoints verifies the operational endpoints
func TestHealthEndpoints(t *testing.T) {
	server, _ := newTestServer("")
	handler := server.Handler()

	health := doJSON(t, handler, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, health.Code)

	// The test client has no live RPC connection
	ready := doJSON(t, handler, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, ready.Code)

	status := doJSON(t, handler, http.MethodGet, "/status", nil)
	assert.Equal(t, http.StatusOK, status.Code)
}

// TestMetricsAuth verifies the Bearer token gate on /metrics
func TestMetricsAuth(t *testing.T) {
	server, _ := newTestServer("sekrit")
	handler := server.Handler()

	recorder := doJSON(t, handler, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code, "missing header is rejected")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
