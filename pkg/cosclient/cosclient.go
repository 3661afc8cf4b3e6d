// Package cosclient provides a client for interacting with the coordination API.
package cosclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quorum-hq/cosigner/pkg/api"
	"github.com/quorum-hq/cosigner/pkg/logger"
	"github.com/quorum-hq/cosigner/pkg/models"
)

// Client represents a coordination API client
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     logger.Logger
}

// New creates a new coordination API client
func New(endpoint string, log logger.Logger) *Client {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: createHTTPClient(),
		logger:     log,
	}
}

// CreateIntent registers a new intent and returns its identity, the digest
// owners must sign, and the policy snapshot
func (c *Client) CreateIntent(req api.CreateIntentRequest) (*api.CreateIntentResponse, error) {
	var resp api.CreateIntentResponse
	if err := c.post("/api/v1/intents", req, &resp, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("failed to create intent: %v", err)
	}
	return &resp, nil
}

// GetIntent fetches the current state of an intent
func (c *Client) GetIntent(intentID string) (*models.IntentView, error) {
	resp, err := c.httpClient.Get(c.endpoint + "/api/v1/intents/" + intentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch intent: %v", err)
	}
	defer c.closeBody(resp.Body)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var view models.IntentView
	if err := json.Unmarshal(bodyBytes, &view); err != nil {
		return nil, fmt.Errorf("failed to decode intent: %v, body: %s", err, string(bodyBytes))
	}
	return &view, nil
}

// SubmitSignature submits one owner's wrapped signature for an intent
func (c *Client) SubmitSignature(intentID string, signature string) (*api.SubmitSignatureResponse, error) {
	req := api.SubmitSignatureRequest{Signature: signature}
	var resp api.SubmitSignatureResponse
	if err := c.post("/api/v1/intents/"+intentID+"/signatures", req, &resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("failed to submit signature: %v", err)
	}
	return &resp, nil
}

// SubmitIntent asks the coordinator to broadcast a ready intent
func (c *Client) SubmitIntent(intentID string) (*api.SubmitIntentResponse, error) {
	var resp api.SubmitIntentResponse
	if err := c.post("/api/v1/intents/"+intentID+"/submit", struct{}{}, &resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("failed to submit intent: %v", err)
	}
	return &resp, nil
}

// post sends a JSON request and decodes the JSON response into out
func (c *Client) post(path string, body interface{}, out interface{}, wantStatus int) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %v", err)
	}

	resp, err := c.httpClient.Post(c.endpoint+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer c.closeBody(resp.Body)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %v", err)
	}
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %v, body: %s", err, string(bodyBytes))
	}
	return nil
}

func (c *Client) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		c.logger.Error("Failed to close response body: %v", err)
	}
}

// Helper function to create an HTTP client with timeouts
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
