// Package intents implements the intent lifecycle: creation, signature
// collection against an authorized owner set, and threshold-gated submission
// to the account contract.
package intents

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/quorum-hq/cosigner/pkg/circuitbreaker"
	"github.com/quorum-hq/cosigner/pkg/logger"
	"github.com/quorum-hq/cosigner/pkg/metrics"
	"github.com/quorum-hq/cosigner/pkg/models"
)

// AccountBackend provides the on-chain reads the coordinator depends on.
// Every digest, nonce and signature verdict comes from the account contract
// itself; nothing is recomputed locally.
type AccountBackend interface {
	// GetNonce reads the account's current nonce for the sequence key
	GetNonce(ctx context.Context, account common.Address, seqKey *big.Int) (*big.Int, error)

	// ComputeDigest asks the account for the canonical digest of (calls, nonce)
	ComputeDigest(ctx context.Context, account common.Address, calls []models.Call, nonce *big.Int) (common.Hash, error)

	// ValidateSignature asks the account to unwrap and validate a wrapped
	// signature over the digest, returning the recovered owner key hash
	ValidateSignature(ctx context.Context, account common.Address, digest common.Hash, signature []byte) (bool, common.Hash, error)

	// PolicyConfig reads the (threshold, owners) config for the policy key
	PolicyConfig(ctx context.Context, account common.Address, keyHash common.Hash) (int, []common.Hash, error)
}

// Relayer broadcasts account execute transactions and reports their outcome
type Relayer interface {
	// Broadcast sends the execute transaction and returns its hash
	Broadcast(ctx context.Context, account common.Address, mode common.Hash, executionData []byte) (common.Hash, error)

	// Wait blocks until the transaction is mined and reports whether it
	// succeeded on chain
	Wait(ctx context.Context, txHash common.Hash) (bool, error)
}

// Coordinator drives the intent lifecycle against a Store and the chain
type Coordinator struct {
	store   Store
	backend AccountBackend
	relayer Relayer
	breaker *circuitbreaker.CircuitBreaker
	chainID int
	logger  logger.Logger
}

// NewCoordinator creates a coordinator
func NewCoordinator(store Store, backend AccountBackend, relayer Relayer, breaker *circuitbreaker.CircuitBreaker, chainID int, log logger.Logger) *Coordinator {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Coordinator{
		store:   store,
		backend: backend,
		relayer: relayer,
		breaker: breaker,
		chainID: chainID,
		logger:  log,
	}
}

// CreateRequest carries the parameters for a new intent
type CreateRequest struct {
	Account     common.Address
	KeyHash     common.Hash
	SequenceKey *big.Int
	Calls       []models.Call
}

// CreateResult reports the created intent's identity and policy snapshot
type CreateResult struct {
	IntentID  string
	Digest    common.Hash
	Threshold int
	Owners    []common.Hash
}

// CreateIntent snapshots the on-chain policy config and nonce, computes the
// digest owners will sign, and persists a new collecting intent.
func (c *Coordinator) CreateIntent(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := validateCalls(req.Calls); err != nil {
		return nil, err
	}
	if req.SequenceKey == nil {
		req.SequenceKey = big.NewInt(0)
	}

	threshold, owners, err := c.backend.PolicyConfig(ctx, req.Account, req.KeyHash)
	if err != nil {
		return nil, fmt.Errorf("%w: policy config: %v", ErrChainRead, err)
	}
	if len(owners) == 0 {
		return nil, fmt.Errorf("no owners configured for key %s", req.KeyHash.Hex())
	}
	if threshold < 1 || threshold > len(owners) {
		return nil, fmt.Errorf("invalid threshold %d for %d owners", threshold, len(owners))
	}

	nonce, err := c.backend.GetNonce(ctx, req.Account, req.SequenceKey)
	if err != nil {
		return nil, fmt.Errorf("%w: account nonce: %v", ErrChainRead, err)
	}

	digest, err := c.backend.ComputeDigest(ctx, req.Account, req.Calls, nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: digest: %v", ErrChainRead, err)
	}

	now := time.Now()
	intent := &models.Intent{
		ID:          uuid.NewString(),
		Account:     req.Account,
		ChainID:     c.chainID,
		KeyHash:     req.KeyHash,
		SequenceKey: new(big.Int).Set(req.SequenceKey),
		Nonce:       nonce,
		Digest:      digest,
		Calls:       req.Calls,
		Threshold:   threshold,
		Owners:      owners,
		Status:      models.StatusCollecting,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.store.Create(intent); err != nil {
		return nil, fmt.Errorf("failed to persist intent: %v", err)
	}

	metrics.IntentsCreated.WithLabelValues(strconv.Itoa(c.chainID)).Inc()
	metrics.CollectingIntents.Inc()
	c.logger.InfoWithChain(c.chainID, "Created intent %s for account %s (digest: %s, threshold: %d/%d)",
		intent.ID, req.Account.Hex(), digest.Hex(), threshold, len(owners))

	return &CreateResult{
		IntentID:  intent.ID,
		Digest:    digest,
		Threshold: threshold,
		Owners:    owners,
	}, nil
}

// GetIntent returns a snapshot of the intent record
func (c *Coordinator) GetIntent(id string) (*models.Intent, error) {
	return c.store.Get(id)
}

// validateCalls enforces the supported call list shape: a single
// native-currency transfer with empty calldata. The data model carries a
// list so this constraint can be lifted without a format change.
func validateCalls(calls []models.Call) error {
	if len(calls) != 1 {
		return fmt.Errorf("exactly one call is supported, got %d", len(calls))
	}
	call := calls[0]
	if call.Value == nil || call.Value.Sign() < 0 {
		return fmt.Errorf("call value must be a non-negative integer")
	}
	if len(call.Data) != 0 {
		return fmt.Errorf("call data must be empty")
	}
	return nil
}
