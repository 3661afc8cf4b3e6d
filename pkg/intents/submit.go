package intents

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quorum-hq/cosigner/pkg/contracts"
	"github.com/quorum-hq/cosigner/pkg/envelope"
	"github.com/quorum-hq/cosigner/pkg/metrics"
	"github.com/quorum-hq/cosigner/pkg/models"
)

// SubmitResult reports the outcome of an intent submission
type SubmitResult struct {
	TxHash  common.Hash
	Outcome models.IntentStatus
}

// SubmitIntent assembles the aggregated signature payload and drives the
// account execute transaction. Pre-flight checks and the broadcast hold the
// intent lock, so two concurrent submit attempts never both broadcast; the
// confirmation wait runs outside the lock so reads of the submitted intent
// are not blocked behind it.
func (c *Coordinator) SubmitIntent(ctx context.Context, intentID string) (*SubmitResult, error) {
	var (
		txHash     common.Hash
		chainID    int
		chainLabel string
		start      time.Time
	)

	err := c.store.WithLock(intentID, func(intent *models.Intent) error {
		if intent.Status != models.StatusCollecting {
			return ErrIntentNotCollecting
		}

		chainID = intent.ChainID
		chainLabel = strconv.Itoa(intent.ChainID)

		if c.breaker != nil && c.breaker.IsOpen() {
			metrics.SubmissionErrors.WithLabelValues(chainLabel, "relayer_unavailable").Inc()
			return ErrRelayerUnavailable
		}

		// Re-check readiness under the lock; collection may have raced an
		// earlier read of the signature count.
		if len(intent.Signatures) < intent.Threshold {
			metrics.SubmissionErrors.WithLabelValues(chainLabel, "insufficient_signatures").Inc()
			return ErrInsufficientSignatures
		}

		if err := c.recheckDigest(ctx, intent); err != nil {
			metrics.SubmissionErrors.WithLabelValues(chainLabel, "digest_mismatch").Inc()
			return err
		}

		executionData, err := buildExecutionData(intent)
		if err != nil {
			return err
		}

		// The account nonce is the authoritative staleness guard: any
		// successful earlier submission, or any external action that
		// consumed the nonce, invalidates this intent.
		currentNonce, err := c.backend.GetNonce(ctx, intent.Account, intent.SequenceKey)
		if err != nil {
			metrics.SubmissionErrors.WithLabelValues(chainLabel, "chain_read").Inc()
			return fmt.Errorf("%w: current nonce: %v", ErrChainRead, err)
		}
		if currentNonce.Cmp(intent.Nonce) != 0 {
			metrics.SubmissionErrors.WithLabelValues(chainLabel, "nonce_mismatch").Inc()
			c.logger.NoticeWithChain(intent.ChainID, "Nonce mismatch for intent %s: intent %s, current %s",
				intent.ID, intent.Nonce.String(), currentNonce.String())
			return &NonceMismatchError{
				IntentNonce:  new(big.Int).Set(intent.Nonce),
				CurrentNonce: currentNonce,
			}
		}

		start = time.Now()
		hash, err := c.relayer.Broadcast(ctx, intent.Account, envelope.ModeBatchOpData, executionData)
		if err != nil {
			if c.breaker != nil {
				c.breaker.RecordFailure()
			}
			c.transition(intent, models.StatusFailed)
			metrics.IntentsSubmitted.WithLabelValues(chainLabel, "broadcast_failed").Inc()
			c.logger.ErrorWithChain(intent.ChainID, "Broadcast failed for intent %s: %v", intent.ID, err)
			return fmt.Errorf("%w: %v", ErrBroadcastFailed, err)
		}

		// The broadcast succeeded; from here the intent is committed to
		// submitted regardless of the confirmation outcome.
		if c.breaker != nil {
			c.breaker.RecordSuccess()
		}
		txHash = hash
		intent.TxHash = txHash
		c.transition(intent, models.StatusSubmitted)
		c.logger.InfoWithChain(intent.ChainID, "Submitted intent %s: %s", intent.ID, txHash.Hex())
		return nil
	})
	if err != nil {
		return nil, err
	}

	success, err := c.relayer.Wait(ctx, txHash)
	if err != nil {
		// The on-chain outcome was never observed; the record stays
		// submitted so a transaction that later mines is not misreported
		// as failed.
		metrics.SubmissionErrors.WithLabelValues(chainLabel, "confirmation_wait").Inc()
		return nil, fmt.Errorf("failed to confirm transaction %s: %v", txHash.Hex(), err)
	}

	outcome := models.StatusFailed
	if success {
		outcome = models.StatusConfirmed
	}
	if err := c.store.WithLock(intentID, func(intent *models.Intent) error {
		c.transition(intent, outcome)
		return nil
	}); err != nil {
		return nil, err
	}

	if success {
		metrics.IntentsSubmitted.WithLabelValues(chainLabel, "confirmed").Inc()
		c.logger.NoticeWithChain(chainID, "Confirmed intent %s: %s", intentID, txHash.Hex())
	} else {
		metrics.IntentsSubmitted.WithLabelValues(chainLabel, "failed").Inc()
		c.logger.ErrorWithChain(chainID, "Intent %s transaction reverted: %s", intentID, txHash.Hex())
	}
	metrics.SubmissionTime.WithLabelValues(chainLabel).Observe(time.Since(start).Seconds())

	return &SubmitResult{TxHash: txHash, Outcome: outcome}, nil
}

// transition applies a status change and keeps the collecting gauge honest.
// Terminal states are never left; callers guarantee that by construction.
func (c *Coordinator) transition(intent *models.Intent, status models.IntentStatus) {
	if intent.Status == models.StatusCollecting && status != models.StatusCollecting {
		metrics.CollectingIntents.Dec()
	}
	intent.Status = status
	intent.UpdatedAt = time.Now()
}

// buildExecutionData packs the intent's signatures and calls into the
// payload the account's batch-with-opData execution mode expects
func buildExecutionData(intent *models.Intent) ([]byte, error) {
	bundle, err := envelope.EncodeSignatureBundle(intent.OrderedSignatures(), intent.KeyHash, envelope.FlagRawDigest)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signature bundle: %v", err)
	}
	opData := envelope.EncodeOpData(intent.Nonce, bundle)
	return envelope.EncodeExecutionData(toAccountCalls(intent.Calls), opData)
}

// toAccountCalls converts model calls to their ABI binding representation
func toAccountCalls(calls []models.Call) []contracts.AccountCall {
	converted := make([]contracts.AccountCall, 0, len(calls))
	for _, call := range calls {
		data := call.Data
		if data == nil {
			data = []byte{}
		}
		converted = append(converted, contracts.AccountCall{
			To:    call.To,
			Value: call.Value,
			Data:  data,
		})
	}
	return converted
}
