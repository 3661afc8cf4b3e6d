package intents

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quorum-hq/cosigner/pkg/envelope"
	"github.com/quorum-hq/cosigner/pkg/metrics"
	"github.com/quorum-hq/cosigner/pkg/models"
)

// SignatureResult reports the outcome of a signature submission
type SignatureResult struct {
	Accepted  bool
	Duplicate bool
	Collected int
	Threshold int
	Ready     bool
}

// SubmitSignature validates and stores one owner's wrapped signature.
//
// The checks run in a fixed order: digest integrity first, cryptographic
// validity second, owner authorization third. A signature from a non-owner is
// only rejected as unauthorized after it has proven cryptographically valid,
// so the error surface never confirms anything about invalid blobs.
func (c *Coordinator) SubmitSignature(ctx context.Context, intentID string, signature []byte) (*SignatureResult, error) {
	var result *SignatureResult

	err := c.store.WithLock(intentID, func(intent *models.Intent) error {
		if intent.Status != models.StatusCollecting {
			return ErrIntentNotCollecting
		}

		chainLabel := strconv.Itoa(intent.ChainID)

		// Digest integrity is a hard precondition: if the stored calls and
		// nonce no longer hash to the stored digest, nothing is accepted.
		if err := c.recheckDigest(ctx, intent); err != nil {
			metrics.SignaturesRejected.WithLabelValues(chainLabel, "digest_mismatch").Inc()
			return err
		}

		start := time.Now()
		owner, validated, err := c.validateWrappedSignature(ctx, intent, signature)
		metrics.SignatureValidationTime.WithLabelValues(chainLabel).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.SignaturesRejected.WithLabelValues(chainLabel, "invalid_signature").Inc()
			return err
		}

		if !intent.HasOwner(owner) {
			metrics.SignaturesRejected.WithLabelValues(chainLabel, "not_authorized").Inc()
			c.logger.NoticeWithChain(intent.ChainID, "Rejected signature for intent %s: signer %s is not an owner",
				intent.ID, owner.Hex())
			return ErrSignerNotAuthorized
		}

		// Duplicate submissions are an idempotent success
		if _, exists := intent.SignatureFor(owner); exists {
			metrics.DuplicateSignatures.WithLabelValues(chainLabel).Inc()
			result = &SignatureResult{
				Accepted:  true,
				Duplicate: true,
				Collected: len(intent.Signatures),
				Threshold: intent.Threshold,
				Ready:     intent.Ready(),
			}
			return nil
		}

		intent.Signatures = append(intent.Signatures, models.CollectedSignature{
			Owner:       owner,
			Signature:   validated,
			CollectedAt: time.Now(),
		})
		intent.UpdatedAt = time.Now()

		metrics.SignaturesAccepted.WithLabelValues(chainLabel).Inc()
		c.logger.InfoWithChain(intent.ChainID, "Collected signature %d/%d for intent %s from owner %s",
			len(intent.Signatures), intent.Threshold, intent.ID, owner.Hex())

		result = &SignatureResult{
			Accepted:  true,
			Collected: len(intent.Signatures),
			Threshold: intent.Threshold,
			Ready:     intent.Ready(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// recheckDigest recomputes the digest from the intent's stored calls and
// nonce and compares it to the stored digest. Any mismatch or read failure
// blocks the caller's operation.
func (c *Coordinator) recheckDigest(ctx context.Context, intent *models.Intent) error {
	recomputed, err := c.backend.ComputeDigest(ctx, intent.Account, intent.Calls, intent.Nonce)
	if err != nil {
		return fmt.Errorf("%w: digest recompute: %v", ErrChainRead, err)
	}
	if !strings.EqualFold(recomputed.Hex(), intent.Digest.Hex()) {
		c.logger.ErrorWithChain(intent.ChainID, "Digest mismatch for intent %s: stored %s, recomputed %s",
			intent.ID, intent.Digest.Hex(), recomputed.Hex())
		return ErrDigestMismatch
	}
	return nil
}

// validateWrappedSignature runs the two-variant validation attempt loop and
// returns the recovered owner along with the signature bytes that validated.
func (c *Coordinator) validateWrappedSignature(ctx context.Context, intent *models.Intent, signature []byte) (common.Hash, []byte, error) {
	variants := envelope.SignatureVariants(signature)
	if len(variants) == 0 {
		return common.Hash{}, nil, ErrInvalidSignature
	}

	for _, variant := range variants {
		valid, owner, err := c.backend.ValidateSignature(ctx, intent.Account, intent.Digest, variant)
		if err != nil {
			return common.Hash{}, nil, fmt.Errorf("%w: signature validation: %v", ErrChainRead, err)
		}
		if valid {
			return owner, variant, nil
		}
	}
	return common.Hash{}, nil, ErrInvalidSignature
}
