package intents

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrIntentNotFound is returned when no intent exists for the given ID
	ErrIntentNotFound = errors.New("intent not found")

	// ErrDigestMismatch is returned when the recomputed digest does not match
	// the digest stored at creation time. The intent is stale; callers must
	// create a fresh one rather than retry.
	ErrDigestMismatch = errors.New("intent digest mismatch")

	// ErrInvalidSignature is returned when a wrapped signature fails on-chain
	// validation under every recognized prehash variant
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrSignerNotAuthorized is returned when a valid signature recovers an
	// owner that is not in the intent's owner set
	ErrSignerNotAuthorized = errors.New("signer not authorized")

	// ErrInsufficientSignatures is returned when submission is attempted
	// before the threshold is met
	ErrInsufficientSignatures = errors.New("insufficient signatures")

	// ErrIntentNotCollecting is returned when a mutation is attempted on an
	// intent that has already left the collecting state
	ErrIntentNotCollecting = errors.New("intent is no longer collecting")

	// ErrRelayerUnavailable is returned when the relayer circuit breaker is
	// open and no broadcast is attempted
	ErrRelayerUnavailable = errors.New("relayer unavailable")

	// ErrBroadcastFailed is returned when the execute transaction could not
	// be broadcast
	ErrBroadcastFailed = errors.New("broadcast failed")

	// ErrChainRead is returned when a required on-chain read failed for
	// transport reasons rather than a protocol condition
	ErrChainRead = errors.New("chain read failed")
)

// NonceMismatchError is returned when the live on-chain nonce no longer
// equals the nonce captured at intent creation. It carries both values so
// callers can see how far the account has advanced.
type NonceMismatchError struct {
	IntentNonce  *big.Int
	CurrentNonce *big.Int
}

func (e *NonceMismatchError) Error() string {
	return fmt.Sprintf("nonce mismatch: intent nonce %s, current nonce %s", e.IntentNonce, e.CurrentNonce)
}
