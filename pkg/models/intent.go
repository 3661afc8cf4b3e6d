package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// IntentStatus represents the lifecycle state of an intent
type IntentStatus string

const (
	// StatusCollecting indicates the intent is still collecting owner signatures
	StatusCollecting IntentStatus = "collecting"
	// StatusSubmitted indicates the intent transaction has been broadcast
	StatusSubmitted IntentStatus = "submitted"
	// StatusConfirmed indicates the intent transaction succeeded on chain
	StatusConfirmed IntentStatus = "confirmed"
	// StatusFailed indicates the intent transaction failed or was rejected
	StatusFailed IntentStatus = "failed"
)

// Terminal reports whether no further status transition is allowed
func (s IntentStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// Call is a single (target, value, calldata) entry in an intent's call list
type Call struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// CollectedSignature is one owner's wrapped signature with its collection time
type CollectedSignature struct {
	Owner       common.Hash // key hash of the signing owner
	Signature   []byte
	CollectedAt time.Time
}

// Intent is the authoritative record of a pending multi-signer transaction.
// Identity, account, chain, key hash, nonce and digest are immutable after
// creation; only the signature list and status fields are ever mutated.
type Intent struct {
	ID          string
	Account     common.Address
	ChainID     int
	KeyHash     common.Hash // external key hash identifying the signer policy
	SequenceKey *big.Int
	Nonce       *big.Int
	Digest      common.Hash
	Calls       []Call
	Threshold   int
	Owners      []common.Hash // snapshot of the on-chain policy config

	// Signatures are kept in insertion order; that order is the aggregation
	// order at submission time.
	Signatures []CollectedSignature

	Status    IntentStatus
	TxHash    common.Hash
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasOwner reports whether the given key hash is in the intent's owner set
func (i *Intent) HasOwner(owner common.Hash) bool {
	for _, o := range i.Owners {
		if o == owner {
			return true
		}
	}
	return false
}

// SignatureFor returns the stored signature for an owner, if any
func (i *Intent) SignatureFor(owner common.Hash) (CollectedSignature, bool) {
	for _, sig := range i.Signatures {
		if sig.Owner == owner {
			return sig, true
		}
	}
	return CollectedSignature{}, false
}

// Ready reports whether enough signatures have been collected for submission
func (i *Intent) Ready() bool {
	return len(i.Signatures) >= i.Threshold
}

// OrderedSignatures returns the raw signature byte strings in insertion order
func (i *Intent) OrderedSignatures() [][]byte {
	sigs := make([][]byte, 0, len(i.Signatures))
	for _, sig := range i.Signatures {
		sigs = append(sigs, sig.Signature)
	}
	return sigs
}
