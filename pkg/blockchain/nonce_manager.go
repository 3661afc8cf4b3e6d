// Package blockchain tracks the relayer EOA's transaction nonce. The account
// contract has its own replay counter; this one is only about the outer
// transactions the relayer broadcasts.
package blockchain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// TransactionStatus represents the status of a transaction
type TransactionStatus int

const (
	// TxPending indicates transaction is pending
	TxPending TransactionStatus = iota
	// TxConfirmed indicates transaction is confirmed
	TxConfirmed
	// TxFailed indicates transaction has failed
	TxFailed
)

// TransactionRecord tracks details about a broadcast transaction
type TransactionRecord struct {
	Hash      common.Hash
	Nonce     uint64
	CreatedAt time.Time
	UpdatedAt time.Time
	Status    TransactionStatus
}

// NonceManager handles nonce allocation and tracking for the relayer account
type NonceManager struct {
	address common.Address

	mu           sync.Mutex
	currentNonce uint64
	pendingTxs   map[uint64]*TransactionRecord
	lastSync     time.Time
	syncInterval time.Duration
}

// NewNonceManager creates a new nonce manager for the relayer address
func NewNonceManager(address common.Address) *NonceManager {
	return &NonceManager{
		address:      address,
		pendingTxs:   make(map[uint64]*TransactionRecord),
		syncInterval: 5 * time.Minute,
	}
}

// GetNonce reserves and returns the next available nonce, resynchronizing
// with the chain when the local view is stale
func (nm *NonceManager) GetNonce(ctx context.Context, client *ethclient.Client) (uint64, error) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	if nm.lastSync.IsZero() || time.Since(nm.lastSync) > nm.syncInterval {
		nonce, err := client.PendingNonceAt(ctx, nm.address)
		if err != nil {
			return 0, fmt.Errorf("failed to get pending nonce: %v", err)
		}
		if nonce > nm.currentNonce {
			nm.currentNonce = nonce
		}
		nm.lastSync = time.Now()
	}

	nonce := nm.currentNonce
	nm.currentNonce++
	return nonce, nil
}

// TrackTransaction records a newly broadcast transaction
func (nm *NonceManager) TrackTransaction(txHash common.Hash, nonce uint64) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	now := time.Now()
	nm.pendingTxs[nonce] = &TransactionRecord{
		Hash:      txHash,
		Nonce:     nonce,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    TxPending,
	}
}

// MarkTransactionConfirmed marks a transaction as confirmed
func (nm *NonceManager) MarkTransactionConfirmed(nonce uint64) bool {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	tx, exists := nm.pendingTxs[nonce]
	if !exists {
		return false
	}

	tx.Status = TxConfirmed
	tx.UpdatedAt = time.Now()
	delete(nm.pendingTxs, nonce)
	return true
}

// MarkTransactionFailed marks a transaction as failed. If the failed
// transaction held the lowest pending nonce, that nonce is released for
// reuse by the next allocation.
func (nm *NonceManager) MarkTransactionFailed(nonce uint64) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	tx, exists := nm.pendingTxs[nonce]
	if !exists {
		return
	}

	tx.Status = TxFailed
	tx.UpdatedAt = time.Now()

	if nonce == nm.lowestPendingNonce() {
		nm.currentNonce = nonce
	}
	delete(nm.pendingTxs, nonce)
}

// SyncWithBlockchain synchronizes nonce state with the blockchain
func (nm *NonceManager) SyncWithBlockchain(ctx context.Context, client *ethclient.Client) error {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	nonce, err := client.PendingNonceAt(ctx, nm.address)
	if err != nil {
		return fmt.Errorf("failed to get pending nonce: %v", err)
	}

	if nonce > nm.currentNonce {
		nm.currentNonce = nonce
	}
	nm.lastSync = time.Now()
	return nil
}

// PendingTransactionCount returns the number of tracked pending transactions
func (nm *NonceManager) PendingTransactionCount() int {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return len(nm.pendingTxs)
}

// lowestPendingNonce finds the lowest nonce that is still pending.
// Callers must hold nm.mu.
func (nm *NonceManager) lowestPendingNonce() uint64 {
	var lowestNonce uint64
	foundFirst := false

	for nonce := range nm.pendingTxs {
		if !foundFirst || nonce < lowestNonce {
			lowestNonce = nonce
			foundFirst = true
		}
	}

	return lowestNonce
}
