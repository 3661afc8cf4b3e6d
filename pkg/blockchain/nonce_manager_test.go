package blockchain

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(startNonce uint64) *NonceManager {
	nm := NewNonceManager(common.HexToAddress("0x1000000000000000000000000000000000000001"))
	nm.currentNonce = startNonce
	nm.lastSync = time.Now() // fresh, so GetNonce never hits the client
	return nm
}

// TestGetNonceAllocatesSequentially verifies consecutive allocations
func TestGetNonceAllocatesSequentially(t *testing.T) {
	nm := testManager(5)

	for i := uint64(5); i < 8; i++ {
		nonce, err := nm.GetNonce(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, i, nonce)
	}
}

// TestTrackAndConfirm verifies the pending set bookkeeping
func TestTrackAndConfirm(t *testing.T) {
	nm := testManager(0)

	nm.TrackTransaction(common.HexToHash("0x01"), 0)
	nm.TrackTransaction(common.HexToHash("0x02"), 1)
	assert.Equal(t, 2, nm.PendingTransactionCount())

	assert.True(t, nm.MarkTransactionConfirmed(0))
	assert.Equal(t, 1, nm.PendingTransactionCount())

	assert.False(t, nm.MarkTransactionConfirmed(99), "unknown nonce is a no-op")
}

// TestFailedLowestNonceIsReused verifies a failed transaction holding the
// lowest pending nonce releases it for the next allocation
func TestFailedLowestNonceIsReused(t *testing.T) {
	nm := testManager(0)

	first, err := nm.GetNonce(context.Background(), nil)
	require.NoError(t, err)
	second, err := nm.GetNonce(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), first)
	require.Equal(t, uint64(1), second)

	nm.TrackTransaction(common.HexToHash("0x01"), first)
	nm.TrackTransaction(common.HexToHash("0x02"), second)

	nm.MarkTransactionFailed(first)

	reused, err := nm.GetNonce(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, first, reused, "the released nonce comes back first")
}

// TestFailedHigherNonceIsNotReused verifies failing a non-lowest nonce does
// not rewind the allocator past still-pending transactions
func TestFailedHigherNonceIsNotReused(t *testing.T) {
	nm := testManager(0)

	nm.TrackTransaction(common.HexToHash("0x01"), 0)
	nm.TrackTransaction(common.HexToHash("0x02"), 1)
	nm.currentNonce = 2

	nm.MarkTransactionFailed(1)

	next, err := nm.GetNonce(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next, "nonce 1 stays burned while nonce 0 is pending")
	assert.Equal(t, 1, nm.PendingTransactionCount())
}
