package intents

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/quorum-hq/cosigner/pkg/blockchain"
	"github.com/quorum-hq/cosigner/pkg/chainclient"
	"github.com/quorum-hq/cosigner/pkg/logger"
	"github.com/quorum-hq/cosigner/pkg/metrics"
	"github.com/quorum-hq/cosigner/pkg/models"
)

// ChainBackend implements AccountBackend and Relayer against a live chain
// connection. Reads go straight to the account and keystore contracts;
// writes go through the relayer transactor with managed EOA nonces.
type ChainBackend struct {
	client *chainclient.Client
	nonces *blockchain.NonceManager
	logger logger.Logger

	mu        sync.Mutex
	broadcast map[common.Hash]*pendingTx
}

type pendingTx struct {
	tx    *types.Transaction
	nonce uint64
}

// NewChainBackend creates a backend over a connected chain client
func NewChainBackend(client *chainclient.Client, log logger.Logger) *ChainBackend {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	var nonces *blockchain.NonceManager
	if client.Auth != nil {
		nonces = blockchain.NewNonceManager(client.Auth.From)
	}
	return &ChainBackend{
		client:    client,
		nonces:    nonces,
		logger:    log,
		broadcast: make(map[common.Hash]*pendingTx),
	}
}

// GetNonce reads the account's nonce for the given sequence key
func (b *ChainBackend) GetNonce(ctx context.Context, account common.Address, seqKey *big.Int) (*big.Int, error) {
	binding, err := b.client.Account(account)
	if err != nil {
		return nil, err
	}
	return binding.GetNonce(&bind.CallOpts{Context: ctx}, seqKey)
}

// ComputeDigest delegates digest computation to the account contract
func (b *ChainBackend) ComputeDigest(ctx context.Context, account common.Address, calls []models.Call, nonce *big.Int) (common.Hash, error) {
	binding, err := b.client.Account(account)
	if err != nil {
		return common.Hash{}, err
	}
	digest, err := binding.ComputeDigest(&bind.CallOpts{Context: ctx}, toAccountCalls(calls), nonce)
	if err != nil {
		return common.Hash{}, err
	}
	return digest, nil
}

// ValidateSignature delegates signature unwrapping and validation to the
// account contract
func (b *ChainBackend) ValidateSignature(ctx context.Context, account common.Address, digest common.Hash, signature []byte) (bool, common.Hash, error) {
	binding, err := b.client.Account(account)
	if err != nil {
		return false, common.Hash{}, err
	}
	out, err := binding.UnwrapAndValidateSignature(&bind.CallOpts{Context: ctx}, digest, signature)
	if err != nil {
		return false, common.Hash{}, err
	}
	return out.IsValid, out.KeyHash, nil
}

// PolicyConfig reads the signer policy config from the keystore contract
func (b *ChainBackend) PolicyConfig(ctx context.Context, account common.Address, keyHash common.Hash) (int, []common.Hash, error) {
	out, err := b.client.Keystore.GetConfig(&bind.CallOpts{Context: ctx}, account, keyHash)
	if err != nil {
		return 0, nil, err
	}

	owners := make([]common.Hash, 0, len(out.OwnerKeyHashes))
	for _, owner := range out.OwnerKeyHashes {
		owners = append(owners, owner)
	}
	return int(out.Threshold.Int64()), owners, nil
}

// Broadcast sends the account execute transaction through the relayer
func (b *ChainBackend) Broadcast(ctx context.Context, account common.Address, mode common.Hash, executionData []byte) (common.Hash, error) {
	if b.client.Auth == nil || b.nonces == nil {
		return common.Hash{}, fmt.Errorf("no relayer key configured")
	}

	binding, err := b.client.Account(account)
	if err != nil {
		return common.Hash{}, err
	}

	// Refresh the gas price before sending; a stale price stalls the
	// transaction behind the mempool.
	if gasPrice, err := b.client.UpdateGasPrice(ctx); err != nil {
		b.logger.ErrorWithChain(b.client.ChainID, "Failed to update gas price: %v", err)
	} else {
		gasPriceGwei := new(big.Float).Quo(new(big.Float).SetInt(gasPrice), big.NewFloat(1e9))
		gweiFlt, _ := gasPriceGwei.Float64()
		metrics.GasPrice.WithLabelValues(strconv.Itoa(b.client.ChainID)).Set(gweiFlt)
	}

	nonce, err := b.nonces.GetNonce(ctx, b.client.Client)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get relayer nonce: %v", err)
	}

	txOpts := *b.client.Auth
	txOpts.Context = ctx
	txOpts.Nonce = big.NewInt(int64(nonce))

	tx, err := binding.Execute(&txOpts, mode, executionData)
	if err != nil {
		// The transaction never reached the mempool; release the nonce so
		// the next broadcast reuses it
		b.nonces.TrackTransaction(common.Hash{}, nonce)
		b.nonces.MarkTransactionFailed(nonce)
		return common.Hash{}, fmt.Errorf("failed to send execute transaction: %v", err)
	}

	b.nonces.TrackTransaction(tx.Hash(), nonce)
	b.mu.Lock()
	b.broadcast[tx.Hash()] = &pendingTx{tx: tx, nonce: nonce}
	b.mu.Unlock()

	b.logger.InfoWithChain(b.client.ChainID, "Execute transaction sent for account %s: %s (relayer nonce: %d)",
		account.Hex(), tx.Hash().Hex(), nonce)
	return tx.Hash(), nil
}

// Wait blocks until a previously broadcast transaction is mined
func (b *ChainBackend) Wait(ctx context.Context, txHash common.Hash) (bool, error) {
	b.mu.Lock()
	pending, exists := b.broadcast[txHash]
	delete(b.broadcast, txHash)
	b.mu.Unlock()

	if !exists {
		return false, fmt.Errorf("unknown transaction: %s", txHash.Hex())
	}

	receipt, err := bind.WaitMined(ctx, b.client.Client, pending.tx)
	if err != nil {
		// The transaction may still be pending; keep it registered so the
		// wait can be retried and its relayer nonce is not reused under it.
		b.mu.Lock()
		b.broadcast[txHash] = pending
		b.mu.Unlock()
		return false, fmt.Errorf("failed to wait for transaction: %v", err)
	}

	metrics.GasUsed.WithLabelValues(strconv.Itoa(b.client.ChainID)).Observe(float64(receipt.GasUsed))

	if receipt.Status == types.ReceiptStatusSuccessful {
		b.nonces.MarkTransactionConfirmed(pending.nonce)
		return true, nil
	}
	b.nonces.MarkTransactionConfirmed(pending.nonce) // reverted txs still consume the nonce
	return false, nil
}
