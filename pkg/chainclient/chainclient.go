// Package chainclient manages the connection to a single chain: the RPC
// client, the keystore config contract binding, per-account bindings and the
// relayer transactor used to broadcast execute transactions.
package chainclient

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/quorum-hq/cosigner/pkg/contracts"
)

// Client contains client and config information for a specific blockchain
type Client struct {
	ChainID         int
	RPCURL          string
	KeystoreAddress string
	Client          *ethclient.Client
	Keystore        *contracts.Keystore
	Auth            *bind.TransactOpts
	GasMultiplier   float64
	ExecuteGasLimit uint64
}

// New creates a new client and connects it to the chain
func New(ctx context.Context, chainID int, rpcURL string, keystoreAddress string, relayerKey string, gasMultiplier float64, executeGasLimit uint64) (*Client, error) {
	if gasMultiplier <= 0 {
		gasMultiplier = 1.1 // default gas multiplier (10% buffer)
	}

	client := &Client{
		ChainID:         chainID,
		RPCURL:          rpcURL,
		KeystoreAddress: keystoreAddress,
		GasMultiplier:   gasMultiplier,
		ExecuteGasLimit: executeGasLimit,
	}
	if err := client.connect(ctx, relayerKey); err != nil {
		return nil, fmt.Errorf("failed to connect to chain %d: %v", chainID, err)
	}

	return client, nil
}

// connect establishes connections to blockchain RPC and initializes contract instances
func (c *Client) connect(ctx context.Context, relayerKey string) error {
	// Connect to Ethereum client
	client, err := ethclient.Dial(c.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to client: %v", err)
	}
	c.Client = client

	// Set up relayer authenticator
	if relayerKey != "" {
		auth, err := createAuthenticator(ctx, client, relayerKey)
		if err != nil {
			return fmt.Errorf("failed to create authenticator: %v", err)
		}
		auth.GasLimit = c.ExecuteGasLimit
		c.Auth = auth
	}

	// Initialize keystore config contract binding
	keystore, err := contracts.NewKeystore(common.HexToAddress(c.KeystoreAddress), client)
	if err != nil {
		return fmt.Errorf("failed to initialize keystore contract: %v", err)
	}
	c.Keystore = keystore

	return nil
}

// Account returns a binding for a deployed smart account contract
func (c *Client) Account(address common.Address) (*contracts.Account, error) {
	if c.Client == nil {
		return nil, fmt.Errorf("client not connected")
	}
	return contracts.NewAccount(address, c.Client)
}

// UpdateGasPrice updates the gas price based on current network conditions
func (c *Client) UpdateGasPrice(ctx context.Context) (*big.Int, error) {
	if c.Client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	// Get current gas price from the network
	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	gasPrice, err := c.Client.SuggestGasPrice(timeoutCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %v", err)
	}

	// Apply gas multiplier (e.g. 1.1 = 10% buffer)
	multipliedGasPrice := new(big.Float).Mul(
		new(big.Float).SetInt(gasPrice),
		big.NewFloat(c.GasMultiplier),
	)

	// Convert back to big.Int
	finalGasPrice := new(big.Int)
	multipliedGasPrice.Int(finalGasPrice)

	// Update the auth with the new gas price
	if c.Auth != nil {
		c.Auth.GasPrice = finalGasPrice
	}

	return finalGasPrice, nil
}

// GetLatestBlockNumber gets the latest block number from the chain
func (c *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	if c.Client == nil {
		return 0, fmt.Errorf("client not connected")
	}

	return c.Client.BlockNumber(ctx)
}

// Helper function to create authenticator
func createAuthenticator(ctx context.Context, client *ethclient.Client, privateKeyHex string) (*bind.TransactOpts, error) {
	// Parse private key
	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %v", err)
	}

	// Get chain ID
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %v", err)
	}

	// Create transaction signer
	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %v", err)
	}

	return auth, nil
}
