// Package service wires the coordinator together: chain connection, circuit
// breaker, intent store and the HTTP API.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/quorum-hq/cosigner/pkg/api"
	"github.com/quorum-hq/cosigner/pkg/chainclient"
	"github.com/quorum-hq/cosigner/pkg/chains"
	"github.com/quorum-hq/cosigner/pkg/circuitbreaker"
	"github.com/quorum-hq/cosigner/pkg/config"
	"github.com/quorum-hq/cosigner/pkg/intents"
	"github.com/quorum-hq/cosigner/pkg/logger"
)

// gasPriceRefreshInterval is how often the relayer gas price is refreshed in
// the background so the first broadcast after an idle period is not priced
// off stale data
const gasPriceRefreshInterval = 60 * time.Second

// Service is the assembled coordination service
type Service struct {
	config      *config.Config
	logger      logger.Logger
	client      *chainclient.Client
	breaker     *circuitbreaker.CircuitBreaker
	store       *intents.MemoryStore
	coordinator *intents.Coordinator
	server      *api.Server
}

// NewService creates a coordination service from configuration and connects
// it to the chain
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	log := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	client, err := chainclient.New(
		ctx,
		cfg.ChainID,
		cfg.RPCURL,
		cfg.KeystoreAddress,
		cfg.RelayerPrivateKey,
		cfg.GasMultiplier,
		cfg.ExecuteGasLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chain client: %v", err)
	}

	breaker := circuitbreaker.NewCircuitBreaker(
		cfg.CircuitBreaker.Enabled,
		cfg.CircuitBreaker.Threshold,
		cfg.CircuitBreaker.WindowDuration,
		cfg.CircuitBreaker.ResetTimeout,
		log,
	)

	store := intents.NewMemoryStore()
	backend := intents.NewChainBackend(client, log)
	coordinator := intents.NewCoordinator(store, backend, backend, breaker, cfg.ChainID, log)
	server := api.NewServer(cfg.ServerPort, coordinator, store, client, breaker, cfg.MetricsAPIKey)

	return &Service{
		config:      cfg,
		logger:      log,
		client:      client,
		breaker:     breaker,
		store:       store,
		coordinator: coordinator,
		server:      server,
	}, nil
}

// Coordinator exposes the intent coordinator, mainly for tests and embedding
func (s *Service) Coordinator() *intents.Coordinator {
	return s.coordinator
}

// Start runs the service until the context is cancelled
func (s *Service) Start(ctx context.Context) {
	go s.server.Start()

	s.logger.InfoWithChain(s.config.ChainID, "Coordinating for %s (relayer %s, keystore %s)",
		chains.GetChainName(s.config.ChainID), s.client.Auth.From.Hex(), s.client.KeystoreAddress)

	s.runGasPriceRefresh(ctx)
}

// runGasPriceRefresh keeps the relayer gas price current while the service
// is idle
func (s *Service) runGasPriceRefresh(ctx context.Context) {
	ticker := time.NewTicker(gasPriceRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Shutting down coordination service")
			return
		case <-ticker.C:
			if _, err := s.client.UpdateGasPrice(ctx); err != nil {
				s.logger.DebugWithChain(s.config.ChainID, "Gas price refresh failed: %v", err)
			}
		}
	}
}
