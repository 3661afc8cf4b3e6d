package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quorum-hq/cosigner/pkg/chains"
	"github.com/quorum-hq/cosigner/pkg/logger"
)

const (
	// DefaultChainID defines the default chain to coordinate intents on
	DefaultChainID = 8453

	// DefaultServerPort defines the default port for the HTTP server
	DefaultServerPort = "8080"

	// DefaultGasMultiplier defines the default gas price buffer
	DefaultGasMultiplier = 1.1

	// DefaultExecuteGasLimit defines the fallback gas limit for account
	// execute transactions on chains without a per-chain default
	DefaultExecuteGasLimit = 600000

	// DefaultCircuitBreakerEnabled defines whether the circuit breaker is enabled
	DefaultCircuitBreakerEnabled = true

	// DefaultCircuitBreakerThreshold defines the number of failures before the circuit breaker trips
	DefaultCircuitBreakerThreshold = 5

	// DefaultCircuitBreakerWindow defines the time window for the circuit breaker
	DefaultCircuitBreakerWindow = 60

	// DefaultCircuitBreakerReset defines the reset timeout for the circuit breaker
	DefaultCircuitBreakerReset = 300
)

// GetEnvChainID returns the chain ID from environment variables
func GetEnvChainID() (int, error) {
	chainID := os.Getenv("CHAIN_ID")
	if chainID == "" {
		return DefaultChainID, nil
	}

	id, err := strconv.Atoi(chainID)
	if err != nil {
		return 0, fmt.Errorf("invalid CHAIN_ID value: %s, must be an integer", chainID)
	}
	if !chains.IsSupported(id) {
		return 0, fmt.Errorf("unsupported CHAIN_ID value: %d", id)
	}
	return id, nil
}

// GetEnvRPCURL returns the chain RPC endpoint from environment variables
func GetEnvRPCURL() (string, error) {
	rpcURL := os.Getenv("RPC_URL")
	if rpcURL == "" {
		return "", fmt.Errorf("RPC_URL environment variable is required")
	}

	// Validate URL format
	if _, err := url.ParseRequestURI(rpcURL); err != nil {
		return "", fmt.Errorf("invalid RPC_URL value: %s, must be a valid URL", rpcURL)
	}
	return rpcURL, nil
}

// GetEnvKeystoreAddress returns the policy config contract address from environment variables
func GetEnvKeystoreAddress() (string, error) {
	keystoreAddress := os.Getenv("KEYSTORE_ADDRESS")
	if keystoreAddress == "" {
		return "", fmt.Errorf("KEYSTORE_ADDRESS environment variable is required")
	}

	// Validate Ethereum address format
	if !common.IsHexAddress(keystoreAddress) {
		return "", fmt.Errorf("invalid KEYSTORE_ADDRESS value: %s, must be a valid Ethereum address", keystoreAddress)
	}
	return keystoreAddress, nil
}

// GetEnvGasMultiplier returns the gas price multiplier from environment variables
func GetEnvGasMultiplier() (float64, error) {
	gasMultiplier := os.Getenv("GAS_MULTIPLIER")
	if gasMultiplier == "" {
		return DefaultGasMultiplier, nil
	}

	multiplier, err := strconv.ParseFloat(gasMultiplier, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid GAS_MULTIPLIER value: %s, must be a number", gasMultiplier)
	}
	if multiplier <= 0 {
		return 0, fmt.Errorf("GAS_MULTIPLIER must be greater than 0")
	}
	return multiplier, nil
}

// GetEnvExecuteGasLimit returns the execute gas limit from environment
// variables, falling back to the per-chain default
func GetEnvExecuteGasLimit(chainID int) (uint64, error) {
	executeGasLimit := os.Getenv("EXECUTE_GAS_LIMIT")
	if executeGasLimit == "" {
		if limit, exists := chains.ExecuteDefaultGasLimit[chainID]; exists {
			return limit, nil
		}
		return DefaultExecuteGasLimit, nil
	}

	limit, err := strconv.ParseUint(executeGasLimit, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid EXECUTE_GAS_LIMIT value: %s, must be an unsigned integer", executeGasLimit)
	}
	if limit == 0 {
		return 0, fmt.Errorf("EXECUTE_GAS_LIMIT must be greater than 0")
	}
	return limit, nil
}

// GetEnvServerPort returns the HTTP server port from environment variables
func GetEnvServerPort() (string, error) {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		return DefaultServerPort, nil
	}

	// Validate port format
	if _, err := strconv.Atoi(serverPort); err != nil {
		return "", fmt.Errorf("invalid SERVER_PORT value: %s, must be a valid integer", serverPort)
	}
	return serverPort, nil
}

// GetEnvCircuitBreakerEnabled returns whether the circuit breaker is enabled from environment variables
func GetEnvCircuitBreakerEnabled() (bool, error) {
	enabled := os.Getenv("CIRCUIT_BREAKER_ENABLED")
	if enabled == "" {
		return DefaultCircuitBreakerEnabled, nil
	}

	if enabled == "true" {
		return true, nil
	} else if enabled == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid CIRCUIT_BREAKER_ENABLED value: %s, must be 'true' or 'false'", enabled)
}

// GetEnvCircuitBreakerThreshold returns the circuit breaker threshold from environment variables
func GetEnvCircuitBreakerThreshold() (int, error) {
	threshold := os.Getenv("CIRCUIT_BREAKER_THRESHOLD")
	if threshold == "" {
		return DefaultCircuitBreakerThreshold, nil
	}

	thresholdInt, err := strconv.Atoi(threshold)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_THRESHOLD value: %s, must be an integer", threshold)
	}
	if thresholdInt <= 0 {
		return 0, fmt.Errorf("CIRCUIT_BREAKER_THRESHOLD must be greater than 0")
	}
	return thresholdInt, nil
}

// GetEnvCircuitBreakerWindow returns the circuit breaker window duration from environment variables
func GetEnvCircuitBreakerWindow() (time.Duration, error) {
	window := os.Getenv("CIRCUIT_BREAKER_WINDOW")
	if window == "" {
		return DefaultCircuitBreakerWindow * time.Second, nil
	}

	// Validate duration format
	parsed, err := time.ParseDuration(window)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_WINDOW value: %s, must be a valid duration string", window)
	}
	return parsed, nil
}

// GetEnvCircuitBreakerReset returns the circuit breaker reset timeout from environment variables
func GetEnvCircuitBreakerReset() (time.Duration, error) {
	reset := os.Getenv("CIRCUIT_BREAKER_RESET")
	if reset == "" {
		return DefaultCircuitBreakerReset * time.Second, nil
	}

	// Validate duration format
	parsed, err := time.ParseDuration(reset)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_RESET value: %s, must be a valid duration string", reset)
	}
	return parsed, nil
}

// GetEnvLogLevel returns the log level from environment variables
func GetEnvLogLevel() (logger.Level, error) {
	level := os.Getenv("LOG_LEVEL")
	switch level {
	case "":
		return logger.InfoLevel, nil
	case "debug":
		return logger.DebugLevel, nil
	case "info":
		return logger.InfoLevel, nil
	case "notice":
		return logger.NoticeLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL value: %s, must be one of 'debug', 'info', 'notice', 'error'", level)
}

// GetEnvLogColoring returns whether log coloring is enabled from environment variables
func GetEnvLogColoring() (bool, error) {
	coloring := os.Getenv("LOG_COLORING")
	if coloring == "" {
		return false, nil
	}

	if coloring == "true" {
		return true, nil
	} else if coloring == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid LOG_COLORING value: %s, must be 'true' or 'false'", coloring)
}
