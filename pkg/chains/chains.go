package chains

// ChainList contains the list of supported chain IDs
var ChainList = []int{
	1,        // Ethereum
	10,       // Optimism
	137,      // Polygon
	8453,     // Base
	42161,    // Arbitrum
	84532,    // Base Sepolia
	11155111, // Sepolia
}

// chainNames maps chain IDs to their names
var chainNames = map[int]string{
	1:        "ETHEREUM",
	10:       "OPTIMISM",
	137:      "POLYGON",
	8453:     "BASE",
	42161:    "ARBITRUM",
	84532:    "BASE_SEPOLIA",
	11155111: "SEPOLIA",
}

// ExecuteDefaultGasLimit is the default gas limit for account execute
// transactions per chain. The aggregated signature bundle makes these heavier
// than a plain transfer, so the defaults are generous.
// Exposed for use by other packages
var ExecuteDefaultGasLimit = map[int]uint64{
	1:        600000,  // Ethereum
	10:       600000,  // Optimism
	137:      600000,  // Polygon
	8453:     600000,  // Base
	42161:    1500000, // Arbitrum
	84532:    600000,  // Base Sepolia
	11155111: 600000,  // Sepolia
}

// GetChainName returns the name of the chain for a given chain ID
func GetChainName(chainID int) string {
	name, exists := chainNames[chainID]
	if !exists {
		return ""
	}
	return name
}

// IsSupported reports whether the chain ID is in the supported chain list
func IsSupported(chainID int) bool {
	_, exists := chainNames[chainID]
	return exists
}
