package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// KeystoreABI is the ABI of the signer policy config contract
const KeystoreABI = `[
	{
		"inputs": [
			{
				"internalType": "address",
				"name": "account",
				"type": "address"
			},
			{
				"internalType": "bytes32",
				"name": "keyHash",
				"type": "bytes32"
			}
		],
		"name": "getConfig",
		"outputs": [
			{
				"internalType": "uint256",
				"name": "threshold",
				"type": "uint256"
			},
			{
				"internalType": "bytes32[]",
				"name": "ownerKeyHashes",
				"type": "bytes32[]"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{
				"internalType": "bytes32",
				"name": "keyHash",
				"type": "bytes32"
			},
			{
				"internalType": "uint256",
				"name": "threshold",
				"type": "uint256"
			},
			{
				"internalType": "bytes32[]",
				"name": "ownerKeyHashes",
				"type": "bytes32[]"
			}
		],
		"name": "setConfig",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// Keystore is an auto generated Go binding around an Ethereum contract.
type Keystore struct {
	KeystoreCaller     // Read-only binding to the contract
	KeystoreTransactor // Write-only binding to the contract
}

// KeystoreCaller is an auto generated read-only Go binding around an Ethereum contract.
type KeystoreCaller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// KeystoreTransactor is an auto generated write-only Go binding around an Ethereum contract.
type KeystoreTransactor struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// NewKeystore creates a new instance of Keystore, bound to a specific deployed contract.
func NewKeystore(address common.Address, backend bind.ContractBackend) (*Keystore, error) {
	contract, err := bindKeystore(address, backend, backend)
	if err != nil {
		return nil, err
	}
	return &Keystore{KeystoreCaller: KeystoreCaller{contract: contract}, KeystoreTransactor: KeystoreTransactor{contract: contract}}, nil
}

// bindKeystore binds a generic wrapper to an already deployed contract.
func bindKeystore(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor) (*bind.BoundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(KeystoreABI))
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, parsed, caller, transactor, nil), nil
}

// GetConfig is a free data retrieval call binding the contract method 0x6ac96ee6.
//
// Solidity: function getConfig(address account, bytes32 keyHash) view returns(uint256 threshold, bytes32[] ownerKeyHashes)
func (_Keystore *KeystoreCaller) GetConfig(opts *bind.CallOpts, account common.Address, keyHash [32]byte) (struct {
	Threshold      *big.Int
	OwnerKeyHashes [][32]byte
}, error,
) {
	var out []interface{}
	err := _Keystore.contract.Call(opts, &out, "getConfig", account, keyHash)

	outstruct := new(struct {
		Threshold      *big.Int
		OwnerKeyHashes [][32]byte
	})
	if err != nil {
		return *outstruct, err
	}

	outstruct.Threshold = *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	outstruct.OwnerKeyHashes = *abi.ConvertType(out[1], new([][32]byte)).(*[][32]byte)

	return *outstruct, err
}

// SetConfig is a paid mutator transaction binding the contract method 0x73eba682.
//
// Solidity: function setConfig(bytes32 keyHash, uint256 threshold, bytes32[] ownerKeyHashes) returns()
func (_Keystore *KeystoreTransactor) SetConfig(opts *bind.TransactOpts, keyHash [32]byte, threshold *big.Int, ownerKeyHashes [][32]byte) (*types.Transaction, error) {
	return _Keystore.contract.Transact(opts, "setConfig", keyHash, threshold, ownerKeyHashes)
}
