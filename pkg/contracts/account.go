package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// AccountCall is an auto generated low-level Go binding around an user-defined struct.
type AccountCall struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// AccountKey is an auto generated low-level Go binding around an user-defined struct.
type AccountKey struct {
	Expiry       *big.Int
	KeyType      uint8
	IsSuperAdmin bool
	PublicKey    []byte
}

// AccountABI is the ABI of the delegated smart account contract
const AccountABI = `[
	{
		"inputs": [
			{
				"internalType": "uint192",
				"name": "seqKey",
				"type": "uint192"
			}
		],
		"name": "getNonce",
		"outputs": [
			{
				"internalType": "uint256",
				"name": "nonce",
				"type": "uint256"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{
				"components": [
					{
						"internalType": "address",
						"name": "to",
						"type": "address"
					},
					{
						"internalType": "uint256",
						"name": "value",
						"type": "uint256"
					},
					{
						"internalType": "bytes",
						"name": "data",
						"type": "bytes"
					}
				],
				"internalType": "struct Account.Call[]",
				"name": "calls",
				"type": "tuple[]"
			},
			{
				"internalType": "uint256",
				"name": "nonce",
				"type": "uint256"
			}
		],
		"name": "computeDigest",
		"outputs": [
			{
				"internalType": "bytes32",
				"name": "digest",
				"type": "bytes32"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{
				"internalType": "bytes32",
				"name": "digest",
				"type": "bytes32"
			},
			{
				"internalType": "bytes",
				"name": "signature",
				"type": "bytes"
			}
		],
		"name": "unwrapAndValidateSignature",
		"outputs": [
			{
				"internalType": "bool",
				"name": "isValid",
				"type": "bool"
			},
			{
				"internalType": "bytes32",
				"name": "keyHash",
				"type": "bytes32"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{
				"components": [
					{
						"internalType": "uint40",
						"name": "expiry",
						"type": "uint40"
					},
					{
						"internalType": "uint8",
						"name": "keyType",
						"type": "uint8"
					},
					{
						"internalType": "bool",
						"name": "isSuperAdmin",
						"type": "bool"
					},
					{
						"internalType": "bytes",
						"name": "publicKey",
						"type": "bytes"
					}
				],
				"internalType": "struct Account.Key",
				"name": "key",
				"type": "tuple"
			}
		],
		"name": "authorize",
		"outputs": [
			{
				"internalType": "bytes32",
				"name": "keyHash",
				"type": "bytes32"
			}
		],
		"stateMutability": "nonpayable",
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
				"internalType": "address",
				"name": "target",
				"type": "address"
			},
			{
				"internalType": "bytes4",
				"name": "fnSel",
				"type": "bytes4"
			},
			{
				"internalType": "bool",
				"name": "can",
				"type": "bool"
			}
		],
		"name": "setCanExecute",
		"outputs": [],
		"stateMutability": "nonpayable",
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
				"internalType": "address",
				"name": "token",
				"type": "address"
			},
			{
				"internalType": "uint8",
				"name": "period",
				"type": "uint8"
			},
			{
				"internalType": "uint256",
				"name": "limit",
				"type": "uint256"
			}
		],
		"name": "setSpendLimit",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{
				"internalType": "bytes32",
				"name": "mode",
				"type": "bytes32"
			},
			{
				"internalType": "bytes",
				"name": "executionData",
				"type": "bytes"
			}
		],
		"name": "execute",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	}
]`

// Account is an auto generated Go binding around an Ethereum contract.
type Account struct {
	AccountCaller     // Read-only binding to the contract
	AccountTransactor // Write-only binding to the contract
}

// AccountCaller is an auto generated read-only Go binding around an Ethereum contract.
type AccountCaller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// AccountTransactor is an auto generated write-only Go binding around an Ethereum contract.
type AccountTransactor struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// NewAccount creates a new instance of Account, bound to a specific deployed contract.
func NewAccount(address common.Address, backend bind.ContractBackend) (*Account, error) {
	contract, err := bindAccount(address, backend, backend)
	if err != nil {
		return nil, err
	}
	return &Account{AccountCaller: AccountCaller{contract: contract}, AccountTransactor: AccountTransactor{contract: contract}}, nil
}

// bindAccount binds a generic wrapper to an already deployed contract.
func bindAccount(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor) (*bind.BoundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(AccountABI))
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, parsed, caller, transactor, nil), nil
}

// GetNonce is a free data retrieval call binding the contract method 0x9e49fbf1.
//
// Solidity: function getNonce(uint192 seqKey) view returns(uint256 nonce)
func (_Account *AccountCaller) GetNonce(opts *bind.CallOpts, seqKey *big.Int) (*big.Int, error) {
	var out []interface{}
	err := _Account.contract.Call(opts, &out, "getNonce", seqKey)

	if err != nil {
		return new(big.Int), err
	}

	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)

	return out0, err
}

// ComputeDigest is a free data retrieval call binding the contract method 0x4e5ac2d8.
//
// Solidity: function computeDigest((address,uint256,bytes)[] calls, uint256 nonce) view returns(bytes32 digest)
func (_Account *AccountCaller) ComputeDigest(opts *bind.CallOpts, calls []AccountCall, nonce *big.Int) ([32]byte, error) {
	var out []interface{}
	err := _Account.contract.Call(opts, &out, "computeDigest", calls, nonce)

	if err != nil {
		return *new([32]byte), err
	}

	out0 := *abi.ConvertType(out[0], new([32]byte)).(*[32]byte)

	return out0, err
}

// UnwrapAndValidateSignature is a free data retrieval call binding the contract method 0x0cef73b4.
//
// Solidity: function unwrapAndValidateSignature(bytes32 digest, bytes signature) view returns(bool isValid, bytes32 keyHash)
func (_Account *AccountCaller) UnwrapAndValidateSignature(opts *bind.CallOpts, digest [32]byte, signature []byte) (struct {
	IsValid bool
	KeyHash [32]byte
}, error,
) {
	var out []interface{}
	err := _Account.contract.Call(opts, &out, "unwrapAndValidateSignature", digest, signature)

	outstruct := new(struct {
		IsValid bool
		KeyHash [32]byte
	})
	if err != nil {
		return *outstruct, err
	}

	outstruct.IsValid = *abi.ConvertType(out[0], new(bool)).(*bool)
	outstruct.KeyHash = *abi.ConvertType(out[1], new([32]byte)).(*[32]byte)

	return *outstruct, err
}

// Authorize is a paid mutator transaction binding the contract method 0x5e051b5e.
//
// Solidity: function authorize((uint40,uint8,bool,bytes) key) returns(bytes32 keyHash)
func (_Account *AccountTransactor) Authorize(opts *bind.TransactOpts, key AccountKey) (*types.Transaction, error) {
	return _Account.contract.Transact(opts, "authorize", key)
}

// SetCanExecute is a paid mutator transaction binding the contract method 0x69f6f9a5.
//
// Solidity: function setCanExecute(bytes32 keyHash, address target, bytes4 fnSel, bool can) returns()
func (_Account *AccountTransactor) SetCanExecute(opts *bind.TransactOpts, keyHash [32]byte, target common.Address, fnSel [4]byte, can bool) (*types.Transaction, error) {
	return _Account.contract.Transact(opts, "setCanExecute", keyHash, target, fnSel, can)
}

// SetSpendLimit is a paid mutator transaction binding the contract method 0xf01d0e7b.
//
// Solidity: function setSpendLimit(bytes32 keyHash, address token, uint8 period, uint256 limit) returns()
func (_Account *AccountTransactor) SetSpendLimit(opts *bind.TransactOpts, keyHash [32]byte, token common.Address, period uint8, limit *big.Int) (*types.Transaction, error) {
	return _Account.contract.Transact(opts, "setSpendLimit", keyHash, token, period, limit)
}

// Execute is a paid mutator transaction binding the contract method 0xe9ae5c53.
//
// Solidity: function execute(bytes32 mode, bytes executionData) payable returns()
func (_Account *AccountTransactor) Execute(opts *bind.TransactOpts, mode [32]byte, executionData []byte) (*types.Transaction, error) {
	return _Account.contract.Transact(opts, "execute", mode, executionData)
}
