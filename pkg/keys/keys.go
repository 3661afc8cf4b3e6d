// Package keys builds the contract call payloads that authorize a delegated
// external signing key on a smart account and grant it the permissions it
// needs to act. All functions are pure; they encode, they never send.
package keys

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/quorum-hq/cosigner/pkg/contracts"
)

// KeyType identifies the kind of key registered on the account
type KeyType uint8

const (
	KeyTypeP256 KeyType = iota
	KeyTypeWebAuthnP256
	KeyTypeSecp256k1
	KeyTypeExternal
)

// SaltLength is the required length of the external key salt in bytes
const SaltLength = 12

// SelectorLength is the required length of a function selector in bytes
const SelectorLength = 4

// EmptyCalldataSelector is the sentinel selector meaning "calls with empty
// calldata are allowed" in a call-permission entry.
var EmptyCalldataSelector = [4]byte{0xe0, 0xe0, 0xe0, 0xe0}

// EncodedCall is a (target, calldata) pair ready to be wrapped in the
// account's generic execute batch.
type EncodedCall struct {
	To   common.Address
	Data []byte
}

var (
	accountABIOnce sync.Once
	accountABI     abi.ABI
	accountABIErr  error
)

func parsedAccountABI() (abi.ABI, error) {
	accountABIOnce.Do(func() {
		accountABI, accountABIErr = abi.JSON(strings.NewReader(contracts.AccountABI))
	})
	return accountABI, accountABIErr
}

// ExternalPublicKey returns the 32-byte public key material of an external
// key: the policy contract address followed by the 12-byte salt.
func ExternalPublicKey(policy common.Address, salt []byte) ([]byte, error) {
	if len(salt) != SaltLength {
		return nil, fmt.Errorf("invalid salt length: expected %d bytes, got %d", SaltLength, len(salt))
	}
	publicKey := make([]byte, 0, 32)
	publicKey = append(publicKey, policy.Bytes()...)
	publicKey = append(publicKey, salt...)
	return publicKey, nil
}

// DeriveExternalKeyHash derives the key hash identifying an external key.
// The hash is a pure function of (policy, salt): the same policy contract and
// salt yield the same key hash on every account.
func DeriveExternalKeyHash(policy common.Address, salt []byte) (common.Hash, error) {
	publicKey, err := ExternalPublicKey(policy, salt)
	if err != nil {
		return common.Hash{}, err
	}
	publicKeyHash := crypto.Keccak256(publicKey)

	preimage := make([]byte, 0, 33)
	preimage = append(preimage, byte(KeyTypeExternal))
	preimage = append(preimage, publicKeyHash...)
	return common.BytesToHash(crypto.Keccak256(preimage)), nil
}

// AuthorizeCall encodes the account call that registers the external key
// derived from (policy, salt). The key never expires and is not a super
// admin; its abilities come from the permission entries granted alongside.
func AuthorizeCall(account, policy common.Address, salt []byte) (EncodedCall, error) {
	publicKey, err := ExternalPublicKey(policy, salt)
	if err != nil {
		return EncodedCall{}, err
	}

	parsed, err := parsedAccountABI()
	if err != nil {
		return EncodedCall{}, fmt.Errorf("failed to parse account ABI: %v", err)
	}

	data, err := parsed.Pack("authorize", contracts.AccountKey{
		Expiry:       big.NewInt(0),
		KeyType:      uint8(KeyTypeExternal),
		IsSuperAdmin: false,
		PublicKey:    publicKey,
	})
	if err != nil {
		return EncodedCall{}, fmt.Errorf("failed to encode authorize call: %v", err)
	}
	return EncodedCall{To: account, Data: data}, nil
}

// CallPermissionCall encodes the account call whitelisting (target, selector)
// for the given key hash. Pass EmptyCalldataSelector[:] to allow calls with
// empty calldata, such as plain value transfers.
func CallPermissionCall(account common.Address, keyHash common.Hash, target common.Address, selector []byte) (EncodedCall, error) {
	if len(selector) != SelectorLength {
		return EncodedCall{}, fmt.Errorf("invalid selector length: expected %d bytes, got %d", SelectorLength, len(selector))
	}
	var fnSel [4]byte
	copy(fnSel[:], selector)

	parsed, err := parsedAccountABI()
	if err != nil {
		return EncodedCall{}, fmt.Errorf("failed to parse account ABI: %v", err)
	}

	data, err := parsed.Pack("setCanExecute", [32]byte(keyHash), target, fnSel, true)
	if err != nil {
		return EncodedCall{}, fmt.Errorf("failed to encode setCanExecute call: %v", err)
	}
	return EncodedCall{To: account, Data: data}, nil
}

// SpendPermissionCall encodes the account call granting the key hash a
// cumulative spend limit for the token over the given period.
func SpendPermissionCall(account common.Address, keyHash common.Hash, token common.Address, period SpendPeriod, limit *big.Int) (EncodedCall, error) {
	if !period.Valid() {
		return EncodedCall{}, fmt.Errorf("invalid spend period: %d", period)
	}

	parsed, err := parsedAccountABI()
	if err != nil {
		return EncodedCall{}, fmt.Errorf("failed to parse account ABI: %v", err)
	}

	data, err := parsed.Pack("setSpendLimit", [32]byte(keyHash), token, uint8(period), limit)
	if err != nil {
		return EncodedCall{}, fmt.Errorf("failed to encode setSpendLimit call: %v", err)
	}
	return EncodedCall{To: account, Data: data}, nil
}

// DelegationCalls encodes the full batch needed for a delegated external key
// to act on the account: authorize the key, allow empty-calldata calls to the
// transfer target, and grant the spend limit. The returned calls are in the
// order they must execute.
func DelegationCalls(account, policy common.Address, salt []byte, target, token common.Address, period SpendPeriod, limit *big.Int) ([]EncodedCall, error) {
	keyHash, err := DeriveExternalKeyHash(policy, salt)
	if err != nil {
		return nil, err
	}

	authorize, err := AuthorizeCall(account, policy, salt)
	if err != nil {
		return nil, err
	}

	callPerm, err := CallPermissionCall(account, keyHash, target, EmptyCalldataSelector[:])
	if err != nil {
		return nil, err
	}

	spendPerm, err := SpendPermissionCall(account, keyHash, token, period, limit)
	if err != nil {
		return nil, err
	}

	return []EncodedCall{authorize, callPerm, spendPerm}, nil
}
