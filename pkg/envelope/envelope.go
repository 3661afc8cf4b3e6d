// Package envelope implements the byte-exact layouts the account contract
// expects at execution time: the aggregated signature bundle, the operation
// data blob, and the outer execution payload.
package envelope

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/quorum-hq/cosigner/pkg/contracts"
)

// ModeBatchOpData is the execution mode selector for a batch of calls with
// trailing operation data (nonce + signature bundle).
var ModeBatchOpData = common.HexToHash("0x0100000000007821000100000000000000000000000000000000000000000000")

// Layout of the outer signature bundle, from the end:
// [ abi.encode(bytes[] signatures) | keyHash (32) | prehash flag (1) ]
const bundleTrailerLength = 33

var (
	bytesArrayArgs abi.Arguments
	executionArgs  abi.Arguments
)

func init() {
	bytesArrayType, err := abi.NewType("bytes[]", "", nil)
	if err != nil {
		panic(fmt.Sprintf("failed to build bytes[] type: %v", err))
	}
	bytesArrayArgs = abi.Arguments{{Type: bytesArrayType}}

	callsType, err := abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "to", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "data", Type: "bytes"},
	})
	if err != nil {
		panic(fmt.Sprintf("failed to build calls type: %v", err))
	}
	bytesType, err := abi.NewType("bytes", "", nil)
	if err != nil {
		panic(fmt.Sprintf("failed to build bytes type: %v", err))
	}
	executionArgs = abi.Arguments{{Type: callsType}, {Type: bytesType}}
}

// EncodeSignatureBundle packs the ordered signature list, the policy key hash
// and the prehash flag into the outer signature bundle the account's
// signature unwrapping expects.
func EncodeSignatureBundle(signatures [][]byte, keyHash common.Hash, flag PrehashFlag) ([]byte, error) {
	if len(signatures) == 0 {
		return nil, fmt.Errorf("signature bundle requires at least one signature")
	}
	if !flag.Recognized() {
		return nil, fmt.Errorf("unrecognized prehash flag: %#x", byte(flag))
	}

	inner, err := bytesArrayArgs.Pack(signatures)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signature list: %v", err)
	}

	bundle := make([]byte, 0, len(inner)+bundleTrailerLength)
	bundle = append(bundle, inner...)
	bundle = append(bundle, keyHash.Bytes()...)
	bundle = append(bundle, byte(flag))
	return bundle, nil
}

// DecodeSignatureBundle reverses EncodeSignatureBundle, recovering the
// ordered signature list, the policy key hash and the prehash flag.
func DecodeSignatureBundle(bundle []byte) ([][]byte, common.Hash, PrehashFlag, error) {
	if len(bundle) <= bundleTrailerLength {
		return nil, common.Hash{}, 0, fmt.Errorf("signature bundle too short: %d bytes", len(bundle))
	}

	flag := PrehashFlag(bundle[len(bundle)-1])
	if !flag.Recognized() {
		return nil, common.Hash{}, 0, fmt.Errorf("unrecognized prehash flag: %#x", bundle[len(bundle)-1])
	}
	keyHash := common.BytesToHash(bundle[len(bundle)-bundleTrailerLength : len(bundle)-1])

	out, err := bytesArrayArgs.Unpack(bundle[:len(bundle)-bundleTrailerLength])
	if err != nil {
		return nil, common.Hash{}, 0, fmt.Errorf("failed to decode signature list: %v", err)
	}
	signatures := *abi.ConvertType(out[0], new([][]byte)).(*[][]byte)

	return signatures, keyHash, flag, nil
}

// EncodeOpData prefixes the signature bundle with the 32-byte big-endian
// nonce, forming the operation data blob for the batch execution mode.
func EncodeOpData(nonce *big.Int, bundle []byte) []byte {
	opData := make([]byte, 0, common.HashLength+len(bundle))
	opData = append(opData, common.BigToHash(nonce).Bytes()...)
	opData = append(opData, bundle...)
	return opData
}

// DecodeOpData splits an operation data blob back into its nonce and
// signature bundle.
func DecodeOpData(opData []byte) (*big.Int, []byte, error) {
	if len(opData) <= common.HashLength {
		return nil, nil, fmt.Errorf("operation data too short: %d bytes", len(opData))
	}
	nonce := new(big.Int).SetBytes(opData[:common.HashLength])
	return nonce, opData[common.HashLength:], nil
}

// EncodeExecutionData packs (calls, opData) with standard ABI tuple-array +
// bytes encoding; the result is the executionData argument of the account's
// execute entry point.
func EncodeExecutionData(calls []contracts.AccountCall, opData []byte) ([]byte, error) {
	if len(calls) == 0 {
		return nil, fmt.Errorf("execution data requires at least one call")
	}
	data, err := executionArgs.Pack(calls, opData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode execution data: %v", err)
	}
	return data, nil
}

// DecodeExecutionData reverses EncodeExecutionData.
func DecodeExecutionData(data []byte) ([]contracts.AccountCall, []byte, error) {
	out, err := executionArgs.Unpack(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode execution data: %v", err)
	}
	calls := *abi.ConvertType(out[0], new([]contracts.AccountCall)).(*[]contracts.AccountCall)
	opData := *abi.ConvertType(out[1], new([]byte)).(*[]byte)
	return calls, opData, nil
}
