package envelope

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorum-hq/cosigner/pkg/contracts"
)

// TestSignatureBundleRoundTrip verifies that encoding and decoding a bundle
// preserves the signature order, key hash and flag
func TestSignatureBundleRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		signatures [][]byte
		flag       PrehashFlag
	}{
		{
			name:       "Single signature raw digest",
			signatures: [][]byte{bytes.Repeat([]byte{0xaa}, 65)},
			flag:       FlagRawDigest,
		},
		{
			name: "Two signatures prehashed",
			signatures: [][]byte{
				bytes.Repeat([]byte{0x01}, 65),
				bytes.Repeat([]byte{0x02}, 65),
			},
			flag: FlagPrehashed,
		},
		{
			name: "Mixed length signatures",
			signatures: [][]byte{
				bytes.Repeat([]byte{0x11}, 64),
				bytes.Repeat([]byte{0x22}, 65),
				bytes.Repeat([]byte{0x33}, 130),
			},
			flag: FlagRawDigest,
		},
	}

	keyHash := common.HexToHash("0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bundle, err := EncodeSignatureBundle(tc.signatures, keyHash, tc.flag)
			require.NoError(t, err)

			// Trailer layout: key hash then flag byte at the very end
			assert.Equal(t, byte(tc.flag), bundle[len(bundle)-1])
			assert.Equal(t, keyHash.Bytes(), bundle[len(bundle)-33:len(bundle)-1])

			gotSigs, gotKeyHash, gotFlag, err := DecodeSignatureBundle(bundle)
			require.NoError(t, err)
			assert.Equal(t, tc.signatures, gotSigs, "signature order must survive the round trip")
			assert.Equal(t, keyHash, gotKeyHash)
			assert.Equal(t, tc.flag, gotFlag)
		})
	}
}

// TestEncodeSignatureBundleRejectsInvalidInput verifies the encoder's input checks
func TestEncodeSignatureBundleRejectsInvalidInput(t *testing.T) {
	keyHash := common.HexToHash("0x01")

	_, err := EncodeSignatureBundle(nil, keyHash, FlagRawDigest)
	assert.Error(t, err, "empty signature list should be rejected")

	_, err = EncodeSignatureBundle([][]byte{{0x01}}, keyHash, PrehashFlag(0x7f))
	assert.Error(t, err, "unrecognized flag should be rejected")
}

// TestDecodeSignatureBundleRejectsMalformedInput verifies the decoder's input checks
func TestDecodeSignatureBundleRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		bundle []byte
	}{
		{name: "Empty", bundle: nil},
		{name: "Trailer only", bundle: bytes.Repeat([]byte{0x00}, 33)},
		{name: "Unrecognized flag", bundle: append(bytes.Repeat([]byte{0x00}, 64), 0x42)},
		{name: "Garbage inner encoding", bundle: append(bytes.Repeat([]byte{0xff}, 64), 0x00)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := DecodeSignatureBundle(tc.bundle)
			assert.Error(t, err)
		})
	}
}

// TestOpDataRoundTrip verifies the nonce prefix layout of the operation data
func TestOpDataRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		nonce *big.Int
	}{
		{name: "Zero nonce", nonce: big.NewInt(0)},
		{name: "Small nonce", nonce: big.NewInt(7)},
		{name: "Large nonce", nonce: new(big.Int).Lsh(big.NewInt(1), 200)},
	}

	bundle := []byte{0x01, 0x02, 0x03}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opData := EncodeOpData(tc.nonce, bundle)
			require.Equal(t, 32+len(bundle), len(opData))

			// Nonce is a 32-byte big-endian prefix
			assert.Equal(t, common.BigToHash(tc.nonce).Bytes(), opData[:32])

			gotNonce, gotBundle, err := DecodeOpData(opData)
			require.NoError(t, err)
			assert.Zero(t, tc.nonce.Cmp(gotNonce))
			assert.Equal(t, bundle, gotBundle)
		})
	}
}

// TestDecodeOpDataRejectsShortInput verifies that a blob without room for a
// bundle after the nonce is rejected
func TestDecodeOpDataRejectsShortInput(t *testing.T) {
	_, _, err := DecodeOpData(bytes.Repeat([]byte{0x00}, 32))
	assert.Error(t, err)

	_, _, err = DecodeOpData(nil)
	assert.Error(t, err)
}

// TestExecutionDataRoundTrip verifies the outer (calls, opData) encoding
func TestExecutionDataRoundTrip(t *testing.T) {
	calls := []contracts.AccountCall{
		{
			To:    common.HexToAddress("0x1111111111111111111111111111111111111111"),
			Value: big.NewInt(1000000000000000000),
			Data:  []byte{},
		},
	}
	opData := EncodeOpData(big.NewInt(5), []byte{0xaa, 0xbb})

	data, err := EncodeExecutionData(calls, opData)
	require.NoError(t, err)

	gotCalls, gotOpData, err := DecodeExecutionData(data)
	require.NoError(t, err)
	require.Len(t, gotCalls, 1)
	assert.Equal(t, calls[0].To, gotCalls[0].To)
	assert.Zero(t, calls[0].Value.Cmp(gotCalls[0].Value))
	assert.Empty(t, gotCalls[0].Data)
	assert.Equal(t, opData, gotOpData)
}

// TestEncodeExecutionDataRejectsEmptyCalls verifies the encoder refuses an
// empty call list
func TestEncodeExecutionDataRejectsEmptyCalls(t *testing.T) {
	_, err := EncodeExecutionData(nil, []byte{0x01})
	assert.Error(t, err)
}

// TestModeBatchOpDataSelector pins the execution mode selector bytes
func TestModeBatchOpDataSelector(t *testing.T) {
	assert.Equal(t,
		"0x0100000000007821000100000000000000000000000000000000000000000000",
		ModeBatchOpData.Hex())
}
