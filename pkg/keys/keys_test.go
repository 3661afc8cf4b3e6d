package keys

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAccount = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testPolicy  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	testTarget  = common.HexToAddress("0x3000000000000000000000000000000000000003")
	testSalt    = []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c}
)

// nativeToken is the zero address, used as the token of a native-currency
// spend limit
var nativeToken = common.Address{}

// TestExternalPublicKeyLayout verifies the address-then-salt layout
func TestExternalPublicKeyLayout(t *testing.T) {
	publicKey, err := ExternalPublicKey(testPolicy, testSalt)
	require.NoError(t, err)

	require.Len(t, publicKey, 32)
	assert.Equal(t, testPolicy.Bytes(), publicKey[:20])
	assert.Equal(t, testSalt, publicKey[20:])
}

// TestExternalPublicKeyRejectsBadSalt verifies the salt length check
func TestExternalPublicKeyRejectsBadSalt(t *testing.T) {
	tests := []struct {
		name string
		salt []byte
	}{
		{name: "Empty salt", salt: nil},
		{name: "Short salt", salt: bytes.Repeat([]byte{0x01}, 11)},
		{name: "Long salt", salt: bytes.Repeat([]byte{0x01}, 13)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExternalPublicKey(testPolicy, tc.salt)
			assert.Error(t, err)
		})
	}
}

// TestDeriveExternalKeyHashDeterminism verifies the key hash is a pure
// function of (policy, salt) and insensitive to everything else
func TestDeriveExternalKeyHashDeterminism(t *testing.T) {
	first, err := DeriveExternalKeyHash(testPolicy, testSalt)
	require.NoError(t, err)
	second, err := DeriveExternalKeyHash(testPolicy, testSalt)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same inputs must derive the same key hash")
	assert.NotEqual(t, common.Hash{}, first)
}

// TestDeriveExternalKeyHashSensitivity verifies distinct inputs derive
// distinct key hashes
func TestDeriveExternalKeyHashSensitivity(t *testing.T) {
	base, err := DeriveExternalKeyHash(testPolicy, testSalt)
	require.NoError(t, err)

	otherPolicy := common.HexToAddress("0x4000000000000000000000000000000000000004")
	fromOtherPolicy, err := DeriveExternalKeyHash(otherPolicy, testSalt)
	require.NoError(t, err)
	assert.NotEqual(t, base, fromOtherPolicy)

	otherSalt := bytes.Repeat([]byte{0xff}, SaltLength)
	fromOtherSalt, err := DeriveExternalKeyHash(testPolicy, otherSalt)
	require.NoError(t, err)
	assert.NotEqual(t, base, fromOtherSalt)
}

// TestAuthorizeCall verifies the authorize payload targets the account and
// carries the external public key
func TestAuthorizeCall(t *testing.T) {
	call, err := AuthorizeCall(testAccount, testPolicy, testSalt)
	require.NoError(t, err)

	assert.Equal(t, testAccount, call.To)
	require.GreaterOrEqual(t, len(call.Data), 4)

	// The public key material must appear verbatim in the encoded struct
	publicKey, err := ExternalPublicKey(testPolicy, testSalt)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(call.Data, publicKey))
}

// TestCallPermissionCall verifies selector validation and payload target
func TestCallPermissionCall(t *testing.T) {
	keyHash, err := DeriveExternalKeyHash(testPolicy, testSalt)
	require.NoError(t, err)

	call, err := CallPermissionCall(testAccount, keyHash, testTarget, EmptyCalldataSelector[:])
	require.NoError(t, err)
	assert.Equal(t, testAccount, call.To)
	assert.True(t, bytes.Contains(call.Data, keyHash.Bytes()))

	_, err = CallPermissionCall(testAccount, keyHash, testTarget, []byte{0xe0, 0xe0})
	assert.Error(t, err, "short selector should be rejected")
}

// TestSpendPermissionCall verifies period validation
func TestSpendPermissionCall(t *testing.T) {
	keyHash, err := DeriveExternalKeyHash(testPolicy, testSalt)
	require.NoError(t, err)

	call, err := SpendPermissionCall(testAccount, keyHash, nativeToken, PeriodDay, big.NewInt(1e18))
	require.NoError(t, err)
	assert.Equal(t, testAccount, call.To)

	_, err = SpendPermissionCall(testAccount, keyHash, nativeToken, SpendPeriod(42), big.NewInt(1))
	assert.Error(t, err, "unknown period should be rejected")
}

// TestDelegationCalls verifies the batch order: authorize, call permission,
// spend permission, all targeting the account
func TestDelegationCalls(t *testing.T) {
	calls, err := DelegationCalls(testAccount, testPolicy, testSalt, testTarget, nativeToken, PeriodWeek, big.NewInt(5e17))
	require.NoError(t, err)
	require.Len(t, calls, 3)

	for i, call := range calls {
		assert.Equal(t, testAccount, call.To, "call %d must target the account", i)
		assert.NotEmpty(t, call.Data)
	}

	// The three payloads encode different operations
	assert.NotEqual(t, calls[0].Data[:4], calls[1].Data[:4])
	assert.NotEqual(t, calls[1].Data[:4], calls[2].Data[:4])
}

// TestEmptyCalldataSelector pins the sentinel selector bytes
func TestEmptyCalldataSelector(t *testing.T) {
	assert.Equal(t, [4]byte{0xe0, 0xe0, 0xe0, 0xe0}, EmptyCalldataSelector)
}

// TestSpendPeriodNames verifies the period enum round-trips through its names
func TestSpendPeriodNames(t *testing.T) {
	tests := []struct {
		period SpendPeriod
		name   string
	}{
		{PeriodMinute, "minute"},
		{PeriodHour, "hour"},
		{PeriodDay, "day"},
		{PeriodWeek, "week"},
		{PeriodMonth, "month"},
		{PeriodYear, "year"},
		{PeriodForever, "forever"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.period.Valid())
			assert.Equal(t, tc.name, tc.period.String())

			parsed, ok := ParseSpendPeriod(tc.name)
			require.True(t, ok)
			assert.Equal(t, tc.period, parsed)
		})
	}

	assert.False(t, SpendPeriod(7).Valid())
	assert.Equal(t, "unknown", SpendPeriod(7).String())
	_, ok := ParseSpendPeriod("fortnight")
	assert.False(t, ok)
}
