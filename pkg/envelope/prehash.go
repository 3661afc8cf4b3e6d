package envelope

// PrehashFlag is the trailing byte of a wrapped signature. It tells the
// account whether the signed payload is the raw digest or its prehash.
type PrehashFlag byte

const (
	// FlagRawDigest means the owner signed the digest directly
	FlagRawDigest PrehashFlag = 0x00
	// FlagPrehashed means the owner signed sha256(digest)
	FlagPrehashed PrehashFlag = 0x01
)

// Recognized reports whether the flag is one of the known variants
func (f PrehashFlag) Recognized() bool {
	return f == FlagRawDigest || f == FlagPrehashed
}

// Toggle returns the other recognized variant
func (f PrehashFlag) Toggle() PrehashFlag {
	if f == FlagRawDigest {
		return FlagPrehashed
	}
	return FlagRawDigest
}

// SignatureVariants returns the wrapped signature as received plus, when the
// trailing byte is a recognized flag, the copy with the flag toggled. This is
// the explicit two-variant attempt list used during validation; order
// matters, the signature as received always comes first.
func SignatureVariants(signature []byte) [][]byte {
	if len(signature) == 0 {
		return nil
	}
	variants := [][]byte{signature}

	flag := PrehashFlag(signature[len(signature)-1])
	if !flag.Recognized() {
		return variants
	}

	toggled := make([]byte, len(signature))
	copy(toggled, signature)
	toggled[len(toggled)-1] = byte(flag.Toggle())
	return append(variants, toggled)
}
