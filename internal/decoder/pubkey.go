package decoder

import (
	"filippo.io/edwards25519"

	"github.com/mr-tron/base58"
)

// ValidPubkey reports whether s is a base58 string decoding to 32 bytes.
func ValidPubkey(s string) bool {
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == pubkeyLen
}

// IsOnCurve reports whether the base58 key decodes to a point on the
// ed25519 curve. Wallet addresses are on-curve; program-derived addresses
// are not.
func IsOnCurve(s string) bool {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != pubkeyLen {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
