package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PubkeyLen is the byte length of an ed25519 public key.
const PubkeyLen = 32

// DecodePubkey decodes a base58 public key and verifies its length.
func DecodePubkey(s string) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode base58: %w", err)
	}
	if len(raw) != PubkeyLen {
		return nil, fmt.Errorf("expected %d bytes, got %d", PubkeyLen, len(raw))
	}
	return raw, nil
}

// ValidatePubkey reports whether s is a syntactically valid public key
// (base58, 32 bytes).
func ValidatePubkey(s string) error {
	_, err := DecodePubkey(s)
	return err
}

// IsOnCurve reports whether the key decodes to a point on the ed25519
// curve. Wallet keys are on-curve; program derived addresses are not and
// cannot sign, so buyer wallets must pass this check.
func IsOnCurve(s string) bool {
	raw, err := DecodePubkey(s)
	if err != nil {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
