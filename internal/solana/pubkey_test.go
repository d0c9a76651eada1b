package solana

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/mr-tron/base58"
)

func TestValidatePubkey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"real key", base58.Encode(pub), false},
		{"well-known program id", TokenProgramID, false},
		{"empty", "", true},
		{"not base58", "0OIl+/=", true},
		{"too short", "abc", true},
		{"too long", base58.Encode(append(append([]byte{}, pub...), 1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePubkey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePubkey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestIsOnCurve(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	if !IsOnCurve(base58.Encode(pub)) {
		t.Error("generated ed25519 key should be on curve")
	}

	// A 32-byte encoding whose y coordinate has no matching x.
	if IsOnCurve("8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh") {
		t.Error("off-curve encoding reported as on curve")
	}

	if IsOnCurve("not-a-key") {
		t.Error("malformed input reported as on curve")
	}
}
