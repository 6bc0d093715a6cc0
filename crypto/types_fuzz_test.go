package crypto

import (
	"testing"
)

func FuzzSignVerify(f *testing.F) {
	// Seed corpus
	f.Add([]byte{})
	f.Add([]byte("review submission"))
	f.Add(make([]byte, 2048))

	f.Fuzz(func(t *testing.T, data []byte) {
		principal, privKey, err := GenerateKeyPair()
		if err != nil {
			t.Fatalf("failed to generate key pair: %v", err)
		}

		signature, err := Sign(privKey, data)
		if err != nil {
			t.Fatalf("signing failed: %v", err)
		}

		// Ed25519 signatures are always 64 bytes
		if len(signature) != 64 {
			t.Errorf("signature wrong length: got %d, want 64", len(signature))
		}

		if !signature.Verify(principal, data) {
			t.Error("signature verification failed with correct principal")
		}

		otherPrincipal, _, _ := GenerateKeyPair()
		if signature.Verify(otherPrincipal, data) {
			t.Error("signature should not verify for a different principal")
		}

		if len(data) > 0 {
			modified := make([]byte, len(data))
			copy(modified, data)
			modified[0] ^= 0xFF
			if signature.Verify(principal, modified) {
				t.Error("signature should not verify with modified data")
			}
		}

		tamperedSig := make(Signature, len(signature))
		copy(tamperedSig, signature)
		tamperedSig[0] ^= 0xFF
		if tamperedSig.Verify(principal, data) {
			t.Error("tampered signature should not verify")
		}
	})
}

func FuzzPrincipalRoundTrip(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x01, 0x02, 0x03})
	f.Add(make([]byte, 32))

	f.Fuzz(func(t *testing.T, data []byte) {
		p := NewPrincipalFromBytes(data)

		decoded, err := NewPrincipalFromString(p.String())
		if err != nil {
			t.Fatalf("decoding hex identity failed: %v", err)
		}
		if !decoded.Equal(p) {
			t.Error("principal did not survive string round trip")
		}
	})
}
