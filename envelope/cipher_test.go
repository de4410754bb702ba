package envelope

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"
)

// TestSealOpen tests basic seal and open functionality
func TestSealOpen(t *testing.T) {
	privateKey, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	defer privateKey.Destroy()

	publicKey := privateKey.Public()

	plaintext := []byte(`{"username":"john@example.com","password":"secret"}`)
	correlationID := "store-creds-001"

	env, err := Seal(publicKey, plaintext, correlationID)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if env.Alg != Algorithm {
		t.Errorf("Expected alg %q, got %q", Algorithm, env.Alg)
	}

	decrypted, err := Open(privateKey, env, correlationID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if !bytes.Equal(plaintext, decrypted) {
		t.Errorf("Decrypted data doesn't match original.\nExpected: %s\nGot: %s", plaintext, decrypted)
	}
}

// TestSealOpenWireRoundTrip verifies the full marshal/parse cycle
func TestSealOpenWireRoundTrip(t *testing.T) {
	privateKey, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	defer privateKey.Destroy()

	plaintext := []byte("payload over the wire")

	env, err := Seal(privateKey.Public(), plaintext, "wire-001")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	wire, err := env.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	parsed, err := Parse(wire)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	decrypted, err := Open(privateKey, parsed, "wire-001")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if !bytes.Equal(plaintext, decrypted) {
		t.Error("Wire round trip mismatch")
	}
}

// TestCiphertextLength verifies that the stream cipher keeps ciphertext the
// same length as plaintext
func TestCiphertextLength(t *testing.T) {
	privateKey, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	defer privateKey.Destroy()

	for _, size := range []int{0, 1, 16, 255, 4096} {
		plaintext := make([]byte, size)
		if _, err := rand.Read(plaintext); err != nil {
			t.Fatalf("rand: %v", err)
		}

		env, err := Seal(privateKey.Public(), plaintext, "len-check")
		if err != nil {
			t.Fatalf("Seal failed for size %d: %v", size, err)
		}

		ct, err := base64.StdEncoding.DecodeString(env.Ciphertext)
		if err != nil {
			t.Fatalf("decode ciphertext: %v", err)
		}
		if len(ct) != size {
			t.Errorf("size %d: ciphertext length %d", size, len(ct))
		}
	}
}

// TestOpenWrongCorrelationID verifies that a mismatched correlation id
// fails closed instead of returning corrupted plaintext
func TestOpenWrongCorrelationID(t *testing.T) {
	privateKey, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	defer privateKey.Destroy()

	env, err := Seal(privateKey.Public(), []byte("bound payload"), "call-A")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	_, err = Open(privateKey, env, "call-B")
	if !errors.Is(err, ErrOpenFailed) {
		t.Errorf("Expected ErrOpenFailed, got %v", err)
	}
}

// TestOpenWrongKey verifies that the wrong private key fails with the same
// error as tampering
func TestOpenWrongKey(t *testing.T) {
	alice, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	defer alice.Destroy()

	mallory, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	defer mallory.Destroy()

	env, err := Seal(alice.Public(), []byte("for alice only"), "c-1")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	_, err = Open(mallory, env, "c-1")
	if !errors.Is(err, ErrOpenFailed) {
		t.Errorf("Expected ErrOpenFailed, got %v", err)
	}
}

// TestTamperDetection flips single bits in ciphertext and tag and verifies
// that every mutation is rejected
func TestTamperDetection(t *testing.T) {
	privateKey, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	defer privateKey.Destroy()

	env, err := Seal(privateKey.Public(), []byte("integrity protected payload"), "tamper-1")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	flipBit := func(encoded string, bit int) string {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		raw[bit/8] ^= 1 << (bit % 8)
		return base64.StdEncoding.EncodeToString(raw)
	}

	t.Run("ciphertext", func(t *testing.T) {
		raw, _ := base64.StdEncoding.DecodeString(env.Ciphertext)
		for _, bit := range []int{0, 7, len(raw)*8 - 1} {
			mutated := *env
			mutated.Ciphertext = flipBit(env.Ciphertext, bit)
			if _, err := Open(privateKey, &mutated, "tamper-1"); !errors.Is(err, ErrOpenFailed) {
				t.Errorf("bit %d: expected ErrOpenFailed, got %v", bit, err)
			}
		}
	})

	t.Run("tag", func(t *testing.T) {
		for _, bit := range []int{0, 64, TagSize*8 - 1} {
			mutated := *env
			mutated.Tag = flipBit(env.Tag, bit)
			if _, err := Open(privateKey, &mutated, "tamper-1"); !errors.Is(err, ErrOpenFailed) {
				t.Errorf("bit %d: expected ErrOpenFailed, got %v", bit, err)
			}
		}
	})
}

// TestNonceUniqueness verifies that successive seals never repeat a nonce
func TestNonceUniqueness(t *testing.T) {
	privateKey, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	defer privateKey.Destroy()

	const n = 512
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		env, err := Seal(privateKey.Public(), []byte("same message"), "same-id")
		if err != nil {
			t.Fatalf("Seal failed: %v", err)
		}
		if _, dup := seen[env.Nonce]; dup {
			t.Fatalf("Nonce repeated after %d seals", i)
		}
		seen[env.Nonce] = struct{}{}
	}
}

// TestSealMissingPublicKey tests the precondition on the recipient key
func TestSealMissingPublicKey(t *testing.T) {
	_, err := Seal(nil, []byte("data"), "c-1")
	if !errors.Is(err, ErrPublicKeyMissing) {
		t.Errorf("Expected ErrPublicKeyMissing, got %v", err)
	}
}

// TestOpenMissingPrivateKey tests the precondition on the receiver key
func TestOpenMissingPrivateKey(t *testing.T) {
	privateKey, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	defer privateKey.Destroy()

	env, err := Seal(privateKey.Public(), []byte("data"), "c-1")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	_, err = Open(nil, env, "c-1")
	if !errors.Is(err, ErrPrivateKeyMissing) {
		t.Errorf("Expected ErrPrivateKeyMissing, got %v", err)
	}
}

// TestSealLargeData tests with larger payloads
func TestSealLargeData(t *testing.T) {
	privateKey, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	defer privateKey.Destroy()

	plaintext := bytes.Repeat([]byte("Hello, world! "), 1000) // ~14 KB

	env, err := Seal(privateKey.Public(), plaintext, "bulk-1")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	decrypted, err := Open(privateKey, env, "bulk-1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if !bytes.Equal(plaintext, decrypted) {
		t.Error("Large data mismatch")
	}
}

// TestEmptyCorrelationID verifies the empty id binds as empty context and
// still round-trips
func TestEmptyCorrelationID(t *testing.T) {
	privateKey, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	defer privateKey.Destroy()

	env, err := Seal(privateKey.Public(), []byte("no id"), "")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if _, err := Open(privateKey, env, ""); err != nil {
		t.Fatalf("Open with empty id failed: %v", err)
	}

	if _, err := Open(privateKey, env, "something"); !errors.Is(err, ErrOpenFailed) {
		t.Errorf("Expected ErrOpenFailed with non-empty id, got %v", err)
	}
}
