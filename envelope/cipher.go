package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Seal encrypts plaintext for the recipient and binds the envelope to the
// given correlation id.
//
// The process:
//  1. Generate an ephemeral key pair for this envelope
//  2. Perform ECDH with the recipient's public key; the x-coordinate of the
//     shared point is the raw shared secret
//  3. Derive the AES-256 key with the correlation-bound KDF
//  4. Encrypt with AES-256-GCM under a fresh random 12-byte nonce
//  5. Assemble Envelope{alg, ephemeral public key, nonce, ciphertext, tag}
//
// The ephemeral key is destroyed before returning; the derived symmetric
// key is never used for more than this one envelope.
func Seal(recipientPublicKey *PublicKey, plaintext []byte, correlationID string) (*Envelope, error) {
	if recipientPublicKey == nil {
		return nil, ErrPublicKeyMissing
	}

	ephemeralKey, err := GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealFailed, err)
	}
	defer ephemeralKey.Destroy()

	sharedSecret, err := ephemeralKey.ECDH(recipientPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealFailed, err)
	}

	key, err := deriveKey(sharedSecret, correlationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealFailed, err)
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealFailed, err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: failed to generate nonce: %v", ErrSealFailed, err)
	}

	// Seal appends the authentication tag to the ciphertext
	ciphertextWithTag := aesGCM.Seal(nil, nonce, plaintext, nil)
	tagOffset := len(ciphertextWithTag) - TagSize

	return &Envelope{
		Alg:                Algorithm,
		EphemeralPublicKey: base64.StdEncoding.EncodeToString(ephemeralKey.Public().Bytes(false)),
		Nonce:              base64.StdEncoding.EncodeToString(nonce),
		Ciphertext:         base64.StdEncoding.EncodeToString(ciphertextWithTag[:tagOffset]),
		Tag:                base64.StdEncoding.EncodeToString(ciphertextWithTag[tagOffset:]),
	}, nil
}

// Open decrypts an envelope sealed with Seal, using the receiver's private
// key and the correlation id the sealer bound in.
//
// It mirrors Seal: recompute the shared secret from the envelope's
// ephemeral public key, re-derive the symmetric key under the same
// correlation id, then decrypt-and-verify. A wrong key, a mismatched
// correlation id and a tampered ciphertext are indistinguishable in the
// returned error.
func Open(privateKey *PrivateKey, env *Envelope, correlationID string) ([]byte, error) {
	if privateKey == nil {
		return nil, ErrPrivateKeyMissing
	}
	if env == nil {
		return nil, ErrMalformedEnvelope
	}

	epkBytes, nonce, ciphertext, tag, err := env.decode()
	if err != nil {
		return nil, err
	}

	ephemeralPublicKey, err := parsePublicKeyBytes(epkBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	sharedSecret, err := privateKey.ECDH(ephemeralPublicKey)
	if err != nil {
		return nil, ErrOpenFailed
	}

	key, err := deriveKey(sharedSecret, correlationID)
	if err != nil {
		return nil, ErrOpenFailed
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, ErrOpenFailed
	}

	ciphertextWithTag := make([]byte, 0, len(ciphertext)+len(tag))
	ciphertextWithTag = append(ciphertextWithTag, ciphertext...)
	ciphertextWithTag = append(ciphertextWithTag, tag...)

	plaintext, err := aesGCM.Open(nil, nonce, ciphertextWithTag, nil)
	if err != nil {
		// Deliberately uniform: do not reveal which check failed
		return nil, ErrOpenFailed
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
