package envelope

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"math/big"

	"github.com/kochabx/intersvc/envelope/internal"
)

// PrivateKey represents a P-256 private key used to open envelopes sealed
// for this service. It wraps an ECDH private key for constant-time key
// agreement.
type PrivateKey struct {
	publicKey *PublicKey
	ecdhKey   *ecdh.PrivateKey
	d         *big.Int // Keep for serialization
}

// Public returns the public key corresponding to this private key.
func (priv *PrivateKey) Public() *PublicKey {
	return priv.publicKey
}

// Bytes returns the private key as a byte slice (big-endian representation of D).
func (priv *PrivateKey) Bytes() []byte {
	if priv.d == nil {
		return nil
	}
	return priv.d.Bytes()
}

// Hex returns the private key in hexadecimal encoding.
func (priv *PrivateKey) Hex() string {
	return hex.EncodeToString(priv.Bytes())
}

// ECDH derives the raw shared secret between this private key and the given
// public key. The result is the x-coordinate of the shared point and must
// not be used directly as an encryption key; Seal and Open run it through
// the correlation-bound KDF.
func (priv *PrivateKey) ECDH(publicKey *PublicKey) ([]byte, error) {
	if publicKey == nil {
		return nil, ErrPublicKeyMissing
	}

	sharedSecret, err := priv.ecdhKey.ECDH(publicKey.ecdhKey)
	if err != nil {
		return nil, ErrKeyDerivationFailed
	}

	return sharedSecret, nil
}

// Equals compares two private keys using constant-time comparison
// to resist timing attacks.
func (priv *PrivateKey) Equals(other *PrivateKey) bool {
	if priv == nil || other == nil {
		return priv == other
	}
	if priv.d == nil || other.d == nil {
		return priv.d == other.d
	}
	return subtle.ConstantTimeCompare(priv.d.Bytes(), other.d.Bytes()) == 1
}

// Destroy clears the private key material from memory.
// After calling this method, the private key should not be used.
func (priv *PrivateKey) Destroy() {
	if priv.d != nil {
		priv.d.SetInt64(0)
		priv.d = nil
	}
	// crypto/ecdh doesn't expose its key material for zeroing,
	// but dropping the reference lets GC reclaim it
	priv.ecdhKey = nil
}

// ImportECDSA converts an ECDSA private key to an envelope private key.
func ImportECDSA(ecdsaKey *ecdsa.PrivateKey) (*PrivateKey, error) {
	if ecdsaKey == nil {
		return nil, ErrPrivateKeyMissing
	}

	publicKey, err := ImportECDSAPublic(&ecdsaKey.PublicKey)
	if err != nil {
		return nil, err
	}

	keyBytes := internal.ZeroPad(ecdsaKey.D.Bytes(), CurvePointSize)
	curve := ecdh.P256()
	ecdhKey, err := curve.NewPrivateKey(keyBytes)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}

	return &PrivateKey{
		publicKey: publicKey,
		ecdhKey:   ecdhKey,
		d:         new(big.Int).Set(ecdsaKey.D),
	}, nil
}

// GenerateKey generates a new P-256 key pair.
func GenerateKey() (*PrivateKey, error) {
	curve := ecdh.P256()
	ecdhKey, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	ecdhPubKey := ecdhKey.PublicKey()
	pubBytes := ecdhPubKey.Bytes()
	if len(pubBytes) != PublicKeyBytes {
		return nil, ErrInvalidPublicKey
	}

	publicKey := &PublicKey{
		ecdhKey: ecdhPubKey,
		curve:   elliptic.P256(),
		x:       new(big.Int).SetBytes(pubBytes[1:33]),
		y:       new(big.Int).SetBytes(pubBytes[33:65]),
	}

	privBytes := ecdhKey.Bytes()
	d := new(big.Int).SetBytes(privBytes)

	return &PrivateKey{
		publicKey: publicKey,
		ecdhKey:   ecdhKey,
		d:         d,
	}, nil
}
