package envelope

import (
	"bytes"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/kochabx/intersvc/envelope/internal"
)

// PublicKey represents a P-256 public key used as the recipient identity
// when sealing envelopes. It wraps an ECDH public key and keeps the curve
// coordinates for serialization.
type PublicKey struct {
	ecdhKey *ecdh.PublicKey
	curve   elliptic.Curve
	x, y    *big.Int
}

// Bytes returns the public key in encoded format.
// If compressed is true, returns 33 bytes (0x02/0x03 + X).
// If compressed is false, returns 65 bytes (0x04 + X + Y).
func (pub *PublicKey) Bytes(compressed bool) []byte {
	if pub.ecdhKey != nil && !compressed {
		return pub.ecdhKey.Bytes() // Already uncompressed format
	}

	xBytes := internal.ZeroPad(pub.x.Bytes(), CurvePointSize)

	if compressed {
		if pub.y.Bit(0) == 0 {
			return append([]byte{CompressedEvenTag}, xBytes...)
		}
		return append([]byte{CompressedOddTag}, xBytes...)
	}

	yBytes := internal.ZeroPad(pub.y.Bytes(), CurvePointSize)
	return bytes.Join([][]byte{{UncompressedPointTag}, xBytes, yBytes}, nil)
}

// Hex returns the public key in hexadecimal encoding.
func (pub *PublicKey) Hex(compressed bool) string {
	return hex.EncodeToString(pub.Bytes(compressed))
}

// Equals compares two public keys using constant-time comparison
// to resist timing attacks.
func (pub *PublicKey) Equals(other *PublicKey) bool {
	if pub == nil || other == nil {
		return pub == other
	}
	if pub.x == nil || pub.y == nil || other.x == nil || other.y == nil {
		return false
	}

	eqX := subtle.ConstantTimeCompare(pub.x.Bytes(), other.x.Bytes()) == 1
	eqY := subtle.ConstantTimeCompare(pub.y.Bytes(), other.y.Bytes()) == 1
	return eqX && eqY
}

// ImportECDSAPublic converts an ECDSA public key to an envelope public key.
// The point is validated against the curve; keys on curves other than P-256
// are rejected.
func ImportECDSAPublic(ecdsaKey *ecdsa.PublicKey) (*PublicKey, error) {
	if ecdsaKey == nil {
		return nil, ErrPublicKeyMissing
	}

	if ecdsaKey.Curve != elliptic.P256() {
		return nil, ErrUnsupportedCurve
	}

	if !ecdsaKey.Curve.IsOnCurve(ecdsaKey.X, ecdsaKey.Y) {
		return nil, ErrKeyNotOnCurve
	}

	xBytes := internal.ZeroPad(ecdsaKey.X.Bytes(), CurvePointSize)
	yBytes := internal.ZeroPad(ecdsaKey.Y.Bytes(), CurvePointSize)
	pubBytes := append([]byte{UncompressedPointTag}, append(xBytes, yBytes...)...)

	curve := ecdh.P256()
	ecdhKey, err := curve.NewPublicKey(pubBytes)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}

	return &PublicKey{
		ecdhKey: ecdhKey,
		curve:   ecdsaKey.Curve,
		x:       new(big.Int).Set(ecdsaKey.X),
		y:       new(big.Int).Set(ecdsaKey.Y),
	}, nil
}

// parsePublicKeyBytes parses a public key from uncompressed point bytes.
func parsePublicKeyBytes(pubKeyBytes []byte) (*PublicKey, error) {
	if len(pubKeyBytes) != PublicKeyBytes {
		return nil, ErrInvalidPublicKey
	}

	if pubKeyBytes[0] != UncompressedPointTag {
		return nil, fmt.Errorf("%w: expected uncompressed format", ErrInvalidPublicKey)
	}

	// NewPublicKey validates that the point is on the curve
	curve := ecdh.P256()
	ecdhKey, err := curve.NewPublicKey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	x := new(big.Int).SetBytes(pubKeyBytes[1:33])
	y := new(big.Int).SetBytes(pubKeyBytes[33:65])

	return &PublicKey{
		ecdhKey: ecdhKey,
		curve:   elliptic.P256(),
		x:       x,
		y:       y,
	}, nil
}
