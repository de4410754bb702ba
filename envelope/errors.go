package envelope

import "errors"

// Key-related errors
var (
	// ErrInvalidPrivateKey indicates that the private key is invalid or malformed
	ErrInvalidPrivateKey = errors.New("envelope: invalid private key")

	// ErrInvalidPublicKey indicates that the public key is invalid or malformed
	ErrInvalidPublicKey = errors.New("envelope: invalid public key")

	// ErrPrivateKeyMissing indicates that no private key was supplied
	ErrPrivateKeyMissing = errors.New("envelope: private key is missing")

	// ErrPublicKeyMissing indicates that no public key was supplied
	ErrPublicKeyMissing = errors.New("envelope: public key is missing")

	// ErrKeyNotOnCurve indicates that the public key point is not on the curve
	ErrKeyNotOnCurve = errors.New("envelope: public key point not on curve")

	// ErrUnsupportedCurve indicates a key on a curve other than P-256
	ErrUnsupportedCurve = errors.New("envelope: unsupported curve")
)

// Seal/Open errors
var (
	// ErrSealFailed indicates a general encryption failure
	ErrSealFailed = errors.New("envelope: seal failed")

	// ErrOpenFailed indicates that an envelope could not be opened. A wrong
	// private key, a mismatched correlation id and a tampered ciphertext all
	// produce this same error: distinguishing them would hand an oracle to
	// an attacker.
	ErrOpenFailed = errors.New("envelope: open failed: authentication failed")

	// ErrMalformedEnvelope indicates that the envelope structure is invalid
	ErrMalformedEnvelope = errors.New("envelope: malformed envelope")

	// ErrUnsupportedAlgorithm indicates an unrecognized algorithm tag
	ErrUnsupportedAlgorithm = errors.New("envelope: unsupported algorithm")
)

// Key derivation errors
var (
	// ErrKeyDerivationFailed indicates that key derivation failed
	ErrKeyDerivationFailed = errors.New("envelope: key derivation failed")
)

// I/O errors
var (
	// ErrInvalidPEMBlock indicates an invalid PEM block format
	ErrInvalidPEMBlock = errors.New("envelope: invalid PEM block")

	// ErrKeyFileRead indicates a failure to read the key file
	ErrKeyFileRead = errors.New("envelope: failed to read key file")
)
