package envelope

// Curve parameters for NIST P-256
const (
	// CurvePointSize is the size in bytes of each coordinate (X or Y) on the P-256 curve
	CurvePointSize = 32

	// Point compression prefixes
	UncompressedPointTag = 0x04 // Uncompressed point format: 0x04 || X || Y
	CompressedEvenTag    = 0x02 // Compressed point with even Y coordinate
	CompressedOddTag     = 0x03 // Compressed point with odd Y coordinate
)

// Cipher parameters
const (
	// PublicKeyBytes is the size of an uncompressed public key in bytes
	// Format: [tag:1][X:32][Y:32]
	PublicKeyBytes = 1 + CurvePointSize + CurvePointSize // 65 bytes

	// KeySize is the size of the AES-256 symmetric key
	KeySize = 32 // 256 bits

	// NonceSize is the size of the AES-GCM nonce
	NonceSize = 12 // 96 bits

	// TagSize is the size of the AES-GCM authentication tag
	TagSize = 16 // 128 bits
)

// Protocol identity
const (
	// Algorithm is the wire algorithm tag. It is the only profile this
	// package speaks; envelopes carrying anything else are rejected.
	Algorithm = "ECDH-ES+A256GCM"

	// kdfLabel is the fixed protocol label mixed into HKDF alongside the
	// correlation id. Changing it breaks interoperability with every
	// deployed counterpart.
	kdfLabel = "intersvc/v1"
)
