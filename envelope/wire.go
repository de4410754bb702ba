package envelope

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Envelope is the wire representation of a sealed payload. Binary fields
// are standard base64. Two independent implementations must agree on this
// structure bit for bit; field order is fixed by the struct.
type Envelope struct {
	// Alg identifies the encryption profile. Always "ECDH-ES+A256GCM".
	Alg string `json:"alg"`
	// EphemeralPublicKey is the sealer's one-time public key,
	// a 65-byte uncompressed P-256 point.
	EphemeralPublicKey string `json:"epk"`
	// Nonce is the 12-byte AES-GCM nonce, unique per envelope.
	Nonce string `json:"nonce"`
	// Ciphertext is the encrypted payload, same length as the plaintext.
	Ciphertext string `json:"ciphertext"`
	// Tag is the 16-byte GCM authentication tag.
	Tag string `json:"tag"`
}

// Marshal serializes the envelope to its wire form.
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Parse deserializes and structurally validates a wire envelope. The
// ephemeral point is checked to be on the curve; crypto happens later in
// Open.
func Parse(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	if _, _, _, _, err := e.decode(); err != nil {
		return nil, err
	}

	return &e, nil
}

// decode base64-decodes and size-checks every field.
func (e *Envelope) decode() (epk, nonce, ciphertext, tag []byte, err error) {
	if e.Alg != Algorithm {
		return nil, nil, nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, e.Alg)
	}

	epk, err = base64.StdEncoding.DecodeString(e.EphemeralPublicKey)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: bad epk encoding", ErrMalformedEnvelope)
	}
	if len(epk) != PublicKeyBytes {
		return nil, nil, nil, nil, fmt.Errorf("%w: epk must be %d bytes, got %d", ErrMalformedEnvelope, PublicKeyBytes, len(epk))
	}
	if _, err := parsePublicKeyBytes(epk); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	nonce, err = base64.StdEncoding.DecodeString(e.Nonce)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: bad nonce encoding", ErrMalformedEnvelope)
	}
	if len(nonce) != NonceSize {
		return nil, nil, nil, nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrMalformedEnvelope, NonceSize, len(nonce))
	}

	ciphertext, err = base64.StdEncoding.DecodeString(e.Ciphertext)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: bad ciphertext encoding", ErrMalformedEnvelope)
	}

	tag, err = base64.StdEncoding.DecodeString(e.Tag)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: bad tag encoding", ErrMalformedEnvelope)
	}
	if len(tag) != TagSize {
		return nil, nil, nil, nil, fmt.Errorf("%w: tag must be %d bytes, got %d", ErrMalformedEnvelope, TagSize, len(tag))
	}

	return epk, nonce, ciphertext, tag, nil
}
