package envelope

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// deriveKey derives the AES-256 key for one envelope from the raw ECDH
// shared secret using HKDF-SHA256.
//
// The HKDF info is the fixed protocol label followed by a zero byte and the
// correlation id. Binding the id here scopes the derived key to a single
// logical exchange: the sealer and the opener must supply the same id, and
// keys derived under different ids are unrelated even when the EC keys are
// identical. Both sides must agree on this layout byte for byte.
func deriveKey(sharedSecret []byte, correlationID string) ([]byte, error) {
	info := make([]byte, 0, len(kdfLabel)+1+len(correlationID))
	info = append(info, kdfLabel...)
	info = append(info, 0x00)
	info = append(info, correlationID...)

	kdfReader := hkdf.New(sha256.New, sharedSecret, nil, info)

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(kdfReader, key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}

	return key, nil
}
