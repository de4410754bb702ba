package envelope

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
)

// ParsePrivateKeyPEM parses a P-256 private key from PEM text. Both PKCS#8
// ("PRIVATE KEY") and SEC1 ("EC PRIVATE KEY") encodings are accepted. Keys
// on any other curve are rejected here, at load time.
func ParsePrivateKeyPEM(pemBytes []byte) (*PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}

	var ecdsaKey *ecdsa.PrivateKey

	switch block.Type {
	case "EC PRIVATE KEY":
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
		}
		ecdsaKey = key
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
		}
		ec, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an EC key", ErrInvalidPrivateKey)
		}
		ecdsaKey = ec
	default:
		return nil, fmt.Errorf("%w: unexpected block type %q", ErrInvalidPEMBlock, block.Type)
	}

	return ImportECDSA(ecdsaKey)
}

// ParsePublicKeyPEM parses a P-256 public key from PEM text in PKIX
// ("PUBLIC KEY") encoding.
func ParsePublicKeyPEM(pemBytes []byte) (*PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}

	publicKeyInterface, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	ecdsaKey, ok := publicKeyInterface.(*ecdsa.PublicKey)
	if !ok {
		return nil, ErrInvalidPublicKey
	}

	return ImportECDSAPublic(ecdsaKey)
}

// KeyOption contains options for key generation and file I/O.
type KeyOption struct {
	Dirpath            string
	PrivateKeyFilename string
	PublicKeyFilename  string
}

// WithDirpath sets the directory path for key file operations.
func WithDirpath(dirpath string) func(*KeyOption) {
	return func(o *KeyOption) {
		o.Dirpath = dirpath
	}
}

// WithPrivateKeyFilename sets the filename for the private key.
func WithPrivateKeyFilename(filename string) func(*KeyOption) {
	return func(o *KeyOption) {
		o.PrivateKeyFilename = filename
	}
}

// WithPublicKeyFilename sets the filename for the public key.
func WithPublicKeyFilename(filename string) func(*KeyOption) {
	return func(o *KeyOption) {
		o.PublicKeyFilename = filename
	}
}

// GenerateKeyPair generates a new P-256 key pair and saves it to the
// specified directory in PEM format for easy interoperability.
func GenerateKeyPair(opts ...func(*KeyOption)) error {
	option := &KeyOption{
		Dirpath:            ".",
		PrivateKeyFilename: "private.pem",
		PublicKeyFilename:  "public.pem",
	}

	for _, opt := range opts {
		opt(option)
	}

	privateKey, err := GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	defer privateKey.Destroy()

	privateKeyPath := filepath.Join(option.Dirpath, option.PrivateKeyFilename)
	if err := SavePrivateKey(privateKey, privateKeyPath); err != nil {
		return fmt.Errorf("failed to save private key: %w", err)
	}

	publicKeyPath := filepath.Join(option.Dirpath, option.PublicKeyFilename)
	if err := SavePublicKey(privateKey.Public(), publicKeyPath); err != nil {
		return fmt.Errorf("failed to save public key: %w", err)
	}

	return nil
}

// MarshalPrivateKeyPEM encodes a private key to PKCS#8 PEM text.
func MarshalPrivateKeyPEM(privateKey *PrivateKey) ([]byte, error) {
	if privateKey == nil {
		return nil, ErrPrivateKeyMissing
	}

	tempKey := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{
			Curve: elliptic.P256(),
			X:     privateKey.publicKey.x,
			Y:     privateKey.publicKey.y,
		},
		D: privateKey.d,
	}

	privateKeyBytes, err := x509.MarshalPKCS8PrivateKey(tempKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: privateKeyBytes,
	}), nil
}

// MarshalPublicKeyPEM encodes a public key to PKIX PEM text.
func MarshalPublicKeyPEM(publicKey *PublicKey) ([]byte, error) {
	if publicKey == nil {
		return nil, ErrPublicKeyMissing
	}

	tempKey := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     publicKey.x,
		Y:     publicKey.y,
	}

	publicKeyBytes, err := x509.MarshalPKIXPublicKey(tempKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicKeyBytes,
	}), nil
}

// SavePrivateKey saves a private key to a file in PEM format.
func SavePrivateKey(privateKey *PrivateKey, path string) error {
	pemBytes, err := MarshalPrivateKeyPEM(privateKey)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, pemBytes, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyFileRead, err)
	}

	return nil
}

// SavePublicKey saves a public key to a file in PEM format.
func SavePublicKey(publicKey *PublicKey, path string) error {
	pemBytes, err := MarshalPublicKeyPEM(publicKey)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, pemBytes, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyFileRead, err)
	}

	return nil
}

// LoadPrivateKey loads a private key from a PEM file.
func LoadPrivateKey(path string) (*PrivateKey, error) {
	privateKeyBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFileRead, err)
	}

	return ParsePrivateKeyPEM(privateKeyBytes)
}

// LoadPublicKey loads a public key from a PEM file.
func LoadPublicKey(path string) (*PublicKey, error) {
	publicKeyBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFileRead, err)
	}

	return ParsePublicKeyPEM(publicKeyBytes)
}
