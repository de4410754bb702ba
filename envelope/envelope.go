// Package envelope implements the authenticated-encryption envelope used by
// the inter-service client to protect request and response payloads.
//
// The scheme is a fixed-profile hybrid encryption (ECIES-style) with no
// negotiation:
//   - NIST P-256 elliptic curve
//   - ECDH key agreement (using crypto/ecdh for constant-time operations)
//   - HKDF-SHA256 for key derivation, bound to a caller-supplied
//     correlation id
//   - AES-256-GCM for authenticated encryption
//
// A fresh ephemeral key pair is generated for every Seal, so each derived
// symmetric key is used exactly once. The correlation id is mixed into the
// HKDF info alongside a fixed protocol label: two envelopes sealed under
// different correlation ids derive unrelated keys even with identical EC
// keys, and an envelope cannot be opened without supplying the same id the
// sealer used. The id itself is not secret and travels out-of-band (as a
// request query parameter).
//
// Example usage:
//
//	// Load the counterpart's public key
//	peer, err := envelope.ParsePublicKeyPEM(peerPEM)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Seal a payload for one logical exchange
//	env, err := envelope.Seal(peer, payload, "order-7421")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	wire, _ := env.Marshal()
//
//	// The receiving side opens with its private key and the same id
//	env2, err := envelope.Parse(wire)
//	plaintext, err := envelope.Open(priv, env2, "order-7421")
//
// For key persistence:
//
//	err := envelope.GenerateKeyPair(
//	    envelope.WithDirpath("./keys"),
//	    envelope.WithPrivateKeyFilename("service_key.pem"),
//	)
//	priv, err := envelope.LoadPrivateKey("./keys/service_key.pem")
//	pub, err := envelope.LoadPublicKey("./keys/public.pem")
package envelope
