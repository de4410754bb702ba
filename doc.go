// Package intersvc is a generic HTTP client for service-to-service
// communication, with optional end-to-end encryption of request and
// response payloads.
//
// Every call goes through a single Request method: the endpoint template is
// expanded with path parameters, the correlation id travels as a query
// parameter, transient failures are retried, and the outcome always comes
// back as a Result rather than an error — callers switch on the failure
// kind instead of unwrapping panics or sentinel chains.
//
// When a call opts into encryption, the JSON body is sealed into an
// authenticated envelope (P-256 ECDH + HKDF-SHA256 + AES-256-GCM, see the
// envelope package) bound to the call's correlation id before anything
// touches the network; an encryption failure means nothing is sent.
//
// Basic usage:
//
//	client, err := intersvc.New(intersvc.Config{
//	    BaseURL: "https://autologin.example.com",
//	    APIKey:  "service-api-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res := client.Request(ctx, "users/{user_id}",
//	    intersvc.WithPathParam("user_id", 123),
//	)
//	if res.OK() {
//	    var user User
//	    _ = res.Decode(&user)
//	}
//
// With encryption:
//
//	client, err := intersvc.New(intersvc.Config{
//	    BaseURL:       "https://autologin.example.com",
//	    APIKey:        "service-api-key",
//	    PeerPublicKey: peerPEM,  // seals outgoing requests
//	    PrivateKey:    ownPEM,   // opens incoming responses
//	})
//
//	res := client.Request(ctx, "credentials/store",
//	    intersvc.WithMethod(http.MethodPost),
//	    intersvc.WithData(credentials),
//	    intersvc.WithEncrypt(),
//	    intersvc.WithCorrelationID("store-creds-001"),
//	)
package intersvc
