package errors

// Constructors for the SDK's failure kinds

// URLBuild reports an endpoint template or parameter mismatch.
func URLBuild(format string, args ...any) *Error {
	return New(KindURLBuild, format, args...)
}

// Encryption reports missing or invalid key material, a malformed envelope,
// or an authentication failure during open. The message must stay uniform
// across those causes.
func Encryption(format string, args ...any) *Error {
	return New(KindEncryption, format, args...)
}

// Authentication reports an HTTP 401/403 from the counterpart.
func Authentication(format string, args ...any) *Error {
	return New(KindAuthentication, format, args...)
}

// Request reports a transport failure or a non-2xx status after retries.
func Request(format string, args ...any) *Error {
	return New(KindRequest, format, args...)
}
