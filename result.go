package intersvc

import (
	"encoding/json"

	"github.com/kochabx/intersvc/errors"
)

// Result is the uniform outcome of a Request call. Exactly one of the two
// ends is ever populated: on success Data holds the (decrypted) response
// body; on any failure Err describes what went wrong and Data is nil.
type Result struct {
	// StatusCode is the HTTP status of the final attempt, or zero when the
	// call failed before reaching the network.
	StatusCode int

	// Data is the raw response body. Already decrypted when the call used
	// WithDecrypt.
	Data json.RawMessage

	// Err is nil on success.
	Err *errors.Error
}

// OK reports whether the call succeeded.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Decode unmarshals the response body into v. It returns the call's error
// when the call failed, and does nothing on an empty body.
func (r *Result) Decode(v any) error {
	if r.Err != nil {
		return r.Err
	}
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

func failure(statusCode int, err *errors.Error) *Result {
	return &Result{StatusCode: statusCode, Err: err}
}
