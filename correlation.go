package intersvc

import "github.com/google/uuid"

// NewCorrelationID returns a fresh random correlation id. Callers that do
// not already carry one from an upstream request can mint one here and pass
// it through WithCorrelationID.
func NewCorrelationID() string {
	return uuid.NewString()
}
