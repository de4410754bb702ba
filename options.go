package intersvc

import (
	"fmt"
	"net/http"
)

type queryParam struct {
	key   string
	value string
}

// requestOptions collects per-call settings. The zero value is a plain
// unencrypted GET with no parameters.
type requestOptions struct {
	method        string
	pathParams    map[string]any
	query         []queryParam
	data          any
	headers       map[string]string
	encrypt       bool
	decrypt       bool
	apiPrefix     *string
	correlationID *string
}

func newRequestOptions(opts []Option) *requestOptions {
	o := &requestOptions{method: http.MethodGet}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures a single Request call.
type Option func(*requestOptions)

// WithMethod sets the HTTP method. Defaults to GET.
func WithMethod(method string) Option {
	return func(o *requestOptions) {
		o.method = method
	}
}

// WithData sets the request body. The value is JSON encoded, and sealed
// into an envelope first when the call uses WithEncrypt.
func WithData(data any) Option {
	return func(o *requestOptions) {
		o.data = data
	}
}

// WithPathParams supplies values for the {name} placeholders in the
// endpoint template. Values are stringified with fmt and percent-encoded.
func WithPathParams(params map[string]any) Option {
	return func(o *requestOptions) {
		if o.pathParams == nil {
			o.pathParams = make(map[string]any, len(params))
		}
		for k, v := range params {
			o.pathParams[k] = v
		}
	}
}

// WithPathParam supplies a single placeholder value.
func WithPathParam(name string, value any) Option {
	return func(o *requestOptions) {
		if o.pathParams == nil {
			o.pathParams = make(map[string]any, 1)
		}
		o.pathParams[name] = value
	}
}

// WithQuery appends one query parameter. Parameters keep the order they
// were added in, and repeated keys are kept as repeats.
func WithQuery(key string, value any) Option {
	return func(o *requestOptions) {
		o.query = append(o.query, queryParam{key: key, value: fmt.Sprintf("%v", value)})
	}
}

// WithCorrelationID sets the correlation id for the call. It is appended
// as the correlation_id query parameter and bound into the key derivation
// of any sealed or opened envelope.
func WithCorrelationID(id string) Option {
	return func(o *requestOptions) {
		o.correlationID = &id
	}
}

// WithHeaders merges extra request headers. The API key header is set by
// the client itself and wins over any value given here.
func WithHeaders(headers map[string]string) Option {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithHeader sets a single extra request header.
func WithHeader(key, value string) Option {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, 1)
		}
		o.headers[key] = value
	}
}

// WithEncrypt seals the request body into an authenticated envelope before
// sending. Requires a peer public key on the client.
func WithEncrypt() Option {
	return func(o *requestOptions) {
		o.encrypt = true
	}
}

// WithDecrypt opens the response body as an authenticated envelope after a
// successful call. Requires a private key on the client.
func WithDecrypt() Option {
	return func(o *requestOptions) {
		o.decrypt = true
	}
}

// WithAPIPrefix overrides the client's API prefix for this call only.
func WithAPIPrefix(prefix string) Option {
	return func(o *requestOptions) {
		o.apiPrefix = &prefix
	}
}

// correlation returns the effective correlation id for the call: an
// explicit WithCorrelationID wins, otherwise the first correlation_id
// query parameter, otherwise empty.
func (o *requestOptions) correlation() string {
	if o.correlationID != nil {
		return *o.correlationID
	}
	for _, q := range o.query {
		if q.key == QueryCorrelationID {
			return q.value
		}
	}
	return ""
}

// effectiveQuery returns the query parameters to send, appending the
// explicit correlation id unless it is already present.
func (o *requestOptions) effectiveQuery() []queryParam {
	if o.correlationID == nil {
		return o.query
	}
	for _, q := range o.query {
		if q.key == QueryCorrelationID {
			return o.query
		}
	}
	out := make([]queryParam, 0, len(o.query)+1)
	out = append(out, o.query...)
	out = append(out, queryParam{key: QueryCorrelationID, value: *o.correlationID})
	return out
}
