package intersvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/intersvc/errors"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		prefix   string
		endpoint string
		params   map[string]any
		query    []queryParam
		want     string
	}{
		{
			name:     "plain endpoint with default prefix",
			baseURL:  "https://svc.test",
			prefix:   "/api/v1/inter-service",
			endpoint: "health",
			want:     "https://svc.test/api/v1/inter-service/health",
		},
		{
			name:     "trailing and leading slashes collapse",
			baseURL:  "https://svc.test/",
			prefix:   "/api/v1/inter-service/",
			endpoint: "/health",
			want:     "https://svc.test/api/v1/inter-service/health",
		},
		{
			name:     "empty prefix",
			baseURL:  "https://svc.test",
			prefix:   "/",
			endpoint: "health",
			want:     "https://svc.test/health",
		},
		{
			name:     "integer path parameter",
			baseURL:  "https://svc.test",
			prefix:   "/api/v1/inter-service",
			endpoint: "users/{user_id}",
			params:   map[string]any{"user_id": 123},
			want:     "https://svc.test/api/v1/inter-service/users/123",
		},
		{
			name:     "multiple placeholders",
			baseURL:  "https://svc.test",
			prefix:   "/api/v1/inter-service",
			endpoint: "users/{user_id}/sessions/{session_id}",
			params:   map[string]any{"user_id": 7, "session_id": "abc"},
			want:     "https://svc.test/api/v1/inter-service/users/7/sessions/abc",
		},
		{
			name:     "path value is percent encoded",
			baseURL:  "https://svc.test",
			prefix:   "/api/v1/inter-service",
			endpoint: "files/{name}",
			params:   map[string]any{"name": "a b/c"},
			want:     "https://svc.test/api/v1/inter-service/files/a%20b%2Fc",
		},
		{
			name:     "query parameters keep insertion order",
			baseURL:  "https://svc.test",
			prefix:   "/api/v1/inter-service",
			endpoint: "search",
			query: []queryParam{
				{key: "z", value: "1"},
				{key: "a", value: "2"},
				{key: "z", value: "3"},
			},
			want: "https://svc.test/api/v1/inter-service/search?z=1&a=2&z=3",
		},
		{
			name:     "query values are escaped",
			baseURL:  "https://svc.test",
			prefix:   "/api/v1/inter-service",
			endpoint: "search",
			query: []queryParam{
				{key: "q", value: "a b&c"},
			},
			want: "https://svc.test/api/v1/inter-service/search?q=a+b%26c",
		},
		{
			name:     "extra path parameters are ignored",
			baseURL:  "https://svc.test",
			prefix:   "/api/v1/inter-service",
			endpoint: "users/{user_id}",
			params:   map[string]any{"user_id": 1, "unused": "x"},
			want:     "https://svc.test/api/v1/inter-service/users/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildURL(tt.baseURL, tt.prefix, tt.endpoint, tt.params, tt.query)
			require.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildURLMissingParam(t *testing.T) {
	_, err := buildURL("https://svc.test", "/api/v1/inter-service", "users/{user_id}", nil, nil)
	require.NotNil(t, err)
	assert.Equal(t, errors.KindURLBuild, err.Kind)
	assert.Contains(t, err.Message, "user_id")
}

func TestBuildURLDuplicatePlaceholder(t *testing.T) {
	_, err := buildURL("https://svc.test", "/api/v1/inter-service", "pairs/{id}/{id}",
		map[string]any{"id": 1}, nil)
	require.NotNil(t, err)
	assert.Equal(t, errors.KindURLBuild, err.Kind)
	assert.Contains(t, err.Message, "duplicate")
}
