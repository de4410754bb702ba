package intersvc

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/kochabx/intersvc/errors"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}/]+)\}`)

// buildURL assembles the final request URL from the base URL, the API
// prefix, the endpoint template and the call parameters.
//
// Placeholders in the template use {name} syntax and are replaced with the
// percent-encoded string form of the matching path parameter. A placeholder
// without a parameter, or a placeholder appearing twice, is a hard error:
// a half-expanded URL must never reach the network.
func buildURL(baseURL, prefix, endpoint string, pathParams map[string]any, query []queryParam) (string, *errors.Error) {
	path, err := expandEndpoint(endpoint, pathParams)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	if p := strings.Trim(prefix, "/"); p != "" {
		b.WriteByte('/')
		b.WriteString(p)
	}
	if path != "" {
		b.WriteByte('/')
		b.WriteString(path)
	}

	if len(query) > 0 {
		b.WriteByte('?')
		for i, q := range query {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(q.key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(q.value))
		}
	}

	return b.String(), nil
}

// expandEndpoint substitutes {name} placeholders in the endpoint template
// and returns the expanded path with leading slashes trimmed.
func expandEndpoint(endpoint string, pathParams map[string]any) (string, *errors.Error) {
	seen := make(map[string]struct{})

	var expandErr *errors.Error
	expanded := placeholderPattern.ReplaceAllStringFunc(endpoint, func(match string) string {
		if expandErr != nil {
			return match
		}
		name := match[1 : len(match)-1]
		if _, dup := seen[name]; dup {
			expandErr = errors.URLBuild("duplicate path parameter {%s} in endpoint %q", name, endpoint)
			return match
		}
		seen[name] = struct{}{}

		value, ok := pathParams[name]
		if !ok {
			expandErr = errors.URLBuild("missing path parameter {%s} for endpoint %q", name, endpoint)
			return match
		}
		return url.PathEscape(fmt.Sprintf("%v", value))
	})
	if expandErr != nil {
		return "", expandErr
	}

	return strings.TrimLeft(expanded, "/"), nil
}
