package traefik

import (
	"fmt"
)

// QueryParamsToHeaderMw creates a middleware that converts query parameters to headers.
// Example:
//
//	For queryParams ["version"]
//	A request with "?version=v1" will add header "X-version: v1"
func QueryParamsToHeaderMw(queryParams []string) Middleware {
	headers := make(map[string]string)
	for _, param := range queryParams {
		headers[fmt.Sprintf("X-%s", param)] = fmt.Sprintf("{{ .Query.%s }}", param)
	}

	return Middleware{
		Headers: &Headers{
			CustomRequestHeaders: headers,
		},
	}
}

// RequestHeadersMw creates a middleware that adds fixed headers to every
// forwarded request.
func RequestHeadersMw(headers map[string]string) Middleware {
	custom := make(map[string]string, len(headers))
	for name, value := range headers {
		custom[name] = value
	}

	return Middleware{
		Headers: &Headers{
			CustomRequestHeaders: custom,
		},
	}
}

// StripPrefixMw removes prefix from the request path before forwarding.
// Traefik sets X-Forwarded-Prefix to the removed part.
func StripPrefixMw(prefix string) Middleware {
	return Middleware{
		StripPrefix: &StripPrefix{
			Prefixes: []string{prefix},
		},
	}
}
