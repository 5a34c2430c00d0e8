// Package inspect implements the header inspector: a page that shows the
// request's headers and cookies, and an echo endpoint that writes what it
// receives to the console.
package inspect

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Snapshot is the request metadata shown and echoed by the inspector.
type Snapshot struct {
	Headers map[string]string
	Cookies map[string]string
	Body    any
}

// singletonHeaders keep only their first value when repeated.
var singletonHeaders = map[string]bool{
	"age":                 true,
	"authorization":       true,
	"content-length":      true,
	"content-type":        true,
	"etag":                true,
	"expires":             true,
	"from":                true,
	"host":                true,
	"if-modified-since":   true,
	"if-unmodified-since": true,
	"last-modified":       true,
	"location":            true,
	"max-forwards":        true,
	"proxy-authorization": true,
	"referer":             true,
	"retry-after":         true,
	"server":              true,
	"user-agent":          true,
}

// HeaderMap flattens the request headers into lower-case name -> value.
// Repeated headers are joined with ", ", except cookie which is joined
// with "; " and singleton headers which keep their first value. Host and
// Transfer-Encoding, which net/http moves out of r.Header, are put back.
func HeaderMap(r *http.Request) map[string]string {
	headers := make(map[string]string, len(r.Header)+2)
	if r.Host != "" {
		headers["host"] = r.Host
	}
	if len(r.TransferEncoding) > 0 {
		headers["transfer-encoding"] = strings.Join(r.TransferEncoding, ", ")
	}
	for name, values := range r.Header {
		if len(values) == 0 {
			continue
		}
		key := strings.ToLower(name)
		switch {
		case singletonHeaders[key]:
			headers[key] = values[0]
		case key == "cookie":
			headers[key] = strings.Join(values, "; ")
		default:
			headers[key] = strings.Join(values, ", ")
		}
	}
	return headers
}

// CookieMap parses the Cookie header into name -> value. Pairs are split
// at the first "=", surrounding whitespace and double quotes are removed,
// and pairs without "=" are skipped. The first occurrence of a name wins.
// Percent-encoded values are decoded when they decode cleanly and kept
// verbatim otherwise. Any byte is accepted in a value.
func CookieMap(r *http.Request) map[string]string {
	cookies := make(map[string]string)
	for _, line := range r.Header.Values("Cookie") {
		for _, pair := range strings.Split(line, ";") {
			name, value, ok := strings.Cut(pair, "=")
			if !ok {
				continue
			}
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, seen := cookies[name]; seen {
				continue
			}
			value = strings.TrimSpace(value)
			if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
				value = value[1 : len(value)-1]
			}
			cookies[name] = decodeCookieValue(value)
		}
	}
	return cookies
}

func decodeCookieValue(v string) string {
	if !strings.Contains(v, "%") {
		return v
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return v
	}
	return decoded
}

// NewSnapshot captures headers and cookies of r. The body is left to the
// caller since only the echo endpoint parses it.
func NewSnapshot(r *http.Request) Snapshot {
	return Snapshot{
		Headers: HeaderMap(r),
		Cookies: CookieMap(r),
	}
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
