package inspect

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// MaxBodyBytes is the largest JSON body the echo endpoint accepts.
const MaxBodyBytes = 100 << 10

// BodyError is a request body rejection. Status is the HTTP status the
// client receives.
type BodyError struct {
	Status int
	Err    error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("%s: %v", http.StatusText(e.Status), e.Err)
}

func (e *BodyError) Unwrap() error {
	return e.Err
}

func badBody(status int, format string, args ...any) *BodyError {
	return &BodyError{Status: status, Err: fmt.Errorf(format, args...)}
}

// emptyObject is the body reported when nothing was parsed.
func emptyObject() map[string]any {
	return map[string]any{}
}

// ParseJSONBody reads r's body the way a JSON body parser middleware does:
// non-JSON requests and empty bodies yield an empty object, only objects
// and arrays are accepted at the top level, and numbers are kept verbatim.
// gzip and deflate bodies are inflated; MaxBodyBytes applies to the
// inflated size.
func ParseJSONBody(w http.ResponseWriter, r *http.Request) (any, error) {
	if r.Body == nil || !isJSONRequest(r) {
		return emptyObject(), nil
	}

	_, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if cs, ok := params["charset"]; ok && !strings.EqualFold(cs, "utf-8") {
		return nil, badBody(http.StatusUnsupportedMediaType, "unsupported charset %q", cs)
	}

	raw := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	content, err := decodeContent(raw, r.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, err
	}
	defer content.Close()

	data, err := io.ReadAll(io.LimitReader(content, MaxBodyBytes+1))
	if err != nil {
		return nil, readError(err)
	}
	if len(data) > MaxBodyBytes {
		return nil, badBody(http.StatusRequestEntityTooLarge, "body exceeds %d bytes", MaxBodyBytes)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return emptyObject(), nil
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, badBody(http.StatusBadRequest, "body must be a JSON object or array")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, badBody(http.StatusBadRequest, "invalid json body: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, badBody(http.StatusBadRequest, "unexpected data after json body")
	}
	return body, nil
}

// decodeContent wraps body in a decompressor for the given Content-Encoding.
func decodeContent(body io.ReadCloser, encoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, nil
	case "gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, readError(err)
		}
		return zr, nil
	case "deflate":
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, readError(err)
		}
		return zr, nil
	default:
		return nil, badBody(http.StatusUnsupportedMediaType, "unsupported content encoding %q", encoding)
	}
}

func readError(err error) *BodyError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return badBody(http.StatusRequestEntityTooLarge, "body exceeds %d bytes", MaxBodyBytes)
	}
	return badBody(http.StatusBadRequest, "read body: %w", err)
}

func isJSONRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}
