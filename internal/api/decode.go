package api

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gabriel-vasile/mimetype"
)

const snippetLen = 120

// DecodeError reports a body that could not be parsed as JSON. ContentType
// is sniffed from the bytes, not taken from the server's header.
type DecodeError struct {
	ContentType string
	Snippet     string
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response (%s): %v", e.ContentType, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ParseJSONResponse returns the response body as raw JSON. An empty or
// whitespace-only body yields "{}". Bodies with Content-Encoding br or gzip
// are decoded first.
func ParseJSONResponse(resp *Response) (json.RawMessage, error) {
	body, err := decodeContent(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, &DecodeError{ContentType: "application/octet-stream", Err: err}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(trimmed) {
		return nil, &DecodeError{
			ContentType: mimetype.Detect(trimmed).String(),
			Snippet:     snippet(trimmed),
			Err:         ErrMalformedBody,
		}
	}
	return json.RawMessage(trimmed), nil
}

// Decode unmarshals a parsed body into T.
func Decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &DecodeError{ContentType: "application/json", Snippet: snippet(raw), Err: fmt.Errorf("%w: %v", ErrMalformedBody, err)}
	}
	return out, nil
}

func decodeContent(encoding string, body []byte) ([]byte, error) {
	var r io.Reader
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, nil
	case "br":
		r = brotli.NewReader(bytes.NewReader(body))
	case "gzip":
		gz, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("opening gzip body: %w", err)
		}
		defer gz.Close()
		r = gz
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
	out, err := readLimited(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s body: %w", encoding, err)
	}
	return out, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > snippetLen {
		return s[:snippetLen] + "..."
	}
	return s
}
