package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// Kind is the stable failure taxonomy callers branch on.
type Kind string

const (
	KindNetwork          Kind = "network"
	KindTimeout          Kind = "timeout"
	KindHTTPClient       Kind = "http_client"
	KindHTTPServer       Kind = "http_server"
	KindAuthExpired      Kind = "auth_expired"
	KindBusinessConflict Kind = "business_conflict"
	KindUnknown          Kind = "unknown"
)

// Severity is the log level a failure of this kind is reported at. Business
// conflicts are expected outcomes and log at INFO.
func (k Kind) Severity() slog.Level {
	if k == KindBusinessConflict {
		return slog.LevelInfo
	}
	return slog.LevelError
}

// Error is the classified failure shape. Every failed call produces exactly
// one; it is the only error type the façade returns.
type Error struct {
	Kind    Kind
	Status  int // zero when no HTTP response was obtained
	Message string
	Details string
	Code    string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a classified error anywhere in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// conflictVocabulary is matched against error messages. The backend reports
// duplicate submissions only through free text, so this list is a
// compatibility contract until it exposes a dedicated code.
var conflictVocabulary = []string{
	"already submitted",
	"already exists",
	"already applied",
	"duplicate",
}

// conflictCodes are machine-readable codes that mean the same thing.
// 23505 is the Postgres unique_violation code some endpoints pass through.
var conflictCodes = map[string]bool{
	"already_exists":     true,
	"duplicate_proposal": true,
	"conflict":           true,
	"23505":              true,
}

var (
	authSubjects = []string{"jwt", "session", "token"}
	authFaults   = []string{"invalid", "expired", "malformed", "missing", "not found"}
)

// Classify maps a failed exchange to an *Error. Pass the response when one
// was obtained, otherwise the error. Classification is total: any input,
// including nil/nil, yields a non-nil *Error.
func Classify(resp *Response, err error) *Error {
	if err != nil {
		return classifyErr(err)
	}
	if resp == nil {
		return &Error{Kind: KindUnknown, Message: "no response"}
	}
	return classifyResponse(resp)
}

func classifyErr(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}

	var decodeErr *DecodeError
	switch {
	case errors.Is(err, ErrAttemptTimeout), errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindNetwork, Message: "request cancelled", Err: err}
	case errors.As(err, &decodeErr):
		return &Error{Kind: KindUnknown, Message: "unexpected response format", Details: decodeErr.ContentType, Err: err}
	case errors.Is(err, ErrDevAuthDisabled), errors.Is(err, ErrInvalidRequest):
		return &Error{Kind: KindUnknown, Message: err.Error(), Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
		}
		return &Error{Kind: KindNetwork, Message: "network error", Details: err.Error(), Err: err}
	}
	return &Error{Kind: KindUnknown, Message: err.Error(), Err: err}
}

func classifyResponse(resp *Response) *Error {
	body, decErr := decodeContent(resp.Header.Get("Content-Encoding"), resp.Body)
	if decErr != nil {
		body = nil
	}
	parsed, ok := parseErrorBody(body)

	ce := &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	if ok {
		if parsed.message != "" {
			ce.Message = parsed.message
		}
		ce.Details = parsed.details
		ce.Code = parsed.code
	}
	if ce.Message == "" {
		ce.Message = "status " + strconv.Itoa(resp.StatusCode)
	}

	status := resp.StatusCode
	lower := strings.ToLower(ce.Message)
	switch {
	case status == http.StatusUnauthorized && mentionsAuthExpiry(lower, strings.ToLower(ce.Code)):
		ce.Kind = KindAuthExpired
	case status >= 400 && status < 500 && isConflict(lower, strings.ToLower(ce.Code)):
		ce.Kind = KindBusinessConflict
	case status >= 400 && status < 500:
		ce.Kind = KindHTTPClient
	case status >= 500:
		ce.Kind = KindHTTPServer
	default:
		ce.Kind = KindUnknown
	}
	return ce
}

func mentionsAuthExpiry(msg, code string) bool {
	text := msg + " " + code
	return containsAny(text, authSubjects) && containsAny(text, authFaults)
}

func isConflict(msg, code string) bool {
	if code != "" && conflictCodes[code] {
		return true
	}
	return containsAny(msg, conflictVocabulary)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

type parsedErrorBody struct {
	message string
	details string
	code    string
}

// errorEnvelope lists the only fields read from an error body. Unknown
// shapes fall through to the status-derived message.
type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message *string         `json:"message"`
	Details json.RawMessage `json:"details"`
	Code    json.RawMessage `json:"code"`
}

type nestedError struct {
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
	Code    json.RawMessage `json:"code"`
}

func parseErrorBody(body []byte) (parsedErrorBody, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return parsedErrorBody{}, false
	}
	if trimmed[0] != '{' {
		if json.Valid(trimmed) {
			return parsedErrorBody{}, false
		}
		// Plain-text bodies from proxies and gateways.
		return parsedErrorBody{message: snippet(trimmed)}, true
	}

	var env errorEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return parsedErrorBody{}, false
	}

	var out parsedErrorBody
	if len(env.Error) > 0 {
		var s string
		var nested nestedError
		switch {
		case json.Unmarshal(env.Error, &s) == nil:
			out.message = s
		case json.Unmarshal(env.Error, &nested) == nil:
			out.message = nested.Message
			out.details = rawText(nested.Details)
			out.code = rawText(nested.Code)
		}
	}
	if env.Message != nil && out.message == "" {
		out.message = *env.Message
	} else if env.Message != nil && out.details == "" {
		out.details = *env.Message
	}
	if out.details == "" {
		out.details = rawText(env.Details)
	}
	if out.code == "" {
		out.code = rawText(env.Code)
	}

	if out.message == "" && out.details == "" && out.code == "" {
		return parsedErrorBody{}, false
	}
	return out, true
}

// rawText renders a JSON scalar as plain text and anything else compactly.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
