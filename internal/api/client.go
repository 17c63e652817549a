package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/config"
)

// RequestDescriptor describes one call. Domain API functions build a fresh
// descriptor per call; descriptors are never shared.
type RequestDescriptor struct {
	Endpoint   string // path relative to the base URL, e.g. "/proposals"
	Method     string
	Body       []byte
	Credential Credential
	Timeout    time.Duration // zero uses the client default
	MaxRetries *int          // nil uses the client default
}

// WithCredential returns a copy of d carrying cred. Body bytes are shared,
// not copied, so a resend is byte-identical.
func (d RequestDescriptor) WithCredential(cred Credential) RequestDescriptor {
	d.Credential = cred
	return d
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	AnonKey     string
	DevMode     bool
	Timeout     time.Duration
	MaxRetries  int
	Backoff     time.Duration
	Compression bool
	HTTPClient  Doer
	Observer    Observer
}

// Client is the generic call façade every domain API goes through.
type Client struct {
	baseURL     string
	headers     HeaderBuilder
	http        Doer
	policy      RetryPolicy
	compression bool
	observer    Observer
}

// NewClient creates a Client. A nil HTTPClient gets a dialer with a short
// connect timeout; a nil Observer discards events.
func NewClient(opts Options) *Client {
	if opts.Observer == nil {
		opts.Observer = NoopObserver{}
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
				// Encoding is negotiated explicitly so br bodies can be handled.
				DisableCompression: true,
			},
		}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		headers: HeaderBuilder{AnonKey: opts.AnonKey, DevMode: opts.DevMode},
		http:    opts.HTTPClient,
		policy: RetryPolicy{
			MaxRetries: opts.MaxRetries,
			Timeout:    opts.Timeout,
			Backoff:    opts.Backoff,
		},
		compression: opts.Compression,
		observer:    opts.Observer,
	}
}

// NewClientFromConfig creates a Client from process configuration.
func NewClientFromConfig(cfg config.Config, observer Observer) *Client {
	return NewClient(Options{
		BaseURL:     cfg.BaseURL,
		AnonKey:     cfg.AnonKey,
		DevMode:     cfg.DevMode,
		Timeout:     cfg.Timeout(),
		MaxRetries:  cfg.MaxRetries,
		Backoff:     cfg.RetryBackoff(),
		Compression: cfg.Compression,
		Observer:    observer,
	})
}

// Observer exposes the client's observer so wrappers report to the same sink.
func (c *Client) Observer() Observer {
	return c.observer
}

// Call performs req and returns the parsed JSON body ("{}" for empty
// bodies). Any failure is returned as an *Error.
func (c *Client) Call(ctx context.Context, req RequestDescriptor) (json.RawMessage, error) {
	start := time.Now()
	body, attempts, ce := c.call(ctx, req)

	event := CallEvent{
		Method:    req.Method,
		Endpoint:  req.Endpoint,
		Regime:    req.Credential.Regime(),
		Attempts:  attempts,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   ce == nil,
	}
	if ce != nil {
		event.Kind = ce.Kind
		event.Status = ce.Status
		event.Message = ce.Message
	}
	c.observer.OnCallComplete(event)

	if ce != nil {
		return nil, ce
	}
	return body, nil
}

func (c *Client) call(ctx context.Context, req RequestDescriptor) (json.RawMessage, int, *Error) {
	header, err := c.headers.Build(req.Credential)
	if err != nil {
		return nil, 0, Classify(nil, err)
	}
	header.Set("Accept", "application/json")
	if req.Body != nil {
		header.Set("Content-Type", "application/json")
	}
	if c.compression {
		header.Set("Accept-Encoding", "br, gzip")
	}

	policy := c.policy
	if req.Timeout > 0 {
		policy.Timeout = req.Timeout
	}
	if req.MaxRetries != nil {
		policy.MaxRetries = *req.MaxRetries
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	resp, err := FetchWithRetry(ctx, c.http, Request{
		Method: method,
		URL:    c.baseURL + req.Endpoint,
		Header: header,
		Body:   req.Body,
	}, policy)
	if err != nil {
		attempts := 0
		var te *TransportError
		if errors.As(err, &te) {
			attempts = te.Attempts
		}
		return nil, attempts, Classify(nil, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.Attempts, Classify(resp, nil)
	}

	parsed, err := ParseJSONResponse(resp)
	if err != nil {
		ce := Classify(nil, err)
		ce.Status = resp.StatusCode
		return nil, resp.Attempts, ce
	}
	return parsed, resp.Attempts, nil
}

// CallList performs a read that returns a JSON array, either bare or under
// envelopeKey. Any failure degrades to an empty slice so read paths stay
// usable; write paths must use Call.
func CallList[T any](ctx context.Context, c *Client, req RequestDescriptor, envelopeKey string) []T {
	raw, err := c.Call(ctx, req)
	if err != nil {
		c.observer.OnReadDegraded(req.Endpoint, Classify(nil, err))
		return []T{}
	}

	if envelopeKey != "" && !isJSONArray(raw) {
		env, err := Decode[map[string]json.RawMessage](raw)
		if err != nil {
			c.observer.OnReadDegraded(req.Endpoint, Classify(nil, err))
			return []T{}
		}
		raw = env[envelopeKey]
		if len(raw) == 0 {
			return []T{}
		}
	}

	items, err := Decode[[]T](raw)
	if err != nil {
		c.observer.OnReadDegraded(req.Endpoint, Classify(nil, err))
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func isJSONArray(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
