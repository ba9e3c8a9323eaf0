package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quantrail/brokergate/internal/core"
	"go.uber.org/zap"
)

// Auth header names of the upstream REST contract.
const (
	headerKeyID     = "APCA-API-KEY-ID"
	headerSecretKey = "APCA-API-SECRET-KEY"
)

// RemoteError is a non-2xx response from the brokerage. The status and body
// are carried verbatim; the gateway does not interpret upstream semantics
// and never retries. Matches core.ErrRemote under errors.Is.
type RemoteError struct {
	Mode   core.Mode
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("brokerage returned %d (%s mode): %s", e.Status, e.Mode, e.Body)
}

func (e *RemoteError) Unwrap() error {
	return core.ErrRemote
}

// TransportError is a network or timeout failure before any response was
// received. Matches core.ErrTransport under errors.Is.
type TransportError struct {
	Mode core.Mode
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed (%s mode): %v", e.Mode, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{core.ErrTransport, e.Err}
}

// transport abstracts the HTTP client so tests can count or fake calls.
type transport interface {
	Do(ctx context.Context, method, rawurl string, creds Credentials, body, out any) error
}

// Client is the HTTP transport to the brokerage. It attaches the mode-scoped
// auth headers, maps 204 to an empty success, surfaces non-2xx responses as
// RemoteError, and performs no automatic retries: order placement is
// idempotency-sensitive and a blind retry risks duplicate execution.
type Client struct {
	http *http.Client
	log  *zap.Logger
}

// NewClient creates a transport with the given request timeout.
func NewClient(timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// Do issues one request. body, when non-nil, is JSON-encoded; out, when
// non-nil, receives the decoded JSON response. A 204 (or any 2xx with out
// nil) is an empty success.
func (c *Client) Do(ctx context.Context, method, rawurl string, creds Credentials, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return core.WrapError(core.ErrOrderInvalid, fmt.Errorf("encoding request body: %w", err))
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawurl, reader)
	if err != nil {
		return &TransportError{Mode: creds.Mode, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set(headerKeyID, creds.APIKey)
	req.Header.Set(headerSecretKey, creds.SecretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Mode: creds.Mode, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("upstream request",
		zap.String("method", method),
		zap.String("mode", creds.Mode.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &RemoteError{Mode: creds.Mode, Status: resp.StatusCode, Body: string(raw)}
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return core.WrapError(core.ErrMalformedData, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
