package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorKind classifies provider failures for retry decisions.
type ErrorKind int

const (
	// KindTransient covers connection-level failures, HTTP 429 and 5xx.
	// Transient failures are retried up to the client's attempt bound.
	KindTransient ErrorKind = iota
	// KindPermanent covers other 4xx responses and malformed credentials.
	KindPermanent
	// KindUpstream covers responses whose payload carries a non-success
	// result code (e.g. an invalid key message). Never retried.
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	case KindUpstream:
		return "upstream"
	}
	return "unknown"
}

const bodyExcerptLimit = 512

// ErrNoMatch is returned when a provider answered but had no usable result
// for the query.
var ErrNoMatch = errors.New("provider: no match for query")

// Error is a structured provider failure. It keeps the HTTP status, the
// upstream result code/message when the payload could be parsed, and a
// truncated raw-body excerpt for diagnostics.
type Error struct {
	Kind        ErrorKind
	StatusCode  int
	ResultCode  string
	ResultMsg   string
	BodyExcerpt string
	cause       error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "provider %s error", e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.ResultCode != "" {
		fmt.Fprintf(&b, ": result %s", e.ResultCode)
		if e.ResultMsg != "" {
			fmt.Fprintf(&b, " / %s", e.ResultMsg)
		}
	} else if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

// Retryable reports whether another attempt could succeed.
func (e *Error) Retryable() bool { return e.Kind == KindTransient }

func excerpt(body []byte) string {
	if len(body) > bodyExcerptLimit {
		body = body[:bodyExcerptLimit]
	}
	return string(body)
}

// NormalizeServiceKey prepares a data portal credential for use as a query
// parameter. The portal issues both decoded and URL-encoded keys; an encoded
// key passed through url.Values gets double-encoded and rejected upstream
// with a 403, so a key containing a percent marker is decoded exactly once.
// Decoded keys pass through unchanged, which makes the operation idempotent.
func NormalizeServiceKey(raw string) string {
	key := strings.TrimSpace(raw)
	if !strings.Contains(key, "%") {
		return key
	}
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return key
	}
	return decoded
}

// Client issues HTTP GETs against one external data source with a bounded
// retry loop. It holds no mutable state beyond the underlying http.Client.
type Client struct {
	httpClient *http.Client
	logger     *logrus.Logger
	maxRetries int
	retryDelay time.Duration

	// ParseUpstream extracts the upstream result code and message from an
	// error payload, when the source wraps errors in a parseable envelope.
	// Optional; used to enrich non-2xx errors.
	ParseUpstream func(body []byte) (code, msg string, ok bool)
}

// NewClient creates a provider client. A nil logger falls back to a JSON
// stdout logger.
func NewClient(timeout time.Duration, maxRetries int, retryDelay time.Duration, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Get fetches rawURL with the given query parameters and headers. Transient
// failures are retried with a short fixed delay between attempts; permanent
// and upstream failures surface immediately.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"url":     rawURL,
				"attempt": attempt,
			}).Debug("Retrying provider request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		body, err := c.do(ctx, rawURL, params, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var perr *Error
		if errors.As(err, &perr) && !perr.Retryable() {
			return nil, err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, rawURL string, params url.Values, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindPermanent, cause: err}
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", "bunyang-server/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransient, cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransient, StatusCode: resp.StatusCode, cause: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	perr := &Error{
		Kind:        classifyStatus(resp.StatusCode),
		StatusCode:  resp.StatusCode,
		BodyExcerpt: excerpt(body),
	}
	// Some sources return an error envelope in the payload even on HTTP
	// failures; surface its code and message when available.
	if c.ParseUpstream != nil {
		if code, msg, ok := c.ParseUpstream(body); ok {
			perr.Kind = KindUpstream
			perr.ResultCode = code
			perr.ResultMsg = msg
		}
	}
	c.logger.WithFields(logrus.Fields{
		"url":    rawURL,
		"status": resp.StatusCode,
		"kind":   perr.Kind.String(),
	}).Warn("Provider request failed")
	return nil, perr
}

func classifyStatus(status int) ErrorKind {
	if status == http.StatusTooManyRequests || status >= 500 {
		return KindTransient
	}
	return KindPermanent
}
