package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Webzensify/uber-web/internal/domain"
)

// Client talks to the fleet backend REST API. The backend owns all business
// logic (OTP issuance and verification, persistence, authorization); this
// client only ships request shapes and decodes response shapes.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// Credentials is the session-derived credential set attached to
// authenticated calls. Resource calls carry the legacy `authtoken` and
// `role` headers next to the bearer header; the backend expects both
// conventions and neither can be dropped.
type Credentials struct {
	Token string
	Role  domain.Role
}

// Error is the backend failure envelope, `{"msg": "..."}`.
type Error struct {
	Status int
	Msg    string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// Message extracts the backend-supplied message from err verbatim, falling
// back to the given generic message when the backend supplied none.
func Message(err error, fallback string) string {
	var be *Error
	if errors.As(err, &be) && be.Msg != "" {
		return be.Msg
	}
	return fallback
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any, creds *Credentials) error {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: marshal request: %w", err)
		}
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds != nil {
		req.Header.Set("Authorization", "Bearer "+creds.Token)
		req.Header.Set("authtoken", creds.Token)
		req.Header.Set("role", string(creds.Role))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Msg string `json:"msg"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		c.logger.Warn("backend call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("msg", envelope.Msg),
		)
		return &Error{Status: resp.StatusCode, Msg: envelope.Msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("apiclient: decode %s %s: %w", method, path, err)
		}
	}
	return nil
}
