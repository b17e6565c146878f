package report

// This file contains the HTTP client that delivers envelopes to the
// dashboard.

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cowanml/SDK/model"
	"github.com/rs/zerolog"
)

// Client posts result envelopes to the dashboard endpoint. It is specific
// to that endpoint; in particular the TLS relaxations available below must
// not migrate into any general-purpose client.
type Client struct {
	logger     zerolog.Logger
	url        string
	httpClient *http.Client
}

// ClientOption configures optional behavior of a Client.
type ClientOption func(*Client)

// WithInsecureLegacyTLS disables certificate and hostname verification and
// allows the server to renegotiate the TLS session. The dashboard
// terminates TLS on a legacy stack behind a self-signed certificate, and
// this option exists solely to interoperate with it.
func WithInsecureLegacyTLS() ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
				Renegotiation:      tls.RenegotiateFreelyAsClient,
			},
		}
	}
}

// NewClient returns a Client that posts to the given URL.
func NewClient(logger zerolog.Logger, url string, opts ...ClientOption) *Client {
	c := &Client{
		logger: logger,
		url:    url,
		httpClient: &http.Client{
			// Bounds the whole POST, connect through body read.
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Send posts one envelope as JSON. The response status is not inspected,
// only drained and logged at debug level; a transport failure is returned
// to the caller.
func (c *Client) Send(ctx context.Context, env model.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	c.logger.Debug().RawJSON("envelope", body).Msg("Posting record to the dashboard")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build dashboard request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post record to dashboard: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read dashboard response: %w", err)
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Str("body", string(respBody)).
		Msg("Dashboard response")

	return nil
}
