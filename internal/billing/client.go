// Package billing integrates with the hosted payment processor.
// Only the customer billing portal is used; checkout and webhooks live
// with the processor.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// ClientTimeout is the total request timeout.
	ClientTimeout = 30 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 15 * time.Second

	// portalSessionsPath is the processor endpoint for portal sessions.
	portalSessionsPath = "/v1/billing_portal/sessions"

	// maxResponseBodyLen caps how much of a processor response is read.
	maxResponseBodyLen = 1 << 16
)

// ErrPortalRequestFailed indicates the processor rejected or failed the
// portal session request. The processor's detail stays in the wrapped
// error for logging and must never reach an HTTP response body.
var ErrPortalRequestFailed = errors.New("billing portal request failed")

// Client calls the payment processor's API.
type Client struct {
	apiBase   string
	secretKey string
	http      *http.Client
}

// NewClient creates a billing Client.
func NewClient(apiBase, secretKey string) *Client {
	return &Client{
		apiBase:   strings.TrimSuffix(apiBase, "/"),
		secretKey: secretKey,
		http:      newHTTPClient(),
	}
}

// newHTTPClient creates an HTTP client configured for processor calls.
// It has appropriate timeouts and does not follow redirects.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
		// Don't follow redirects - the portal URL is returned, not served
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// portalSessionResponse is the processor's reply for a portal session.
type portalSessionResponse struct {
	URL string `json:"url"`
}

// CreatePortalSession requests a time-boxed billing portal URL for the
// given customer reference. returnURL is where the portal sends the user
// when they are done.
func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("return_url", returnURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+portalSessionsPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build portal session request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPortalRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyLen))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrPortalRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", ErrPortalRequestFailed, resp.StatusCode, truncate(string(body), 512))
	}

	var session portalSessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrPortalRequestFailed, err)
	}

	if session.URL == "" {
		return "", fmt.Errorf("%w: empty portal url", ErrPortalRequestFailed)
	}

	return session.URL, nil
}

// truncate limits an error body kept in wrapped error messages.
func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
