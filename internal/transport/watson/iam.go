package watson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/kailas-cloud/docqa/internal/metrics"
)

// DefaultIAMURL is the IBM Cloud IAM token endpoint.
const DefaultIAMURL = "https://iam.cloud.ibm.com/identity/token"

const apiKeyGrantType = "urn:ibm:params:oauth:grant-type:apikey"

// iamTokenSource exchanges an IBM Cloud API key for a bearer token.
type iamTokenSource struct {
	apiKey  string
	iamURL  string
	client  *http.Client
	timeout time.Duration
}

type iamTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Expiration  int64  `json:"expiration"`
}

// NewTokenSource returns a caching token source for apiKey. An empty iamURL uses DefaultIAMURL.
// Tokens are reused until shortly before expiry.
func NewTokenSource(apiKey, iamURL string, timeout time.Duration) oauth2.TokenSource {
	if iamURL == "" {
		iamURL = DefaultIAMURL
	}
	return oauth2.ReuseTokenSource(nil, &iamTokenSource{
		apiKey:  apiKey,
		iamURL:  iamURL,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	})
}

// Token implements oauth2.TokenSource.
func (s *iamTokenSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("grant_type", apiKeyGrantType)
	form.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.iamURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	tok, err := s.exchange(req)
	metrics.ObserveExternal(metrics.ServiceIAM, "token", time.Since(start).Seconds(), err)
	return tok, err
}

func (s *iamTokenSource) exchange(req *http.Request) (*oauth2.Token, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("iam token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Op: "IAMToken", StatusCode: resp.StatusCode, Message: extractMessage(body)}
	}

	var parsed iamTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("iam token response has no access_token")
	}

	tok := &oauth2.Token{
		AccessToken: parsed.AccessToken,
		TokenType:   "Bearer",
	}
	switch {
	case parsed.Expiration > 0:
		tok.Expiry = time.Unix(parsed.Expiration, 0)
	case parsed.ExpiresIn > 0:
		tok.Expiry = time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// NewHTTPClient returns an HTTP client that authenticates every request with ts.
func NewHTTPClient(ts oauth2.TokenSource, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   http.DefaultTransport,
		},
	}
}

// TokenChecker reports whether credentials can still be exchanged for a token.
type TokenChecker struct {
	ts oauth2.TokenSource
}

// NewTokenChecker wraps a token source for health checks.
func NewTokenChecker(ts oauth2.TokenSource) *TokenChecker {
	return &TokenChecker{ts: ts}
}

// HealthCheck fetches (or reuses) a token.
func (c *TokenChecker) HealthCheck(_ context.Context) error {
	if _, err := c.ts.Token(); err != nil {
		return fmt.Errorf("iam token: %w", err)
	}
	return nil
}
