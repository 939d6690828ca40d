// Package watson implements REST clients for the IBM Watson Discovery, Natural Language
// Understanding and watsonx.ai services.
package watson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// APIError represents a non-2xx response from a Watson service.
type APIError struct {
	Op         string // operation that failed, e.g. "Query"
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401/403 response.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// restClient holds what every Watson REST service call needs.
type restClient struct {
	baseURL    string
	version    string
	httpClient *http.Client
}

func (c *restClient) endpoint(path string) (string, error) {
	u, err := url.Parse(strings.TrimRight(c.baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path += path
	q := u.Query()
	q.Set("version", c.version)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// postJSON sends in as JSON and decodes the response into out.
func (c *restClient) postJSON(ctx context.Context, op, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}
	return c.post(ctx, op, path, "application/json", bytes.NewReader(payload), out)
}

func (c *restClient) post(ctx context.Context, op, path, contentType string, body io.Reader, out any) error {
	fullURL, err := c.endpoint(path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: extractMessage(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}

// extractMessage pulls a readable message out of the IBM error formats, falling back to the raw body.
func extractMessage(body []byte) string {
	var parsed struct {
		Error            any    `json:"error"`
		ErrorDescription string `json:"errorMessage"`
		Errors           []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if s, ok := parsed.Error.(string); ok && s != "" {
			return s
		}
		if parsed.ErrorDescription != "" {
			return parsed.ErrorDescription
		}
		if len(parsed.Errors) > 0 && parsed.Errors[0].Message != "" {
			return parsed.Errors[0].Message
		}
	}
	return strings.TrimSpace(string(body))
}
