package pargo

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL    string
	apiID      string
	apiToken   string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL  string
	APIID    string
	APIToken string
	// InsecureSkipVerify turns off TLS certificate verification.
	InsecureSkipVerify bool
	// Timeout bounds a whole request; zero leaves it to ctx and the transport.
	Timeout time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in
	}

	return &HTTPAPIClient{
		baseURL:  cfg.BaseURL,
		apiID:    cfg.APIID,
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

// URL returns the endpoint for resource with the API credentials attached.
func (c *HTTPAPIClient) URL(resource string) string {
	q := url.Values{}
	q.Set("api_id", c.apiID)
	q.Set("token", c.apiToken)
	return strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(resource, "/") + "?" + q.Encode()
}

// Send performs a single request against the Pargo API.
func (c *HTTPAPIClient) Send(ctx context.Context, resource, method string, body interface{}) (*Response, error) {
	var payload []byte
	switch method {
	case http.MethodPost, http.MethodPut:
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	case http.MethodGet:
	default:
		return nil, fmt.Errorf("unsupported method %q", method)
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(resource), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "pargo-bridge/1.0")
	if payload != nil {
		req.ContentLength = int64(len(payload))
		req.Header.Set("Content-Length", strconv.Itoa(len(payload)))
	}
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// no status line or header block could be parsed; keep what net/http saw
		return nil, &TransportError{Body: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		// headers arrived but the body was cut short
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(raw), Cause: err}
	}

	doc, err := parseDocument(raw)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       doc,
	}, nil
}

// parseDocument validates raw as a non-empty JSON document.
func parseDocument(raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)

	var v interface{}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, &ProtocolError{Body: string(raw), Cause: err}
	}
	if isEmptyDocument(v) {
		return nil, &ProtocolError{Body: string(raw)}
	}
	return json.RawMessage(trimmed), nil
}

// isEmptyDocument reports JSON values that carry no information: null,
// false, 0, "", "0" and [].
func isEmptyDocument(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == "" || t == "0"
	case []interface{}:
		return len(t) == 0
	default:
		return false
	}
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
