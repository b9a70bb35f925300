package discovery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/datazip-inc/olake-configurator/constants"
	"github.com/datazip-inc/olake-configurator/types"
	"github.com/datazip-inc/olake-configurator/utils/logger"
	"github.com/goccy/go-json"
)

// Client posts connector configurations to a source specific discovery endpoint
type Client struct {
	httpClient *http.Client
	baseURL    string
	projectID  string
	proxy      bool
}

type ClientOption func(*Client)

func WithProjectID(projectID string) ClientOption {
	return func(c *Client) {
		c.projectID = projectID
	}
}

// WithProxy routes requests through the backend proxy prefix
func WithProxy(proxy bool) ClientOption {
	return func(c *Client) {
		c.proxy = proxy
	}
}

func NewClient(httpClient *http.Client, baseURL string, opts ...ClientOption) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.DefaultRequestTimeout}
	}

	client := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(client)
	}

	return client
}

func (c *Client) requestURL(endpoint string) (string, error) {
	path := endpoint
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if c.proxy {
		path = constants.ProxyPathPrefix + path
	}

	parsed, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid discovery url: %s", err)
	}

	if c.projectID != "" {
		query := parsed.Query()
		query.Set(constants.ProjectIDParam, c.projectID)
		parsed.RawQuery = query.Encode()
	}

	return parsed.String(), nil
}

// Discover performs a single discovery attempt. Transport failures and non-2xx
// responses are returned as *UpstreamError, malformed payloads as *ValidationError.
func (c *Client) Discover(ctx context.Context, endpoint string, config map[string]any) (*types.PollResult, error) {
	target, err := c.requestURL(endpoint)
	if err != nil {
		return nil, &InternalError{Reason: err.Error()}
	}

	body, err := json.Marshal(config)
	if err != nil {
		return nil, &InternalError{Reason: fmt.Sprintf("failed to marshal connector config: %s", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, &InternalError{Reason: fmt.Sprintf("failed to build discovery request: %s", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	logger.Debugf("posting connector config to %s", target)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("failed to read discovery response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: errorMessage(resp, payload)}
	}

	return DecodeResponse(payload)
}

// errorMessage prefers the backend's own "message" over the status text
func errorMessage(resp *http.Response, payload []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return resp.Status
}
