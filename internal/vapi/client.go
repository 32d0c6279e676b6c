package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.vapi.ai"

type Client struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewClient(token, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type errorResponse struct {
	Message    json.RawMessage `json:"message"`
	Error      string          `json:"error"`
	StatusCode int             `json:"statusCode"`
}

// message flattens the platform's error body; message is either a string or a list of strings.
func (e errorResponse) message() string {
	var single string
	if json.Unmarshal(e.Message, &single) == nil && single != "" {
		return single
	}
	var many []string
	if json.Unmarshal(e.Message, &many) == nil && len(many) > 0 {
		return strings.Join(many, "; ")
	}
	return e.Error
}

// CreateCall starts an outbound phone call.
func (c *Client) CreateCall(ctx context.Context, req CreateCallRequest) (*Call, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var call Call
	if err := c.do(ctx, http.MethodPost, "/call", bytes.NewReader(body), &call); err != nil {
		return nil, err
	}
	if call.ID == "" {
		return nil, fmt.Errorf("create call: response has no call id")
	}
	return &call, nil
}

// ListCalls returns up to limit recent calls in the order the platform reports them.
func (c *Client) ListCalls(ctx context.Context, limit int) ([]Call, error) {
	path := "/call"
	if limit > 0 {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		path += "?" + q.Encode()
	}

	var calls []Call
	if err := c.do(ctx, http.MethodGet, path, nil, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil {
			if msg := errResp.message(); msg != "" {
				return fmt.Errorf("api error %d: %s", resp.StatusCode, msg)
			}
		}
		return fmt.Errorf("api error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
