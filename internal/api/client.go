// Package api is the client for the chat persistence service.
//
// The service is a plain REST endpoint: GET / lists messages, POST / creates
// one, PUT /{id} updates content, DELETE /{id} removes one. Calls are
// best-effort from the engine's point of view; failures surface as
// *errors.GatewayError and the caller decides whether to log and continue.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apierrors "github.com/pratham/chatterm/internal/errors"
	"github.com/pratham/chatterm/internal/models"
)

// Client talks to the persistence service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("persistence service URL is empty (set CHAT_API_URL)")
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// createRequest is the POST / body.
type createRequest struct {
	Content string        `json:"content"`
	Sender  models.Sender `json:"sender"`
}

// updateRequest is the PUT /{id} body.
type updateRequest struct {
	NewContent string        `json:"new_content"`
	Sender     models.Sender `json:"sender"`
}

// FetchAll returns the full ordered conversation held by the service.
func (c *Client) FetchAll(ctx context.Context) ([]models.Message, error) {
	body, err := c.do(ctx, "fetch", http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, apierrors.NewGatewayError("fetch", c.baseURL, 0, "response is not a JSON array")
	}

	// Ids are tolerated as JSON numbers or strings; backends differ.
	var messages []models.Message
	parsed.ForEach(func(_, item gjson.Result) bool {
		messages = append(messages, models.Message{
			ID:      item.Get("id").String(),
			Sender:  models.Sender(item.Get("sender").String()),
			Content: item.Get("content").String(),
			Status:  models.StatusSettled,
		})
		return true
	})

	return messages, nil
}

// Create persists a new message.
func (c *Client) Create(ctx context.Context, content string, sender models.Sender) error {
	payload, err := json.Marshal(createRequest{Content: content, Sender: sender})
	if err != nil {
		return fmt.Errorf("failed to marshal create request: %w", err)
	}

	_, err = c.do(ctx, "create", http.MethodPost, c.baseURL+"/", payload)
	return err
}

// Update replaces the content of the message with the given server id.
func (c *Client) Update(ctx context.Context, id, newContent string, sender models.Sender) error {
	payload, err := json.Marshal(updateRequest{NewContent: newContent, Sender: sender})
	if err != nil {
		return fmt.Errorf("failed to marshal update request: %w", err)
	}

	_, err = c.do(ctx, "update", http.MethodPut, c.baseURL+"/"+id, payload)
	return err
}

// Delete removes the message with the given server id.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, c.baseURL+"/"+id, nil)
	return err
}

// do performs one request and returns the response body, mapping transport
// and status failures to GatewayError.
func (c *Client) do(ctx context.Context, op, method, url string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewGatewayError(op, url, 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewGatewayError(op, url, resp.StatusCode, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apierrors.NewGatewayError(op, url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
