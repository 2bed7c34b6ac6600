package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the slice of the Vapi REST API the backend depends on.
type Client interface {
	CreateAssistant(ctx context.Context, req AssistantRequest) (*Assistant, error)
	GetAssistant(ctx context.Context, id string) (*Assistant, error)
	AssistantExists(ctx context.Context, id string) (bool, error)
	DeleteAssistant(ctx context.Context, id string) error
	GetCall(ctx context.Context, id string) (*Call, error)
}

// APIError is returned for any non-2xx response. Body is kept verbatim so
// callers can surface the provider's own message.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vapi error: status %d, body: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a provider answer saying the resource
// does not exist. Vapi answers 400 for ids that are not valid UUIDs.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusBadRequest
}

type HTTPClient struct {
	BaseURL    string
	PrivateKey string
	Client     *http.Client
}

var _ Client = &HTTPClient{}

func NewHTTPClient(baseURL, privateKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		PrivateKey: privateKey,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *HTTPClient) CreateAssistant(ctx context.Context, req AssistantRequest) (*Assistant, error) {
	var assistant Assistant
	if err := c.do(ctx, http.MethodPost, "/assistant", req, &assistant); err != nil {
		return nil, err
	}
	if assistant.ID == "" {
		return nil, fmt.Errorf("vapi create assistant: response has no id")
	}
	return &assistant, nil
}

func (c *HTTPClient) GetAssistant(ctx context.Context, id string) (*Assistant, error) {
	var assistant Assistant
	if err := c.do(ctx, http.MethodGet, "/assistant/"+id, nil, &assistant); err != nil {
		return nil, err
	}
	return &assistant, nil
}

func (c *HTTPClient) AssistantExists(ctx context.Context, id string) (bool, error) {
	_, err := c.GetAssistant(ctx, id)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func (c *HTTPClient) DeleteAssistant(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/assistant/"+id, nil, nil)
	if IsNotFound(err) {
		return nil
	}
	return err
}

func (c *HTTPClient) GetCall(ctx context.Context, id string) (*Call, error) {
	var call Call
	if err := c.do(ctx, http.MethodGet, "/call/"+id, nil, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewBuffer(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.PrivateKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("vapi request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
