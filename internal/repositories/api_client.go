package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer from the REST API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api responded %d: %s", e.Status, e.Message)
}

// TransportError wraps a failure to reach the REST API at all (dial, timeout).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIClient performs JSON requests against the order-management REST API.
type APIClient struct {
	baseURL string
	timeout time.Duration
	client  *fiber.Client
}

// NewAPIClient creates a client rooted at baseURL. A zero timeout keeps the
// transport default.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &fiber.Client{},
	}
}

// do sends one request. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the raw response body.
func (c *APIClient) do(ctx context.Context, method, path, token string, query url.Values, body interface{}, out *[]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	agent := c.agent(method, target)
	if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		agent.JSON(body)
	}

	status, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return &TransportError{Method: method, URL: target, Err: errors.Join(errs...)}
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if status < 200 || status >= 300 {
		return &APIError{Status: status, Message: errorMessage(respBody)}
	}
	if out != nil {
		*out = respBody
	}
	return nil
}

// getJSON issues a GET and decodes the body into v.
func (c *APIClient) getJSON(ctx context.Context, path, token string, query url.Values, v interface{}) error {
	var raw []byte
	if err := c.do(ctx, fiber.MethodGet, path, token, query, nil, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *APIClient) agent(method, target string) *fiber.Agent {
	switch method {
	case fiber.MethodPost:
		return c.client.Post(target)
	case fiber.MethodPut:
		return c.client.Put(target)
	case fiber.MethodPatch:
		return c.client.Patch(target)
	case fiber.MethodDelete:
		return c.client.Delete(target)
	default:
		return c.client.Get(target)
	}
}

// errorMessage extracts a human message from an error body, which the API
// sends either as {"message": ...}, {"error": ...} or plain text.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty response"
	}
	return text
}

// decodeList accepts either a bare JSON array or an object wrapping the array
// under one of keys, and returns the elements.
func decodeList[T any](raw []byte, keys ...string) ([]T, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []T{}, nil
	}

	var list []T
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return list, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode list envelope: %w", err)
	}
	for _, key := range keys {
		inner, ok := envelope[key]
		if !ok {
			continue
		}
		return decodeList[T](inner)
	}
	return []T{}, nil
}
