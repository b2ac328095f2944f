// Package client is the Go SDK for the Confetex API. It wraps the REST
// endpoints with one service per resource and performs the same request
// validation the web clients do before dispatching, so obviously invalid
// calls never leave the process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a Confetex API server. The zero value is not usable;
// construct one with New.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	Orders       *OrdersService
	Alterations  *AlterationsService
	Products     *ProductsService
	GarmentTypes *GarmentTypesService
	Clients      *ClientsService
	Users        *UsersService
	Schools      *SchoolsService
	PQRS         *PQRSService
	Accounting   *AccountingService
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token at construction time.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Orders = &OrdersService{client: c}
	c.Alterations = &AlterationsService{client: c}
	c.Products = &ProductsService{client: c}
	c.GarmentTypes = &GarmentTypesService{client: c}
	c.Clients = &ClientsService{client: c}
	c.Users = &UsersService{client: c}
	c.Schools = &SchoolsService{client: c}
	c.PQRS = &PQRSService{client: c}
	c.Accounting = &AccountingService{client: c}
	return c
}

// SetToken swaps the bearer token, e.g. after login or refresh.
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("error inesperado del servidor (HTTP %d)", e.StatusCode)
}

// fieldError mirrors the server's validation entries.
type fieldError struct {
	Msg string   `json:"msg"`
	Loc []string `json:"loc"`
}

// do issues an HTTP request and decodes the JSON response into out (when
// non-nil). Non-2xx responses become *APIError with the detail flattened to a
// single string.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}

	var fields []fieldError
	if err := json.Unmarshal(envelope.Detail, &fields); err == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.Msg != "" {
				msgs = append(msgs, f.Msg)
			}
		}
		apiErr.Detail = strings.Join(msgs, "; ")
	}
	return apiErr
}
