// Package client talks to a running webpaneld over its HTTP API.
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

	"webpanel/pkg/types"
)

// APIError is a non-2xx answer from the daemon.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("webpaneld: %d %s", e.Status, e.Message)
}

// StatusCode lets the error travel through the HTTP layer unchanged.
func (e *APIError) StatusCode() int { return e.Status }

// Client is a thin JSON client. An empty id in any verb addresses the
// daemon's active instance.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for base, e.g. "http://127.0.0.1:8089".
func New(base string) *Client {
	return &Client{base: strings.TrimRight(base, "/"), http: &http.Client{Timeout: 10 * time.Second}}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func instancePath(id, suffix string) string {
	if id == "" {
		return "/active" + suffix
	}
	return "/instances/" + url.PathEscape(id) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var e types.ErrorResponse
		if derr := json.NewDecoder(resp.Body).Decode(&e); derr != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) List(ctx context.Context) (types.InstancesResponse, error) {
	var out types.InstancesResponse
	err := c.do(ctx, http.MethodGet, "/instances", nil, &out)
	return out, err
}

func (c *Client) Get(ctx context.Context, id string) (types.InstanceStatus, error) {
	var out types.InstanceStatus
	err := c.do(ctx, http.MethodGet, instancePath(id, ""), nil, &out)
	return out, err
}

func (c *Client) Open(ctx context.Context, req types.OpenRequest) (types.InstanceStatus, error) {
	var out types.InstanceStatus
	err := c.do(ctx, http.MethodPost, "/instances", req, &out)
	return out, err
}

func (c *Client) Navigate(ctx context.Context, id, target string) (types.InstanceStatus, error) {
	var out types.InstanceStatus
	err := c.do(ctx, http.MethodPost, instancePath(id, "/navigate"), types.NavigateRequest{URL: target}, &out)
	return out, err
}

func (c *Client) Focus(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, instancePath(id, "/focus"), nil, nil)
}

func (c *Client) ToggleFindBar(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, instancePath(id, "/findbar/toggle"), nil, nil)
}

func (c *Client) Find(ctx context.Context, id string, req types.FindRequest) error {
	return c.do(ctx, http.MethodPost, instancePath(id, "/find"), req, nil)
}

func (c *Client) FindNext(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, instancePath(id, "/find/next"), nil, nil)
}

func (c *Client) FindPrev(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, instancePath(id, "/find/prev"), nil, nil)
}

func (c *Client) CloseFind(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, instancePath(id, "/find"), nil, nil)
}

func (c *Client) Close(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, instancePath(id, ""), nil, nil)
}

func (c *Client) Purge(ctx context.Context) (int, error) {
	var out types.PurgeResponse
	err := c.do(ctx, http.MethodPost, "/purge", nil, &out)
	return out.Purged, err
}

func (c *Client) Status(ctx context.Context) (types.StatusResponse, error) {
	var out types.StatusResponse
	err := c.do(ctx, http.MethodGet, "/status", nil, &out)
	return out, err
}
