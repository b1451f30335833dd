// Package apitest provides typed test helpers for docroute services.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bjaus/docroute"
)

// Client wraps an httptest.Server running a finalized Service.
type Client struct {
	Server  *httptest.Server
	Service *docroute.Service
}

// NewClient starts a test server for svc. The server is closed when the
// test ends.
func NewClient(t testing.TB, svc *docroute.Service) *Client {
	t.Helper()
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)
	return &Client{Server: srv, Service: svc}
}

// Response holds a decoded API response.
type Response[T any] struct {
	Status  int
	Headers http.Header
	Body    *T
	Problem *docroute.ProblemDetail
}

// Get sends a typed GET request.
func Get[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodGet, path, nil)
}

// Post sends a typed POST request with a JSON body.
func Post[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodPost, path, body)
}

// Put sends a typed PUT request with a JSON body.
func Put[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodPut, path, body)
}

// Delete sends a typed DELETE request.
func Delete[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodDelete, path, nil)
}

// Do sends a request with an optional JSON body. Problem detail responses
// are decoded into Response.Problem, anything else into Response.Body.
func Do[Resp any](t testing.TB, c *Client, method, path string, body any) *Response[Resp] {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("apitest: marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("apitest: create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("apitest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("apitest: close body: %v", closeErr)
		}
	}()

	result := &Response[Resp]{
		Status:  resp.StatusCode,
		Headers: resp.Header,
	}
	if resp.StatusCode == http.StatusNoContent || resp.ContentLength == 0 {
		return result
	}

	if resp.Header.Get("Content-Type") == "application/problem+json" {
		var pd docroute.ProblemDetail
		if decErr := json.NewDecoder(resp.Body).Decode(&pd); decErr == nil {
			result.Problem = &pd
		}
		return result
	}

	var decoded Resp
	if decErr := json.NewDecoder(resp.Body).Decode(&decoded); decErr != nil && !errors.Is(decErr, io.EOF) {
		return result
	}
	result.Body = &decoded
	return result
}

// Operation returns the documented operation for method and path, failing
// the test when the service does not document it.
func Operation(t testing.TB, c *Client, method, path string) *docroute.Operation {
	t.Helper()

	item, ok := c.Service.Document().Paths[path]
	if !ok {
		t.Fatalf("apitest: path %s is not documented", path)
	}
	op := item.Operation(method)
	if op == nil {
		t.Fatalf("apitest: %s %s is not documented", method, path)
	}
	return op
}
