package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/resilience"
)

// Client talks to one upstream. Failures come back as *Error so callers
// can map them with ToAppError.
type Client struct {
	http   *http.Client
	config Config
	log    *logger.Logger
}

func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		http: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   cfg.Timeout,
		},
		config: cfg,
		log:    cfg.Logger.WithFields(logger.Fields(logger.FieldComponent, "httpclient", "upstream", cfg.Name)),
	}, nil
}

func (c *Client) BaseURL() string { return c.config.BaseURL }

// Do sends req, retrying under the client's retry policy if it has one.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.config.Retry == nil {
		return c.attempt(ctx, req, 1)
	}
	n := 0
	return resilience.Retry(ctx, *c.config.Retry, func() (*Response, error) {
		n++
		return c.attempt(ctx, req, n)
	})
}

// PostJSON posts in as JSON and decodes the answer into out unless out is
// nil.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.exchange(ctx, Request{Method: http.MethodPost, Path: path, Body: in}, out)
}

// GetJSON decodes the answer to GET path into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.exchange(ctx, Request{Method: http.MethodGet, Path: path}, out)
}

func (c *Client) exchange(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil || out == nil {
		return err
	}
	if err := resp.DecodeJSON(out); err != nil {
		return fail(KindEncoding, fmt.Errorf("decode %s response: %w", req.Path, err))
	}
	return nil
}

// Ping reports whether GET path answers 2xx. It makes a single attempt.
func (c *Client) Ping(ctx context.Context, path string) bool {
	_, err := c.attempt(ctx, Request{Method: http.MethodGet, Path: path}, 1)
	return err == nil
}

func (c *Client) attempt(ctx context.Context, req Request, n int) (*Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.send(ctx, httpReq)
	fields := logger.Fields(
		"method", httpReq.Method,
		logger.FieldPath, httpReq.URL.Path,
		"attempt", n,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)
	if resp != nil {
		resp.Duration = time.Since(start)
		fields["status"] = resp.StatusCode
	}
	if err != nil {
		fields[logger.FieldError] = err.Error()
	}
	c.log.Debug("upstream call", fields)
	return resp, err
}

func (c *Client) send(ctx context.Context, httpReq *http.Request) (*Response, error) {
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBytes+1))
	if err != nil {
		return nil, transportError(ctx, fmt.Errorf("read response body: %w", err))
	}
	if int64(len(body)) > c.config.MaxResponseBytes {
		return nil, fail(KindEncoding, fmt.Errorf("response exceeds %d bytes", c.config.MaxResponseBytes))
	}

	out := &Response{StatusCode: resp.StatusCode, Headers: firstValues(resp.Header), Body: body}
	if err := StatusError(resp.StatusCode, body); err != nil {
		return out, err
	}
	return out, nil
}

func transportError(ctx context.Context, err error) error {
	if t, ok := err.(interface{ Timeout() bool }); ctx.Err() != nil || (ok && t.Timeout()) {
		return fail(KindTimeout, err)
	}
	return fail(KindConnection, err)
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := req.Path
	if c.config.BaseURL != "" && !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(target, "/")
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, fail(KindEncoding, fmt.Errorf("encode body: %w", err))
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fail(KindEncoding, fmt.Errorf("create request: %w", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}
	for _, headers := range []map[string]string{c.config.Headers, req.Headers} {
		for k, v := range headers {
			httpReq.Header.Set(k, v)
		}
	}
	if body != nil && contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartBody:
		return v.encode()
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func firstValues(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
