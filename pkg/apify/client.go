package apify

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

	"liexport/pkg/errors"
	"liexport/pkg/logger"
)

// DefaultTimeout bounds one synchronous actor run
const DefaultTimeout = 300 * time.Second

// Client calls the Apify run-sync-get-dataset-items endpoint of an actor
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	endpoint   string
	logger     logger.Logger
}

// NewClient creates a new actor client
func NewClient(endpoint string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"User-Agent":   "liexport/1.0",
		},
		endpoint: endpoint,
		logger:   log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// Endpoint returns the actor URL without credentials
func (c *Client) Endpoint() string {
	return c.endpoint
}

// requestURL appends the credential token as a query parameter
func (c *Client) requestURL(token string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid actor endpoint: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchPosts runs the actor once and returns the dataset items. A non-2xx
// status is returned as an upstream error carrying the status and body.
// A valid JSON body that is not an array yields an empty batch.
func (c *Client) FetchPosts(ctx context.Context, token string, input RunInput) ([]Post, error) {
	reqURL, err := c.requestURL(token)
	if err != nil {
		return nil, errors.Internal("build actor request", err)
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, errors.Internal("encode actor input", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Internal("build actor request", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	c.logger.DebugWithFields("calling actor", map[string]interface{}{
		"username":    input.Username,
		"limit":       input.Limit,
		"total_posts": input.TotalPosts,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.ErrorWithFields("actor request failed", map[string]interface{}{
			"url":      logger.RedactURL(reqURL),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.UpstreamErr("call actor", redactErr(err, token))
	}
	defer resp.Body.Close()

	logger.LogRequest(c.logger, req.Method, reqURL, resp.StatusCode, float64(duration.Milliseconds()))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.UpstreamErr("read actor response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Upstream(resp.StatusCode, string(data))
	}

	return c.decodePosts(data)
}

// decodePosts decodes an actor dataset. Numbers stay json.Number so
// counts survive export unchanged. Array elements that are not objects
// are dropped.
func (c *Client) decodePosts(data []byte) ([]Post, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse actor response", map[string]interface{}{
			"error":        err.Error(),
			"body_preview": preview,
		})
		return nil, errors.UpstreamErr("parse actor response", err)
	}

	items, ok := raw.([]interface{})
	if !ok {
		c.logger.WarnWithFields("actor response is not an array, treating as empty", map[string]interface{}{
			"type": fmt.Sprintf("%T", raw),
		})
		return []Post{}, nil
	}

	posts := make([]Post, 0, len(items))
	skipped := 0
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			skipped++
			continue
		}
		posts = append(posts, Post(obj))
	}
	if skipped > 0 {
		c.logger.WarnWithFields("skipped non-object dataset items", map[string]interface{}{
			"skipped": skipped,
		})
	}

	return posts, nil
}

// redactedError hides the token in a transport error message while
// keeping the cause available to errors.Is
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// redactErr strips the token from transport errors, which embed the URL
func redactErr(err error, token string) error {
	if token == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), url.QueryEscape(token), "REDACTED")
	return &redactedError{msg: msg, err: err}
}
