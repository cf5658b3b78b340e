package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// ErrStatus is wrapped by every StatusError.
var ErrStatus = errors.New("unexpected status")

type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP request to %s failed with status: %d", e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Field is a single entry of a submitted form, in document order.
type Field struct {
	Name  string
	Value string
}

// Client retrieves named resources of the static host.
type Client struct {
	httpClient *http.Client
	base       *url.URL
	logger     *zap.Logger
}

func New(baseURL string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}
	return &Client{
		httpClient: httpClient,
		base:       base,
		logger:     logger.Named("fetch"),
	}, nil
}

// Resolve returns the absolute URL of a resource path.
func (c *Client) Resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse resource path %q: %w", path, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// Text downloads a resource as text, e.g. a section fragment.
func (c *Client) Text(ctx context.Context, path string) (string, error) {
	body, err := c.get(ctx, path, "text/html")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// JSON downloads a JSON document without decoding it.
func (c *Client) JSON(ctx context.Context, path string) ([]byte, error) {
	return c.get(ctx, path, "application/json")
}

func (c *Client) get(ctx context.Context, path, accept string) ([]byte, error) {
	u, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", u, err)
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	c.logger.Debug("fetched", zap.String("url", u), zap.Int("bytes", len(body)))
	return body, nil
}

// PostForm submits fields as multipart form data and returns the response
// status. The response body is ignored.
func (c *Client) PostForm(ctx context.Context, endpoint string, fields []Field) (int, error) {
	u, err := c.Resolve(endpoint)
	if err != nil {
		return 0, err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, field := range fields {
		if err := w.WriteField(field.Name, field.Value); err != nil {
			return 0, fmt.Errorf("failed to write form field %q: %w", field.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("failed to close form body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to submit form to %s: %w", u, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !ok(resp.StatusCode) {
		return resp.StatusCode, &StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	return resp.StatusCode, nil
}

// Probe checks that an image source can be loaded.
func (c *Client) Probe(ctx context.Context, src string) error {
	u, err := c.Resolve(src)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", u, err)
	}
	resp.Body.Close()
	if !ok(resp.StatusCode) {
		return &StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	return nil
}

func ok(code int) bool {
	return code >= 200 && code < 300
}
