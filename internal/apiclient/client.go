package apiclient

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

	"github.com/rogerio-castellano/product-catalog/internal/catalog"
)

// Client talks to the products REST resource rooted at BaseURL
// (e.g. http://localhost:8080/api/products).
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// StatusError is returned for any response outside the 2xx range.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) List(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := c.do(ctx, http.MethodGet, "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Get(ctx context.Context, id catalog.ID) (catalog.Product, error) {
	var p catalog.Product
	if err := c.do(ctx, http.MethodGet, "/"+url.PathEscape(id.String()), nil, &p); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func (c *Client) Create(ctx context.Context, in catalog.ProductInput) error {
	return c.do(ctx, http.MethodPost, "", in, nil)
}

func (c *Client) Update(ctx context.Context, id catalog.ID, in catalog.ProductInput) error {
	return c.do(ctx, http.MethodPut, "/"+url.PathEscape(id.String()), in, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, c.BaseURL+path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:     method,
			Path:       c.BaseURL + path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, c.BaseURL+path, err)
	}
	return nil
}

var _ catalog.ProductAPI = (*Client)(nil)
