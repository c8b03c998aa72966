package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

const serviceName = "storage"

// Config holds the hosted object-store settings. BaseURL is the project
// root; the storage surface lives under /storage/v1.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the hosted object store used for logos and avatars.
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("apikey", cfg.APIKey).
		SetAuthToken(cfg.APIKey)

	return &Client{http: http, baseURL: cfg.BaseURL, apiKey: cfg.APIKey}
}

func (c *Client) configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// Upload stores the object, overwriting any existing object at the same
// path.
func (c *Client) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	if !c.configured() {
		return domain.ErrNotConfigured
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(fmt.Sprintf("/storage/v1/object/%s/%s", bucket, path))
	if err != nil {
		return &domain.RemoteError{Service: serviceName, Message: fmt.Sprintf("upload failed: %v", err)}
	}
	if resp.IsError() {
		return &domain.RemoteError{Service: serviceName, Status: resp.StatusCode(), Message: string(resp.Body())}
	}
	return nil
}

// PublicURL returns the unauthenticated link for objects in public
// buckets. Pure string concatenation, no network call.
func (c *Client) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, bucket, path)
}

// SignedURL returns a time-limited authenticated link to the object.
func (c *Client) SignedURL(ctx context.Context, bucket, path string, expiresIn time.Duration) (string, error) {
	if !c.configured() {
		return "", domain.ErrNotConfigured
	}

	var payload struct {
		SignedURL string `json:"signedURL"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]int{"expiresIn": int(expiresIn.Seconds())}).
		SetResult(&payload).
		Post(fmt.Sprintf("/storage/v1/object/sign/%s/%s", bucket, path))
	if err != nil {
		return "", &domain.RemoteError{Service: serviceName, Message: fmt.Sprintf("sign failed: %v", err)}
	}
	if resp.IsError() {
		return "", &domain.RemoteError{Service: serviceName, Status: resp.StatusCode(), Message: string(resp.Body())}
	}
	return c.baseURL + "/storage/v1" + payload.SignedURL, nil
}

var _ ports.ObjectStorage = (*Client)(nil)
