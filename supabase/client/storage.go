package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Storage returns a storage client.
func (c *Client) Storage() *StorageClient {
	return &StorageClient{client: c}
}

// StorageClient handles object storage operations.
type StorageClient struct {
	client *Client
}

// From returns a bucket client.
func (s *StorageClient) From(bucket string) *BucketClient {
	return &BucketClient{
		client: s.client,
		bucket: bucket,
	}
}

// BucketClient handles operations on a single bucket.
type BucketClient struct {
	client *Client
	bucket string
}

// Upload stores an object and returns its path within the bucket.
func (b *BucketClient) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", b.client.baseURL, b.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	b.client.setHeaders(req)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := b.client.do(req)
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}

	var result struct {
		Key  string `json:"Key"`
		Path string `json:"path"`
	}
	if err := json.Unmarshal(resp.Body, &result); err == nil && result.Path != "" {
		return result.Path, nil
	}
	return path, nil
}

// Download retrieves an object's bytes.
func (b *BucketClient) Download(ctx context.Context, path string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", b.client.baseURL, b.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	b.client.setHeaders(req)

	resp, err := b.client.do(req)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GetPublicURL returns the public URL for an object in a public bucket.
func (b *BucketClient) GetPublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", b.client.baseURL, b.bucket, path)
}
