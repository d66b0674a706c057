// Package upload ships Shift Manager Summary CSV files from a local folder
// to remote object storage and removes them locally once the remote copy is
// confirmed.
package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Store accepts an object under a key and either confirms durable storage
// (nil) or reports failure. On a confirmed put the caller may delete its
// local copy.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// HTTPStore puts objects with an HTTP PUT to <BaseURL>/<key>.
type HTTPStore struct {
	BaseURL string
	Token   string // optional bearer token, sent as-is
	Client  *http.Client
}

// NewHTTPStore creates a store with a sane request timeout.
func NewHTTPStore(baseURL, token string) *HTTPStore {
	return &HTTPStore{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *HTTPStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	url := strings.TrimSuffix(s.BaseURL, "/") + "/" + strings.TrimPrefix(key, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("storage returned %d", resp.StatusCode)
	}
	return nil
}
