// internal/common/http/client.go
package http

import (
	"net/http"
	"time"
)

// Client is a timeout-bounded HTTP client. CV downloads pull documents from
// arbitrary candidate-supplied hosts, so every request carries a hard
// deadline regardless of what the caller's context says.
type Client struct {
	inner *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		inner: &http.Client{Timeout: timeout},
	}
}

// Do executes the request. Cancellation propagates through the request's
// own context.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.inner.Do(req)
}
