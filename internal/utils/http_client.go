package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
type HTTPClient struct {
	*resty.Client
}

// NewRemoteHTTPClient returns a client bound to baseURL that sends JSON,
// authenticates with the bearer token when set and bounds every request by
// timeout. Retries are left to the caller.
func NewRemoteHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if token != "" {
		client.SetAuthToken(token)
	}

	return &HTTPClient{Client: client}
}
