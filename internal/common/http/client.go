// Package http provides the outbound HTTP client shared by every outbound
// caller: the agent, encyclopedia, LLM and runtime clients.
package http

import (
	"net"
	"net/http"
	"time"
)

// Client applies independent connect and read timeouts. The read timeout bounds
// the wait for response headers; the overall client timeout is their sum, so a
// slowly streamed body is still cut off.
type Client struct {
	httpClient *http.Client
}

func NewClient(connectTimeout, readTimeout time.Duration) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	transport.ResponseHeaderTimeout = readTimeout

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   connectTimeout + readTimeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// HTTPClient exposes the underlying client for SDKs that take a *http.Client,
// so their calls follow the same timeout policy.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}
