package elastic

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Transport executes one HTTP exchange against the search service. It
// returns the response status and body, or an error only for transport
// failures (connection refused, timeout); error statuses come back as
// a normal (status, body) pair. Timeouts, retries and connection reuse
// are the transport's business, not the library's.
type Transport func(rawurl, method string, params url.Values, headers map[string]string, body []byte) (int, []byte, error)

// NewHTTPTransport returns the default Transport, a net/http client
// with a 10-second timeout.
func NewHTTPTransport() Transport {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}
	return func(rawurl, method string, params url.Values, headers map[string]string, body []byte) (int, []byte, error) {
		if len(params) > 0 {
			rawurl += "?" + params.Encode()
		}
		var reader io.Reader
		if len(body) > 0 {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequest(method, rawurl, reader)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to create request: %w", err)
		}
		if len(body) > 0 {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := client.Do(req)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to call search service: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to read response: %w", err)
		}
		return resp.StatusCode, respBody, nil
	}
}

// Connection bundles the service base URL with the transport and the
// headers sent on every request.
type Connection struct {
	server    string
	transport Transport
	headers   map[string]string
}

// NewConnection creates a connection to the given server using the
// default HTTP transport.
func NewConnection(server string) *Connection {
	return &Connection{
		server:    strings.TrimRight(server, "/"),
		transport: NewHTTPTransport(),
		headers:   map[string]string{},
	}
}

// Server returns the service base URL without a trailing slash.
func (c *Connection) Server() string {
	return c.server
}

// SetHeader sets a header sent on every request, e.g. authentication.
func (c *Connection) SetHeader(name, value string) {
	c.headers[name] = value
}

// SetBasicAuth sets the Authorization header from credentials.
func (c *Connection) SetBasicAuth(username, password string) {
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	c.headers["Authorization"] = "Basic " + token
}

// SetTransport replaces the transport, e.g. with a test double.
func (c *Connection) SetTransport(t Transport) {
	c.transport = t
}

// Do executes one exchange through the transport with the connection's
// standing headers.
func (c *Connection) Do(rawurl, method string, params url.Values, body []byte) (int, []byte, error) {
	return c.transport(rawurl, method, params, c.headers, body)
}
