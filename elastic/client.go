package elastic

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultFetchSize is the per-page document count for Scan when the
	// caller passes a non-positive size.
	DefaultFetchSize = 50
	// DefaultKeepAlive is the scroll keep-alive duration for Scan when
	// the caller passes an empty one.
	DefaultKeepAlive = "1m"
)

// Client is a thin search-service client: it builds request URLs from
// the configured index and type names, serializes query documents, and
// wraps every response in a Results cursor. Error responses and
// transport failures surface on the cursor via IsError, never as
// returned errors.
type Client struct {
	conn    *Connection
	index   []string
	doctype []string
}

// ClientOption configures a Client during construction.
type ClientOption func(*Client)

// WithIndex sets the index name(s) addressed by requests.
func WithIndex(names ...string) ClientOption {
	return func(c *Client) { c.index = names }
}

// WithType sets the document type name(s) addressed by requests.
func WithType(names ...string) ClientOption {
	return func(c *Client) { c.doctype = names }
}

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) ClientOption {
	return func(c *Client) { c.conn.SetTransport(t) }
}

// WithBasicAuth sends the credentials on every request.
func WithBasicAuth(username, password string) ClientOption {
	return func(c *Client) { c.conn.SetBasicAuth(username, password) }
}

// WithHeader sends an extra header on every request.
func WithHeader(name, value string) ClientOption {
	return func(c *Client) { c.conn.SetHeader(name, value) }
}

// NewClient creates a client for the service at server.
func NewClient(server string, opts ...ClientOption) *Client {
	c := &Client{conn: NewConnection(server)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connection returns the underlying connection.
func (c *Client) Connection() *Connection {
	return c.conn
}

// buildURL assembles server[/index[/type]]/action, joining name
// collections with "," and percent-encoding each path segment. The type
// segment only appears when an index is present, matching the service's
// path grammar.
func (c *Client) buildURL(action string) string {
	parts := []string{c.conn.Server()}
	if joined := strings.Join(c.index, ","); joined != "" {
		parts = append(parts, url.PathEscape(joined))
		if typed := strings.Join(c.doctype, ","); typed != "" {
			parts = append(parts, url.PathEscape(typed))
		}
	}
	parts = append(parts, url.PathEscape(action))
	return strings.Join(parts, "/")
}

// request runs one exchange and wraps the outcome. Transport failures
// become error-state cursors with an empty page.
func (c *Client) request(action, method string, params url.Values, body []byte, keepAlive string) *Results {
	status, resp, err := c.conn.Do(c.buildURL(action), method, params, body)
	if err != nil {
		status, resp = 0, nil
	}
	if keepAlive != "" {
		return NewScrollingResults(resp, status, c.conn, keepAlive)
	}
	return NewResults(resp, status)
}

// Search submits the query document as a _search request. params may be
// nil.
func (c *Client) Search(q *Node, params url.Values) *Results {
	body, err := q.MarshalJSON()
	if err != nil {
		return NewResults(nil, 0)
	}
	return c.request("_search", http.MethodGet, params, body, "")
}

// Scan submits the query document as a scanning _search request and
// returns a cursor that follows the server-side scroll. fetchSize <= 0
// and an empty keepAlive fall back to the defaults.
func (c *Client) Scan(q *Node, fetchSize int, keepAlive string, params url.Values) *Results {
	if fetchSize <= 0 {
		fetchSize = DefaultFetchSize
	}
	if keepAlive == "" {
		keepAlive = DefaultKeepAlive
	}
	body, err := q.MarshalJSON()
	if err != nil {
		return NewScrollingResults(nil, 0, c.conn, keepAlive)
	}
	p := url.Values{}
	for k, vs := range params {
		p[k] = vs
	}
	p.Set("search_type", "scan")
	p.Set("scroll", keepAlive)
	p.Set("size", strconv.Itoa(fetchSize))
	return c.request("_search", http.MethodGet, p, body, keepAlive)
}

// Bulk submits pre-formatted operation records to _bulk. Each line is
// the caller's responsibility (see IndexOp and DeleteOp); Bulk joins
// them with newlines and terminates the payload with one.
func (c *Client) Bulk(lines []string) *Results {
	payload := strings.Join(lines, "\n") + "\n"
	return c.request("_bulk", http.MethodPut, nil, []byte(payload), "")
}
