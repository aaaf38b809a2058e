package elastic

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
)

// scrollIDField is the continuation-token field the service reports.
const scrollIDField = "_scroll_id"

// Results wraps one decoded search response and presents the matched
// documents as a forward-only, single-pass sequence. When built from a
// scan request it follows the server-side scroll: exhausting the
// current page makes Next fetch the continuation page synchronously.
//
// Service-level problems (error statuses, empty or undecodable bodies,
// transport failures mid-scroll) are modeled as state, observable via
// IsError, never as returned errors; they are expected conditions a
// caller needs to branch on mid-iteration.
//
// A Results is not safe for concurrent use.
type Results struct {
	errState bool
	meta     map[string]interface{}
	hits     []interface{}

	// pos is the index of the current element within the page, -1
	// before the first Next. offset accumulates prior page sizes so
	// Index is globally increasing across the whole scroll.
	pos    int
	offset int

	scrollID  string
	conn      *Connection
	keepAlive string
}

// NewResults builds a cursor from one HTTP response. Statuses outside
// 200-299, empty bodies and bodies that do not decode to a JSON object
// all mark the cursor as an error with empty metadata.
func NewResults(body []byte, status int) *Results {
	r := &Results{pos: -1}
	r.load(body, status)
	return r
}

// NewScrollingResults builds a cursor that can follow a server-side
// scroll: when the response carries a scroll id, continuation pages are
// fetched through conn with the given keep-alive duration.
func NewScrollingResults(body []byte, status int, conn *Connection, keepAlive string) *Results {
	r := &Results{pos: -1, conn: conn, keepAlive: keepAlive}
	r.load(body, status)
	return r
}

// load replaces the page state from one response. Offset bookkeeping is
// deliberately untouched; Continue owns it.
func (r *Results) load(body []byte, status int) {
	r.meta = map[string]interface{}{}
	r.hits = nil
	r.scrollID = ""
	r.errState = status < 200 || status > 299

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		r.errState = true
		return
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil || decoded == nil {
		r.errState = true
		return
	}
	r.meta = decoded

	if hits, ok := decoded["hits"].(map[string]interface{}); ok {
		if list, ok := hits["hits"].([]interface{}); ok {
			r.hits = list
		}
	}
	if id, ok := decoded[scrollIDField].(string); ok {
		r.scrollID = id
	}
}

// IsError reports whether the most recently loaded page was an error
// response.
func (r *Results) IsError() bool {
	return r.errState
}

// Hits returns the full current-page result list.
func (r *Results) Hits() []interface{} {
	return r.hits
}

// Count returns the size of the current page, not the cumulative
// scroll total.
func (r *Results) Count() int {
	return len(r.hits)
}

// HasFacets reports whether the current page carries facet metadata.
func (r *Results) HasFacets() bool {
	_, ok := r.meta["facets"].(map[string]interface{})
	return ok
}

// Facets returns the facet metadata of the current page, or nil.
func (r *Results) Facets() map[string]interface{} {
	f, _ := r.meta["facets"].(map[string]interface{})
	return f
}

// TotalHits returns the total match count the service reported, or 0
// when absent. Both the bare-integer form and the newer object form
// with a "value" field are understood.
func (r *Results) TotalHits() int {
	hits, ok := r.meta["hits"].(map[string]interface{})
	if !ok {
		return 0
	}
	switch t := hits["total"].(type) {
	case float64:
		return int(t)
	case map[string]interface{}:
		if v, ok := t["value"].(float64); ok {
			return int(v)
		}
	}
	return 0
}

// Elapsed returns the service-side processing time in milliseconds
// ("took"), or 0 when absent.
func (r *Results) Elapsed() int {
	if took, ok := r.meta["took"].(float64); ok {
		return int(took)
	}
	return 0
}

// ScrollID returns the continuation token of the current page, or "".
func (r *Results) ScrollID() string {
	return r.scrollID
}

// Meta returns the metadata field stored under name on the current
// page, verbatim from the decoded response.
func (r *Results) Meta(name string) (interface{}, bool) {
	v, ok := r.meta[name]
	return v, ok
}

// MarshalJSON re-emits the page metadata, so serializing the cursor
// reproduces the shape of the response it was built from.
func (r *Results) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.meta)
}

// Next advances to the next document, reporting whether one is
// available. When the current page is exhausted and a scroll id is
// known, Next blocks on a synchronous fetch of the continuation page
// before answering; iteration ends when no token remains or the fetched
// page is empty.
func (r *Results) Next() bool {
	if r.pos+1 < len(r.hits) {
		r.pos++
		return true
	}
	if r.scrollID == "" || r.conn == nil {
		return false
	}
	if err := r.Continue(); err != nil {
		return false
	}
	if len(r.hits) == 0 {
		return false
	}
	r.pos = 0
	return true
}

// Doc returns the current document, or nil when the cursor is not
// positioned on one.
func (r *Results) Doc() interface{} {
	if r.pos < 0 || r.pos >= len(r.hits) {
		return nil
	}
	return r.hits[r.pos]
}

// Index returns the globally increasing index of the current document
// across the whole scroll, even though only one page is held in memory.
func (r *Results) Index() int {
	return r.offset + r.pos
}

// Continue fetches the next scroll page and replaces the current page
// state with it, folding the prior page size into the running offset.
// Returns ErrNotScrollable when the cursor holds no continuation token;
// an empty next page is not an error, just the end of iteration.
func (r *Results) Continue() error {
	if r.scrollID == "" || r.conn == nil {
		return ErrNotScrollable
	}
	prior := len(r.hits)
	params := url.Values{}
	params.Set("scroll", r.keepAlive)
	status, body, err := r.conn.Do(
		r.conn.Server()+"/_search/scroll",
		http.MethodGet,
		params,
		[]byte(r.scrollID),
	)
	if err != nil {
		// Transport failure: same treatment as an error status. The
		// token is gone with the page state, so iteration ends.
		r.load(nil, 0)
	} else {
		r.load(body, status)
	}
	r.offset += prior
	r.pos = -1
	return nil
}

// Rewind resets the position within the current page. Earlier scroll
// pages cannot be revisited; the server-side cursor is single-pass.
func (r *Results) Rewind() {
	r.pos = -1
}
