// Package testutil provides canned search responses and a scripted
// transport double for exercising the client and cursor without a
// running service.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// Request captures one exchange issued through a FakeTransport.
type Request struct {
	URL     string
	Method  string
	Params  url.Values
	Headers map[string]string
	Body    []byte
}

// Exchange is one scripted response.
type Exchange struct {
	Status int
	Body   []byte
	Err    error
}

// FakeTransport replays scripted exchanges in order and records every
// request it sees. Once the script runs out it keeps returning the last
// exchange, which keeps accidental over-fetching visible in Requests
// without panicking mid-test.
type FakeTransport struct {
	Exchanges []Exchange
	Requests  []Request
	next      int
}

// NewFakeTransport scripts the given exchanges.
func NewFakeTransport(exchanges ...Exchange) *FakeTransport {
	return &FakeTransport{Exchanges: exchanges}
}

// RoundTrip implements the elastic.Transport signature.
func (f *FakeTransport) RoundTrip(rawurl, method string, params url.Values, headers map[string]string, body []byte) (int, []byte, error) {
	captured := Request{
		URL:     rawurl,
		Method:  method,
		Params:  cloneValues(params),
		Headers: cloneHeaders(headers),
		Body:    append([]byte(nil), body...),
	}
	f.Requests = append(f.Requests, captured)

	if len(f.Exchanges) == 0 {
		return 0, nil, fmt.Errorf("fake transport has no scripted exchanges")
	}
	i := f.next
	if i >= len(f.Exchanges) {
		i = len(f.Exchanges) - 1
	}
	f.next++
	ex := f.Exchanges[i]
	return ex.Status, ex.Body, ex.Err
}

func cloneValues(params url.Values) url.Values {
	out := url.Values{}
	for k, vs := range params {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

func cloneHeaders(headers map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range headers {
		out[k] = v
	}
	return out
}

// Page builds a search response body with the given hit sources, total
// match count, elapsed time and optional scroll id.
func Page(docs []interface{}, total, took int, scrollID string) []byte {
	hits := make([]interface{}, len(docs))
	for i, d := range docs {
		hits[i] = map[string]interface{}{"_source": d}
	}
	body := map[string]interface{}{
		"took": took,
		"hits": map[string]interface{}{
			"total": total,
			"hits":  hits,
		},
	}
	if scrollID != "" {
		body["_scroll_id"] = scrollID
	}
	b, err := json.Marshal(body)
	if err != nil {
		panic(fmt.Sprintf("testutil: failed to build page: %v", err))
	}
	return b
}

// Docs builds n placeholder documents numbered from start, for scroll
// fixtures where only counts and ordering matter.
func Docs(start, n int) []interface{} {
	docs := make([]interface{}, n)
	for i := range docs {
		docs[i] = map[string]interface{}{"doc": fmt.Sprintf("doc-%d", start+i)}
	}
	return docs
}

// ScrollPages builds a full scroll universe: pages of pageSize
// documents covering total matches. The first element is the initial
// response; every page except the final one carries the scroll id for
// the next fetch.
func ScrollPages(total, pageSize, took int) [][]byte {
	var pages [][]byte
	start := 0
	page := 0
	for start < total {
		n := pageSize
		if start+n > total {
			n = total - start
		}
		id := ""
		if start+n < total {
			id = fmt.Sprintf("scroll-%d", page+1)
		}
		pages = append(pages, Page(Docs(start, n), total, took, id))
		start += n
		page++
	}
	return pages
}
