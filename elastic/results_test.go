package elastic

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bd808/moar-elasticsearch/testutil"
)

func TestNewResults(t *testing.T) {
	t.Run("empty body is an error even with a success status", func(t *testing.T) {
		r := NewResults([]byte(""), 200)
		if !r.IsError() {
			t.Error("expected an error cursor")
		}
		if r.Count() != 0 {
			t.Errorf("expected an empty page, got %d", r.Count())
		}
	})

	t.Run("undecodable body is an error", func(t *testing.T) {
		for _, body := range []string{"not json", `[1,2,3]`, `"text"`, "null"} {
			r := NewResults([]byte(body), 200)
			if !r.IsError() {
				t.Errorf("expected an error cursor for body %q", body)
			}
		}
	})

	t.Run("status band classifies errors", func(t *testing.T) {
		body := testutil.Page(testutil.Docs(0, 1), 1, 3, "")
		for status, wantErr := range map[int]bool{
			199: true,
			200: false,
			250: false,
			299: false,
			300: true,
			399: true,
			500: true,
		} {
			r := NewResults(body, status)
			if r.IsError() != wantErr {
				t.Errorf("status %d: IsError() = %v, want %v", status, r.IsError(), wantErr)
			}
		}
	})

	t.Run("extracts hits and metadata", func(t *testing.T) {
		body := testutil.Page(testutil.Docs(0, 3), 42, 7, "")
		r := NewResults(body, 200)
		if r.Count() != 3 {
			t.Errorf("Count() = %d, want 3", r.Count())
		}
		if r.TotalHits() != 42 {
			t.Errorf("TotalHits() = %d, want 42", r.TotalHits())
		}
		if r.Elapsed() != 7 {
			t.Errorf("Elapsed() = %d, want 7", r.Elapsed())
		}
		if r.HasFacets() {
			t.Error("expected no facets")
		}
	})

	t.Run("missing hits means an empty page, not an error", func(t *testing.T) {
		r := NewResults([]byte(`{"acknowledged":true}`), 200)
		if r.IsError() {
			t.Error("expected a success cursor")
		}
		if r.Count() != 0 {
			t.Errorf("expected an empty page, got %d", r.Count())
		}
		if v, ok := r.Meta("acknowledged"); !ok || v != true {
			t.Error("expected unknown fields to be preserved as metadata")
		}
	})

	t.Run("object form of hits.total is understood", func(t *testing.T) {
		body := []byte(`{"hits":{"total":{"value":120,"relation":"eq"},"hits":[]}}`)
		r := NewResults(body, 200)
		if r.TotalHits() != 120 {
			t.Errorf("TotalHits() = %d, want 120", r.TotalHits())
		}
	})

	t.Run("facets are exposed when present", func(t *testing.T) {
		body := []byte(`{"facets":{"tags":{"_type":"terms"}},"hits":{"total":0,"hits":[]}}`)
		r := NewResults(body, 200)
		if !r.HasFacets() {
			t.Fatal("expected facets")
		}
		if _, ok := r.Facets()["tags"]; !ok {
			t.Error("expected the tags facet")
		}
	})

	t.Run("re-serializing reproduces the response shape", func(t *testing.T) {
		body := testutil.Page(testutil.Docs(0, 2), 2, 5, "scroll-1")
		r := NewResults(body, 200)
		out, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("failed to marshal cursor: %v", err)
		}
		var want, got map[string]interface{}
		if err := json.Unmarshal(body, &want); err != nil {
			t.Fatalf("bad fixture: %v", err)
		}
		if err := json.Unmarshal(out, &got); err != nil {
			t.Fatalf("bad cursor serialization: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("cursor serialization mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestResultsIteration(t *testing.T) {
	t.Run("single page without a scroll", func(t *testing.T) {
		r := NewResults(testutil.Page(testutil.Docs(0, 3), 3, 1, ""), 200)
		var indices []int
		for r.Next() {
			if r.Doc() == nil {
				t.Fatal("expected a document")
			}
			indices = append(indices, r.Index())
		}
		if len(indices) != 3 {
			t.Fatalf("expected 3 documents, got %d", len(indices))
		}
		for i, idx := range indices {
			if idx != i {
				t.Errorf("index %d: got %d", i, idx)
			}
		}
	})

	t.Run("rewind resets within the current page only", func(t *testing.T) {
		r := NewResults(testutil.Page(testutil.Docs(0, 2), 2, 1, ""), 200)
		for r.Next() {
		}
		r.Rewind()
		count := 0
		for r.Next() {
			count++
		}
		if count != 2 {
			t.Errorf("expected 2 documents after rewind, got %d", count)
		}
	})

	t.Run("doc is nil before the first advance", func(t *testing.T) {
		r := NewResults(testutil.Page(testutil.Docs(0, 1), 1, 1, ""), 200)
		if r.Doc() != nil {
			t.Error("expected nil before Next")
		}
	})
}

func TestScrollIteration(t *testing.T) {
	// 250 matches served as pages of 100, 100 and 50; the last page
	// carries no further token.
	pages := testutil.ScrollPages(250, 100, 4)
	if len(pages) != 3 {
		t.Fatalf("fixture: expected 3 pages, got %d", len(pages))
	}

	t.Run("full iteration is flat, contiguous and complete", func(t *testing.T) {
		ft := testutil.NewFakeTransport(
			testutil.Exchange{Status: 200, Body: pages[1]},
			testutil.Exchange{Status: 200, Body: pages[2]},
		)
		conn := NewConnection("http://search.example.org:9200")
		conn.SetTransport(ft.RoundTrip)
		r := NewScrollingResults(pages[0], 200, conn, "1m")

		wantCounts := []int{100, 100, 50}
		var indices []int
		for r.Next() {
			i := r.Index()
			indices = append(indices, i)
			page := i / 100
			if page > 2 {
				page = 2
			}
			if r.Count() != wantCounts[page] {
				t.Fatalf("at index %d: Count() = %d, want %d", i, r.Count(), wantCounts[page])
			}
		}

		if len(indices) != 250 {
			t.Fatalf("expected 250 documents, got %d", len(indices))
		}
		for i, idx := range indices {
			if idx != i {
				t.Fatalf("indices not contiguous at %d: got %d", i, idx)
			}
		}
		if len(ft.Requests) != 2 {
			t.Fatalf("expected 2 continuation fetches, got %d", len(ft.Requests))
		}
		for i, req := range ft.Requests {
			if req.URL != "http://search.example.org:9200/_search/scroll" {
				t.Errorf("fetch %d: unexpected URL %s", i, req.URL)
			}
			if req.Method != http.MethodGet {
				t.Errorf("fetch %d: unexpected method %s", i, req.Method)
			}
			if req.Params.Get("scroll") != "1m" {
				t.Errorf("fetch %d: unexpected params %v", i, req.Params)
			}
			wantToken := fmt.Sprintf("scroll-%d", i+1)
			if string(req.Body) != wantToken {
				t.Errorf("fetch %d: body %q, want %q", i, req.Body, wantToken)
			}
		}
	})

	t.Run("empty continuation page ends iteration", func(t *testing.T) {
		first := testutil.Page(testutil.Docs(0, 2), 10, 1, "scroll-a")
		empty := testutil.Page(nil, 10, 1, "scroll-b")
		ft := testutil.NewFakeTransport(testutil.Exchange{Status: 200, Body: empty})
		conn := NewConnection("http://search.example.org:9200")
		conn.SetTransport(ft.RoundTrip)
		r := NewScrollingResults(first, 200, conn, "1m")

		count := 0
		for r.Next() {
			count++
		}
		if count != 2 {
			t.Errorf("expected 2 documents, got %d", count)
		}
		if r.IsError() {
			t.Error("an exhausted scroll is not an error")
		}
	})

	t.Run("transport failure mid-scroll surfaces as an error cursor", func(t *testing.T) {
		first := testutil.Page(testutil.Docs(0, 1), 10, 1, "scroll-a")
		ft := testutil.NewFakeTransport(testutil.Exchange{Err: errors.New("connection refused")})
		conn := NewConnection("http://search.example.org:9200")
		conn.SetTransport(ft.RoundTrip)
		r := NewScrollingResults(first, 200, conn, "1m")

		count := 0
		for r.Next() {
			count++
		}
		if count != 1 {
			t.Errorf("expected 1 document, got %d", count)
		}
		if !r.IsError() {
			t.Error("expected the failed fetch to flag the cursor")
		}
	})

	t.Run("metadata reflects only the current page", func(t *testing.T) {
		first := testutil.Page(testutil.Docs(0, 1), 10, 100, "scroll-a")
		second := testutil.Page(testutil.Docs(1, 1), 10, 200, "")
		ft := testutil.NewFakeTransport(testutil.Exchange{Status: 200, Body: second})
		conn := NewConnection("http://search.example.org:9200")
		conn.SetTransport(ft.RoundTrip)
		r := NewScrollingResults(first, 200, conn, "1m")

		if r.Elapsed() != 100 {
			t.Fatalf("Elapsed() = %d, want 100", r.Elapsed())
		}
		for r.Next() {
		}
		if r.Elapsed() != 200 {
			t.Errorf("Elapsed() = %d, want 200 after continuation", r.Elapsed())
		}
	})
}

func TestContinue(t *testing.T) {
	t.Run("fails on a cursor without a token", func(t *testing.T) {
		r := NewResults(testutil.Page(testutil.Docs(0, 1), 1, 1, ""), 200)
		if err := r.Continue(); !errors.Is(err, ErrNotScrollable) {
			t.Errorf("expected ErrNotScrollable, got %v", err)
		}
	})

	t.Run("fails on a scroll response without a connection", func(t *testing.T) {
		r := NewResults(testutil.Page(testutil.Docs(0, 1), 1, 1, "scroll-a"), 200)
		if err := r.Continue(); !errors.Is(err, ErrNotScrollable) {
			t.Errorf("expected ErrNotScrollable, got %v", err)
		}
	})
}
