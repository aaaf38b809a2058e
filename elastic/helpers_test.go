package elastic

import (
	"testing"
	"time"
)

// mustJSON serializes a node or fails the test.
func mustJSON(t *testing.T, n *Node) string {
	t.Helper()
	got, err := n.ToJSON()
	if err != nil {
		t.Fatalf("failed to serialize: %v", err)
	}
	return got
}

func TestTermFilter(t *testing.T) {
	t.Run("sets term.<field>", func(t *testing.T) {
		got := mustJSON(t, NewNode().TermFilter("state", "open"))
		if got != `{"term":{"state":"open"}}` {
			t.Errorf("got %s", got)
		}
	})

	t.Run("skips nil and empty string terms", func(t *testing.T) {
		n := NewNode().TermFilter("a", nil).TermFilter("b", "")
		if n.Len() != 0 {
			t.Errorf("expected no fields, got %s", mustJSON(t, n))
		}
	})
}

func TestMissingFilter(t *testing.T) {
	got := mustJSON(t, NewNode().MissingFilter("assignee"))
	if got != `{"missing":{"field":"assignee"}}` {
		t.Errorf("got %s", got)
	}
}

func TestRangeFilter(t *testing.T) {
	t.Run("fully inclusive bounds", func(t *testing.T) {
		got := mustJSON(t, NewNode().RangeFilter("x", Between(1, 10)))
		want := `{"range":{"x":{"from":1,"to":10,"include_lower":true,"include_upper":true}}}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("omits absent bounds", func(t *testing.T) {
		got := mustJSON(t, NewNode().RangeFilter("x", Between(nil, 10)))
		want := `{"range":{"x":{"to":10,"include_lower":true,"include_upper":true}}}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("renders timestamps as RFC 3339", func(t *testing.T) {
		from := time.Date(2014, 3, 1, 12, 0, 0, 0, time.UTC)
		got := mustJSON(t, NewNode().RangeFilter("ts", Between(from, nil)))
		want := `{"range":{"ts":{"from":"2014-03-01T12:00:00Z","include_lower":true,"include_upper":true}}}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("exclusive bounds are emitted as false", func(t *testing.T) {
		got := mustJSON(t, NewNode().RangeFilter("x", Range{From: 1, To: 2}))
		want := `{"range":{"x":{"from":1,"to":2,"include_lower":false,"include_upper":false}}}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})
}

func TestRangeFacet(t *testing.T) {
	t.Run("builds the range list", func(t *testing.T) {
		n := NewNode().RangeFacet("sizes", "bytes", Between(0, 100), Between(100, 1000))
		got := mustJSON(t, n)
		want := `{"facets":{"sizes":{"range":{"bytes":[` +
			`{"from":0,"to":100,"include_lower":true,"include_upper":true},` +
			`{"from":100,"to":1000,"include_lower":true,"include_upper":true}]}}}}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("no ranges means no facet", func(t *testing.T) {
		n := NewNode().RangeFacet("sizes", "bytes")
		if n.Has("facets") {
			t.Errorf("expected no facet, got %s", mustJSON(t, n))
		}
	})
}

func TestTermsFacet(t *testing.T) {
	t.Run("non-positive size requests all terms", func(t *testing.T) {
		got := mustJSON(t, NewNode().TermsFacet("tags", "tag", 0, nil))
		want := `{"facets":{"tags":{"terms":{"field":"tag","all_terms":true}}}}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("positive size is passed through with extras merged", func(t *testing.T) {
		n := NewNode().TermsFacet("tags", "tag", 5, map[string]interface{}{
			"order":   "count",
			"exclude": []interface{}{"noise"},
		})
		got := mustJSON(t, n)
		want := `{"facets":{"tags":{"terms":{"field":"tag","size":5,"exclude":["noise"],"order":"count"}}}}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})
}

func TestDateHistogramFacet(t *testing.T) {
	t.Run("empty interval defaults to hour", func(t *testing.T) {
		got := mustJSON(t, NewNode().DateHistogramFacet("overTime", "ts", "", nil))
		want := `{"facets":{"overTime":{"date_histogram":{"field":"ts","interval":"hour"}}}}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("explicit interval", func(t *testing.T) {
		got := mustJSON(t, NewNode().DateHistogramFacet("overTime", "ts", "day", nil))
		want := `{"facets":{"overTime":{"date_histogram":{"field":"ts","interval":"day"}}}}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})
}

func TestStatsFacet(t *testing.T) {
	got := mustJSON(t, NewNode().StatsFacet("latency", "took"))
	want := `{"facets":{"latency":{"statistical":{"field":"took"}}}}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestSort(t *testing.T) {
	t.Run("appends clauses in call order", func(t *testing.T) {
		got := mustJSON(t, NewNode().Sort("created", "").Sort("priority", "desc"))
		want := `{"sort":[{"created":{"order":"asc"}},{"priority":{"order":"desc"}}]}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("unsorted removes the sort field", func(t *testing.T) {
		n := NewNode().Sort("created", "").Unsorted()
		if n.Has("sort") {
			t.Errorf("expected no sort field, got %s", mustJSON(t, n))
		}
	})
}

func TestScriptSort(t *testing.T) {
	t.Run("omits empty params", func(t *testing.T) {
		got := mustJSON(t, NewNode().ScriptSort("doc.score * 2", "number", nil, ""))
		want := `{"sort":[{"_script":{"script":"doc.score * 2","type":"number","order":"asc"}}]}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("includes params when present", func(t *testing.T) {
		n := NewNode().ScriptSort("doc.score * factor", "number",
			map[string]interface{}{"factor": 2}, "desc")
		got := mustJSON(t, n)
		want := `{"sort":[{"_script":{"script":"doc.score * factor","type":"number","params":{"factor":2},"order":"desc"}}]}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})
}

func TestAndOrTermFilters(t *testing.T) {
	got := mustJSON(t, NewNode().
		AndTermFilter("a", 1).
		AndTermFilter("b", 2).
		OrTermFilter("c", 3))
	want := `{"and":[{"term":{"a":1}},{"term":{"b":2}}],"or":[{"term":{"c":3}}]}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestAndTerms(t *testing.T) {
	t.Run("skips absent values and preserves order", func(t *testing.T) {
		n := AndTerms(
			Term{"a", 1},
			Term{"b", ""},
			Term{"c", nil},
			Term{"d", 2},
		)
		got := mustJSON(t, n)
		want := `{"and":[{"term":{"a":1}},{"term":{"d":2}}]}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("all absent yields an empty node", func(t *testing.T) {
		n := OrTerms(Term{"a", ""}, Term{"b", nil})
		if n.Len() != 0 {
			t.Errorf("expected an empty node, got %s", mustJSON(t, n))
		}
	})
}
