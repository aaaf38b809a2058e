package elastic

import "errors"

var (
	// ErrNoParent is returned when a root node is asked to replace
	// itself with a list; there is no holding slot to rewrite.
	ErrNoParent = errors.New("node has no parent to replace it in")

	// ErrNotScrollable is returned by Continue when the cursor carries
	// no scroll id or no connection to fetch through. This is a usage
	// error, distinct from a scroll that simply ran out of pages.
	ErrNotScrollable = errors.New("results are not scrollable")
)
