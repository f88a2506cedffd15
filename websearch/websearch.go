// Package websearch provides the external web-search collaborator used by
// the web_search action.
package websearch

import (
	"context"
	"time"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

// Provider is the external search collaborator. Implementations must never
// return an error for "not configured": that state is reported through
// Available so the caller can produce a success:true, empty-results-with-
// message result instead.
type Provider interface {
	// Available reports whether the provider has usable credentials.
	Available() bool
	// Search runs a web search, truncating snippets itself: 500 characters
	// for result snippets, 200 for citation snippets.
	Search(ctx context.Context, query string, maxResults int) ([]schemas.WebResult, []schemas.WebCitation, error)
}

const (
	resultSnippetMaxLen   = 500
	citationSnippetMaxLen = 200
)

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
