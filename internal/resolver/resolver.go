package resolver

import "context"

// Query describes one search against the release index.
type Query struct {
	// Term is the title text to search for.
	Term string
}

// Resolver finds release group names for a title. An empty result set is a
// valid answer, not an error.
type Resolver interface {
	FindGroups(ctx context.Context, q Query) ([]string, error)
}
