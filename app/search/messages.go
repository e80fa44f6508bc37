package search

// Query names owned by the search module.
const SearchQuery = "search.query"

// Find runs a term search across the index.
type Find struct {
	Term       string
	EntityType string // optional filter, e.g. "post"
	Limit      int
}

func (*Find) QueryName() string { return SearchQuery }
