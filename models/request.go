package models

import "strings"

// SearchRequest is the payload for POST /api/search.
// GET requests carry the same field as the "query" URL parameter.
type SearchRequest struct {
	// Query is an ISBN or a book title. Required.
	Query string `json:"query" form:"query"`
}

// Normalize trims surrounding whitespace from the query.
func (r *SearchRequest) Normalize() {
	r.Query = strings.TrimSpace(r.Query)
}
