package model

import "time"

// Repository is the fixed projection of a GitHub repository extracted from a
// search result item. No derived fields are computed at this layer.
type Repository struct {
	Name            string
	FullName        string
	StargazersCount int
	Language        string
	CreatedAt       time.Time
}

// SearchPage is one page of repository search results.
type SearchPage struct {
	Total             int
	IncompleteResults bool
	Repositories      []Repository
}
