package models

// CollectionRules selects the articles that belong to a saved collection.
type CollectionRules struct {
	Keywords   []string `json:"keywords,omitempty"`
	Sources    []string `json:"sources,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Collection is a named, saved rule set.
type Collection struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Rules CollectionRules `json:"rules"`
}
