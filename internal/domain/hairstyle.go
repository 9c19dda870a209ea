package domain

import "context"

// Hairstyle is a selectable template. Values are immutable once chosen; a new
// selection replaces the previous one wholesale.
type Hairstyle struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ImageURL    string `json:"image"`
	Description string `json:"description"`
}

// HairstyleCatalog lists the templates a user can pick from.
type HairstyleCatalog interface {
	List(ctx context.Context) ([]Hairstyle, error)
	Get(ctx context.Context, id string) (Hairstyle, error)
}
