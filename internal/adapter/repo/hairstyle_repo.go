package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/infra"
)

// HairstyleRepositoryPG implements domain.HairstyleCatalog using PostgreSQL.
type HairstyleRepositoryPG struct {
	db infra.SQLExecutor
}

// NewHairstyleRepository constructs a new hairstyle repository instance.
func NewHairstyleRepository(db infra.SQLExecutor) *HairstyleRepositoryPG {
	return &HairstyleRepositoryPG{db: db}
}

// EnsureSchema creates the hairstyles table when it is missing.
func (r *HairstyleRepositoryPG) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
--sql hairstyles.ensure_schema
CREATE TABLE IF NOT EXISTS hairstyles (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	image_url   TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	position    INTEGER NOT NULL DEFAULT 0
);
`)
	if err != nil {
		return fmt.Errorf("repo: ensure hairstyles schema: %w", err)
	}
	return nil
}

// Seed upserts styles, keeping their order in the position column.
func (r *HairstyleRepositoryPG) Seed(ctx context.Context, styles []domain.Hairstyle) error {
	query := `
--sql hairstyles.upsert
INSERT INTO hairstyles (id, name, image_url, description, position)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    image_url = EXCLUDED.image_url,
    description = EXCLUDED.description,
    position = EXCLUDED.position;
`
	for i, h := range styles {
		if _, err := r.db.Exec(ctx, query, h.ID, h.Name, h.ImageURL, h.Description, i+1); err != nil {
			return fmt.Errorf("repo: seed hairstyle %s: %w", h.ID, err)
		}
	}
	return nil
}

// List returns all hairstyles in display order.
func (r *HairstyleRepositoryPG) List(ctx context.Context) ([]domain.Hairstyle, error) {
	rows, err := r.db.Query(ctx, `
--sql hairstyles.list
SELECT id, name, image_url, description
FROM hairstyles
ORDER BY position ASC, id ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("repo: list hairstyles: %w", err)
	}
	defer rows.Close()

	var styles []domain.Hairstyle
	for rows.Next() {
		var h domain.Hairstyle
		if err := rows.Scan(&h.ID, &h.Name, &h.ImageURL, &h.Description); err != nil {
			return nil, fmt.Errorf("repo: scan hairstyle: %w", err)
		}
		styles = append(styles, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo: list hairstyles: %w", err)
	}
	return styles, nil
}

// Get returns one hairstyle or domain.ErrNotFound.
func (r *HairstyleRepositoryPG) Get(ctx context.Context, id string) (domain.Hairstyle, error) {
	var h domain.Hairstyle
	err := r.db.QueryRow(ctx, `
--sql hairstyles.get
SELECT id, name, image_url, description
FROM hairstyles
WHERE id = $1;
`, id).Scan(&h.ID, &h.Name, &h.ImageURL, &h.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Hairstyle{}, fmt.Errorf("repo: hairstyle %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Hairstyle{}, fmt.Errorf("repo: get hairstyle: %w", err)
	}
	return h, nil
}

var _ domain.HairstyleCatalog = (*HairstyleRepositoryPG)(nil)
