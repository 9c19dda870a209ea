package catalog

import (
	"context"
	"errors"
	"fmt"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/infra"
)

// Templates are the built-in hairstyles, in display order.
var Templates = []domain.Hairstyle{
	{ID: "1", Name: "Long Wavy", ImageURL: "https://images.unsplash.com/photo-1594736797933-d0401ba2fe65?w=400&h=400&fit=crop&crop=face", Description: "Elegant long wavy hair"},
	{ID: "2", Name: "Bob Cut", ImageURL: "https://images.unsplash.com/photo-1580618672591-eb180b1a973f?w=400&h=400&fit=crop&crop=face", Description: "Classic bob hairstyle"},
	{ID: "3", Name: "Pixie Cut", ImageURL: "https://images.unsplash.com/photo-1616683693504-3ea7e9ad6fec?w=400&h=400&fit=crop&crop=face", Description: "Short and chic pixie"},
	{ID: "4", Name: "Beach Waves", ImageURL: "https://images.unsplash.com/photo-1595475038665-8de2a4b72bbf?w=400&h=400&fit=crop&crop=face", Description: "Natural beach waves"},
	{ID: "5", Name: "Straight Long", ImageURL: "https://images.unsplash.com/photo-1598300042247-d088f8ab3a91?w=400&h=400&fit=crop&crop=face", Description: "Sleek straight hair"},
	{ID: "6", Name: "Curly Afro", ImageURL: "https://images.unsplash.com/photo-1531123897727-8f129e1688ce?w=400&h=400&fit=crop&crop=face", Description: "Beautiful curly afro"},
	{ID: "7", Name: "Side Bangs", ImageURL: "https://images.unsplash.com/photo-1607990281513-2c110a25bd8c?w=400&h=400&fit=crop&crop=face", Description: "Stylish side bangs"},
	{ID: "8", Name: "Updo Bun", ImageURL: "https://images.unsplash.com/photo-1605462863863-10d9e47e15ee?w=400&h=400&fit=crop&crop=face", Description: "Elegant updo bun"},
}

// Static serves a fixed list of hairstyles from memory.
type Static struct {
	items []domain.Hairstyle
	byID  map[string]int
}

// NewStatic copies items into a catalog. Later duplicates of an id are
// ignored.
func NewStatic(items []domain.Hairstyle) *Static {
	s := &Static{byID: make(map[string]int, len(items))}
	for _, h := range items {
		if _, dup := s.byID[h.ID]; dup {
			continue
		}
		s.byID[h.ID] = len(s.items)
		s.items = append(s.items, h)
	}
	return s
}

// Default returns the built-in catalog.
func Default() *Static {
	return NewStatic(Templates)
}

func (s *Static) List(ctx context.Context) ([]domain.Hairstyle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.Hairstyle(nil), s.items...), nil
}

func (s *Static) Get(ctx context.Context, id string) (domain.Hairstyle, error) {
	if err := ctx.Err(); err != nil {
		return domain.Hairstyle{}, err
	}
	idx, ok := s.byID[id]
	if !ok {
		return domain.Hairstyle{}, fmt.Errorf("catalog: hairstyle %q: %w", id, domain.ErrNotFound)
	}
	return s.items[idx], nil
}

// Fallback reads from Primary and answers from Secondary whenever Primary
// fails, comes back empty or lacks the id.
type Fallback struct {
	Primary   domain.HairstyleCatalog
	Secondary domain.HairstyleCatalog
	Logger    *infra.Logger
}

func (f *Fallback) List(ctx context.Context) ([]domain.Hairstyle, error) {
	items, err := f.Primary.List(ctx)
	if err == nil && len(items) > 0 {
		return items, nil
	}
	if err != nil {
		f.warn(err, "catalog: primary list failed, using built-in templates")
	}
	return f.Secondary.List(ctx)
}

func (f *Fallback) Get(ctx context.Context, id string) (domain.Hairstyle, error) {
	h, err := f.Primary.Get(ctx, id)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		f.warn(err, "catalog: primary get failed, using built-in templates")
	}
	return f.Secondary.Get(ctx, id)
}

func (f *Fallback) warn(err error, msg string) {
	if f.Logger != nil {
		f.Logger.Warn().Err(err).Msg(msg)
	}
}

var (
	_ domain.HairstyleCatalog = (*Static)(nil)
	_ domain.HairstyleCatalog = (*Fallback)(nil)
)
