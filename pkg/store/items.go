package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tripmind/tripmind/pkg/domain"
)

// item-related feature store operations

// itemRow is the database representation of a domain.Item
type itemRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Location    string         `db:"location"`
	Category    string         `db:"category"`
	Description string         `db:"description"`
	Tags        string         `db:"tags"`
	EnergyLevel string         `db:"energy_level"`
	AgeProfile  string         `db:"age_profile"`
	Embedding   sql.NullString `db:"embedding"`
	PriceRange  string         `db:"price_range"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r *itemRow) toDomain() (domain.Item, error) {
	item := domain.Item{
		ID:          r.ID,
		Name:        r.Name,
		Location:    r.Location,
		Category:    r.Category,
		Description: r.Description,
		EnergyLevel: domain.ParseEnergyLevel(r.EnergyLevel),
		PriceRange:  r.PriceRange,
	}

	var rawTags []string
	if err := json.Unmarshal([]byte(r.Tags), &rawTags); err != nil {
		return item, fmt.Errorf("unmarshal tags for item %s: %w", r.ID, err)
	}
	item.Tags = domain.CanonicalTags(rawTags)

	if err := json.Unmarshal([]byte(r.AgeProfile), &item.AgeProfile); err != nil {
		return item, fmt.Errorf("unmarshal age profile for item %s: %w", r.ID, err)
	}

	if r.Embedding.Valid && r.Embedding.String != "" {
		if err := json.Unmarshal([]byte(r.Embedding.String), &item.Embedding); err != nil {
			return item, fmt.Errorf("unmarshal embedding for item %s: %w", r.ID, err)
		}
	}
	return item, nil
}

func itemArgs(item *domain.Item) (tags, ageProfile string, embedding sql.NullString, err error) {
	rawTags := make([]string, len(item.Tags))
	for i, t := range item.Tags {
		rawTags[i] = string(t)
	}
	tagsData, err := json.Marshal(rawTags)
	if err != nil {
		return "", "", sql.NullString{}, fmt.Errorf("marshal tags: %w", err)
	}

	profile := item.AgeProfile
	if profile == nil {
		profile = map[string]float64{}
	}
	profileData, err := json.Marshal(profile)
	if err != nil {
		return "", "", sql.NullString{}, fmt.Errorf("marshal age profile: %w", err)
	}

	if len(item.Embedding) > 0 {
		embData, merr := json.Marshal(item.Embedding)
		if merr != nil {
			return "", "", sql.NullString{}, fmt.Errorf("marshal embedding: %w", merr)
		}
		embedding = sql.NullString{String: string(embData), Valid: true}
	}
	return string(tagsData), string(profileData), embedding, nil
}

// CreateItem inserts or replaces an item in the catalog
func (s *Store) CreateItem(ctx context.Context, item *domain.Item) error {
	tags, ageProfile, embedding, err := itemArgs(item)
	if err != nil {
		return err
	}

	query := `
		INSERT OR REPLACE INTO items (
			id, name, location, category, description, tags,
			energy_level, age_profile, embedding, price_range
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return s.withRetry(ctx, func() error {
		_, err := s.conn.ExecContext(ctx, query,
			item.ID, item.Name, item.Location, item.Category, item.Description,
			tags, string(item.EnergyLevel), ageProfile, embedding, item.PriceRange)
		if err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		return nil
	})
}

// GetItem retrieves a single item by id
func (s *Store) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	var row itemRow
	err := s.conn.GetContext(ctx, &row, "SELECT * FROM items WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	item, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItems retrieves items by ids, skipping ids that don't exist
func (s *Store) GetItems(ctx context.Context, ids []string) ([]domain.Item, error) {
	if len(ids) == 0 {
		return []domain.Item{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM items WHERE id IN (?) ORDER BY id", ids)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	query = s.conn.Rebind(query)

	var rows []itemRow
	if err := s.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	items := make([]domain.Item, 0, len(rows))
	for i := range rows {
		item, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Candidates returns all items for a destination ordered by id. Returns
// domain.ErrNotFound when the destination has no items; the caller is
// expected to fall back to a generic pool.
func (s *Store) Candidates(ctx context.Context, destination string) ([]domain.Item, error) {
	var rows []itemRow
	query := "SELECT * FROM items WHERE location = ? COLLATE NOCASE ORDER BY id"
	if err := s.conn.SelectContext(ctx, &rows, query, destination); err != nil {
		return nil, fmt.Errorf("get candidates: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no items for destination %q: %w", destination, domain.ErrNotFound)
	}

	items := make([]domain.Item, 0, len(rows))
	for i := range rows {
		item, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// UpdateItemEmbedding stores a freshly computed embedding for an item
func (s *Store) UpdateItemEmbedding(ctx context.Context, id string, embedding []float64) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}
	return s.withRetry(ctx, func() error {
		_, err := s.conn.ExecContext(ctx, "UPDATE items SET embedding = ? WHERE id = ?", string(data), id)
		if err != nil {
			return fmt.Errorf("update item embedding: %w", err)
		}
		return nil
	})
}
