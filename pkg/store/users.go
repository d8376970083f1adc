package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tripmind/tripmind/pkg/domain"
)

// user-related feature store operations

type userRow struct {
	ID            string `db:"id"`
	Age           int    `db:"age"`
	TravelHistory string `db:"travel_history"`
}

// UpsertUser creates a user or updates age and travel history for an
// existing one. Liked/disliked sets are not stored here, they are derived
// from the interaction log on read.
func (s *Store) UpsertUser(ctx context.Context, user *domain.User) error {
	history := user.TravelHistory
	if history == nil {
		history = []string{}
	}
	historyData, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal travel history: %w", err)
	}

	query := `
		INSERT INTO users (id, age, travel_history) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET age = excluded.age, travel_history = excluded.travel_history`

	return s.withRetry(ctx, func() error {
		_, err := s.conn.ExecContext(ctx, query, user.ID, user.EffectiveAge(), string(historyData))
		if err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		return nil
	})
}

// GetUser loads a user profile with liked/disliked sets derived from the
// interaction log. The sets are disjoint by construction: the log keeps a
// single latest action per (user, item).
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var row userRow
	err := s.conn.GetContext(ctx, &row, "SELECT id, age, travel_history FROM users WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	user := &domain.User{ID: row.ID, Age: row.Age}
	if err := json.Unmarshal([]byte(row.TravelHistory), &user.TravelHistory); err != nil {
		return nil, fmt.Errorf("unmarshal travel history for user %s: %w", id, err)
	}

	interactions, err := s.ListInteractions(ctx, id, "")
	if err != nil {
		return nil, err
	}
	for _, inter := range interactions {
		switch inter.Action {
		case domain.ActionLike:
			user.Liked = append(user.Liked, inter.ItemID)
		case domain.ActionDislike:
			user.Disliked = append(user.Disliked, inter.ItemID)
		}
	}
	return user, nil
}

// EnsureUser returns the user, creating a default profile (age 25) when the
// id is unknown
func (s *Store) EnsureUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	user = &domain.User{ID: id, Age: domain.DefaultAge}
	if err := s.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
