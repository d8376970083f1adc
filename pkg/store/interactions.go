package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tripmind/tripmind/pkg/domain"
)

// interaction log operations. The log is keyed by (user_id, item_id) so
// recording a swipe is an idempotent upsert: the same swipe recorded twice
// changes nothing, and a conflicting swipe resolves last-write-wins by
// timestamp.

type interactionRow struct {
	UserID      string    `db:"user_id"`
	ItemID      string    `db:"item_id"`
	Action      string    `db:"action"`
	Destination string    `db:"destination"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *interactionRow) toDomain() domain.Interaction {
	return domain.Interaction{
		UserID:      r.UserID,
		ItemID:      r.ItemID,
		Action:      domain.Action(r.Action),
		Destination: r.Destination,
		CreatedAt:   r.CreatedAt,
	}
}

// RecordInteraction upserts a swipe. An older record never overwrites a
// newer one, so concurrent swipes by the same user on the same item resolve
// deterministically to the most recent action.
func (s *Store) RecordInteraction(ctx context.Context, inter *domain.Interaction) error {
	if !inter.Action.Valid() {
		return fmt.Errorf("invalid action %q", inter.Action)
	}
	if inter.CreatedAt.IsZero() {
		inter.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO interactions (user_id, item_id, action, destination, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, item_id) DO UPDATE SET
			action = excluded.action,
			destination = excluded.destination,
			created_at = excluded.created_at
		WHERE excluded.created_at >= interactions.created_at`

	return s.withRetry(ctx, func() error {
		_, err := s.conn.ExecContext(ctx, query,
			inter.UserID, inter.ItemID, string(inter.Action), inter.Destination, inter.CreatedAt)
		if err != nil {
			return fmt.Errorf("record interaction: %w", err)
		}
		return nil
	})
}

// ListInteractions returns a user's interactions, optionally filtered by
// destination (empty destination means all)
func (s *Store) ListInteractions(ctx context.Context, userID, destination string) ([]domain.Interaction, error) {
	query := "SELECT * FROM interactions WHERE user_id = ?"
	args := []interface{}{userID}
	if destination != "" {
		query += " AND destination = ? COLLATE NOCASE"
		args = append(args, destination)
	}
	query += " ORDER BY created_at, item_id"

	var rows []interactionRow
	if err := s.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}

	result := make([]domain.Interaction, len(rows))
	for i := range rows {
		result[i] = rows[i].toDomain()
	}
	return result, nil
}

// ListInteractionsByDestination returns all users' interactions for a
// destination; the collaborative filter builds neighbor liked-sets from it
func (s *Store) ListInteractionsByDestination(ctx context.Context, destination string) ([]domain.Interaction, error) {
	var rows []interactionRow
	query := "SELECT * FROM interactions WHERE destination = ? COLLATE NOCASE ORDER BY user_id, item_id"
	if err := s.conn.SelectContext(ctx, &rows, query, destination); err != nil {
		return nil, fmt.Errorf("list interactions by destination: %w", err)
	}

	result := make([]domain.Interaction, len(rows))
	for i := range rows {
		result[i] = rows[i].toDomain()
	}
	return result, nil
}

// ListGroupInteractions returns interactions for a set of participants at a
// destination
func (s *Store) ListGroupInteractions(ctx context.Context, userIDs []string, destination string) ([]domain.Interaction, error) {
	if len(userIDs) == 0 {
		return []domain.Interaction{}, nil
	}

	query, args, err := sqlx.In(
		"SELECT * FROM interactions WHERE user_id IN (?) AND destination = ? COLLATE NOCASE ORDER BY user_id, item_id",
		userIDs, destination)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	query = s.conn.Rebind(query)

	var rows []interactionRow
	if err := s.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list group interactions: %w", err)
	}

	result := make([]domain.Interaction, len(rows))
	for i := range rows {
		result[i] = rows[i].toDomain()
	}
	return result, nil
}
