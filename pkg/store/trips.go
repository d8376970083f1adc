package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tripmind/tripmind/pkg/domain"
)

// trip state operations. The engine does not own trips, it only reads
// participants and drives the status forward.

// CreateTrip creates a trip in collecting_preferences with its initial
// participants (the owner included)
func (s *Store) CreateTrip(ctx context.Context, trip *domain.Trip) error {
	return s.withRetry(ctx, func() error {
		_, err := s.conn.ExecContext(ctx,
			"INSERT INTO trips (id, destination, status) VALUES (?, ?, ?)",
			trip.ID, trip.Destination, string(domain.TripCollecting))
		if err != nil {
			return fmt.Errorf("create trip: %w", err)
		}
		for _, userID := range trip.ParticipantIDs {
			if _, err := s.conn.ExecContext(ctx,
				"INSERT OR IGNORE INTO trip_participants (trip_id, user_id) VALUES (?, ?)",
				trip.ID, userID); err != nil {
				return fmt.Errorf("add trip participant: %w", err)
			}
		}
		return nil
	})
}

// GetTrip loads a trip with its participant ids
func (s *Store) GetTrip(ctx context.Context, id string) (*domain.Trip, error) {
	var row struct {
		ID          string `db:"id"`
		Destination string `db:"destination"`
		Status      string `db:"status"`
	}
	err := s.conn.GetContext(ctx, &row, "SELECT id, destination, status FROM trips WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}

	var participants []string
	err = s.conn.SelectContext(ctx, &participants,
		"SELECT user_id FROM trip_participants WHERE trip_id = ? ORDER BY joined_at, user_id", id)
	if err != nil {
		return nil, fmt.Errorf("get trip participants: %w", err)
	}

	return &domain.Trip{
		ID:             row.ID,
		Destination:    row.Destination,
		ParticipantIDs: participants,
		Status:         domain.TripStatus(row.Status),
	}, nil
}

// AddParticipant adds a user to a trip, idempotently
func (s *Store) AddParticipant(ctx context.Context, tripID, userID string) error {
	return s.withRetry(ctx, func() error {
		// the existence check comes first: OR IGNORE does not suppress the
		// foreign key violation an unknown trip id would cause
		var exists bool
		if err := s.conn.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM trips WHERE id = ?)", tripID); err != nil {
			return fmt.Errorf("check trip: %w", err)
		}
		if !exists {
			return fmt.Errorf("trip %s: %w", tripID, domain.ErrNotFound)
		}

		_, err := s.conn.ExecContext(ctx,
			"INSERT OR IGNORE INTO trip_participants (trip_id, user_id) VALUES (?, ?)",
			tripID, userID)
		if err != nil {
			return fmt.Errorf("add participant: %w", err)
		}
		return nil
	})
}

// MarkTripReady transitions a trip from collecting_preferences to ready.
// The guard in the WHERE clause makes the transition fire exactly once and
// never revert. Returns true when this call performed the transition.
func (s *Store) MarkTripReady(ctx context.Context, tripID string) (bool, error) {
	var transitioned bool
	err := s.withRetry(ctx, func() error {
		res, err := s.conn.ExecContext(ctx,
			"UPDATE trips SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?",
			string(domain.TripReady), tripID, string(domain.TripCollecting))
		if err != nil {
			return fmt.Errorf("mark trip ready: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		transitioned = affected > 0
		return nil
	})
	return transitioned, err
}
