package consensus

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/tripmind/tripmind/pkg/domain"
)

// TripStore extends the gate's read surface with trip state. The engine
// treats the interaction log as the sole source of truth and reads it fresh
// on every call; there is no cached group state that could go stale.
type TripStore interface {
	Store
	ListGroupInteractions(ctx context.Context, userIDs []string, destination string) ([]domain.Interaction, error)
	GetTrip(ctx context.Context, id string) (*domain.Trip, error)
	AddParticipant(ctx context.Context, tripID, userID string) error
	MarkTripReady(ctx context.Context, tripID string) (bool, error)
}

// Engine merges N participants' preferences and confidence into one group
// decision. Every participant is weighted equally regardless of swipe
// volume.
type Engine struct {
	store TripStore
	gate  *Gate
	level float64 // overall group confidence level, percent
}

// DefaultGroupLevel is the overall confidence level required for allReady
const DefaultGroupLevel = 95.0

// NewEngine creates a group consensus engine
func NewEngine(store TripStore, gate *Gate, level float64) *Engine {
	if level <= 0 {
		level = DefaultGroupLevel
	}
	return &Engine{store: store, gate: gate, level: level}
}

// GroupConfidence computes per-participant metrics and the group ready
// decision. allReady requires every participant to individually meet the
// threshold AND the mean of per-participant ratios (capped at 1.0) to reach
// the configured level; the comparison is on the raw floating value, before
// any display rounding.
func (e *Engine) GroupConfidence(ctx context.Context, participantIDs []string, destination string) (*domain.GroupConfidence, error) {
	result := &domain.GroupConfidence{
		Participants: make(map[string]domain.ConfidenceMetrics, len(participantIDs)),
	}
	if len(participantIDs) == 0 {
		return result, nil
	}

	allMeet := true
	var ratioSum float64
	for _, participantID := range participantIDs {
		metrics, err := e.gate.Check(ctx, participantID, destination)
		if err != nil {
			return nil, err
		}
		result.Participants[participantID] = metrics

		if !metrics.MeetsThreshold {
			allMeet = false
		}
		ratio := metrics.Ratio
		if ratio > 1.0 {
			ratio = 1.0
		}
		ratioSum += ratio
	}

	mean := ratioSum / float64(len(participantIDs))
	result.AllReady = allMeet && mean*100 >= e.level
	return result, nil
}

// GroupPreferences merges participants' swipes: per-item counts of distinct
// participants, strict-majority consensus items and like/dislike conflicts.
// Conflicts are surfaced as compromise candidates, never dropped.
func (e *Engine) GroupPreferences(ctx context.Context, participantIDs []string, destination string) (*domain.GroupPreferences, error) {
	interactions, err := e.store.ListGroupInteractions(ctx, participantIDs, destination)
	if err != nil {
		return nil, fmt.Errorf("list group interactions: %w", err)
	}

	prefs := &domain.GroupPreferences{
		WeightedLikes:    make(map[string]int),
		WeightedDislikes: make(map[string]int),
		ConsensusItems:   []string{},
		ConflictItems:    []string{},
	}

	// one row per (user, item) makes these counts of distinct participants
	for _, inter := range interactions {
		switch inter.Action {
		case domain.ActionLike:
			prefs.WeightedLikes[inter.ItemID]++
		case domain.ActionDislike:
			prefs.WeightedDislikes[inter.ItemID]++
		}
	}

	half := float64(len(participantIDs)) / 2
	for itemID, likes := range prefs.WeightedLikes {
		if float64(likes) > half {
			prefs.ConsensusItems = append(prefs.ConsensusItems, itemID)
		}
		if prefs.WeightedDislikes[itemID] > 0 {
			prefs.ConflictItems = append(prefs.ConflictItems, itemID)
		}
	}
	sort.Strings(prefs.ConsensusItems)
	sort.Strings(prefs.ConflictItems)
	return prefs, nil
}

// Recompute re-evaluates a trip's group confidence from scratch and fires
// the one-shot collecting_preferences -> ready transition the first time
// allReady becomes true. The status never reverts, even when a later
// recomputation (e.g. after a new participant joins) yields allReady=false.
func (e *Engine) Recompute(ctx context.Context, tripID string) (*domain.GroupConfidence, error) {
	trip, err := e.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	confidence, err := e.GroupConfidence(ctx, trip.ParticipantIDs, trip.Destination)
	if err != nil {
		return nil, err
	}

	if confidence.AllReady {
		transitioned, err := e.store.MarkTripReady(ctx, tripID)
		if err != nil {
			return nil, err
		}
		if transitioned {
			log.Printf("[INFO] trip %s reached group consensus, status is now ready", tripID)
		}
	}
	return confidence, nil
}

// ParticipantJoined adds a user to a trip and recomputes the whole group
// from scratch so the new member's (possibly empty) preferences are fully
// reflected before the next ready check
func (e *Engine) ParticipantJoined(ctx context.Context, tripID, userID string) (*domain.GroupConfidence, error) {
	if err := e.store.AddParticipant(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return e.Recompute(ctx, tripID)
}

// SwipeRecorded recomputes group confidence after a swipe lands for any
// trip the swiping user participates in
func (e *Engine) SwipeRecorded(ctx context.Context, tripID string) (*domain.GroupConfidence, error) {
	return e.Recompute(ctx, tripID)
}
