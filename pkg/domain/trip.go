package domain

// TripStatus is the lifecycle state of a trip. Transitions only move
// forward: collecting_preferences -> ready -> active.
type TripStatus string

// trip statuses
const (
	TripCollecting TripStatus = "collecting_preferences"
	TripReady      TripStatus = "ready"
	TripActive     TripStatus = "active"
)

// CanTransition reports whether moving from the current status to the target
// is a forward transition
func (s TripStatus) CanTransition(to TripStatus) bool {
	order := map[TripStatus]int{TripCollecting: 0, TripReady: 1, TripActive: 2}
	from, ok1 := order[s]
	next, ok2 := order[to]
	return ok1 && ok2 && next == from+1
}

// Trip references an externally owned trip entity: the engine reads
// participants and drives the status forward, nothing else.
type Trip struct {
	ID             string
	Destination    string
	ParticipantIDs []string
	Status         TripStatus
}

// ConfidenceMetrics is derived per user and destination, never stored
type ConfidenceMetrics struct {
	TotalSwipes    int     `json:"total_swipes"`
	Likes          int     `json:"likes"`
	Ratio          float64 `json:"ratio"`
	MeetsThreshold bool    `json:"meets_threshold"`
}

// GroupConfidence aggregates per-participant confidence into the group
// ready decision
type GroupConfidence struct {
	AllReady     bool                         `json:"all_ready"`
	Participants map[string]ConfidenceMetrics `json:"participants"`
}

// GroupPreferences merges participants' swipes per trip. WeightedLikes and
// WeightedDislikes count distinct participants per item. ConsensusItems are
// liked by a strict majority. ConflictItems appear in one participant's
// likes and another's dislikes; they are surfaced as compromise candidates,
// never dropped.
type GroupPreferences struct {
	WeightedLikes    map[string]int `json:"weighted_likes"`
	WeightedDislikes map[string]int `json:"weighted_dislikes"`
	ConsensusItems   []string       `json:"consensus_items"`
	ConflictItems    []string       `json:"conflict_items"`
}
