package domain

import "time"

// DefaultAge is assumed when a user has no recorded age
const DefaultAge = 25

// Action is the kind of swipe a user can record on an item
type Action string

// swipe actions
const (
	ActionLike    Action = "like"
	ActionDislike Action = "dislike"
)

// Valid reports whether the action is one of the known swipe kinds
func (a Action) Valid() bool {
	return a == ActionLike || a == ActionDislike
}

// User holds a traveler's profile and derived preference sets. Liked and
// Disliked are disjoint: a later swipe on the same item moves it to the
// opposite set. Both are derived from the interaction log, never mutated
// directly.
type User struct {
	ID            string
	Age           int
	Liked         []string
	Disliked      []string
	TravelHistory []string
}

// Likes reports whether the user has liked the given item
func (u *User) Likes(itemID string) bool {
	for _, id := range u.Liked {
		if id == itemID {
			return true
		}
	}
	return false
}

// Swiped reports whether the user has already decided on the given item
func (u *User) Swiped(itemID string) bool {
	for _, id := range u.Liked {
		if id == itemID {
			return true
		}
	}
	for _, id := range u.Disliked {
		if id == itemID {
			return true
		}
	}
	return false
}

// EffectiveAge returns the user's age, falling back to DefaultAge
func (u *User) EffectiveAge() int {
	if u.Age <= 0 {
		return DefaultAge
	}
	return u.Age
}

// Interaction is one recorded swipe. The log is append-only in spirit but
// keyed by (UserID, ItemID): recording the same pair again overwrites the
// action (last write wins by timestamp), so counts derived from it are
// always over distinct items.
type Interaction struct {
	UserID      string
	ItemID      string
	Action      Action
	Destination string
	CreatedAt   time.Time
}
