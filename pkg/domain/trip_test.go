package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTripStatusCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from, to TripStatus
		expected bool
	}{
		{"collecting to ready", TripCollecting, TripReady, true},
		{"ready to active", TripReady, TripActive, true},
		{"collecting to active skips a step", TripCollecting, TripActive, false},
		{"ready back to collecting", TripReady, TripCollecting, false},
		{"active is terminal", TripActive, TripReady, false},
		{"unknown status", TripStatus("draft"), TripReady, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransition(tt.to))
		})
	}
}

func TestActionValid(t *testing.T) {
	assert.True(t, ActionLike.Valid())
	assert.True(t, ActionDislike.Valid())
	assert.False(t, Action("superlike").Valid())
	assert.False(t, Action("").Valid())
}

func TestUserEffectiveAge(t *testing.T) {
	assert.Equal(t, 30, (&User{Age: 30}).EffectiveAge())
	assert.Equal(t, DefaultAge, (&User{}).EffectiveAge())
	assert.Equal(t, DefaultAge, (&User{Age: -1}).EffectiveAge())
}

func TestUserSwiped(t *testing.T) {
	user := &User{Liked: []string{"a"}, Disliked: []string{"b"}}
	assert.True(t, user.Swiped("a"))
	assert.True(t, user.Swiped("b"))
	assert.False(t, user.Swiped("c"))
	assert.True(t, user.Likes("a"))
	assert.False(t, user.Likes("b"))
}
