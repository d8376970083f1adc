package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmind/tripmind/pkg/domain"
)

func TestStore_UpsertAndGetUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := &domain.User{ID: "alice", Age: 30, TravelHistory: []string{"Rome"}}
	require.NoError(t, s.UpsertUser(ctx, user))

	got, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 30, got.Age)
	assert.Equal(t, []string{"Rome"}, got.TravelHistory)
	assert.Empty(t, got.Liked)
	assert.Empty(t, got.Disliked)

	// upsert updates in place
	user.Age = 31
	require.NoError(t, s.UpsertUser(ctx, user))
	got, err = s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 31, got.Age)
}

func TestStore_GetUserNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_GetUserDerivesPreferences(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, &domain.User{ID: "alice", Age: 30}))
	require.NoError(t, s.RecordInteraction(ctx, &domain.Interaction{
		UserID: "alice", ItemID: "louvre", Action: domain.ActionLike, Destination: "Paris"}))
	require.NoError(t, s.RecordInteraction(ctx, &domain.Interaction{
		UserID: "alice", ItemID: "club", Action: domain.ActionDislike, Destination: "Paris"}))

	got, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"louvre"}, got.Liked)
	assert.Equal(t, []string{"club"}, got.Disliked)
}

func TestStore_GetUserSetsAreDisjoint(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, &domain.User{ID: "alice", Age: 30}))

	base := time.Now().UTC()
	require.NoError(t, s.RecordInteraction(ctx, &domain.Interaction{
		UserID: "alice", ItemID: "louvre", Action: domain.ActionLike, Destination: "Paris", CreatedAt: base}))
	// mind changed: the later dislike moves the item to the other set
	require.NoError(t, s.RecordInteraction(ctx, &domain.Interaction{
		UserID: "alice", ItemID: "louvre", Action: domain.ActionDislike, Destination: "Paris", CreatedAt: base.Add(time.Minute)}))

	got, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, got.Liked)
	assert.Equal(t, []string{"louvre"}, got.Disliked)
}

func TestStore_EnsureUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("creates default profile for unknown id", func(t *testing.T) {
		user, err := s.EnsureUser(ctx, "newcomer")
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultAge, user.Age)

		// persisted, not just returned
		got, err := s.GetUser(ctx, "newcomer")
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultAge, got.Age)
	})

	t.Run("returns existing profile untouched", func(t *testing.T) {
		require.NoError(t, s.UpsertUser(ctx, &domain.User{ID: "alice", Age: 42}))
		user, err := s.EnsureUser(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 42, user.Age)
	})
}
