package recommender

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmind/tripmind/pkg/domain"
)

// mockStore is an in-memory Store for engine tests
type mockStore struct {
	users        map[string]*domain.User
	items        map[string]domain.Item
	candidates   []domain.Item
	interactions []domain.Interaction
}

func (m *mockStore) Candidates(_ context.Context, _ string) ([]domain.Item, error) {
	return m.candidates, nil
}

func (m *mockStore) GetItems(_ context.Context, ids []string) ([]domain.Item, error) {
	result := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			result = append(result, item)
		}
	}
	return result, nil
}

func (m *mockStore) EnsureUser(_ context.Context, id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return &domain.User{ID: id, Age: domain.DefaultAge}, nil
}

func (m *mockStore) ListInteractionsByDestination(_ context.Context, _ string) ([]domain.Interaction, error) {
	return m.interactions, nil
}

func (m *mockStore) UpdateItemEmbedding(_ context.Context, id string, embedding []float64) error {
	if item, ok := m.items[id]; ok {
		item.Embedding = embedding
		m.items[id] = item
	}
	return nil
}

func parisStore() *mockStore {
	orsay := domain.Item{
		ID: "orsay", Name: "Musée d'Orsay", Location: "Paris", Category: "museum",
		EnergyLevel: domain.EnergyLow, Tags: []domain.Tag{domain.TagCulture, domain.TagArt},
	}
	louvre := domain.Item{
		ID: "louvre", Name: "Louvre", Location: "Paris", Category: "museum",
		EnergyLevel: domain.EnergyLow, Tags: []domain.Tag{domain.TagCulture, domain.TagArt},
	}
	club := domain.Item{
		ID: "club", Name: "Rex Club", Location: "Paris", Category: "nightclub",
		EnergyLevel: domain.EnergyHigh, Tags: []domain.Tag{domain.TagNightlife},
	}

	return &mockStore{
		users: map[string]*domain.User{
			"alice": {ID: "alice", Age: 30, Liked: []string{"orsay"}},
			"bob":   {ID: "bob", Age: 28, Liked: []string{"orsay", "louvre"}},
		},
		items:      map[string]domain.Item{"orsay": orsay, "louvre": louvre, "club": club},
		candidates: []domain.Item{orsay, louvre, club},
		interactions: []domain.Interaction{
			{UserID: "alice", ItemID: "orsay", Action: domain.ActionLike, Destination: "Paris"},
			{UserID: "bob", ItemID: "orsay", Action: domain.ActionLike, Destination: "Paris"},
			{UserID: "bob", ItemID: "louvre", Action: domain.ActionLike, Destination: "Paris"},
		},
	}
}

func TestEngineRecommend(t *testing.T) {
	t.Run("museum lover gets museum over nightclub", func(t *testing.T) {
		engine := New(parisStore(), nil, Config{})
		result, err := engine.Recommend(context.Background(), "alice", "Paris", 10)
		require.NoError(t, err)
		require.Len(t, result, 2, "orsay already swiped")

		assert.Equal(t, "louvre", result[0].ID)
		assert.Equal(t, "club", result[1].ID)
		assert.Greater(t, result[0].Score, result[1].Score)
	})

	t.Run("swiped items never come back", func(t *testing.T) {
		engine := New(parisStore(), nil, Config{})
		result, err := engine.Recommend(context.Background(), "bob", "Paris", 10)
		require.NoError(t, err)
		for _, si := range result {
			assert.NotContains(t, []string{"orsay", "louvre"}, si.ID)
		}
	})

	t.Run("topN caps the result", func(t *testing.T) {
		engine := New(parisStore(), nil, Config{})
		result, err := engine.Recommend(context.Background(), "alice", "Paris", 1)
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "louvre", result[0].ID)
	})

	t.Run("unknown user gets cold-start list", func(t *testing.T) {
		engine := New(parisStore(), nil, Config{})
		result, err := engine.Recommend(context.Background(), "stranger", "Paris", 10)
		require.NoError(t, err)
		assert.Len(t, result, 3, "nothing swiped, everything eligible")
	})

	t.Run("deterministic order on score ties", func(t *testing.T) {
		store := &mockStore{
			candidates: []domain.Item{{ID: "b"}, {ID: "a"}, {ID: "c"}},
		}
		engine := New(store, nil, Config{})
		result, err := engine.Recommend(context.Background(), "anyone", "Paris", 10)
		require.NoError(t, err)
		require.Len(t, result, 3)
		assert.Equal(t, "a", result[0].ID)
		assert.Equal(t, "b", result[1].ID)
		assert.Equal(t, "c", result[2].ID)
	})
}

func TestEngineGroupRecommend(t *testing.T) {
	t.Run("excludes union of swiped items", func(t *testing.T) {
		engine := New(parisStore(), nil, Config{})
		result, err := engine.GroupRecommend(context.Background(), []string{"alice", "bob"}, "Paris", 10)
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "club", result[0].ID)
	})

	t.Run("empty participant list rejected", func(t *testing.T) {
		engine := New(parisStore(), nil, Config{})
		_, err := engine.GroupRecommend(context.Background(), nil, "Paris", 10)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInsufficientData)
	})

	t.Run("merged score is mean of member scores", func(t *testing.T) {
		store := parisStore()
		engine := New(store, nil, Config{})

		single, err := engine.Recommend(context.Background(), "alice", "Paris", 10)
		require.NoError(t, err)

		group, err := engine.GroupRecommend(context.Background(), []string{"alice", "alice"}, "Paris", 10)
		require.NoError(t, err)

		// a group of one user (listed twice) averages to the same scores
		require.Equal(t, len(single), len(group))
		for i := range single {
			assert.Equal(t, single[i].ID, group[i].ID)
			assert.InDelta(t, single[i].Score, group[i].Score, 1e-9)
		}
	})
}

func TestEngineHighConfidenceItems(t *testing.T) {
	t.Run("liked items lead with full score", func(t *testing.T) {
		engine := New(parisStore(), nil, Config{HighConfidencePercentile: 0.9})
		result, err := engine.HighConfidenceItems(context.Background(), "alice", "Paris")
		require.NoError(t, err)
		require.NotEmpty(t, result)

		assert.Equal(t, "orsay", result[0].ID)
		assert.InDelta(t, 1.0, result[0].Score, 1e-9)

		seen := make(map[string]int)
		for _, si := range result {
			seen[si.ID]++
		}
		for id, count := range seen {
			assert.Equal(t, 1, count, "item %s reported twice", id)
		}
	})

	t.Run("zero scores never pass the cutoff", func(t *testing.T) {
		engine := New(parisStore(), nil, Config{HighConfidencePercentile: 0.9})
		result, err := engine.HighConfidenceItems(context.Background(), "alice", "Paris")
		require.NoError(t, err)
		for _, si := range result {
			assert.Positive(t, si.Score, "item %s has no signal behind it", si.ID)
		}
	})

	t.Run("cold start user gets an empty list", func(t *testing.T) {
		// with no likes and no neighbors every candidate scores zero, so the
		// percentile gate must not report the whole catalog as reliable
		engine := New(parisStore(), nil, Config{HighConfidencePercentile: 0.9})
		result, err := engine.HighConfidenceItems(context.Background(), "stranger", "Paris")
		require.NoError(t, err)
		assert.Empty(t, result)
	})
}

func TestEngineScoreAllSharedPool(t *testing.T) {
	// the three filters run in parallel over the same candidate slice, so
	// backend vectors must never land in the shared backing array
	store := parisStore()
	embedder := embedderFunc(func(_ context.Context, texts []string) ([][]float64, error) {
		vectors := make([][]float64, len(texts))
		for i := range texts {
			vectors[i] = []float64{1, 0}
		}
		return vectors, nil
	})
	engine := New(store, embedder, Config{})

	result, err := engine.Recommend(context.Background(), "alice", "Paris", 10)
	require.NoError(t, err)
	require.NotEmpty(t, result)

	for _, c := range store.candidates {
		assert.Empty(t, c.Embedding, "candidate pool mutated by a filter")
	}
}

func TestRankDedup(t *testing.T) {
	t.Run("duplicate ids collapse", func(t *testing.T) {
		items := []domain.Item{{ID: "a", Name: "One"}, {ID: "a", Name: "One"}}
		ranked := rank(items, map[string]float64{"a": 0.5}, 10)
		require.Len(t, ranked, 1)
	})

	t.Run("same display name keeps smallest id", func(t *testing.T) {
		items := []domain.Item{
			{ID: "z-louvre", Name: "Louvre"},
			{ID: "a-louvre", Name: " louvre "},
		}
		ranked := rank(items, map[string]float64{"z-louvre": 0.9, "a-louvre": 0.1}, 10)
		require.Len(t, ranked, 1)
		assert.Equal(t, "a-louvre", ranked[0].ID)
	})

	t.Run("empty names never clash", func(t *testing.T) {
		items := []domain.Item{{ID: "a"}, {ID: "b"}}
		ranked := rank(items, nil, 10)
		assert.Len(t, ranked, 2)
	})
}

func TestPercentile(t *testing.T) {
	ranked := []ScoredItem{{Score: 0.9}, {Score: 0.7}, {Score: 0.5}, {Score: 0.3}, {Score: 0.1}}
	assert.InDelta(t, 0.1, percentile(ranked, 0.0), 1e-9)
	assert.InDelta(t, 0.5, percentile(ranked, 0.5), 1e-9)
	assert.InDelta(t, 0.7, percentile(ranked, 0.9), 1e-9)
	assert.Zero(t, percentile(nil, 0.9))
}
