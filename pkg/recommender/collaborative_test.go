package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripmind/tripmind/pkg/domain"
)

func set(ids ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a, b     map[string]struct{}
		expected float64
	}{
		{"identical sets", set("a", "b"), set("a", "b"), 1.0},
		{"disjoint sets", set("a"), set("b"), 0.0},
		{"half overlap", set("a", "b"), set("b", "c"), 1.0 / 3.0},
		{"both empty", set(), set(), 0.0},
		{"one empty", set("a"), set(), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCollaborativeFilterScore(t *testing.T) {
	candidates := []domain.Item{{ID: "louvre"}, {ID: "club"}, {ID: "park"}}

	t.Run("cold start scores zero", func(t *testing.T) {
		f := NewCollaborativeFilter(0)
		scores := f.Score(&domain.User{ID: "u1"}, map[string]map[string]struct{}{}, candidates)
		for _, c := range candidates {
			assert.Zero(t, scores[c.ID])
		}
	})

	t.Run("neighbor likes raise score", func(t *testing.T) {
		likedSets := map[string]map[string]struct{}{
			"u1": set("orsay"),
			"u2": set("orsay", "louvre"), // similar to u1, liked louvre
			"u3": set("club"),            // no overlap with u1
		}
		f := NewCollaborativeFilter(0)
		scores := f.Score(&domain.User{ID: "u1"}, likedSets, candidates)

		assert.Greater(t, scores["louvre"], 0.0)
		assert.Zero(t, scores["club"], "only disjoint users liked it")
		assert.Zero(t, scores["park"], "nobody covers it")
	})

	t.Run("full neighbor agreement scores one", func(t *testing.T) {
		likedSets := map[string]map[string]struct{}{
			"u1": set("orsay"),
			"u2": set("orsay", "louvre"),
			"u3": set("orsay", "louvre"),
		}
		f := NewCollaborativeFilter(0)
		scores := f.Score(&domain.User{ID: "u1"}, likedSets, candidates)
		assert.InDelta(t, 1.0, scores["louvre"], 1e-9, "every neighbor liked it")
	})

	t.Run("scores stay in unit range", func(t *testing.T) {
		likedSets := map[string]map[string]struct{}{
			"u1": set("a", "b"),
			"u2": set("a", "louvre"),
			"u3": set("b", "louvre", "club"),
			"u4": set("a", "b", "park"),
		}
		f := NewCollaborativeFilter(0)
		scores := f.Score(&domain.User{ID: "u1"}, likedSets, candidates)
		for id, s := range scores {
			assert.GreaterOrEqual(t, s, 0.0, id)
			assert.LessOrEqual(t, s, 1.0, id)
		}
	})

	t.Run("similarity cutoff drops weak neighbors", func(t *testing.T) {
		likedSets := map[string]map[string]struct{}{
			"u1": set("a", "b", "c", "d", "e", "f", "g", "h", "i"),
			"u2": set("a", "louvre"), // jaccard 1/10
		}
		f := NewCollaborativeFilter(0.5)
		scores := f.Score(&domain.User{ID: "u1"}, likedSets, candidates)
		assert.Zero(t, scores["louvre"])
	})
}
