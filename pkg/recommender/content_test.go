package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripmind/tripmind/pkg/domain"
)

func TestContentFilterScore(t *testing.T) {
	museum := domain.Item{
		ID: "louvre", Category: "museum", EnergyLevel: domain.EnergyLow,
		Tags: []domain.Tag{domain.TagCulture, domain.TagArt},
	}
	anotherMuseum := domain.Item{
		ID: "orsay", Category: "museum", EnergyLevel: domain.EnergyLow,
		Tags: []domain.Tag{domain.TagCulture, domain.TagArt},
	}
	nightclub := domain.Item{
		ID: "club", Category: "nightclub", EnergyLevel: domain.EnergyHigh,
		Tags: []domain.Tag{domain.TagNightlife},
	}

	t.Run("cold start scores zero", func(t *testing.T) {
		f := NewContentFilter()
		scores := f.Score(nil, []domain.Item{museum, nightclub})
		assert.Zero(t, scores["louvre"])
		assert.Zero(t, scores["club"])
	})

	t.Run("museum lover prefers museums over nightclubs", func(t *testing.T) {
		f := NewContentFilter()
		scores := f.Score([]domain.Item{anotherMuseum}, []domain.Item{museum, nightclub})
		assert.Greater(t, scores["louvre"], scores["club"])
		assert.Zero(t, scores["club"], "no feature overlap at all")
	})

	t.Run("identical feature set scores one", func(t *testing.T) {
		f := NewContentFilter()
		scores := f.Score([]domain.Item{anotherMuseum}, []domain.Item{museum})
		assert.InDelta(t, 1.0, scores["louvre"], 1e-9)
	})

	t.Run("scores stay in unit range", func(t *testing.T) {
		f := NewContentFilter()
		liked := []domain.Item{museum, anotherMuseum, nightclub}
		scores := f.Score(liked, []domain.Item{museum, nightclub,
			{ID: "park", Category: "park", EnergyLevel: domain.EnergyLow, Tags: []domain.Tag{domain.TagNature}}})
		for id, s := range scores {
			assert.GreaterOrEqual(t, s, 0.0, id)
			assert.LessOrEqual(t, s, 1.0, id)
		}
	})
}

func TestItemFeatures(t *testing.T) {
	item := domain.Item{Category: "Museum", EnergyLevel: domain.EnergyLow, Tags: []domain.Tag{domain.TagArt}}
	feats := itemFeatures(&item)
	assert.Equal(t, []string{"tag:art", "category:museum", "energy:low"}, feats)
}
