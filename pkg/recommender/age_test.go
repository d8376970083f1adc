package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripmind/tripmind/pkg/domain"
)

func TestAgeScorerMultiplier(t *testing.T) {
	scorer := NewAgeScorer()

	highEnergy := domain.Item{EnergyLevel: domain.EnergyHigh}
	lowEnergy := domain.Item{EnergyLevel: domain.EnergyLow}
	moderate := domain.Item{EnergyLevel: domain.EnergyModerate}
	familyPark := domain.Item{EnergyLevel: domain.EnergyModerate, Tags: []domain.Tag{domain.TagFamilyFriendly}}

	tests := []struct {
		name     string
		age      int
		item     domain.Item
		expected float64
	}{
		{"high energy boost for young adult", 25, highEnergy, 1.3},
		{"high energy boost lower bound", 18, highEnergy, 1.3},
		{"high energy boost upper bound", 35, highEnergy, 1.3},
		{"high energy neutral in between", 45, highEnergy, 1.0},
		{"high energy penalty from 51", 51, highEnergy, 0.7},
		{"high energy penalty for senior", 70, highEnergy, 0.7},
		{"low energy boost regardless of age", 70, lowEnergy, 1.1},
		{"low energy boost for young adult", 20, lowEnergy, 1.1},
		{"moderate energy neutral", 30, moderate, 1.0},
		{"family boost in range", 30, familyPark, 1.2},
		{"family boost lower bound", 25, familyPark, 1.2},
		{"family boost upper bound", 45, familyPark, 1.2},
		{"family neutral outside range", 22, familyPark, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, scorer.Multiplier(tt.age, &tt.item), 1e-9)
		})
	}

	t.Run("matching rules compound", func(t *testing.T) {
		// family-friendly high-energy activity for a 30-year-old gets both factors
		item := domain.Item{EnergyLevel: domain.EnergyHigh, Tags: []domain.Tag{domain.TagFamilyFriendly}}
		assert.InDelta(t, 1.3*1.2, scorer.Multiplier(30, &item), 1e-9)

		// low-energy family-friendly garden for the same user
		garden := domain.Item{EnergyLevel: domain.EnergyLow, Tags: []domain.Tag{domain.TagFamilyFriendly}}
		assert.InDelta(t, 1.1*1.2, scorer.Multiplier(30, &garden), 1e-9)
	})
}
