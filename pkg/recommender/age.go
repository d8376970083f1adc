package recommender

import "github.com/tripmind/tripmind/pkg/domain"

// AgeScorer computes an age-appropriateness multiplier for an item. The
// rules are soft boosts and penalties, never a hard filter, and multiple
// matching rules compound multiplicatively (family-friendly nightlife gets
// both factors).
type AgeScorer struct{}

// NewAgeScorer creates an age suitability scorer
func NewAgeScorer() *AgeScorer {
	return &AgeScorer{}
}

// Multiplier returns the compound multiplier for the given age and item,
// 1.0 when no rule matches
func (s *AgeScorer) Multiplier(age int, item *domain.Item) float64 {
	multiplier := 1.0

	switch item.EnergyLevel {
	case domain.EnergyHigh:
		switch {
		case age >= 18 && age <= 35:
			multiplier *= 1.3
		case age >= 51:
			multiplier *= 0.7
		}
	case domain.EnergyLow:
		multiplier *= 1.1
	}

	if item.HasTag(domain.TagFamilyFriendly) && age >= 25 && age <= 45 {
		multiplier *= 1.2
	}

	return multiplier
}
