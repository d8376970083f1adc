package domain

import "strings"

// EnergyLevel describes how physically demanding an item is
type EnergyLevel string

// known energy levels
const (
	EnergyLow      EnergyLevel = "low"
	EnergyModerate EnergyLevel = "moderate"
	EnergyHigh     EnergyLevel = "high"
)

// ParseEnergyLevel normalizes a raw energy level value, defaulting to moderate
// for anything outside the closed set
func ParseEnergyLevel(s string) EnergyLevel {
	switch EnergyLevel(strings.ToLower(strings.TrimSpace(s))) {
	case EnergyLow:
		return EnergyLow
	case EnergyHigh:
		return EnergyHigh
	default:
		return EnergyModerate
	}
}

// Item represents a place or activity available at a destination.
// Items are immutable once loaded for a destination; the candidate pool for
// a query is all items whose location matches the requested destination.
type Item struct {
	ID          string
	Name        string
	Location    string
	Category    string
	Description string
	Tags        []Tag
	EnergyLevel EnergyLevel
	AgeProfile  map[string]float64 // age bracket -> multiplier hint
	Embedding   []float64
	PriceRange  string
}

// NormalizedName returns the lowercase trimmed display name used for
// deduplication of items that share the same name
func (i *Item) NormalizedName() string {
	return strings.ToLower(strings.TrimSpace(i.Name))
}

// HasTag reports whether the item carries the given canonical tag
func (i *Item) HasTag(tag Tag) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// EmbeddingText builds the text representation of an item used by the
// embedding backend when the item has no stored vector
func (i *Item) EmbeddingText() string {
	parts := []string{i.Name, i.Category, i.Description, string(i.EnergyLevel)}
	for _, t := range i.Tags {
		parts = append(parts, string(t))
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
