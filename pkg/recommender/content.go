package recommender

import (
	"math"
	"strings"

	"github.com/tripmind/tripmind/pkg/domain"
)

// ContentFilter scores candidates by feature overlap with the profile built
// from a user's liked items. Features are canonical tags, category and
// energy level; the closed tag vocabulary keeps the computation total.
type ContentFilter struct{}

// NewContentFilter creates a content-based filter
func NewContentFilter() *ContentFilter {
	return &ContentFilter{}
}

// Score returns per-candidate scores in [0,1] as the weighted cosine
// overlap between the candidate's feature set and the user's profile.
// With zero liked items every candidate scores 0; the aggregator covers
// cold start through the other filters.
func (f *ContentFilter) Score(liked, candidates []domain.Item) map[string]float64 {
	scores := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		scores[c.ID] = 0
	}
	if len(liked) == 0 {
		return scores
	}

	// profile weights are feature frequencies across liked items,
	// normalized so they sum to 1
	profile := make(map[string]float64)
	var total float64
	for i := range liked {
		for _, feat := range itemFeatures(&liked[i]) {
			profile[feat]++
			total++
		}
	}
	if total == 0 {
		return scores
	}
	var norm float64
	for feat := range profile {
		profile[feat] /= total
		norm += profile[feat] * profile[feat]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return scores
	}

	for i := range candidates {
		feats := itemFeatures(&candidates[i])
		if len(feats) == 0 {
			continue
		}
		var dot float64
		for _, feat := range feats {
			dot += profile[feat]
		}
		score := dot / (norm * math.Sqrt(float64(len(feats))))
		scores[candidates[i].ID] = clamp01(score)
	}
	return scores
}

// itemFeatures flattens an item into namespaced feature keys
func itemFeatures(item *domain.Item) []string {
	feats := make([]string, 0, len(item.Tags)+2)
	for _, t := range item.Tags {
		feats = append(feats, "tag:"+string(t))
	}
	if item.Category != "" {
		feats = append(feats, "category:"+strings.ToLower(item.Category))
	}
	feats = append(feats, "energy:"+string(item.EnergyLevel))
	return feats
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
