package recommender

import (
	"github.com/tripmind/tripmind/pkg/domain"
)

// CollaborativeFilter scores candidates by what similar users liked.
// Similarity between users is Jaccard over their liked-item sets; any user
// with overlap above the configured minimum counts as a neighbor.
type CollaborativeFilter struct {
	minSimilarity float64
}

// NewCollaborativeFilter creates a collaborative filter with the given
// neighbor similarity cutoff (0 keeps every user with nonzero overlap)
func NewCollaborativeFilter(minSimilarity float64) *CollaborativeFilter {
	return &CollaborativeFilter{minSimilarity: minSimilarity}
}

// Score returns per-candidate scores in [0,1]. likedSets maps user id to
// the set of items that user liked at the destination; the target user's
// own set is taken from it as well. Candidates nobody covers score 0.
func (f *CollaborativeFilter) Score(user *domain.User, likedSets map[string]map[string]struct{}, candidates []domain.Item) map[string]float64 {
	scores := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		scores[c.ID] = 0
	}

	target := likedSets[user.ID]
	if len(target) == 0 {
		return scores
	}

	// neighbors share at least one liked item with the target user
	sims := make(map[string]float64)
	var simSum float64
	for userID, liked := range likedSets {
		if userID == user.ID {
			continue
		}
		sim := jaccard(target, liked)
		if sim > f.minSimilarity {
			sims[userID] = sim
			simSum += sim
		}
	}
	if simSum == 0 {
		return scores
	}

	// candidate score is the similarity mass of neighbors who liked it,
	// normalized by the maximum possible mass so the result stays in [0,1]
	for _, c := range candidates {
		var s float64
		for userID, sim := range sims {
			if _, liked := likedSets[userID][c.ID]; liked {
				s += sim
			}
		}
		scores[c.ID] = s / simSum
	}
	return scores
}

// jaccard computes |a∩b| / |a∪b|, 0 when the union is empty
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for id := range a {
		if _, ok := b[id]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
