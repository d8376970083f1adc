package consensus

import (
	"context"
	"fmt"

	"github.com/tripmind/tripmind/pkg/domain"
)

// Thresholds gate the single-user ready decision: a floor on absolute
// signal (MinLikes) and on selectivity (MinRatio). Policy constants,
// exposed as configuration.
type Thresholds struct {
	MinLikes int
	MinRatio float64
}

// DefaultThresholds are used when no thresholds are configured
var DefaultThresholds = Thresholds{MinLikes: 5, MinRatio: 0.3}

// Store is the read surface the confidence gate needs
type Store interface {
	ListInteractions(ctx context.Context, userID, destination string) ([]domain.Interaction, error)
}

// Gate decides per user whether enough swipes exist to proceed. It is
// stateless: every check reads the interaction log fresh.
type Gate struct {
	store      Store
	thresholds Thresholds
}

// NewGate creates a confidence gate
func NewGate(store Store, thresholds Thresholds) *Gate {
	if thresholds.MinLikes <= 0 {
		thresholds.MinLikes = DefaultThresholds.MinLikes
	}
	if thresholds.MinRatio <= 0 {
		thresholds.MinRatio = DefaultThresholds.MinRatio
	}
	return &Gate{store: store, thresholds: thresholds}
}

// Check computes confidence metrics for a user at a destination. Counts are
// over distinct items because the interaction log keeps one row per
// (user, item); recording the same swipe twice never double-counts.
func (g *Gate) Check(ctx context.Context, userID, destination string) (domain.ConfidenceMetrics, error) {
	interactions, err := g.store.ListInteractions(ctx, userID, destination)
	if err != nil {
		return domain.ConfidenceMetrics{}, fmt.Errorf("list interactions for %s: %w", userID, err)
	}

	metrics := domain.ConfidenceMetrics{TotalSwipes: len(interactions)}
	for _, inter := range interactions {
		if inter.Action == domain.ActionLike {
			metrics.Likes++
		}
	}
	if metrics.TotalSwipes > 0 {
		metrics.Ratio = float64(metrics.Likes) / float64(metrics.TotalSwipes)
	}
	metrics.MeetsThreshold = metrics.Likes >= g.thresholds.MinLikes && metrics.Ratio >= g.thresholds.MinRatio
	return metrics, nil
}
