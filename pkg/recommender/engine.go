package recommender

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tripmind/tripmind/pkg/domain"
)

// Store is the surface the engine needs from the feature store
type Store interface {
	Candidates(ctx context.Context, destination string) ([]domain.Item, error)
	GetItems(ctx context.Context, ids []string) ([]domain.Item, error)
	EnsureUser(ctx context.Context, id string) (*domain.User, error)
	ListInteractionsByDestination(ctx context.Context, destination string) ([]domain.Interaction, error)
	UpdateItemEmbedding(ctx context.Context, id string, embedding []float64) error
}

// Weights combines the three filter scores into the raw score. They are
// configuration, not hardcoded law.
type Weights struct {
	Collaborative float64
	Content       float64
	Semantic      float64
}

// DefaultWeights are the fixture weights used when none are configured
var DefaultWeights = Weights{Collaborative: 0.4, Content: 0.35, Semantic: 0.25}

// Config holds engine tunables
type Config struct {
	Weights                  Weights
	MinSimilarity            float64       // collaborative neighbor cutoff
	SemanticTimeout          time.Duration // bounded timeout for the embedding backend
	HighConfidencePercentile float64       // quantile gate for high-confidence items
}

// Engine is the hybrid score aggregator: it fans the candidate pool out to
// the three filters in parallel, combines the scores with configured
// weights, applies the age multiplier and produces the ranked list.
type Engine struct {
	store    Store
	collab   *CollaborativeFilter
	content  *ContentFilter
	semantic *SemanticFilter
	age      *AgeScorer
	weights  Weights
	highPct  float64
}

// ScoredItem is an item with its final aggregated score
type ScoredItem struct {
	domain.Item
	Score float64
}

// New creates a recommendation engine. embedder may be nil; the semantic
// filter then relies on stored embeddings only.
func New(store Store, embedder Embedder, cfg Config) *Engine {
	weights := cfg.Weights
	if weights.Collaborative == 0 && weights.Content == 0 && weights.Semantic == 0 {
		weights = DefaultWeights
	}
	highPct := cfg.HighConfidencePercentile
	if highPct <= 0 || highPct >= 1 {
		highPct = 0.9
	}

	return &Engine{
		store:    store,
		collab:   NewCollaborativeFilter(cfg.MinSimilarity),
		content:  NewContentFilter(),
		semantic: NewSemanticFilter(embedder, store, cfg.SemanticTimeout),
		age:      NewAgeScorer(),
		weights:  weights,
		highPct:  highPct,
	}
}

// Recommend returns the top-N ranked items for a user at a destination.
// The result never includes an item the user has already swiped, its length
// is at most min(topN, eligible candidates), and the ordering is
// deterministic (score descending, item id ascending on ties).
func (e *Engine) Recommend(ctx context.Context, userID, destination string, topN int) ([]ScoredItem, error) {
	user, err := e.store.EnsureUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	candidates, err := e.store.Candidates(ctx, destination)
	if err != nil {
		return nil, err
	}

	scores, err := e.scoreAll(ctx, user, destination, candidates)
	if err != nil {
		return nil, err
	}

	eligible := excludeSwiped(candidates, []*domain.User{user})
	return rank(eligible, scores, topN), nil
}

// GroupRecommend runs the aggregator once per participant and merges the
// final scores by normalized sum (per-item sum divided by participant
// count). Items any participant has already swiped are excluded.
func (e *Engine) GroupRecommend(ctx context.Context, participantIDs []string, destination string, topN int) ([]ScoredItem, error) {
	if len(participantIDs) == 0 {
		return nil, fmt.Errorf("no participants: %w", domain.ErrInsufficientData)
	}

	candidates, err := e.store.Candidates(ctx, destination)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]float64, len(candidates))
	users := make([]*domain.User, 0, len(participantIDs))
	for _, participantID := range participantIDs {
		user, err := e.store.EnsureUser(ctx, participantID)
		if err != nil {
			return nil, fmt.Errorf("load participant %s: %w", participantID, err)
		}
		users = append(users, user)

		scores, err := e.scoreAll(ctx, user, destination, candidates)
		if err != nil {
			return nil, err
		}
		for id, score := range scores {
			merged[id] += score
		}
	}
	for id := range merged {
		merged[id] /= float64(len(users))
	}

	eligible := excludeSwiped(candidates, users)
	return rank(eligible, merged, topN), nil
}

// HighConfidenceItems returns the items reliable enough to feed itinerary
// generation: everything the user liked (reported with score 1.0) plus any
// ranked item at or above the configured percentile of the full ranking.
func (e *Engine) HighConfidenceItems(ctx context.Context, userID, destination string) ([]ScoredItem, error) {
	user, err := e.store.EnsureUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	candidates, err := e.store.Candidates(ctx, destination)
	if err != nil {
		return nil, err
	}

	scores, err := e.scoreAll(ctx, user, destination, candidates)
	if err != nil {
		return nil, err
	}
	ranked := rank(excludeSwiped(candidates, []*domain.User{user}), scores, len(candidates))

	result := make([]ScoredItem, 0, len(user.Liked)+len(ranked))
	seen := make(map[string]struct{})

	likedItems, err := e.store.GetItems(ctx, user.Liked)
	if err != nil {
		return nil, fmt.Errorf("load liked items: %w", err)
	}
	for _, item := range likedItems {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		result = append(result, ScoredItem{Item: item, Score: 1.0})
	}

	cutoff := percentile(ranked, e.highPct)
	for _, si := range ranked {
		if si.Score < cutoff || si.Score <= 0 {
			break // ranked is sorted descending; a zero score carries no signal
		}
		if _, ok := seen[si.ID]; ok {
			continue
		}
		seen[si.ID] = struct{}{}
		result = append(result, si)
	}
	return result, nil
}

// scoreAll runs the three filters concurrently over the full candidate pool
// and combines them into final scores. Filters have no data dependency on
// each other; the only synchronization is the aggregation join point.
func (e *Engine) scoreAll(ctx context.Context, user *domain.User, destination string, candidates []domain.Item) (map[string]float64, error) {
	interactions, err := e.store.ListInteractionsByDestination(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	likedSets := likedSetsByUser(interactions)

	likedItems, err := e.store.GetItems(ctx, user.Liked)
	if err != nil {
		return nil, fmt.Errorf("load liked items: %w", err)
	}

	var cfScores, cbScores, semScores map[string]float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cfScores = e.collab.Score(user, likedSets, candidates)
		return nil
	})
	g.Go(func() error {
		cbScores = e.content.Score(likedItems, candidates)
		return nil
	})
	g.Go(func() error {
		semScores = e.semantic.Score(gctx, likedItems, candidates)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	age := user.EffectiveAge()
	final := make(map[string]float64, len(candidates))
	for i := range candidates {
		id := candidates[i].ID
		raw := e.weights.Collaborative*cfScores[id] +
			e.weights.Content*cbScores[id] +
			e.weights.Semantic*semScores[id]
		final[id] = raw * e.age.Multiplier(age, &candidates[i])
	}
	return final, nil
}

// likedSetsByUser builds per-user liked item sets from destination
// interactions
func likedSetsByUser(interactions []domain.Interaction) map[string]map[string]struct{} {
	sets := make(map[string]map[string]struct{})
	for _, inter := range interactions {
		if inter.Action != domain.ActionLike {
			continue
		}
		if sets[inter.UserID] == nil {
			sets[inter.UserID] = make(map[string]struct{})
		}
		sets[inter.UserID][inter.ItemID] = struct{}{}
	}
	return sets
}

// excludeSwiped drops items any of the given users has already decided on
func excludeSwiped(candidates []domain.Item, users []*domain.User) []domain.Item {
	swiped := make(map[string]struct{})
	for _, user := range users {
		for _, id := range user.Liked {
			swiped[id] = struct{}{}
		}
		for _, id := range user.Disliked {
			swiped[id] = struct{}{}
		}
	}

	eligible := make([]domain.Item, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := swiped[c.ID]; ok {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible
}

// rank deduplicates by id and then by normalized display name (candidates
// are walked in id-ascending order, so the smallest id wins a name clash),
// sorts by score descending with id-ascending tiebreak and cuts to topN
func rank(candidates []domain.Item, scores map[string]float64, topN int) []ScoredItem {
	byID := make([]domain.Item, len(candidates))
	copy(byID, candidates)
	sort.Slice(byID, func(i, j int) bool { return byID[i].ID < byID[j].ID })

	seenIDs := make(map[string]struct{}, len(byID))
	seenNames := make(map[string]struct{}, len(byID))
	ranked := make([]ScoredItem, 0, len(byID))
	for i := range byID {
		if _, ok := seenIDs[byID[i].ID]; ok {
			continue
		}
		seenIDs[byID[i].ID] = struct{}{}
		if name := byID[i].NormalizedName(); name != "" {
			if _, ok := seenNames[name]; ok {
				continue
			}
			seenNames[name] = struct{}{}
		}
		ranked = append(ranked, ScoredItem{Item: byID[i], Score: scores[byID[i].ID]})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// percentile returns the score value at the given quantile of the ranked
// list (which is sorted descending), 0 for an empty list
func percentile(ranked []ScoredItem, pct float64) float64 {
	if len(ranked) == 0 {
		return 0
	}
	ascending := make([]float64, len(ranked))
	for i, si := range ranked {
		ascending[len(ranked)-1-i] = si.Score
	}
	idx := int(pct * float64(len(ascending)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(ascending) {
		idx = len(ascending) - 1
	}
	return ascending[idx]
}
