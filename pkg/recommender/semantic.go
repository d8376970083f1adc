package recommender

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/tripmind/tripmind/pkg/domain"
)

// Embedder turns texts into embedding vectors. The semantic filter treats
// it as optional: a nil embedder or a failing backend degrades scores to
// zero instead of failing the pipeline.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// EmbeddingSaver persists freshly computed item vectors so the backend is
// not asked about the same item twice
type EmbeddingSaver interface {
	UpdateItemEmbedding(ctx context.Context, id string, embedding []float64) error
}

// SemanticFilter scores candidates by embedding-space nearness to the mean
// of the user's liked items
type SemanticFilter struct {
	embedder Embedder
	saver    EmbeddingSaver
	timeout  time.Duration
}

// NewSemanticFilter creates a semantic filter. embedder may be nil, in
// which case only stored item embeddings are used; saver may be nil to
// skip caching computed vectors.
func NewSemanticFilter(embedder Embedder, saver EmbeddingSaver, timeout time.Duration) *SemanticFilter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SemanticFilter{embedder: embedder, saver: saver, timeout: timeout}
}

// Score returns per-candidate cosine similarity to the query vector,
// clamped to [0,1]. With no liked embeddings the query vector is zero and
// every candidate scores 0. Backend failures are logged and swallowed.
func (f *SemanticFilter) Score(ctx context.Context, liked, candidates []domain.Item) map[string]float64 {
	scores := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		scores[c.ID] = 0
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	liked = f.fillEmbeddings(ctx, liked)
	query := meanVector(liked)
	if query == nil {
		return scores
	}

	candidates = f.fillEmbeddings(ctx, candidates)
	for i := range candidates {
		if len(candidates[i].Embedding) == 0 {
			continue
		}
		scores[candidates[i].ID] = clamp01(cosine(query, candidates[i].Embedding))
	}
	return scores
}

// fillEmbeddings computes missing item embeddings through the backend,
// leaving items untouched when the backend is absent or fails
func (f *SemanticFilter) fillEmbeddings(ctx context.Context, items []domain.Item) []domain.Item {
	if f.embedder == nil {
		return items
	}

	var missing []int
	var texts []string
	for i := range items {
		if len(items[i].Embedding) == 0 {
			missing = append(missing, i)
			texts = append(texts, items[i].EmbeddingText())
		}
	}
	if len(missing) == 0 {
		return items
	}

	vectors, err := f.embedder.Embed(ctx, texts)
	if err != nil {
		log.Printf("[WARN] embedding backend unavailable, semantic scores degraded: %v", err)
		return items
	}
	if len(vectors) != len(missing) {
		log.Printf("[WARN] embedding backend returned %d vectors for %d texts", len(vectors), len(missing))
		return items
	}

	// other filters read the caller's slice concurrently, so vectors go
	// into a copy instead of the shared backing array
	filled := make([]domain.Item, len(items))
	copy(filled, items)
	for n, i := range missing {
		filled[i].Embedding = vectors[n]
		if f.saver != nil {
			if err := f.saver.UpdateItemEmbedding(ctx, filled[i].ID, vectors[n]); err != nil {
				log.Printf("[WARN] failed to cache embedding for item %s: %v", filled[i].ID, err)
			}
		}
	}
	return filled
}

// meanVector averages the non-empty embeddings, nil when there are none
func meanVector(items []domain.Item) []float64 {
	var dim, count int
	for i := range items {
		if len(items[i].Embedding) > 0 {
			dim = len(items[i].Embedding)
			count++
		}
	}
	if count == 0 {
		return nil
	}

	mean := make([]float64, dim)
	for i := range items {
		emb := items[i].Embedding
		if len(emb) != dim {
			continue
		}
		for j, v := range emb {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(count)
	}
	return mean
}

// cosine computes cosine similarity of two vectors, 0 for mismatched
// dimensions or zero norms
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
