package rank

import (
	"context"
	"math"
	"sort"

	"jobpilot/internal/errors"
	"jobpilot/internal/types"
)

// Embedder turns text into an embedding vector. The ranker only needs this
// narrow slice of the AI provider.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// Ranker scores postings by semantic similarity to a profile embedding.
type Ranker struct {
	embedder Embedder
	logger   *errors.Logger
}

// NewRanker creates a ranker over the given embedder.
func NewRanker(embedder Embedder, logger *errors.Logger) *Ranker {
	return &Ranker{embedder: embedder, logger: logger}
}

// Rank scores every posting against the profile embedding and returns them in
// descending score order. The text embedded for a posting is its title and
// snippet. An embedding failure for one posting scores it 0.0 and never aborts
// the ranking. The sort is stable: postings with equal scores keep their
// insertion order.
func (r *Ranker) Rank(ctx context.Context, postings []types.Posting, profileEmbedding []float64) []types.ScoredPosting {
	scored := make([]types.ScoredPosting, 0, len(postings))

	for _, posting := range postings {
		text := posting.Title + " " + posting.Snippet

		score := 0.0
		vector, err := r.embedder.EmbedText(ctx, text)
		if err != nil {
			r.logger.Warn("Posting embedding failed, scoring 0.0",
				"url", posting.URL,
				"error", err.Error())
		} else {
			score = CosineSimilarity(profileEmbedding, vector)
		}

		scored = append(scored, types.ScoredPosting{Posting: posting, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths and zero vectors score 0.0. The result is always within
// [-1, 1].
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Clamp against floating point drift
	return math.Max(-1.0, math.Min(1.0, similarity))
}
