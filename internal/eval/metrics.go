// Package eval computes answer-quality metrics from retrieval output and a
// generated answer. Every function here is pure over its inputs; the only
// external call is the embedding lookup behind answer relevancy.
package eval

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golfrules-ai/internal/embedding"
	"golfrules-ai/internal/retrieval"
)

// outOfOrderPenalty is applied multiplicatively for every adjacent pair in
// the final ranking whose scores are not monotonically non-increasing.
// Given the ranker sorts its own output this should always be 1.0; a lower
// value in production logs means the fusion sort broke.
const outOfOrderPenalty = 0.8

// stopWords are excluded from faithfulness: they appear in any prose and
// say nothing about grounding.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
}

// Metrics holds the five answer-quality scores reported per query.
type Metrics struct {
	ContextRelevancy float64 `json:"context_relevancy"`
	ContextPrecision float64 `json:"context_precision"`
	AnswerRelevancy  float64 `json:"answer_relevancy"`
	Faithfulness     float64 `json:"faithfulness"`
	// CosineSimilarity is computed identically to AnswerRelevancy and
	// reported under both names for compatibility with the metrics schema.
	CosineSimilarity float64 `json:"cosine_similarity"`
}

// ContextRelevancy is the mean semantic similarity of the retrieved set.
func ContextRelevancy(results []retrieval.ScoredResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.SemanticScore
	}
	return sum / float64(len(results))
}

// ContextPrecision checks that final scores are non-increasing down the
// ranking, penalizing each adjacent inversion.
func ContextPrecision(results []retrieval.ScoredResult) float64 {
	if len(results) == 0 {
		return 0
	}
	precision := 1.0
	for i := 0; i < len(results)-1; i++ {
		if results[i].FinalScore < results[i+1].FinalScore {
			precision *= outOfOrderPenalty
		}
	}
	return precision
}

// Faithfulness is the fraction of the answer's content words (stop words
// removed) that literally appear, case-insensitively, in the concatenated
// retrieved context. Capped at 1.
func Faithfulness(results []retrieval.ScoredResult, answer string) float64 {
	var contextBuilder strings.Builder
	for i, r := range results {
		if i > 0 {
			contextBuilder.WriteString(" ")
		}
		contextBuilder.WriteString(r.Text)
	}
	contextText := strings.ToLower(contextBuilder.String())

	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(answer)) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		words[w] = struct{}{}
	}
	if len(words) == 0 {
		return 0
	}

	grounded := 0
	for w := range words {
		if strings.Contains(contextText, w) {
			grounded++
		}
	}

	faithfulness := float64(grounded) / float64(len(words))
	return math.Min(faithfulness, 1.0)
}

// AnswerRelevancy is the cosine similarity between the question and answer
// embeddings, both embedded in query mode.
func AnswerRelevancy(ctx context.Context, provider embedding.Provider, question, answer string) (float64, error) {
	questionVec, err := provider.EmbedQuery(ctx, question)
	if err != nil {
		return 0, fmt.Errorf("embedding question: %w", err)
	}
	answerVec, err := provider.EmbedQuery(ctx, answer)
	if err != nil {
		return 0, fmt.Errorf("embedding answer: %w", err)
	}
	return Cosine(questionVec, answerVec), nil
}

// Cosine is dot(a,b) / (|a|*|b|); zero-magnitude inputs score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Evaluate computes all five metrics for one answered query.
func Evaluate(ctx context.Context, provider embedding.Provider, question, answer string, results []retrieval.ScoredResult) (Metrics, error) {
	relevancy, err := AnswerRelevancy(ctx, provider, question, answer)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{
		ContextRelevancy: ContextRelevancy(results),
		ContextPrecision: ContextPrecision(results),
		AnswerRelevancy:  relevancy,
		Faithfulness:     Faithfulness(results, answer),
		CosineSimilarity: relevancy,
	}, nil
}
