// Package qa orchestrates one question/answer round trip: retrieve context,
// synthesize an answer, evaluate it, and log everything for the stats API.
package qa

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golfrules-ai/internal/contextutil"
	"golfrules-ai/internal/embedding"
	"golfrules-ai/internal/eval"
	"golfrules-ai/internal/llm"
	"golfrules-ai/internal/retrieval"
	"golfrules-ai/internal/storage"
)

const systemPrompt = `You are an expert golf rules assistant with deep knowledge of the USGA Rules of Golf.

Your role is to:
1. Answer golf rules questions accurately based on the provided context
2. Always cite specific rule numbers and sections
3. Explain the reasoning behind the rules when helpful
4. Be concise but thorough
5. If the context doesn't contain enough information, say so honestly

When answering:
- Start with a direct answer
- Cite the specific rule number (e.g., "According to Rule 13.1c...")
- Provide relevant details from the rule text
- If applicable, mention any exceptions or special cases
- Use clear, simple language that golfers can understand

Remember: You must base your answer on the provided context. Do not make up rule citations.`

const notFoundAnswer = "I couldn't find relevant information in the rules database to answer your question. " +
	"Please try rephrasing or ask a different question."

// AnswerGenerator produces an answer from a system and user prompt pair.
type AnswerGenerator interface {
	Complete(ctx context.Context, system, user string) (llm.Completion, error)
}

// CostRates are the per-1M-token prices used for cost accounting.
type CostRates struct {
	InputPer1M  float64
	OutputPer1M float64
}

// Service answers golf rules questions end to end.
type Service struct {
	retriever *retrieval.Retriever
	generator AnswerGenerator
	embedder  embedding.Provider
	queries   *storage.QueryRepo
	metrics   *storage.MetricsRepo
	rates     CostRates
	topK      int
}

// NewService wires the Q&A pipeline. queries and metrics may be nil, in
// which case nothing is persisted (useful for tests and one-off CLIs).
func NewService(retriever *retrieval.Retriever, generator AnswerGenerator, embedder embedding.Provider,
	queries *storage.QueryRepo, metrics *storage.MetricsRepo, rates CostRates, topK int) *Service {
	if topK <= 0 {
		topK = 5
	}
	return &Service{
		retriever: retriever,
		generator: generator,
		embedder:  embedder,
		queries:   queries,
		metrics:   metrics,
		rates:     rates,
		topK:      topK,
	}
}

// Citation is one retrieved rule excerpt referenced by an answer.
type Citation struct {
	RuleID  string  `json:"rule_id"`
	Title   string  `json:"title"`
	Section string  `json:"section"`
	Score   float64 `json:"score"`
}

// Result is one answered question with its provenance and accounting.
type Result struct {
	Answer         string                   `json:"answer"`
	Found          bool                     `json:"found"`
	Citations      []Citation               `json:"citations"`
	Results        []retrieval.ScoredResult `json:"-"`
	Metrics        *eval.Metrics            `json:"metrics,omitempty"`
	QueryID        int64                    `json:"query_id,omitempty"`
	ResponseTimeMs int64                    `json:"response_time_ms"`
	TokensUsed     int                      `json:"tokens_used"`
	CostUSD        float64                  `json:"cost_usd"`
}

// Answer retrieves context for the question, generates an answer, and logs
// the query. When evaluate is true the answer-quality metrics are computed
// and persisted as well. An empty corpus or a question with no matching
// rules yields a canned answer with Found=false, not an error.
func (s *Service) Answer(ctx context.Context, question string, topK int, evaluate bool) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question must not be empty")
	}
	if topK <= 0 {
		topK = s.topK
	}

	results, err := s.retriever.HybridSearch(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	if len(results) == 0 {
		logger.InfoContext(ctx, "no context retrieved", "question_len", len(question))
		return &Result{
			Answer:         notFoundAnswer,
			Found:          false,
			ResponseTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	completion, err := s.generator.Complete(ctx, systemPrompt, buildUserPrompt(question, results))
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	cost := s.calculateCost(completion.InputTokens, completion.OutputTokens)
	result := &Result{
		Answer:         completion.Text,
		Found:          true,
		Citations:      buildCitations(results),
		Results:        results,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		TokensUsed:     completion.InputTokens + completion.OutputTokens,
		CostUSD:        cost,
	}

	if s.queries != nil {
		contexts := make([]string, len(results))
		for i, r := range results {
			contexts[i] = r.RuleID
		}
		queryID, err := s.queries.Insert(ctx, &storage.QueryRecord{
			QueryText:      question,
			Contexts:       contexts,
			ResponseText:   completion.Text,
			ResponseTimeMs: result.ResponseTimeMs,
			TokensUsed:     result.TokensUsed,
			CostUSD:        cost,
		})
		if err != nil {
			// Persistence failures should not lose the answer.
			logger.ErrorContext(ctx, "failed to log query", "error", err)
		} else {
			result.QueryID = queryID
		}
	}

	if s.metrics != nil {
		if err := s.metrics.InsertUsage(ctx, &storage.UsageRecord{
			APIName:      "llm",
			Operation:    "answer",
			TokensInput:  completion.InputTokens,
			TokensOutput: completion.OutputTokens,
			CostUSD:      cost,
		}); err != nil {
			logger.ErrorContext(ctx, "failed to log api usage", "error", err)
		}
	}

	if evaluate {
		metrics, err := eval.Evaluate(ctx, s.embedder, question, completion.Text, results)
		if err != nil {
			logger.ErrorContext(ctx, "evaluation failed", "error", err)
		} else {
			result.Metrics = &metrics
			if s.metrics != nil && result.QueryID != 0 {
				if err := s.metrics.Insert(ctx, &storage.MetricsRecord{
					QueryID:          result.QueryID,
					ContextRelevancy: metrics.ContextRelevancy,
					ContextPrecision: metrics.ContextPrecision,
					AnswerRelevancy:  metrics.AnswerRelevancy,
					Faithfulness:     metrics.Faithfulness,
					CosineSimilarity: metrics.CosineSimilarity,
				}); err != nil {
					logger.ErrorContext(ctx, "failed to log metrics", "error", err)
				}
			}
		}
	}

	logger.InfoContext(ctx, "question answered",
		"response_time_ms", result.ResponseTimeMs,
		"tokens", result.TokensUsed,
		"cost_usd", cost,
		"contexts", len(results),
	)
	return result, nil
}

func (s *Service) calculateCost(inputTokens, outputTokens int) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * s.rates.InputPer1M
	outputCost := float64(outputTokens) / 1_000_000 * s.rates.OutputPer1M
	return inputCost + outputCost
}

func buildCitations(results []retrieval.ScoredResult) []Citation {
	citations := make([]Citation, len(results))
	for i, r := range results {
		citations[i] = Citation{
			RuleID:  r.RuleID,
			Title:   r.Title,
			Section: r.Section,
			Score:   r.FinalScore,
		}
	}
	return citations
}

func buildUserPrompt(question string, results []retrieval.ScoredResult) string {
	var b strings.Builder
	b.WriteString("Below are relevant excerpts from the USGA Rules of Golf:\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "[Context %d]\nRule %s: %s\nSection: %s\n\n%s\n\n", i+1, r.RuleID, r.Title, r.Section, r.Text)
	}
	b.WriteString("---\n\nBased on the above context, please answer the following question:\n\n")
	b.WriteString(question)
	b.WriteString("\n\nRemember to cite specific rule numbers in your answer.")
	return b.String()
}
