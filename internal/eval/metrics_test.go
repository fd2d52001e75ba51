package eval

import (
	"context"
	"math"
	"testing"

	"go.uber.org/mock/gomock"

	embeddingmocks "golfrules-ai/internal/embedding/mocks"
	"golfrules-ai/internal/retrieval"
)

func scored(text string, semantic, final float64) retrieval.ScoredResult {
	return retrieval.ScoredResult{
		Chunk:         retrieval.Chunk{RuleID: "rule-1", Text: text},
		SemanticScore: semantic,
		FinalScore:    final,
	}
}

func TestContextRelevancy(t *testing.T) {
	results := []retrieval.ScoredResult{
		scored("a", 0.8, 0.8),
		scored("b", 0.4, 0.4),
	}
	if got, want := ContextRelevancy(results), 0.6; math.Abs(got-want) > 1e-12 {
		t.Errorf("ContextRelevancy() = %v, want %v", got, want)
	}
	if got := ContextRelevancy(nil); got != 0 {
		t.Errorf("ContextRelevancy(nil) = %v, want 0", got)
	}
}

func TestContextPrecision(t *testing.T) {
	ordered := []retrieval.ScoredResult{
		scored("a", 0, 0.9),
		scored("b", 0, 0.5),
		scored("c", 0, 0.5),
		scored("d", 0, 0.1),
	}
	if got := ContextPrecision(ordered); got != 1.0 {
		t.Errorf("ContextPrecision(ordered) = %v, want 1.0", got)
	}

	oneInversion := []retrieval.ScoredResult{
		scored("a", 0, 0.5),
		scored("b", 0, 0.9),
		scored("c", 0, 0.1),
	}
	if got := ContextPrecision(oneInversion); math.Abs(got-0.8) > 1e-12 {
		t.Errorf("ContextPrecision(one inversion) = %v, want 0.8", got)
	}

	twoInversions := []retrieval.ScoredResult{
		scored("a", 0, 0.1),
		scored("b", 0, 0.5),
		scored("c", 0, 0.9),
	}
	if got := ContextPrecision(twoInversions); math.Abs(got-0.64) > 1e-12 {
		t.Errorf("ContextPrecision(two inversions) = %v, want 0.64", got)
	}

	if got := ContextPrecision(nil); got != 0 {
		t.Errorf("ContextPrecision(nil) = %v, want 0", got)
	}
}

func TestFaithfulness(t *testing.T) {
	results := []retrieval.ScoredResult{
		scored("A player may take lateral relief within two club-lengths.", 0, 0),
	}

	// Every content word of the answer appears in the context.
	if got := Faithfulness(results, "The player may take lateral relief"); got != 1.0 {
		t.Errorf("Faithfulness(grounded) = %v, want 1.0", got)
	}

	// No content word appears.
	if got := Faithfulness(results, "quadruple bogey watermelon"); got != 0 {
		t.Errorf("Faithfulness(ungrounded) = %v, want 0", got)
	}

	// Stop words alone leave no scorable words.
	if got := Faithfulness(results, "the and a is"); got != 0 {
		t.Errorf("Faithfulness(stop words only) = %v, want 0", got)
	}

	// Half grounded.
	if got := Faithfulness(results, "lateral watermelon"); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Faithfulness(half) = %v, want 0.5", got)
	}

	// Empty answer.
	if got := Faithfulness(results, ""); got != 0 {
		t.Errorf("Faithfulness(empty) = %v, want 0", got)
	}

	// Matching is case-insensitive.
	if got := Faithfulness(results, "LATERAL RELIEF"); got != 1.0 {
		t.Errorf("Faithfulness(uppercase) = %v, want 1.0", got)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2}, b: []float32{1, 2}, want: 1.0},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0.0},
		{name: "zero magnitude", a: []float32{0, 0}, b: []float32{1, 1}, want: 0.0},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := embeddingmocks.NewMockProvider(ctrl)
	provider.EXPECT().EmbedQuery(gomock.Any(), "what is a lost ball?").Return([]float32{1, 0}, nil)
	provider.EXPECT().EmbedQuery(gomock.Any(), "A ball is lost after three minutes of search.").Return([]float32{1, 0}, nil)

	results := []retrieval.ScoredResult{
		scored("A ball is lost if not found within three minutes of search.", 0.9, 0.9),
		scored("Play the ball as it lies.", 0.5, 0.5),
	}

	metrics, err := Evaluate(context.Background(), provider,
		"what is a lost ball?",
		"A ball is lost after three minutes of search.",
		results)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if want := 0.7; math.Abs(metrics.ContextRelevancy-want) > 1e-12 {
		t.Errorf("ContextRelevancy = %v, want %v", metrics.ContextRelevancy, want)
	}
	if metrics.ContextPrecision != 1.0 {
		t.Errorf("ContextPrecision = %v, want 1.0", metrics.ContextPrecision)
	}
	if metrics.AnswerRelevancy != 1.0 {
		t.Errorf("AnswerRelevancy = %v, want 1.0", metrics.AnswerRelevancy)
	}
	if metrics.CosineSimilarity != metrics.AnswerRelevancy {
		t.Errorf("CosineSimilarity = %v, want same as AnswerRelevancy %v",
			metrics.CosineSimilarity, metrics.AnswerRelevancy)
	}
	if metrics.Faithfulness <= 0 {
		t.Errorf("Faithfulness = %v, want > 0", metrics.Faithfulness)
	}
}
