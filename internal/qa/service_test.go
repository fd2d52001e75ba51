package qa

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
	"testing"

	"golfrules-ai/internal/llm"
	"golfrules-ai/internal/retrieval"
	"golfrules-ai/internal/vectorstore"
)

const testVectorSize = 16

type hashEmbedder struct{}

func (hashEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = hashVector(text)
	}
	return vecs, nil
}

func (hashEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return hashVector(text), nil
}

func (hashEmbedder) Dimensions() int { return testVectorSize }
func (hashEmbedder) Name() string    { return "hash" }

func hashVector(text string) []float32 {
	vec := make([]float32, testVectorSize)
	for _, tok := range retrieval.Tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%testVectorSize]++
	}
	return vec
}

// fakeGenerator returns a canned completion and records the prompts it saw.
type fakeGenerator struct {
	answer     string
	err        error
	lastSystem string
	lastUser   string
}

func (g *fakeGenerator) Complete(ctx context.Context, system, user string) (llm.Completion, error) {
	g.lastSystem = system
	g.lastUser = user
	if g.err != nil {
		return llm.Completion{}, g.err
	}
	return llm.Completion{Text: g.answer, InputTokens: 1000, OutputTokens: 200}, nil
}

func newTestService(t *testing.T, gen *fakeGenerator) (*Service, *retrieval.Retriever) {
	t.Helper()
	store := vectorstore.NewMemoryStore(testVectorSize)
	retriever, err := retrieval.NewRetriever(hashEmbedder{}, store, "test_rules", retrieval.Options{})
	if err != nil {
		t.Fatalf("NewRetriever() error = %v", err)
	}
	svc := NewService(retriever, gen, hashEmbedder{}, nil, nil,
		CostRates{InputPer1M: 3.0, OutputPer1M: 15.0}, 5)
	return svc, retriever
}

func TestService_Answer(t *testing.T) {
	gen := &fakeGenerator{answer: "According to Rule 18, a ball is lost after three minutes."}
	svc, retriever := newTestService(t, gen)
	ctx := context.Background()

	if err := retriever.Ingest(ctx, []retrieval.Document{
		{RuleID: "rule-18", Title: "Rule 18", Section: "Ball Lost", Content: "A ball is lost if not found within three minutes of search."},
	}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	result, err := svc.Answer(ctx, "when is a ball lost?", 5, false)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !result.Found {
		t.Fatal("Answer() Found = false with relevant corpus")
	}
	if result.Answer != gen.answer {
		t.Errorf("Answer = %q", result.Answer)
	}
	if len(result.Citations) == 0 {
		t.Fatal("Answer() returned no citations")
	}
	if result.Citations[0].RuleID != "rule-18" {
		t.Errorf("top citation = %s, want rule-18", result.Citations[0].RuleID)
	}
	if result.TokensUsed != 1200 {
		t.Errorf("TokensUsed = %d, want 1200", result.TokensUsed)
	}
	// 1000 input at $3/1M plus 200 output at $15/1M.
	if want := 0.006; math.Abs(result.CostUSD-want) > 1e-9 {
		t.Errorf("CostUSD = %v, want %v", result.CostUSD, want)
	}

	// The retrieved context reaches the model.
	if !strings.Contains(gen.lastUser, "three minutes") {
		t.Error("user prompt does not contain retrieved context")
	}
	if !strings.Contains(gen.lastUser, "when is a ball lost?") {
		t.Error("user prompt does not contain the question")
	}
	if !strings.Contains(gen.lastSystem, "golf rules assistant") {
		t.Error("system prompt missing")
	}
}

func TestService_Answer_EmptyCorpus(t *testing.T) {
	gen := &fakeGenerator{answer: "should never be called"}
	svc, _ := newTestService(t, gen)

	result, err := svc.Answer(context.Background(), "when is a ball lost?", 5, false)
	if err != nil {
		t.Fatalf("Answer() error = %v, want canned answer not error", err)
	}
	if result.Found {
		t.Error("Found = true on empty corpus")
	}
	if !strings.Contains(result.Answer, "couldn't find") {
		t.Errorf("Answer = %q, want the not-found message", result.Answer)
	}
	if gen.lastUser != "" {
		t.Error("generator was called with no retrieved context")
	}
}

func TestService_Answer_EmptyQuestion(t *testing.T) {
	svc, _ := newTestService(t, &fakeGenerator{answer: "x"})
	if _, err := svc.Answer(context.Background(), "   ", 5, false); err == nil {
		t.Fatal("Answer() with blank question did not error")
	}
}

func TestService_Answer_GeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model offline")}
	svc, retriever := newTestService(t, gen)
	ctx := context.Background()

	if err := retriever.Ingest(ctx, []retrieval.Document{
		{RuleID: "rule-1", Title: "Rule 1", Content: "Play the ball as it lies."},
	}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if _, err := svc.Answer(ctx, "how do I play the ball?", 5, false); err == nil {
		t.Fatal("Answer() did not surface the generator failure")
	}
}

func TestService_Answer_WithEvaluation(t *testing.T) {
	gen := &fakeGenerator{answer: "Play the ball as it lies."}
	svc, retriever := newTestService(t, gen)
	ctx := context.Background()

	if err := retriever.Ingest(ctx, []retrieval.Document{
		{RuleID: "rule-1", Title: "Rule 1", Content: "Play the ball as it lies."},
	}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	result, err := svc.Answer(ctx, "play the ball as it lies", 5, true)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if result.Metrics == nil {
		t.Fatal("Metrics = nil with evaluate=true")
	}
	// The answer is copied verbatim from the context, so every content
	// word is grounded.
	if result.Metrics.Faithfulness != 1.0 {
		t.Errorf("Faithfulness = %v, want 1.0", result.Metrics.Faithfulness)
	}
	if result.Metrics.ContextPrecision != 1.0 {
		t.Errorf("ContextPrecision = %v, want 1.0", result.Metrics.ContextPrecision)
	}
	if result.Metrics.CosineSimilarity != result.Metrics.AnswerRelevancy {
		t.Error("CosineSimilarity differs from AnswerRelevancy")
	}
}
