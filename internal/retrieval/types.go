package retrieval

import "strconv"

// Document is a single rule document as supplied by a document source.
// Documents are immutable once ingested; re-ingestion replaces them wholesale.
type Document struct {
	// RuleID is the stable identifier of the rule (e.g., "14.3").
	RuleID string
	// Section is the section label the rule belongs to (e.g., "Ball in Motion").
	Section string
	// Title is the rule title (e.g., "Rule 14: Procedures for the Ball").
	Title string
	// Content is the full body text of the rule.
	Content string
	// EffectiveDate is the date the rule text took effect (free-form string).
	EffectiveDate string
	// SourceURL points at where the rule text came from.
	SourceURL string
}

// Chunk is a windowed slice of one document's text, the unit of retrieval.
// Document fields are denormalized onto the chunk for retrieval-time display.
type Chunk struct {
	RuleID        string
	ChunkIndex    int // Ordinal within the owning document, starts at 0
	Text          string
	Title         string
	Section       string
	EffectiveDate string
}

// Key returns the chunk's identity, unique within one corpus.
func (c Chunk) Key() string {
	return c.RuleID + "#" + strconv.Itoa(c.ChunkIndex)
}

// SemanticResult is a chunk scored by vector similarity (0-1, cosine-derived).
type SemanticResult struct {
	Chunk
	Similarity float64
}

// LexicalResult is a chunk scored by TF-IDF. The score is on a
// provider-local scale and only comparable within one query's result set.
type LexicalResult struct {
	Chunk
	Score float64
}

// ScoredResult is the fused output of hybrid ranking. It is transient:
// produced per query and never persisted by the retrieval engine.
type ScoredResult struct {
	Chunk
	// SemanticScore is the cosine similarity from vector search (0 if the
	// chunk was only found lexically).
	SemanticScore float64
	// LexicalScore is the batch-normalized TF-IDF score (0 if the chunk was
	// only found semantically).
	LexicalScore float64
	// FinalScore is the weighted fusion of the two.
	FinalScore float64
}
