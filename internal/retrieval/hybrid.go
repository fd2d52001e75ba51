package retrieval

import "sort"

// Default fusion weights. Callers may tune per query.
const (
	DefaultSemanticWeight = 0.7
	DefaultLexicalWeight  = 0.3
)

// Rank fuses semantic and lexical result lists into one ordering.
//
// Results are keyed by (rule ID, chunk index); a chunk present in only one
// list keeps a zero for the missing score rather than being dropped.
// Lexical scores are normalized by the batch maximum before weighting, so
// they land on the same 0-1 scale as cosine similarities. Ties sort by the
// order candidates were first encountered, which keeps the ranking
// deterministic for identical inputs.
//
// Callers should over-fetch both lists (2x topK is the convention) so that
// fusion is not starved of candidates one method missed.
func Rank(semantic []SemanticResult, lexical []LexicalResult, topK int, semanticWeight, lexicalWeight float64) []ScoredResult {
	var maxLexical float64
	for _, r := range lexical {
		if r.Score > maxLexical {
			maxLexical = r.Score
		}
	}

	order := make([]string, 0, len(semantic)+len(lexical))
	combined := make(map[string]*ScoredResult, len(semantic)+len(lexical))

	for _, r := range semantic {
		key := r.Key()
		if _, ok := combined[key]; !ok {
			combined[key] = &ScoredResult{Chunk: r.Chunk}
			order = append(order, key)
		}
		combined[key].SemanticScore = r.Similarity
	}

	for _, r := range lexical {
		normalized := 0.0
		if maxLexical > 0 {
			normalized = r.Score / maxLexical
		}
		key := r.Key()
		if _, ok := combined[key]; !ok {
			combined[key] = &ScoredResult{Chunk: r.Chunk}
			order = append(order, key)
		}
		combined[key].LexicalScore = normalized
	}

	results := make([]ScoredResult, 0, len(order))
	for _, key := range order {
		r := combined[key]
		r.FinalScore = semanticWeight*r.SemanticScore + lexicalWeight*r.LexicalScore
		results = append(results, *r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// sortLexical orders lexical results by descending score, preserving input
// order for ties.
func sortLexical(results []LexicalResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
