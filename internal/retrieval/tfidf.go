package retrieval

import (
	"math"
	"regexp"
	"strings"
	"sync"
)

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// Tokenize lowercases text, strips everything that is not a word or
// whitespace character, and splits on whitespace. The same tokenization is
// applied to queries, chunks, and IDF corpus statistics; divergence here
// would silently skew the fusion weights.
func Tokenize(text string) []string {
	clean := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Fields(clean)
}

// LexicalScorer computes TF-IDF relevance between a query and one corpus
// snapshot of chunk texts. A scorer is built per snapshot and thrown away
// with it, so the memoized IDF values can never outlive the corpus they
// were computed from.
type LexicalScorer struct {
	termCounts []map[string]int // per-chunk term frequencies
	tokenTotal []int            // per-chunk token counts
	docFreq    map[string]int   // chunks containing each term at least once

	mu  sync.Mutex
	idf map[string]float64 // memoized per distinct term
}

// NewLexicalScorer tokenizes every chunk text once and precomputes document
// frequencies. Scoring afterwards is O(chunks x distinct query terms),
// the accepted cost for freshness over speed on a small rule corpus.
func NewLexicalScorer(chunkTexts []string) *LexicalScorer {
	s := &LexicalScorer{
		termCounts: make([]map[string]int, len(chunkTexts)),
		tokenTotal: make([]int, len(chunkTexts)),
		docFreq:    make(map[string]int),
		idf:        make(map[string]float64),
	}

	for i, text := range chunkTexts {
		tokens := Tokenize(text)
		counts := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			counts[tok]++
		}
		s.termCounts[i] = counts
		s.tokenTotal[i] = len(tokens)
		for term := range counts {
			s.docFreq[term]++
		}
	}

	return s
}

// Len returns the number of chunks in the snapshot.
func (s *LexicalScorer) Len() int {
	return len(s.termCounts)
}

// Score returns one TF-IDF score per chunk for the given query, in chunk
// order. Scores are unbounded and only comparable within this result set.
func (s *LexicalScorer) Score(query string) []float64 {
	scores := make([]float64, len(s.termCounts))
	for _, term := range Tokenize(query) {
		idf := s.termIDF(term)
		if idf == 0 {
			continue
		}
		for i, counts := range s.termCounts {
			if s.tokenTotal[i] == 0 {
				continue
			}
			tf := float64(counts[term]) / float64(s.tokenTotal[i])
			scores[i] += tf * idf
		}
	}
	return scores
}

// termIDF returns ln((N+1)/(df+1)), memoizing per term. A term present in
// every chunk scores 0; a term present in none scores ln(N+1).
func (s *LexicalScorer) termIDF(term string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idf, ok := s.idf[term]; ok {
		return idf
	}
	n := float64(len(s.termCounts))
	df := float64(s.docFreq[term])
	idf := math.Log((n + 1) / (df + 1))
	s.idf[term] = idf
	return idf
}
