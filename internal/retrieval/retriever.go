package retrieval

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"golfrules-ai/internal/contextutil"
	"golfrules-ai/internal/embedding"
	"golfrules-ai/internal/vectorstore"
)

// embedBatchSize bounds peak request size against the embedding provider
// during ingestion.
const embedBatchSize = 100

// Options configure a Retriever. Zero values fall back to the defaults the
// corpus was designed around (512-word windows, 50-word overlap).
type Options struct {
	ChunkSize      int
	ChunkOverlap   int
	SemanticWeight float64
	LexicalWeight  float64
}

// DefaultOptions are the chunking and fusion parameters used when the
// caller does not override them.
func DefaultOptions() Options {
	return Options{
		ChunkSize:      512,
		ChunkOverlap:   50,
		SemanticWeight: DefaultSemanticWeight,
		LexicalWeight:  DefaultLexicalWeight,
	}
}

// corpusSnapshot is one immutable generation of the ingested corpus. Query
// paths read a snapshot without locking anything but the pointer; ingest
// and clear swap the whole snapshot under the write lock. The lexical
// scorer and its IDF cache belong to exactly one snapshot, so a refresh can
// never serve rankings computed from stale corpus statistics.
type corpusSnapshot struct {
	chunks  []Chunk
	byID    map[string]Chunk // vector point ID -> chunk
	lexical *LexicalScorer
}

// Retriever is the hybrid retrieval engine: it owns the corpus for the
// duration of every query, combining vector similarity from the store with
// TF-IDF over the in-memory snapshot.
type Retriever struct {
	embedder   embedding.Provider
	store      vectorstore.VectorStore
	collection string
	opts       Options

	mu       sync.RWMutex
	snapshot *corpusSnapshot
}

// NewRetriever wires the engine to an embedding provider and a vector
// store. Dependencies are passed in explicitly; the engine holds no global
// state.
func NewRetriever(embedder embedding.Provider, store vectorstore.VectorStore, collection string, opts Options) (*Retriever, error) {
	if opts.ChunkSize == 0 && opts.ChunkOverlap == 0 {
		def := DefaultOptions()
		opts.ChunkSize = def.ChunkSize
		opts.ChunkOverlap = def.ChunkOverlap
	}
	if opts.SemanticWeight == 0 && opts.LexicalWeight == 0 {
		opts.SemanticWeight = DefaultSemanticWeight
		opts.LexicalWeight = DefaultLexicalWeight
	}
	if opts.ChunkOverlap >= opts.ChunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be less than chunk size %d",
			ErrInvalidConfig, opts.ChunkOverlap, opts.ChunkSize)
	}

	return &Retriever{
		embedder:   embedder,
		store:      store,
		collection: collection,
		opts:       opts,
		snapshot:   emptySnapshot(),
	}, nil
}

func emptySnapshot() *corpusSnapshot {
	return &corpusSnapshot{
		byID:    make(map[string]Chunk),
		lexical: NewLexicalScorer(nil),
	}
}

// Ingest chunks each document's title and content, embeds the chunk texts
// in bounded batches, and stores the vectors. It appends to the current
// corpus; use Replace for full-refresh semantics.
//
// An embedding batch that returns a different count than submitted is a
// protocol violation and fails the whole ingest with ErrIngestion. After
// any ingest error the corpus state is unknown and should be rebuilt from
// scratch.
func (r *Retriever) Ingest(ctx context.Context, docs []Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ingestLocked(ctx, docs)
}

// Replace atomically clears the corpus and re-ingests the given documents
// as one unit: a concurrent query observes either the old corpus or the
// new one, never a half-populated state.
func (r *Retriever) Replace(ctx context.Context, docs []Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.clearLocked(ctx); err != nil {
		return err
	}
	return r.ingestLocked(ctx, docs)
}

// Clear atomically drops all stored chunks and vectors. A query arriving
// afterwards sees an empty corpus and returns no results, not an error.
func (r *Retriever) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearLocked(ctx)
}

func (r *Retriever) clearLocked(ctx context.Context) error {
	if err := r.store.Clear(ctx, r.collection); err != nil {
		return fmt.Errorf("%w: clearing vector store: %v", ErrIngestion, err)
	}
	r.snapshot = emptySnapshot()
	return nil
}

func (r *Retriever) ingestLocked(ctx context.Context, docs []Document) error {
	logger := contextutil.LoggerFromContext(ctx)

	var (
		newChunks []Chunk
		texts     []string
	)
	for _, doc := range docs {
		// Title is prepended so chunks keep their rule context even when the
		// window lands deep in the body.
		full := doc.Title + "\n\n" + doc.Content
		windows, err := ChunkWords(full, r.opts.ChunkSize, r.opts.ChunkOverlap)
		if err != nil {
			return err
		}
		for idx, text := range windows {
			newChunks = append(newChunks, Chunk{
				RuleID:        doc.RuleID,
				ChunkIndex:    idx,
				Text:          text,
				Title:         doc.Title,
				Section:       doc.Section,
				EffectiveDate: doc.EffectiveDate,
			})
			texts = append(texts, text)
		}
	}

	if len(newChunks) == 0 {
		logger.WarnContext(ctx, "no chunks to ingest", "documents", len(docs))
		return nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		embedded, err := r.embedder.EmbedDocuments(ctx, batch)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrProvider, err)
		}
		if len(embedded) != len(batch) {
			return fmt.Errorf("%w: embedded %d chunks, expected %d", ErrIngestion, len(embedded), len(batch))
		}
		vectors = append(vectors, embedded...)
	}

	points := make([]vectorstore.Point, len(newChunks))
	ids := make([]string, len(newChunks))
	for i, chunk := range newChunks {
		ids[i] = uuid.NewString()
		points[i] = vectorstore.Point{
			ID:  ids[i],
			Vec: vectors[i],
			Meta: map[string]any{
				"rule_id":        chunk.RuleID,
				"title":          chunk.Title,
				"section":        chunk.Section,
				"effective_date": chunk.EffectiveDate,
				"chunk_index":    chunk.ChunkIndex,
			},
		}
	}

	for start := 0; start < len(points); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(points) {
			end = len(points)
		}
		if err := r.store.Upsert(ctx, r.collection, points[start:end]); err != nil {
			return fmt.Errorf("%w: %v", ErrIngestion, err)
		}
	}

	prev := r.snapshot
	chunks := make([]Chunk, 0, len(prev.chunks)+len(newChunks))
	chunks = append(chunks, prev.chunks...)
	chunks = append(chunks, newChunks...)

	byID := make(map[string]Chunk, len(chunks))
	for id, chunk := range prev.byID {
		byID[id] = chunk
	}
	for i, chunk := range newChunks {
		byID[ids[i]] = chunk
	}

	chunkTexts := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkTexts[i] = chunk.Text
	}

	r.snapshot = &corpusSnapshot{
		chunks:  chunks,
		byID:    byID,
		lexical: NewLexicalScorer(chunkTexts),
	}

	logger.InfoContext(ctx, "ingested documents",
		"documents", len(docs),
		"chunks", len(newChunks),
		"corpus_size", len(chunks),
	)
	return nil
}

// currentSnapshot returns the live corpus generation. Queries hold the read
// lock only long enough to grab the pointer; the snapshot itself is
// immutable.
func (r *Retriever) currentSnapshot() *corpusSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// SemanticSearch embeds the query and returns the topK nearest chunks by
// cosine similarity. An empty corpus yields an empty result, not an error.
func (r *Retriever) SemanticSearch(ctx context.Context, query string, topK int) ([]SemanticResult, error) {
	snap := r.currentSnapshot()
	if len(snap.chunks) == 0 {
		return nil, nil
	}

	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	hits, err := r.store.Search(ctx, r.collection, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]SemanticResult, 0, len(hits))
	for _, hit := range hits {
		chunk, ok := snap.byID[hit.PointID]
		if !ok {
			// A point not in the snapshot belongs to a superseded corpus
			// generation still draining from the store.
			continue
		}
		results = append(results, SemanticResult{
			Chunk:      chunk,
			Similarity: float64(hit.Score),
		})
	}
	return results, nil
}

// LexicalSearch scores every chunk in the corpus snapshot by TF-IDF against
// the query and returns the topK highest, in descending score order.
func (r *Retriever) LexicalSearch(query string, topK int) []LexicalResult {
	snap := r.currentSnapshot()
	if len(snap.chunks) == 0 {
		return nil
	}

	scores := snap.lexical.Score(query)
	results := make([]LexicalResult, len(snap.chunks))
	for i, chunk := range snap.chunks {
		results[i] = LexicalResult{Chunk: chunk, Score: scores[i]}
	}

	// Stable sort keeps corpus order for equal scores, which keeps the
	// downstream fusion deterministic.
	sortLexical(results)

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// HybridSearch runs semantic and lexical retrieval, over-fetching both at
// 2x topK, and fuses them with the retriever's configured weights.
func (r *Retriever) HybridSearch(ctx context.Context, query string, topK int) ([]ScoredResult, error) {
	return r.HybridSearchWeighted(ctx, query, topK, r.opts.SemanticWeight, r.opts.LexicalWeight)
}

// HybridSearchWeighted is HybridSearch with caller-supplied fusion weights.
func (r *Retriever) HybridSearchWeighted(ctx context.Context, query string, topK int, semanticWeight, lexicalWeight float64) ([]ScoredResult, error) {
	semantic, err := r.SemanticSearch(ctx, query, 2*topK)
	if err != nil {
		return nil, err
	}
	lexical := r.LexicalSearch(query, 2*topK)
	return Rank(semantic, lexical, topK, semanticWeight, lexicalWeight), nil
}

// ChunkCount reports the number of chunks in the current corpus snapshot.
func (r *Retriever) ChunkCount() int {
	return len(r.currentSnapshot().chunks)
}

// Collection reports the vector store collection this retriever owns.
func (r *Retriever) Collection() string {
	return r.collection
}
