package retrieval

import "errors"

var (
	// ErrInvalidConfig is returned for configuration errors that can never
	// succeed on retry: bad chunking parameters, vector size mismatches.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrIngestion is returned when ingestion fails partway: an embedding
	// batch came back with the wrong count, or the vector store rejected a
	// write. After an ErrIngestion the corpus should be treated as unknown
	// and rebuilt with Clear followed by Ingest.
	ErrIngestion = errors.New("ingestion failed")

	// ErrProvider is returned when the embedding provider call fails.
	// No retry is attempted here; retry policy belongs to the caller.
	ErrProvider = errors.New("embedding provider error")
)
