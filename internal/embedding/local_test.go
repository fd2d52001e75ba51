package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewLocalProvider(t *testing.T) {
	p := NewLocalProvider("http://localhost:8081", "test-key", "test-model", 768)
	if p == nil {
		t.Fatal("NewLocalProvider() returned nil")
	}
	if p.Dimensions() != 768 {
		t.Errorf("Dimensions() = %d, want 768", p.Dimensions())
	}
	if p.Name() != "local" {
		t.Errorf("Name() = %q, want local", p.Name())
	}
}

func TestLocalProvider_EmbedDocuments(t *testing.T) {
	tests := []struct {
		name       string
		texts      []string
		vectorSize int
		serverResp func(w http.ResponseWriter, r *http.Request)
		wantErr    bool
		wantCount  int
	}{
		{
			name:       "successful embedding",
			texts:      []string{"Hello", "World"},
			vectorSize: 8,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/v1/embeddings" {
					t.Errorf("expected /v1/embeddings, got %s", r.URL.Path)
				}
				resp := embeddingsResponse{
					Data: []embeddingData{
						{Embedding: make([]float64, 8)},
						{Embedding: make([]float64, 8)},
					},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantErr:   false,
			wantCount: 2,
		},
		{
			name:       "empty input",
			texts:      []string{},
			vectorSize: 8,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				t.Error("server should not be called for empty input")
			},
			wantErr: true,
		},
		{
			name:       "wrong embedding count",
			texts:      []string{"Hello", "World"},
			vectorSize: 8,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				resp := embeddingsResponse{
					Data: []embeddingData{{Embedding: make([]float64, 8)}},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantErr: true,
		},
		{
			name:       "wrong vector size",
			texts:      []string{"Hello"},
			vectorSize: 8,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				resp := embeddingsResponse{
					Data: []embeddingData{{Embedding: make([]float64, 4)}},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantErr: true,
		},
		{
			name:       "server error",
			texts:      []string{"Hello"},
			vectorSize: 8,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			p := NewLocalProvider(server.URL, "test-key", "test-model", tt.vectorSize)
			vecs, err := p.EmbedDocuments(context.Background(), tt.texts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EmbedDocuments() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(vecs) != tt.wantCount {
				t.Errorf("EmbedDocuments() returned %d vectors, want %d", len(vecs), tt.wantCount)
			}
		})
	}
}

func TestLocalProvider_EmbedQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := embeddingsResponse{
			Data: []embeddingData{{Embedding: []float64{0.1, 0.2, 0.3}}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewLocalProvider(server.URL, "test-key", "test-model", 3)
	vec, err := p.EmbedQuery(context.Background(), "where can I drop?")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("EmbedQuery() returned %d dimensions, want 3", len(vec))
	}
	if vec[0] != 0.1 {
		t.Errorf("vec[0] = %v, want 0.1", vec[0])
	}
}
