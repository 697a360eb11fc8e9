package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical vectors", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal vectors", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite vectors", []float32{1, 0}, []float32{-1, 0}, -1},
		{"empty vectors", nil, nil, 0},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestUnavailableErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := &UnavailableError{Message: "batch embed request failed", Cause: cause}

	assert.Contains(t, err.Error(), "embeddings unavailable")
	assert.True(t, errors.Is(err, cause))

	var target *UnavailableError
	assert.True(t, errors.As(fmt.Errorf("run failed: %w", err), &target))
}

func TestVectorsFromResponse(t *testing.T) {
	resp := &genai.BatchEmbedContentsResponse{
		Embeddings: []*genai.ContentEmbedding{
			{Values: []float32{1, 2}},
			{Values: []float32{3, 4}},
		},
	}

	vectors, err := vectorsFromResponse(resp, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 2}, {3, 4}}, vectors)
}

func TestVectorsFromResponseNil(t *testing.T) {
	var target *UnavailableError

	_, err := vectorsFromResponse(nil, 3)
	require.Error(t, err)
	assert.ErrorAs(t, err, &target)
	assert.Contains(t, err.Error(), "empty response")
}

func TestVectorsFromResponseCountMismatch(t *testing.T) {
	resp := &genai.BatchEmbedContentsResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{1}}},
	}

	var target *UnavailableError
	_, err := vectorsFromResponse(resp, 2)
	require.Error(t, err)
	assert.ErrorAs(t, err, &target)
	assert.Contains(t, err.Error(), "expected 2 embeddings, got 1")
}

func TestNewGeminiEmbedderRequiresKey(t *testing.T) {
	_, err := NewGeminiEmbedder(context.Background(), "", "")
	assert.Error(t, err)
}
