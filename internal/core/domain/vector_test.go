package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"scaled", []float32{1, 0}, []float32{5, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 2},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 2},
		{"empty", nil, nil, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, CosineDistance(tc.a, tc.b), 1e-9)
		})
	}
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	zero := []float32{0, 0}
	Normalize(zero)
	assert.Equal(t, []float32{0, 0}, zero)
}

func TestCollectionInfo_ValidateChunks(t *testing.T) {
	info := CollectionInfo{Name: "docs", Dimensions: 2}

	require.NoError(t, info.ValidateChunks([]Chunk{{ID: "a#0", Embedding: []float32{1, 0}}}))
	require.NoError(t, info.ValidateChunks(nil))

	err := info.ValidateChunks([]Chunk{{ID: "a#0", Embedding: []float32{1, 0, 0}}})
	assert.ErrorIs(t, err, ErrEmbeddingMismatch)

	err = CollectionInfo{Dimensions: 2}.ValidateChunks(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = CollectionInfo{Name: "docs"}.ValidateChunks(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
