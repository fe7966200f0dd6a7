package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageMarker(t *testing.T) {
	assert.Equal(t, "\n--- Page 1 ---\n", PageMarker(1))
	assert.Equal(t, "\n--- Page 12 ---\n", PageMarker(12))
}

func TestChunkKey(t *testing.T) {
	assert.Equal(t, "report.pdf#0", ChunkKey("report.pdf", 0))
	assert.Equal(t, "World Bank Group Annual Report 2025.pdf#900", ChunkKey("World Bank Group Annual Report 2025.pdf", 900))
}

func TestChunk_Metadata(t *testing.T) {
	c := Chunk{
		ID:            "a.pdf#0",
		Index:         7,
		Source:        "a.pdf",
		FilePath:      "documents/a.pdf",
		TotalPages:    3,
		PageReference: "Page 2",
	}

	assert.Equal(t, map[string]any{
		"source":         "a.pdf",
		"file_path":      "documents/a.pdf",
		"total_pages":    3,
		"chunk_id":       7,
		"page_reference": "Page 2",
	}, c.Metadata())
}
