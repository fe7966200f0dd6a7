package domain

import (
	"fmt"
	"strconv"
)

// UnknownPage is the page reference of a chunk without a page marker.
const UnknownPage = "Unknown"

// PageMarker returns the boundary marker inserted before page n (1-based).
// The chunker recovers page references by scanning for it.
func PageMarker(n int) string {
	return fmt.Sprintf("\n--- Page %d ---\n", n)
}

// SourceDocument is the extracted text of a single source file.
// It is created once per ingestion run and never mutated.
type SourceDocument struct {
	// ID is a per-load unique identifier.
	ID string

	// Name is the file name. It is the document identity used in
	// filters, citations and category matching.
	Name string

	// Path is the path the file was read from.
	Path string

	// Content is the full text with page markers between pages.
	Content string

	// TotalPages is the page count reported by the extractor.
	TotalPages int
}

// SkippedFile records a file the loader could not use.
type SkippedFile struct {
	// Name is the file name.
	Name string

	// Reason describes why the file was skipped.
	Reason string
}

// Chunk is a bounded text segment of a source document.
// Chunks are the unit of retrieval and citation.
type Chunk struct {
	// ID is the stable key of the chunk, derived from the owning document
	// and the rune offset of the segment. See ChunkKey.
	ID string

	// Index is the sequential chunk id. It is unique and strictly
	// increasing across one ingestion run.
	Index int

	// Source is the owning document's name.
	Source string

	// FilePath is the owning document's path.
	FilePath string

	// TotalPages is the owning document's page count.
	TotalPages int

	// Offset is the rune offset of the segment in the document text.
	Offset int

	// Content is the chunk text.
	Content string

	// PageReference is "Page N" or UnknownPage.
	PageReference string

	// Embedding is the vector of Content. Empty until indexed.
	Embedding []float32
}

// ChunkKey returns the stable identity of a chunk. An unchanged document
// yields the same keys on every ingestion run.
func ChunkKey(source string, offset int) string {
	return source + "#" + strconv.Itoa(offset)
}

// Metadata returns the per-chunk metadata persisted with the collection.
func (c Chunk) Metadata() map[string]any {
	return map[string]any{
		"source":         c.Source,
		"file_path":      c.FilePath,
		"total_pages":    c.TotalPages,
		"chunk_id":       c.Index,
		"page_reference": c.PageReference,
	}
}
