package chunker

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor turns loaded documents into indexed chunks.
type Processor struct {
	splitter *Splitter
}

// New creates a chunk processor. Options configure the underlying Splitter.
func New(opts ...Option) *Processor {
	return &Processor{splitter: NewSplitter(opts...)}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Splitter returns the underlying splitter.
func (p *Processor) Splitter() *Splitter {
	return p.splitter
}

// Process splits every document and numbers the chunks sequentially.
//
// Index assignment follows the order of docs, then split order within a
// document. Callers that need reproducible indices must pass documents in
// a stable order; the loader sorts by file name. The chunk ID does not
// depend on this order.
func (p *Processor) Process(docs []domain.SourceDocument) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		for _, seg := range p.splitter.Split(doc.Content) {
			chunks = append(chunks, domain.Chunk{
				ID:            domain.ChunkKey(doc.Name, seg.Offset),
				Index:         len(chunks),
				Source:        doc.Name,
				FilePath:      doc.Path,
				TotalPages:    doc.TotalPages,
				Offset:        seg.Offset,
				Content:       seg.Text,
				PageReference: PageReference(seg.Text),
			})
		}
	}
	return chunks
}
