// Package normalisers provides the page extractors that turn source files
// into per-page text. Each extractor handles a set of file extensions.
package normalisers

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers/pdf"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
)

// Defaults returns the built-in extractors: PDF via pdftotext, and plain
// text and markdown as single-page documents.
func Defaults() []driven.PageExtractor {
	return []driven.PageExtractor{
		pdf.New(),
		plaintext.New(),
	}
}
