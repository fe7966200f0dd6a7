package driven

import "context"

// PageExtractor extracts the text of a file page by page.
type PageExtractor interface {
	// Extensions lists the lower-case file extensions handled, with the dot.
	Extensions() []string

	// ExtractPages returns the text of each page in order. Pages without
	// text are returned as empty strings so that numbering is preserved.
	ExtractPages(ctx context.Context, path string) ([]string, error)
}
