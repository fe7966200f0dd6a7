package chunker

import (
	"regexp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var pageMarker = regexp.MustCompile(`---\s*Page\s+(\d+)\s*---`)

// PageReference returns "Page N" for the first page marker found in a
// chunk, or domain.UnknownPage if there is none.
//
// This is a heuristic. A chunk spanning two pages reports the first
// marker it contains, and a chunk that starts mid-page without containing
// a marker reports Unknown even though its page is knowable.
func PageReference(text string) string {
	m := pageMarker.FindStringSubmatch(text)
	if m == nil {
		return domain.UnknownPage
	}
	return "Page " + m[1]
}
