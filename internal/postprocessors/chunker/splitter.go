// Package chunker splits document text into overlapping chunks.
//
// Splitting is recursive over a priority list of separators: text is cut
// at the coarsest separator present, and only pieces that still exceed
// the chunk size are cut again at the next one. The final separator is
// the empty string, which cuts between runes, so no chunk exceeds the
// configured size.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Default splitter configuration.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// DefaultSeparators are tried in order: paragraph, line, word, rune.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Segment is one chunk of text and its rune offset in the source.
type Segment struct {
	Offset int
	Text   string
}

// Splitter performs recursive character splitting. Lengths are in runes.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk length in runes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets how many trailing runes of a chunk may be repeated at
// the start of the next one.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator priority list.
func WithSeparators(separators ...string) Option {
	return func(s *Splitter) {
		if len(separators) > 0 {
			s.separators = append([]string(nil), separators...)
		}
	}
}

// NewSplitter creates a splitter with the given options.
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Overlap must stay below the chunk size or merging cannot advance.
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}
	return s
}

// ChunkSize returns the configured maximum chunk length.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// Split cuts text into trimmed, non-empty segments in document order.
// Offsets are recorded while cutting, so they strictly increase.
func (s *Splitter) Split(text string) []Segment {
	segments := s.split(piece{text: text}, s.separators)
	if segments == nil {
		return []Segment{}
	}
	return segments
}

// piece is a span of the source text and its rune offset.
type piece struct {
	text   string
	offset int
}

func (s *Splitter) split(span piece, separators []string) []Segment {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(span.text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var (
		out  []Segment
		good []piece
	)
	for _, p := range cutKeepingSeparator(span, separator) {
		if runeLen(p.text) < s.chunkSize {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			if seg, ok := trimmed([]piece{p}); ok {
				out = append(out, seg)
			}
		} else {
			out = append(out, s.split(p, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good)...)
	}
	return out
}

// merge packs small pieces into chunks of at most chunkSize runes,
// carrying up to overlap runes of trailing pieces into the next chunk.
// A chunk never starts with a blank piece, and at least one piece is
// dropped from the front after each emitted chunk, so the next chunk
// starts strictly later.
func (s *Splitter) merge(pieces []piece) []Segment {
	var (
		out     []Segment
		current []piece
		total   int
	)
	for _, p := range pieces {
		n := runeLen(p.text)
		if total+n > s.chunkSize && len(current) > 0 {
			if seg, ok := trimmed(current); ok {
				out = append(out, seg)
			}
			for total > s.overlap || (total+n > s.chunkSize && total > 0) {
				total -= runeLen(current[0].text)
				current = current[1:]
			}
			for len(current) > 0 && isBlank(current[0].text) {
				total -= runeLen(current[0].text)
				current = current[1:]
			}
		}
		if len(current) == 0 && isBlank(p.text) {
			continue
		}
		current = append(current, p)
		total += n
	}
	if seg, ok := trimmed(current); ok {
		out = append(out, seg)
	}
	return out
}

// cutKeepingSeparator splits text at sep, attaching each separator to the
// start of the piece that follows it. The empty separator yields runes.
// The pieces concatenate back to text.
func cutKeepingSeparator(text piece, sep string) []piece {
	offset := text.offset
	if sep == "" {
		out := make([]piece, 0, runeLen(text.text))
		for _, r := range text.text {
			out = append(out, piece{text: string(r), offset: offset})
			offset++
		}
		return out
	}

	parts := strings.Split(text.text, sep)
	out := make([]piece, 0, len(parts))
	add := func(s string) {
		out = append(out, piece{text: s, offset: offset})
		offset += runeLen(s)
	}
	if parts[0] != "" {
		add(parts[0])
	}
	for _, p := range parts[1:] {
		add(sep + p)
	}
	return out
}

// trimmed joins contiguous pieces and trims surrounding whitespace,
// moving the offset past any leading whitespace.
func trimmed(pieces []piece) (Segment, bool) {
	if len(pieces) == 0 {
		return Segment{}, false
	}
	var b strings.Builder
	for _, p := range pieces {
		b.WriteString(p.text)
	}
	joined := b.String()
	left := strings.TrimLeftFunc(joined, unicode.IsSpace)
	body := strings.TrimRightFunc(left, unicode.IsSpace)
	if body == "" {
		return Segment{}, false
	}
	lead := runeLen(joined[:len(joined)-len(left)])
	return Segment{Offset: pieces[0].offset + lead, Text: body}, true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
