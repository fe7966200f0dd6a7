package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("word%03d", i)
	}
	return strings.Join(w, " ")
}

func TestNewSplitter(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := NewSplitter()
		assert.Equal(t, DefaultChunkSize, s.ChunkSize())
		assert.Equal(t, DefaultChunkOverlap, s.Overlap())
		assert.Equal(t, []string{"\n\n", "\n", " ", ""}, s.separators)
	})

	t.Run("custom values", func(t *testing.T) {
		s := NewSplitter(WithChunkSize(500), WithOverlap(50), WithSeparators(". ", ""))
		assert.Equal(t, 500, s.ChunkSize())
		assert.Equal(t, 50, s.Overlap())
		assert.Equal(t, []string{". ", ""}, s.separators)
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := NewSplitter(WithChunkSize(100), WithOverlap(150))
		assert.Less(t, s.Overlap(), s.ChunkSize())
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		s := NewSplitter(WithChunkSize(0), WithOverlap(-1), WithSeparators())
		assert.Equal(t, DefaultChunkSize, s.ChunkSize())
		assert.Equal(t, DefaultChunkOverlap, s.Overlap())
		assert.Len(t, s.separators, 4)
	})
}

func TestSplit_EmptyAndBlank(t *testing.T) {
	s := NewSplitter()
	assert.Empty(t, s.Split(""))
	assert.Empty(t, s.Split("  \n\n \n  "))
}

func TestSplit_ShortTextIsOneChunk(t *testing.T) {
	s := NewSplitter()

	segs := s.Split("\n--- Page 1 ---\nRevenue was $10B in 2024.")

	require.Len(t, segs, 1)
	assert.Equal(t, "--- Page 1 ---\nRevenue was $10B in 2024.", segs[0].Text)
	assert.Equal(t, 1, segs[0].Offset)
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	s := NewSplitter(WithChunkSize(30), WithOverlap(0))
	text := "First paragraph here.\n\nSecond paragraph here.\n\nThird one."

	segs := s.Split(text)

	var got []string
	for _, seg := range segs {
		got = append(got, seg.Text)
	}
	assert.Equal(t, []string{"First paragraph here.", "Second paragraph here.", "Third one."}, got)
}

func TestSplit_LengthBound(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
	}{
		{"words", words(500), 100, 20},
		{"paragraphs", strings.Repeat(words(30)+"\n\n", 10), 120, 30},
		{"lines", strings.Repeat(words(12)+"\n", 40), 80, 10},
		{"one long token", strings.Repeat("x", 2500), 1000, 100},
		{"multibyte", strings.Repeat("ñandú café ", 300), 64, 8},
		{"defaults", strings.Repeat(words(200)+"\n\n", 5), DefaultChunkSize, DefaultChunkOverlap},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSplitter(WithChunkSize(tc.size), WithOverlap(tc.overlap))
			segs := s.Split(tc.text)
			require.NotEmpty(t, segs)
			for i, seg := range segs {
				assert.LessOrEqual(t, utf8.RuneCountInString(seg.Text), tc.size, "segment %d", i)
				assert.NotEmpty(t, seg.Text)
			}
		})
	}
}

func TestSplit_LongTokenFallsBackToRunes(t *testing.T) {
	s := NewSplitter(WithChunkSize(10), WithOverlap(0))

	segs := s.Split(strings.Repeat("a", 25))

	require.Len(t, segs, 3)
	assert.Equal(t, strings.Repeat("a", 10), segs[0].Text)
	assert.Equal(t, strings.Repeat("a", 5), segs[2].Text)
}

func TestSplit_AdjacentChunksOverlap(t *testing.T) {
	const overlap = 30
	s := NewSplitter(WithChunkSize(100), WithOverlap(overlap))

	segs := s.Split(words(200))
	require.Greater(t, len(segs), 2)

	for i := 1; i < len(segs); i++ {
		prev := []rune(segs[i-1].Text)
		tail := string(prev[max(0, len(prev)-overlap):])
		head := strings.Fields(segs[i].Text)[0]
		assert.Contains(t, tail, head, "chunk %d should start inside the tail of chunk %d", i, i-1)
	}
}

func TestSplit_ZeroOverlap(t *testing.T) {
	s := NewSplitter(WithChunkSize(50), WithOverlap(0))

	segs := s.Split(words(60))

	var rebuilt []string
	for _, seg := range segs {
		rebuilt = append(rebuilt, strings.Fields(seg.Text)...)
	}
	assert.Equal(t, strings.Fields(words(60)), rebuilt)
}

func TestSplit_OffsetsPointIntoSource(t *testing.T) {
	text := "\n--- Page 1 ---\n" + words(80) + "\n--- Page 2 ---\nçà " + words(80)
	s := NewSplitter(WithChunkSize(120), WithOverlap(20))
	runes := []rune(text)

	segs := s.Split(text)
	require.NotEmpty(t, segs)

	last := -1
	for _, seg := range segs {
		n := utf8.RuneCountInString(seg.Text)
		require.LessOrEqual(t, seg.Offset+n, len(runes))
		assert.Equal(t, seg.Text, string(runes[seg.Offset:seg.Offset+n]))
		assert.Greater(t, seg.Offset, last)
		last = seg.Offset
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat(words(40)+"\n\n", 8)
	s := NewSplitter(WithChunkSize(150), WithOverlap(25))

	assert.Equal(t, s.Split(text), s.Split(text))
}

func TestSplit_RepetitiveTextHasUniqueOffsets(t *testing.T) {
	long := strings.Repeat("y", 1100)
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
	}{
		{"short repeats after long run", long + "a a\n\n\n\na  \n \n" + long + "a \n", DefaultChunkSize, DefaultChunkOverlap},
		{"repeated short lines", strings.Repeat("a\n", 400), 20, 10},
		{"repeated words", strings.Repeat("ab ", 600), 50, 40},
		{"blank runs between tokens", strings.Repeat("x \n  \n\n", 300), 16, 12},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSplitter(WithChunkSize(tc.size), WithOverlap(tc.overlap))
			runes := []rune(tc.text)

			segs := s.Split(tc.text)
			require.NotEmpty(t, segs)

			seen := make(map[int]int, len(segs))
			for i, seg := range segs {
				if j, dup := seen[seg.Offset]; dup {
					t.Fatalf("segments %d and %d share offset %d", j, i, seg.Offset)
				}
				seen[seg.Offset] = i

				n := utf8.RuneCountInString(seg.Text)
				require.LessOrEqual(t, seg.Offset+n, len(runes))
				assert.Equal(t, seg.Text, string(runes[seg.Offset:seg.Offset+n]), "segment %d", i)
			}
		})
	}
}

func TestCutKeepingSeparator(t *testing.T) {
	texts := func(pieces []piece) []string {
		out := make([]string, len(pieces))
		for i, p := range pieces {
			out[i] = p.text
		}
		return out
	}
	offsets := func(pieces []piece) []int {
		out := make([]int, len(pieces))
		for i, p := range pieces {
			out[i] = p.offset
		}
		return out
	}

	got := cutKeepingSeparator(piece{text: "a b c"}, " ")
	assert.Equal(t, []string{"a", " b", " c"}, texts(got))
	assert.Equal(t, []int{0, 1, 3}, offsets(got))

	got = cutKeepingSeparator(piece{text: "\n\nx\n\ny", offset: 10}, "\n\n")
	assert.Equal(t, []string{"\n\nx", "\n\ny"}, texts(got))
	assert.Equal(t, []int{10, 13}, offsets(got))

	got = cutKeepingSeparator(piece{text: "été"}, "")
	assert.Equal(t, []string{"é", "t", "é"}, texts(got))
	assert.Equal(t, []int{0, 1, 2}, offsets(got))

	assert.Empty(t, cutKeepingSeparator(piece{}, " "))
}

func TestTrimmed(t *testing.T) {
	seg, ok := trimmed([]piece{{text: "\n ", offset: 4}, {text: " é x ", offset: 6}})
	require.True(t, ok)
	assert.Equal(t, Segment{Offset: 7, Text: "é x"}, seg)

	_, ok = trimmed([]piece{{text: " \n", offset: 0}})
	assert.False(t, ok)
}
