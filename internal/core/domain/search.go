package domain

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
)

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 5

// Filter restricts retrieval to chunks whose source is in an allow-list.
// A nil *Filter means unrestricted search. A non-nil filter with an empty
// allow-list matches nothing.
type Filter struct {
	// Sources is the allow-list of document names.
	Sources []string
}

// NewSourceFilter returns a filter allowing the given documents.
// Sources is never nil, even for an empty allow-list.
func NewSourceFilter(sources ...string) *Filter {
	return &Filter{Sources: append(make([]string, 0, len(sources)), sources...)}
}

// Matches reports whether a chunk from source passes the filter.
func (f *Filter) Matches(source string) bool {
	if f == nil {
		return true
	}
	return slices.Contains(f.Sources, source)
}

// filterWire is the wire form {"source": {"$in": [...]}}.
type filterWire struct {
	Source *struct {
		In []string `json:"$in"`
	} `json:"source"`
}

// MarshalJSON encodes the filter as {"source":{"$in":[...]}}.
func (f *Filter) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	in := f.Sources
	if in == nil {
		in = []string{}
	}
	return json.Marshal(map[string]any{"source": map[string]any{"$in": in}})
}

// ParseFilter decodes the wire form of a filter. Empty input and a JSON
// null both decode to a nil filter.
func ParseFilter(data []byte) (*Filter, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w filterWire
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: filter: %w", ErrInvalidInput, err)
	}
	if w.Source == nil {
		return nil, fmt.Errorf("%w: filter: missing \"source\" predicate", ErrInvalidInput)
	}
	return NewSourceFilter(w.Source.In...), nil
}

// RetrievedChunk is a chunk paired with its distance to the query vector.
// Lower distance means more similar.
type RetrievedChunk struct {
	Chunk    Chunk
	Distance float64
}

// CompareRetrieved orders retrieval results by increasing distance.
// Ties are broken by ascending chunk Index, then by chunk ID, so the
// order never depends on storage iteration order.
func CompareRetrieved(a, b RetrievedChunk) int {
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Chunk.Index, b.Chunk.Index); c != 0 {
		return c
	}
	return cmp.Compare(a.Chunk.ID, b.Chunk.ID)
}

// SortRetrieved sorts results in place with CompareRetrieved.
func SortRetrieved(results []RetrievedChunk) {
	slices.SortFunc(results, CompareRetrieved)
}

// TopK sorts results and truncates them to at most k entries.
// A non-positive k selects DefaultTopK.
func TopK(results []RetrievedChunk, k int) []RetrievedChunk {
	if k <= 0 {
		k = DefaultTopK
	}
	SortRetrieved(results)
	if len(results) > k {
		results = results[:k]
	}
	return results
}
