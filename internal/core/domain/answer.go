package domain

import (
	"fmt"
	"time"
)

// RefusalText is the fixed answer when the knowledge base cannot ground
// a response.
const RefusalText = "I don't have that information in my knowledge base."

// AnswerKind tags the outcome of answer composition.
type AnswerKind int

const (
	// AnswerOK is a grounded model answer.
	AnswerOK AnswerKind = iota

	// AnswerRefusal is the fixed refusal. It is produced when nothing was
	// retrieved, the model returned no text, or the model refused.
	AnswerRefusal

	// AnswerModelError means the model call itself failed.
	AnswerModelError
)

// String returns the string representation.
func (k AnswerKind) String() string {
	switch k {
	case AnswerOK:
		return "ok"
	case AnswerRefusal:
		return "refusal"
	case AnswerModelError:
		return "model_error"
	default:
		return "unknown"
	}
}

// Answer is the tagged result of composing an answer. It keeps "the model
// declined" apart from "the call failed" until Display flattens it.
type Answer struct {
	Kind AnswerKind
	Text string
	Err  error
}

// OKAnswer returns a grounded answer.
func OKAnswer(text string) Answer {
	return Answer{Kind: AnswerOK, Text: text}
}

// RefusalAnswer returns the fixed refusal.
func RefusalAnswer() Answer {
	return Answer{Kind: AnswerRefusal, Text: RefusalText}
}

// ModelErrorAnswer wraps a model call failure.
func ModelErrorAnswer(err error) Answer {
	return Answer{Kind: AnswerModelError, Err: err}
}

// Display flattens the answer into the user-visible string.
// It never returns an empty string.
func (a Answer) Display() string {
	switch a.Kind {
	case AnswerOK:
		if a.Text == "" {
			return RefusalText
		}
		return a.Text
	case AnswerModelError:
		if a.Err == nil {
			return "Error generating answer: unknown error"
		}
		return fmt.Sprintf("Error generating answer: %s", a.Err)
	default:
		return RefusalText
	}
}

// SourceCitation is the display record of one retrieved chunk.
type SourceCitation struct {
	// SourceNum is the 1-based position among this query's results.
	SourceNum int `json:"source_num"`

	// Document is the owning document's name.
	Document string `json:"document"`

	// ChunkID is the sequential chunk id.
	ChunkID int `json:"chunk_id"`

	// PageReference is "Page N" or "Unknown".
	PageReference string `json:"page_reference"`

	// RelevanceScore is the raw distance reported by retrieval.
	RelevanceScore float64 `json:"relevance_score"`
}

// Citations numbers retrieved chunks 1..n in order.
func Citations(retrieved []RetrievedChunk) []SourceCitation {
	out := make([]SourceCitation, 0, len(retrieved))
	for i, r := range retrieved {
		out = append(out, SourceCitation{
			SourceNum:      i + 1,
			Document:       r.Chunk.Source,
			ChunkID:        r.Chunk.Index,
			PageReference:  r.Chunk.PageReference,
			RelevanceScore: r.Distance,
		})
	}
	return out
}

// QueryResult is the outcome of answering one question.
type QueryResult struct {
	Question string           `json:"question"`
	Answer   string           `json:"answer"`
	Sources  []SourceCitation `json:"sources"`

	// Outcome is the kind of the composed answer.
	Outcome AnswerKind `json:"-"`

	// Elapsed is the wall time spent answering.
	Elapsed time.Duration `json:"-"`
}
