package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Composer turns retrieved chunks into a grounded, cited answer.
type Composer struct {
	llm         driven.LLMService
	prompts     driven.PromptStore
	maxTokens   int
	temperature float64
}

// NewComposer creates a composer. llm and prompts may be nil: without an
// LLM every grounded answer is a model error, and without a prompt store
// the built-in template is used.
func NewComposer(llm driven.LLMService, prompts driven.PromptStore) *Composer {
	return &Composer{llm: llm, prompts: prompts, maxTokens: domain.DefaultMaxTokens}
}

// SetMaxTokens changes the completion limit. Non-positive values are ignored.
func (c *Composer) SetMaxTokens(n int) {
	if n > 0 {
		c.maxTokens = n
	}
}

// SetTemperature sets the sampling temperature. Zero leaves it to the
// provider.
func (c *Composer) SetTemperature(t float64) {
	c.temperature = max(t, 0)
}

// BuildContext renders the numbered context block for retrieved chunks.
func BuildContext(retrieved []domain.RetrievedChunk) string {
	parts := make([]string, 0, len(retrieved))
	for i, r := range retrieved {
		parts = append(parts, fmt.Sprintf("[Source %d: %s, Chunk %d, %s]\n%s\n",
			i+1, r.Chunk.Source, r.Chunk.Index, r.Chunk.PageReference, r.Chunk.Content))
	}
	return strings.Join(parts, "\n---\n")
}

// Prompt returns the full prompt sent to the model.
func (c *Composer) Prompt(query string, retrieved []domain.RetrievedChunk) string {
	return domain.RenderPrompt(c.template(), BuildContext(retrieved), query)
}

// Compose answers query from retrieved. It never returns an empty answer
// and never panics: nothing retrieved or no model text yields a refusal,
// and a failing model yields a model error.
func (c *Composer) Compose(ctx context.Context, query string, retrieved []domain.RetrievedChunk) (answer domain.Answer) {
	if len(retrieved) == 0 {
		return domain.RefusalAnswer()
	}
	if c.llm == nil {
		return domain.ModelErrorAnswer(domain.ErrLLMUnavailable)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("LLM adapter panicked: %v", r)
			answer = domain.ModelErrorAnswer(fmt.Errorf("model call panicked: %v", r))
		}
	}()

	text, err := c.llm.Generate(ctx, c.Prompt(query, retrieved), driven.GenerateOptions{
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		logger.Warn("Answer generation failed: %v", err)
		return domain.ModelErrorAnswer(err)
	}

	text = strings.TrimSpace(text)
	if text == "" || text == domain.RefusalText {
		return domain.RefusalAnswer()
	}
	return domain.OKAnswer(text)
}

func (c *Composer) template() string {
	if c.prompts == nil {
		return domain.DefaultAnswerPrompt
	}
	tmpl, err := c.prompts.Load(driven.PromptAnswer)
	if err != nil {
		logger.Debug("Using built-in answer prompt: %v", err)
		return domain.DefaultAnswerPrompt
	}
	if strings.TrimSpace(tmpl) == "" {
		return domain.DefaultAnswerPrompt
	}
	return tmpl
}
