package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// topDocuments is how many documents usage_stats reports.
const topDocuments = 5

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question   string   `json:"question" jsonschema:"the question to answer from the indexed documents"`
	Categories []string `json:"categories,omitempty" jsonschema:"restrict retrieval to these categories (see list_categories)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Question  string                  `json:"question"`
	Answer    string                  `json:"answer"`
	Sources   []domain.SourceCitation `json:"sources"`
	Outcome   string                  `json:"outcome"`
	ElapsedMS int64                   `json:"elapsed_ms"`
}

// ListCategoriesInput is the (empty) input schema for list_categories.
type ListCategoriesInput struct{}

// ListCategoriesOutput is the output schema for list_categories.
type ListCategoriesOutput struct {
	Categories []domain.Category `json:"categories"`
}

// UsageStatsInput is the (empty) input schema for usage_stats.
type UsageStatsInput struct{}

// UsageStatsOutput is the output schema for usage_stats.
type UsageStatsOutput struct {
	Queries           int                    `json:"query_count"`
	SuccessfulQueries int                    `json:"successful_queries"`
	SuccessRate       float64                `json:"success_rate"`
	AverageResponseMS int64                  `json:"average_response_ms"`
	Categories        map[string]int         `json:"category_stats"`
	TopDocuments      []domain.DocumentCount `json:"top_documents"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed documents with numbered source citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_categories",
		Description: "List document categories and the documents in each",
	}, s.handleListCategories)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "usage_stats",
		Description: "Report question counts, success rate and the most used documents for this session",
	}, s.handleUsageStats)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	filter, err := s.ports.Catalogue.BuildFilter(input.Categories)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCategory) {
			return nil, AskOutput{}, fmt.Errorf("%w (known: %s)", err,
				strings.Join(s.ports.Catalogue.Names(), ", "))
		}
		return nil, AskOutput{}, err
	}

	result, err := s.ports.Query.AnswerQuestion(ctx, input.Question, filter)
	if err != nil {
		return nil, AskOutput{}, err
	}

	sources := result.Sources
	if sources == nil {
		sources = []domain.SourceCitation{}
	}
	return nil, AskOutput{
		Question:  result.Question,
		Answer:    result.Answer,
		Sources:   sources,
		Outcome:   result.Outcome.String(),
		ElapsedMS: result.Elapsed.Milliseconds(),
	}, nil
}

// handleListCategories handles the list_categories tool invocation.
func (s *Server) handleListCategories(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListCategoriesInput,
) (*mcp.CallToolResult, ListCategoriesOutput, error) {
	categories := []domain.Category(s.ports.Catalogue)
	if categories == nil {
		categories = []domain.Category{}
	}
	return nil, ListCategoriesOutput{Categories: categories}, nil
}

// handleUsageStats handles the usage_stats tool invocation.
func (s *Server) handleUsageStats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ UsageStatsInput,
) (*mcp.CallToolResult, UsageStatsOutput, error) {
	if s.ports.Stats == nil {
		return nil, UsageStatsOutput{}, errors.New("usage statistics are not enabled")
	}
	return nil, statsOutput(s.ports.Stats.Snapshot()), nil
}

func statsOutput(snap domain.StatsSnapshot) UsageStatsOutput {
	categories := snap.Categories
	if categories == nil {
		categories = map[string]int{}
	}
	return UsageStatsOutput{
		Queries:           snap.Queries,
		SuccessfulQueries: snap.SuccessfulQueries,
		SuccessRate:       snap.SuccessRate(),
		AverageResponseMS: snap.AverageResponseTime().Milliseconds(),
		Categories:        categories,
		TopDocuments:      snap.TopDocuments(topDocuments),
	}
}
