package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

const rule = "============================================================"

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieve the passages most relevant to the question and answer it with
citations. When nothing relevant is indexed the answer is a fixed refusal.

Examples:
  docqa ask "What are UPS's main service offerings?"
  docqa ask "What are the main risks?" --category "Finance & Banking"
  docqa ask "Summarise revenue" --source-doc UPS-annualreport.pdf --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSlice("category", nil, "Restrict to category (repeatable)")
	askCmd.Flags().StringSlice("source-doc", nil, "Restrict to document file name (repeatable)")
	askCmd.Flags().Bool("json", false, "Output the result as JSON")
	askCmd.Flags().IntP("top-k", "k", 0, "Number of passages to retrieve (default retrieval.top_k)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	categories, _ := cmd.Flags().GetStringSlice("category") //nolint:errcheck // flag registered in init
	docs, _ := cmd.Flags().GetStringSlice("source-doc")     //nolint:errcheck // flag registered in init
	jsonOutput, _ := cmd.Flags().GetBool("json")            //nolint:errcheck // flag registered in init
	topK, _ := cmd.Flags().GetInt("top-k")                  //nolint:errcheck // flag registered in init

	rt, err := openRuntime(cmd, topKOverride(topK))
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	filter, err := buildFilter(rt.Catalogue, categories, docs)
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	result, err := rt.Query.AnswerQuestion(commandContext(cmd), question, filter)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd, result)
	}
	printResult(cmd, result)
	return nil
}

// topKOverride maps -k onto the retrieval.top_k setting.
func topKOverride(k int) map[string]string {
	if k <= 0 {
		return nil
	}
	return map[string]string{file.KeyTopK: strconv.Itoa(k)}
}

// buildFilter combines category and document selections into one filter.
// The allow-list is the union of the selected categories' documents and the
// named documents. Selecting every category without naming documents
// searches everything.
func buildFilter(catalogue domain.Catalogue, categories, docs []string) (*domain.Filter, error) {
	filter, err := catalogue.BuildFilter(categories)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return filter, nil
	}
	if filter == nil {
		if len(categories) > 0 {
			return nil, nil
		}
		return domain.NewSourceFilter(docs...), nil
	}
	for _, d := range docs {
		if !slices.Contains(filter.Sources, d) {
			filter.Sources = append(filter.Sources, d)
		}
	}
	return filter, nil
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printResult renders an answer and its numbered sources.
func printResult(cmd *cobra.Command, result domain.QueryResult) {
	cmd.Println(rule)
	cmd.Println("ANSWER:")
	cmd.Println(rule)
	cmd.Println(result.Answer)
	cmd.Println()

	if len(result.Sources) > 0 {
		cmd.Println(rule)
		cmd.Println("SOURCES:")
		cmd.Println(rule)
		for _, src := range result.Sources {
			cmd.Printf("  [%d] %s - %s (Chunk %d)\n",
				src.SourceNum, src.Document, src.PageReference, src.ChunkID)
		}
		cmd.Println()
	}
	cmd.Printf("Answered in %s\n", result.Elapsed.Round(time.Millisecond))
}
