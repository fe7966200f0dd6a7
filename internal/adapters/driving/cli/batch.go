package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// topDocuments is how many documents usage summaries list.
const topDocuments = 5

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Answer a list of questions, then print usage statistics",
	Long: `Answer one question per line from file, or from standard input when no
file is given. Blank lines and lines starting with # are ignored. After the
last question the session's usage statistics are printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Bool("json", false, "Output results and statistics as JSON")
	batchCmd.Flags().IntP("top-k", "k", 0, "Number of passages to retrieve (default retrieval.top_k)")
	rootCmd.AddCommand(batchCmd)
}

// batchOutput is the JSON form of a batch run.
type batchOutput struct {
	Results []domain.QueryResult `json:"results"`
	Stats   domain.StatsSnapshot `json:"stats"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json") //nolint:errcheck // flag registered in init
	topK, _ := cmd.Flags().GetInt("top-k")       //nolint:errcheck // flag registered in init

	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open questions: %w", err)
		}
		defer f.Close()
		in = f
	}
	questions, err := readQuestions(in)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions to answer", domain.ErrInvalidInput)
	}

	rt, err := openRuntime(cmd, topKOverride(topK))
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	out := batchOutput{Results: make([]domain.QueryResult, 0, len(questions))}
	for i, q := range questions {
		result, err := rt.Query.AnswerQuestion(commandContext(cmd), q, nil)
		if err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
		out.Results = append(out.Results, result)
		if !jsonOutput {
			cmd.Printf("\nQUESTION %d: %s\n", i+1, q)
			printResult(cmd, result)
		}
	}

	if rt.Stats != nil {
		out.Stats = rt.Stats.Snapshot()
	}
	if jsonOutput {
		return printJSON(cmd, out)
	}
	cmd.Println()
	printStats(cmd, out.Stats, rt.Catalogue)
	return nil
}

// readQuestions returns the non-blank, non-comment lines of r.
func readQuestions(r io.Reader) ([]string, error) {
	var questions []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}
	return questions, nil
}

// printStats renders a usage snapshot. Categories are listed in catalogue
// order.
func printStats(cmd *cobra.Command, snap domain.StatsSnapshot, catalogue domain.Catalogue) {
	cmd.Println(rule)
	cmd.Println("USAGE STATISTICS:")
	cmd.Println(rule)
	cmd.Printf("  Total queries:     %d\n", snap.Queries)
	cmd.Printf("  Avg response time: %s\n", snap.AverageResponseTime().Round(time.Millisecond))
	cmd.Printf("  Success rate:      %.0f%%\n", snap.SuccessRate()*100)

	if len(catalogue) > 0 {
		cmd.Println()
		cmd.Println("  Category usage:")
		for _, name := range catalogue.Names() {
			cmd.Printf("    %s: %d\n", name, snap.Categories[name])
		}
	}

	if top := snap.TopDocuments(topDocuments); len(top) > 0 {
		cmd.Println()
		cmd.Println("  Most used documents:")
		for _, d := range top {
			cmd.Printf("    %s: %d\n", domain.DisplayName(d.Document), d.Count)
		}
	}
}
