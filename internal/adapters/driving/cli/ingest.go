package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the index from a directory of documents",
	Long: `Load every PDF in the source directory, split it into overlapping chunks,
embed the chunks and replace the collection with the result.

The previous collection stays searchable until the new one is complete.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("source", "", "Directory of documents (default documents.path)")
	ingestCmd.Flags().String("collection", "", "Collection name (default index.collection)")
	rootCmd.AddCommand(ingestCmd)
}

// ingestOverrides maps the shared --source and --collection flags onto
// setting keys.
func ingestOverrides(cmd *cobra.Command) map[string]string {
	source, _ := cmd.Flags().GetString("source")         //nolint:errcheck // flag registered in init
	collection, _ := cmd.Flags().GetString("collection") //nolint:errcheck // flag registered in init
	return map[string]string{
		file.KeyDocumentsPath: source,
		file.KeyCollection:    collection,
	}
}

func runIngest(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime(cmd, ingestOverrides(cmd))
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	source := rt.Settings.DocumentsPath
	collection := rt.Settings.Collection
	cmd.Printf("Ingesting documents from %s...\n", source)

	report, err := rt.Ingestion.Ingest(commandContext(cmd), source, collection)
	printSkipped(cmd, report)
	if err != nil {
		if errors.Is(err, domain.ErrNoDocuments) {
			return fmt.Errorf("%w: add PDF files to %s and try again", err, source)
		}
		return err
	}
	printReport(cmd, report)
	return nil
}

// printSkipped lists the files an ingestion run could not use.
func printSkipped(cmd *cobra.Command, report domain.IngestionReport) {
	for _, s := range report.Skipped {
		cmd.Printf("  Skipped: %s (%s)\n", s.Name, s.Reason)
	}
}

// printReport prints the summary of a successful run.
func printReport(cmd *cobra.Command, report domain.IngestionReport) {
	for _, d := range report.Documents {
		cmd.Printf("  Loaded: %s\n", d)
	}
	cmd.Println()
	cmd.Println("Ingestion complete")
	cmd.Printf("  Documents:  %d\n", len(report.Documents))
	cmd.Printf("  Chunks:     %d\n", report.Chunks)
	cmd.Printf("  Collection: %s\n", report.Collection)
	cmd.Printf("  Duration:   %s\n", report.Duration.Round(time.Millisecond))
}
