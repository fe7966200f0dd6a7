package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Ingest, then re-ingest whenever the documents change",
	Long: `Build the index once, then watch the source directory and rebuild it
after files are added, changed or removed. Bursts of changes are collapsed
into a single rebuild. Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("source", "", "Directory of documents (default documents.path)")
	watchCmd.Flags().String("collection", "", "Collection name (default index.collection)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime(cmd, ingestOverrides(cmd))
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := rt.Settings.DocumentsPath
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", source)
	return watchLoop(ctx, cmd, rt, source)
}

// watchLoop reports every run until ctx is cancelled.
func watchLoop(ctx context.Context, cmd *cobra.Command, rt *Runtime, source string) error {
	return rt.Ingestion.Watch(ctx, source, rt.Settings.Collection, func(report domain.IngestionReport, err error) {
		printSkipped(cmd, report)
		if err != nil {
			cmd.PrintErrf("Ingestion failed: %v\n", err)
			return
		}
		cmd.Printf("Indexed %d chunks from %d documents into %q\n",
			report.Chunks, len(report.Documents), report.Collection)
	})
}
