package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List document categories",
	Long: `List the categories that --category accepts and the documents each one
covers. Categories come from categories.file, or the built-in catalogue.

--export writes the catalogue in use as YAML, a starting point for a
custom categories.file.`,
	Args: cobra.NoArgs,
	RunE: runCategories,
}

func init() {
	categoriesCmd.Flags().Bool("json", false, "Output as JSON")
	categoriesCmd.Flags().String("export", "", "Write the catalogue to this YAML file")
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json") //nolint:errcheck // flag registered in init

	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	if path, _ := cmd.Flags().GetString("export"); path != "" { //nolint:errcheck // flag registered in init
		if err := file.SaveCatalogue(path, rt.Catalogue); err != nil {
			return err
		}
		cmd.Printf("Wrote %d categories to %s\n", len(rt.Catalogue), path)
		return nil
	}

	if jsonOutput {
		return printJSON(cmd, rt.Catalogue)
	}

	if len(rt.Catalogue) == 0 {
		cmd.Println("No categories configured.")
		return nil
	}
	for i, cat := range rt.Catalogue {
		if i > 0 {
			cmd.Println()
		}
		cmd.Printf("%s (%d documents)\n", cat.Name, len(cat.Documents))
		for _, doc := range cat.Documents {
			cmd.Printf("  - %s\n", doc)
		}
	}
	return nil
}
