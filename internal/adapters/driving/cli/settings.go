package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change docqa settings.

Values resolve in order: command-line flags, DOCQA_* environment variables,
the config file, then built-in defaults. ANTHROPIC_API_KEY, OPENAI_API_KEY
and OLLAMA_HOST are also honoured.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Change a setting in the config file",
	Long: `Write a setting to the config file. Run 'docqa settings keys' for the list
of keys. When the value of an API key is omitted it is read from the terminal
without echo.

Examples:
  docqa settings set llm.provider ollama
  docqa settings set retrieval.top_k 8
  docqa settings set llm.api_key`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys and their environment variables",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if factory == nil {
		return errNotConfigured
	}
	store, settings, err := factory.Settings(options(nil))
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n", store.Path())
	cmd.Println()

	cmd.Println("[Documents]")
	cmd.Printf("  Path: %s\n", settings.DocumentsPath)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Backend)
	switch settings.Backend {
	case domain.IndexBackendMilvus:
		cmd.Printf("  Address: %s\n", settings.MilvusAddress)
	case domain.IndexBackendSQLite:
		cmd.Printf("  Path: %s\n", settings.IndexPath)
	}
	cmd.Printf("  Collection: %s\n", settings.Collection)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d\n", settings.ChunkSize)
	cmd.Printf("  Overlap: %d\n", settings.ChunkOverlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.TopK)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	if settings.Embedding.Provider != domain.AIProviderHashing {
		cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	}
	printEndpoint(cmd, settings.Embedding.Provider, settings.Embedding.BaseURL, settings.Embedding.APIKey)
	if settings.Embedding.RateLimit > 0 {
		cmd.Printf("  Rate limit: %g req/s\n", settings.Embedding.RateLimit)
	}
	cmd.Printf("  Status: %s\n", status(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	printEndpoint(cmd, settings.LLM.Provider, settings.LLM.BaseURL, settings.LLM.APIKey)
	cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	cmd.Printf("  Status: %s\n", status(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Categories]")
	if settings.CategoriesFile != "" {
		cmd.Printf("  File: %s\n", settings.CategoriesFile)
	} else {
		cmd.Println("  File: (built-in catalogue)")
	}

	if err := settings.Validate(); err != nil {
		cmd.Println()
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

// printEndpoint prints the base URL of local providers and the masked key of
// cloud providers.
func printEndpoint(cmd *cobra.Command, provider domain.AIProvider, baseURL, apiKey string) {
	if provider == domain.AIProviderOllama || baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
}

func status(configured bool) string {
	if configured {
		return "configured"
	}
	return "not configured"
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if factory == nil {
		return errNotConfigured
	}
	key := args[0]
	if _, ok := file.Value(domain.Settings{}, key); !ok {
		return fmt.Errorf("%w: unknown setting %q (run 'docqa settings keys')", domain.ErrInvalidInput, key)
	}

	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case isSecret(key):
		cmd.Printf("Enter value for %s: ", key)
		value = readPassword(cmd.InOrStdin())
		cmd.Println()
	default:
		return fmt.Errorf("%w: missing value for %s", domain.ErrInvalidInput, key)
	}

	store, current, err := factory.Settings(options(nil))
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Reject values that would leave the configuration unusable.
	if err := file.SetFromString(&current, key, value); err != nil {
		return err
	}
	if err := current.Validate(); err != nil {
		return err
	}

	if err := file.StoreValue(store, key, value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	if isSecret(key) {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	for _, key := range file.Keys() {
		cmd.Printf("  %-22s %s\n", key, file.EnvName(key))
	}
	return nil
}

func isSecret(key string) bool {
	return strings.HasSuffix(key, ".api_key")
}

// Helper functions.

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// readPassword reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
