// Command docqa answers questions about a directory of PDF documents.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
)

func main() {
	// Load .env file if it exists (for API keys)
	_ = godotenv.Load()

	cli.SetFactory(newFactory(os.Getenv))
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
