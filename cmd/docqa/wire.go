package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/milvus"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driven/watcher"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

// factory builds the service graph from the config file, the environment
// and command-line overrides.
type factory struct {
	getenv func(string) string
}

var _ cli.Factory = (*factory)(nil)

func newFactory(getenv func(string) string) *factory {
	return &factory{getenv: getenv}
}

// Settings resolves flags > environment > config file > defaults.
func (f *factory) Settings(opts cli.Options) (driven.ConfigStore, domain.Settings, error) {
	store, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, domain.Settings{}, err
	}
	settings, err := file.LoadSettings(store, f.getenv)
	if err != nil {
		return nil, domain.Settings{}, err
	}

	keys := make([]string, 0, len(opts.Overrides))
	for k := range opts.Overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := file.SetFromString(&settings, k, opts.Overrides[k]); err != nil {
			return nil, domain.Settings{}, err
		}
	}

	if settings.IndexPath == "" && opts.ConfigDir != "" {
		settings.IndexPath = filepath.Join(opts.ConfigDir, "data")
	}
	return store, settings, nil
}

// Runtime builds every service a command may use.
func (f *factory) Runtime(ctx context.Context, opts cli.Options) (*cli.Runtime, error) {
	_, settings, err := f.Settings(opts)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	catalogue, err := file.ResolveCatalogue(settings.CategoriesFile)
	if err != nil {
		return nil, err
	}

	chunker, err := postprocessors.NewChunker(settings)
	if err != nil {
		return nil, err
	}

	promptDir := ""
	if opts.ConfigDir != "" {
		promptDir = filepath.Join(opts.ConfigDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, err
	}

	aiServices, err := ai.NewServices(settings, false)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, settings)
	if err != nil {
		aiServices.Close()
		return nil, err
	}
	logger.Debug("Using %s collection store", settings.Backend)

	loader := services.NewLoader(normalisers.Defaults()...)
	builder := services.NewIndexBuilder(aiServices.Embedding, store)
	ingestion := services.NewIngestionService(loader, chunker, builder, watcher.New(loader.Extensions()...))

	retriever := services.NewRetriever(aiServices.Embedding, store, settings.Collection)
	composer := services.NewComposer(aiServices.LLM, prompts)
	composer.SetMaxTokens(settings.LLM.MaxTokens)
	composer.SetTemperature(settings.LLM.Temperature)

	stats := services.NewStatsAggregator(catalogue)
	query := services.NewQueryService(retriever, composer, stats)
	query.SetTopK(settings.TopK)

	return &cli.Runtime{
		Settings:  settings,
		Catalogue: catalogue,
		Ingestion: ingestion,
		Query:     query,
		Stats:     stats,
		Warnings:  aiServices.Warnings,
		Closer: func() error {
			aiServices.Close()
			return store.Close()
		},
	}, nil
}

// openStore opens the collection store selected by index.backend.
func openStore(ctx context.Context, settings domain.Settings) (driven.CollectionStore, error) {
	switch settings.Backend {
	case domain.IndexBackendMemory:
		return memory.NewCollectionStore(), nil
	case domain.IndexBackendMilvus:
		store, err := milvus.NewStore(ctx, settings.MilvusAddress)
		if err != nil {
			return nil, fmt.Errorf("connecting to milvus at %s: %w", settings.MilvusAddress, err)
		}
		return store, nil
	case domain.IndexBackendSQLite:
		store, err := sqlite.NewStore(settings.IndexPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, errors.New("unknown index backend " + string(settings.Backend))
}
