package file

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Config keys.
const (
	KeyDocumentsPath     = "documents.path"
	KeyIndexPath         = "index.path"
	KeyCollection        = "index.collection"
	KeyBackend           = "index.backend"
	KeyMilvusAddress     = "milvus.address"
	KeyChunkSize         = "chunking.size"
	KeyChunkOverlap      = "chunking.overlap"
	KeyTopK              = "retrieval.top_k"
	KeyEmbeddingProvider = "embedding.provider"
	KeyEmbeddingModel    = "embedding.model"
	KeyEmbeddingBaseURL  = "embedding.base_url"
	KeyEmbeddingAPIKey   = "embedding.api_key"
	KeyEmbeddingRate     = "embedding.rate_limit"
	KeyLLMProvider       = "llm.provider"
	KeyLLMModel          = "llm.model"
	KeyLLMBaseURL        = "llm.base_url"
	KeyLLMAPIKey         = "llm.api_key"
	KeyLLMMaxTokens      = "llm.max_tokens"
	KeyLLMTemperature    = "llm.temperature"
	KeyCategoriesFile    = "categories.file"
)

// Provider environment variables.
const (
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvOllamaHost      = "OLLAMA_HOST"
)

// EnvPrefix prefixes the per-key overrides. "llm.model" is overridden by
// DOCQA_LLM_MODEL.
const EnvPrefix = "DOCQA_"

// EnvName returns the override variable for a config key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// field binds a config key to a Settings field. target is one of *string,
// *int, *float64, *domain.AIProvider or *domain.IndexBackend.
type field struct {
	key    string
	target any
}

func fields(s *domain.Settings) []field {
	return []field{
		{KeyDocumentsPath, &s.DocumentsPath},
		{KeyIndexPath, &s.IndexPath},
		{KeyCollection, &s.Collection},
		{KeyBackend, &s.Backend},
		{KeyMilvusAddress, &s.MilvusAddress},
		{KeyChunkSize, &s.ChunkSize},
		{KeyChunkOverlap, &s.ChunkOverlap},
		{KeyTopK, &s.TopK},
		{KeyEmbeddingProvider, &s.Embedding.Provider},
		{KeyEmbeddingModel, &s.Embedding.Model},
		{KeyEmbeddingBaseURL, &s.Embedding.BaseURL},
		{KeyEmbeddingAPIKey, &s.Embedding.APIKey},
		{KeyEmbeddingRate, &s.Embedding.RateLimit},
		{KeyLLMProvider, &s.LLM.Provider},
		{KeyLLMModel, &s.LLM.Model},
		{KeyLLMBaseURL, &s.LLM.BaseURL},
		{KeyLLMAPIKey, &s.LLM.APIKey},
		{KeyLLMMaxTokens, &s.LLM.MaxTokens},
		{KeyLLMTemperature, &s.LLM.Temperature},
		{KeyCategoriesFile, &s.CategoriesFile},
	}
}

// Keys returns every recognised config key in display order.
func Keys() []string {
	var s domain.Settings
	fs := fields(&s)
	keys := make([]string, 0, len(fs))
	for _, f := range fs {
		keys = append(keys, f.key)
	}
	return keys
}

// LoadSettings resolves settings from defaults, then store, then the
// environment. env is usually os.Getenv; a nil store or env is skipped.
// Command-line flags are applied by the caller on top of the result.
//
// The provider key variables fill in credentials for whichever side uses
// that provider unless a DOCQA_ override is set. OLLAMA_HOST sets the base
// URL of Ollama providers that have none.
func LoadSettings(store driven.ConfigStore, env func(string) string) (domain.Settings, error) {
	s := domain.DefaultSettings()
	fs := fields(&s)

	if store != nil {
		for _, f := range fs {
			fromStore(store, f)
		}
	}

	if env != nil {
		for _, f := range fs {
			raw := env(EnvName(f.key))
			if raw == "" {
				continue
			}
			if err := fromString(f, raw); err != nil {
				return s, fmt.Errorf("%s: %w", EnvName(f.key), err)
			}
		}
		applyProviderEnv(&s, env)
	}

	return s, nil
}

func fromStore(store driven.ConfigStore, f field) {
	if _, ok := store.Get(f.key); !ok {
		return
	}
	switch t := f.target.(type) {
	case *string:
		if v := stringValue(store, f.key); v != "" {
			*t = v
		}
	case *domain.AIProvider:
		if v := stringValue(store, f.key); v != "" {
			*t = domain.AIProvider(v)
		}
	case *domain.IndexBackend:
		if v := stringValue(store, f.key); v != "" {
			*t = domain.IndexBackend(v)
		}
	case *int:
		*t = intValue(store, f.key)
	case *float64:
		*t = floatValue(store, f.key)
	}
}

func fromString(f field, raw string) error {
	switch t := f.target.(type) {
	case *string:
		*t = raw
	case *domain.AIProvider:
		*t = domain.AIProvider(raw)
	case *domain.IndexBackend:
		*t = domain.IndexBackend(raw)
	case *int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, raw)
		}
		*t = v
	case *float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, raw)
		}
		*t = v
	}
	return nil
}

// SetFromString parses raw for key and applies it to s. It backs the
// settings command and command-line overrides.
func SetFromString(s *domain.Settings, key, raw string) error {
	for _, f := range fields(s) {
		if f.key == key {
			return fromString(f, raw)
		}
	}
	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// Value returns the string form of key in s.
func Value(s domain.Settings, key string) (string, bool) {
	for _, f := range fields(&s) {
		if f.key != key {
			continue
		}
		switch t := f.target.(type) {
		case *string:
			return *t, true
		case *domain.AIProvider:
			return string(*t), true
		case *domain.IndexBackend:
			return string(*t), true
		case *int:
			return strconv.Itoa(*t), true
		case *float64:
			return strconv.FormatFloat(*t, 'g', -1, 64), true
		}
	}
	return "", false
}

func applyProviderEnv(s *domain.Settings, env func(string) string) {
	keyFor := func(p domain.AIProvider) string {
		switch p {
		case domain.AIProviderAnthropic:
			return env(EnvAnthropicAPIKey)
		case domain.AIProviderOpenAI:
			return env(EnvOpenAIAPIKey)
		default:
			return ""
		}
	}

	if env(EnvName(KeyEmbeddingAPIKey)) == "" {
		if k := keyFor(s.Embedding.Provider); k != "" {
			s.Embedding.APIKey = k
		}
	}
	if env(EnvName(KeyLLMAPIKey)) == "" {
		if k := keyFor(s.LLM.Provider); k != "" {
			s.LLM.APIKey = k
		}
	}

	host := env(EnvOllamaHost)
	if host == "" {
		return
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	if s.Embedding.Provider == domain.AIProviderOllama && s.Embedding.BaseURL == "" {
		s.Embedding.BaseURL = host
	}
	if s.LLM.Provider == domain.AIProviderOllama && s.LLM.BaseURL == "" {
		s.LLM.BaseURL = host
	}
}

// StoreValue parses raw for key and persists it to store with the key's
// type, so numbers are written as TOML numbers.
func StoreValue(store driven.ConfigStore, key, raw string) error {
	var s domain.Settings
	for _, f := range fields(&s) {
		if f.key != key {
			continue
		}
		if err := fromString(f, raw); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		switch t := f.target.(type) {
		case *int:
			return store.Set(key, *t)
		case *float64:
			return store.Set(key, *t)
		default:
			return store.Set(key, raw)
		}
	}
	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}
