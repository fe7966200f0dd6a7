package domain

const unknownDescription = "Unknown"

// Default tuning values.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
	DefaultLLMModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens    = 1000
	DefaultDocumentsDir = "documents"
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderHashing is the built-in deterministic hashing embedder.
	// It needs no network access and cannot generate text.
	AIProviderHashing AIProvider = "hashing"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHashing, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHashing:
		return "Hashing (built-in, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend selects the collection store implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite persists collections in a local SQLite file.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendMemory keeps collections in process memory.
	IndexBackendMemory IndexBackend = "memory"

	// IndexBackendMilvus stores collections in a Milvus server.
	IndexBackendMilvus IndexBackend = "milvus"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendMemory, IndexBackendMilvus:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama, or OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RateLimit caps requests per second to the provider. Zero disables it.
	RateLimit float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// MaxTokens caps the completion length.
	MaxTokens int

	// Temperature is passed to the model when positive. Zero keeps the
	// provider default.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashing {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Settings is the resolved application configuration.
type Settings struct {
	// DocumentsPath is the directory ingested by default.
	DocumentsPath string

	// IndexPath is the directory holding the persisted collection.
	IndexPath string

	// Collection is the collection name.
	Collection string

	// Backend selects the collection store.
	Backend IndexBackend

	// MilvusAddress is the Milvus server address for IndexBackendMilvus.
	MilvusAddress string

	ChunkSize    int
	ChunkOverlap int
	TopK         int

	Embedding EmbeddingSettings
	LLM       LLMSettings

	// CategoriesFile optionally replaces the built-in catalogue.
	CategoriesFile string
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		DocumentsPath: DefaultDocumentsDir,
		Collection:    DefaultCollection,
		Backend:       IndexBackendSQLite,
		MilvusAddress: "localhost:19530",
		ChunkSize:     DefaultChunkSize,
		ChunkOverlap:  DefaultChunkOverlap,
		TopK:          DefaultTopK,
		Embedding: EmbeddingSettings{
			Provider: AIProviderHashing,
		},
		LLM: LLMSettings{
			Provider:  AIProviderAnthropic,
			Model:     DefaultLLMModel,
			MaxTokens: DefaultMaxTokens,
		},
	}
}

// Validate checks the settings for values the pipeline cannot run with.
func (s Settings) Validate() error {
	switch {
	case s.Collection == "":
		return wrapInvalid("collection name is empty")
	case !s.Backend.IsValid():
		return wrapInvalid("unknown index backend %q", s.Backend)
	case s.ChunkSize <= 0:
		return wrapInvalid("chunk size must be positive, got %d", s.ChunkSize)
	case s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize:
		return wrapInvalid("chunk overlap must be in [0, %d), got %d", s.ChunkSize, s.ChunkOverlap)
	case s.TopK <= 0:
		return wrapInvalid("top_k must be positive, got %d", s.TopK)
	case s.LLM.Temperature < 0 || s.LLM.Temperature > 2:
		return wrapInvalid("llm temperature must be in [0, 2], got %g", s.LLM.Temperature)
	}
	return nil
}
