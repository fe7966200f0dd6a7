// Package file provides file-based configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.docqa/config.toml
//   - PromptStore: user-editable prompt templates under ~/.docqa/prompts
//   - LoadCatalogue: YAML category catalogues
//   - LoadSettings: resolves domain.Settings from a ConfigStore and the environment
package file
