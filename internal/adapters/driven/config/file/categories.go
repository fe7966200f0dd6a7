package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// catalogueFile is the YAML layout of a categories file:
//
//	categories:
//	  - name: Finance & Banking
//	    documents:
//	      - annual-report.pdf
type catalogueFile struct {
	Categories domain.Catalogue `yaml:"categories"`
}

// LoadCatalogue reads a category catalogue from a YAML file. Category
// order in the file is kept. Returns domain.ErrConfigNotFound if the file
// does not exist.
func LoadCatalogue(path string) (domain.Catalogue, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}

	var f catalogueFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, path, err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("%w: %s defines no categories", domain.ErrInvalidInput, path)
	}
	if err := f.Categories.Validate(); err != nil {
		return nil, err
	}
	return f.Categories, nil
}

// ResolveCatalogue returns the catalogue at path, or the built-in one when
// path is empty.
func ResolveCatalogue(path string) (domain.Catalogue, error) {
	if path == "" {
		return domain.DefaultCatalogue(), nil
	}
	return LoadCatalogue(path)
}

// SaveCatalogue writes the catalogue as YAML.
func SaveCatalogue(path string, c domain.Catalogue) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(catalogueFile{Categories: c})
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
