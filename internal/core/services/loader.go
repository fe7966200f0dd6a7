package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// reasonNoText is the skip reason for documents without extractable text.
const reasonNoText = "no text extracted"

// Loader reads every supported file of a directory into source documents.
type Loader struct {
	extractors map[string]driven.PageExtractor
}

// NewLoader creates a loader dispatching files by extension. When two
// extractors claim an extension, the later one wins.
func NewLoader(extractors ...driven.PageExtractor) *Loader {
	l := &Loader{extractors: make(map[string]driven.PageExtractor)}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			l.extractors[strings.ToLower(ext)] = e
		}
	}
	return l
}

// Extensions returns the handled extensions, sorted.
func (l *Loader) Extensions() []string {
	exts := make([]string, 0, len(l.extractors))
	for ext := range l.extractors {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Load extracts the regular files of dir, non-recursively, in file name
// order. Files with an unhandled extension are ignored. Files that fail
// extraction or contain no text are reported as skipped.
//
// Returns domain.ErrNoDocuments when dir is missing or no document loads.
func (l *Loader) Load(ctx context.Context, dir string) ([]domain.SourceDocument, []domain.SkippedFile, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: directory %s does not exist", domain.ErrNoDocuments, dir)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read directory: %w", err)
	}

	var (
		docs    []domain.SourceDocument
		skipped []domain.SkippedFile
	)
	// os.ReadDir returns entries sorted by file name.
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		extractor, ok := l.extractors[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		doc, err := l.loadFile(ctx, extractor, entry.Name(), path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			logger.Warn("Skipping %s: %v", entry.Name(), err)
			skipped = append(skipped, domain.SkippedFile{Name: entry.Name(), Reason: err.Error()})
			continue
		}
		logger.Info("Loaded: %s (%d pages)", doc.Name, doc.TotalPages)
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, skipped, fmt.Errorf("%w in %s", domain.ErrNoDocuments, dir)
	}
	return docs, skipped, nil
}

func (l *Loader) loadFile(
	ctx context.Context, extractor driven.PageExtractor, name, path string,
) (domain.SourceDocument, error) {
	pages, err := extractor.ExtractPages(ctx, path)
	if err != nil {
		return domain.SourceDocument{}, err
	}

	content := JoinPages(pages)
	if strings.TrimSpace(content) == "" {
		return domain.SourceDocument{}, errors.New(reasonNoText)
	}

	return domain.SourceDocument{
		ID:         uuid.NewString(),
		Name:       name,
		Path:       path,
		Content:    content,
		TotalPages: len(pages),
	}, nil
}

// JoinPages concatenates pages, each preceded by its page marker. Pages
// without text are omitted but keep their number.
func JoinPages(pages []string) string {
	var b strings.Builder
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		b.WriteString(domain.PageMarker(i + 1))
		b.WriteString(page)
	}
	return b.String()
}
