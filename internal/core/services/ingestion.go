package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// DefaultDebounce is how long Watch waits for changes to settle.
const DefaultDebounce = 500 * time.Millisecond

// IngestionService runs the offline pipeline: load, chunk, index.
type IngestionService struct {
	loader    *Loader
	chunker   driven.PostProcessor
	builder   *IndexBuilder
	watcher   driven.DirWatcher
	debounce  time.Duration
	mu        sync.Mutex
	newRunID  func() string
	timeSince func(time.Time) time.Duration
}

// NewIngestionService creates an ingestion service.
// The watcher is optional and only needed for Watch.
func NewIngestionService(
	loader *Loader,
	chunker driven.PostProcessor,
	builder *IndexBuilder,
	watcher driven.DirWatcher,
) *IngestionService {
	return &IngestionService{
		loader:    loader,
		chunker:   chunker,
		builder:   builder,
		watcher:   watcher,
		debounce:  DefaultDebounce,
		newRunID:  uuid.NewString,
		timeSince: time.Since,
	}
}

// SetDebounce changes the Watch quiet period.
func (s *IngestionService) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Ingest rebuilds collection from the documents in sourceDir. Runs in the
// same process are serialised. On error the previous collection is kept.
func (s *IngestionService) Ingest(
	ctx context.Context, sourceDir, collection string,
) (domain.IngestionReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	report := domain.IngestionReport{RunID: s.newRunID(), Collection: collection}

	logger.Section("Ingestion")
	logger.Debug("Run %s: %s -> %q", report.RunID, sourceDir, collection)

	docs, skipped, err := s.loader.Load(ctx, sourceDir)
	report.Skipped = skipped
	if err != nil {
		report.Duration = s.timeSince(start)
		return report, fmt.Errorf("load documents: %w", err)
	}
	for _, d := range docs {
		report.Documents = append(report.Documents, d.Name)
	}

	chunks := s.chunker.Process(docs)
	logger.Info("Created %d chunks from %d documents", len(chunks), len(docs))

	if err := s.builder.Build(ctx, collection, chunks); err != nil {
		report.Duration = s.timeSince(start)
		return report, fmt.Errorf("build index: %w", err)
	}

	report.Chunks = len(chunks)
	report.Duration = s.timeSince(start)
	logger.Info("Indexed %d chunks into %q in %s", report.Chunks, collection, report.Duration)
	return report, nil
}

// Watch ingests once, then again after every burst of changes in
// sourceDir, until ctx is cancelled. Changes arriving within the debounce
// period of each other, or during a run, collapse into one rebuild.
func (s *IngestionService) Watch(
	ctx context.Context,
	sourceDir, collection string,
	onRun func(domain.IngestionReport, error),
) error {
	if s.watcher == nil {
		return errors.New("watch mode requires a directory watcher")
	}
	if onRun == nil {
		onRun = func(domain.IngestionReport, error) {}
	}

	changes, err := s.watcher.Watch(ctx, sourceDir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", sourceDir, err)
	}

	run := func() {
		report, err := s.Ingest(ctx, sourceDir, collection)
		if ctx.Err() != nil {
			return
		}
		onRun(report, err)
	}
	run()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending bool
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case path, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("Change detected: %s", path)
			pending = true
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			if pending {
				pending = false
				run()
			}
		}
	}
}
