package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/internal/repository/specification"
	"exam-prep-be/internal/repository/unitofwork"
	"exam-prep-be/pkg/generation"

	"github.com/go-co-op/gocron"
	"golang.org/x/sync/errgroup"
)

type SweepReport struct {
	Topics            int      `json:"topics"`
	TestsRemoved      int      `json:"tests_removed"`
	FlashcardsRemoved int      `json:"flashcards_removed"`
	Skipped           int      `json:"skipped"`
	FailedIds         []string `json:"failed_ids"`
	Errors            []string `json:"errors"`
}

// DedupSweeper deduplicates every stored topic on a schedule. Topics that
// are being generated are skipped and picked up by the next run.
type DedupSweeper struct {
	uowFactory        unitofwork.RepositoryFactory
	generationService IGenerationService
	concurrency       int
	scheduler         *gocron.Scheduler
	logger            logger.ILogger
}

func NewDedupSweeper(uowFactory unitofwork.RepositoryFactory, generationService IGenerationService, concurrency int, logger logger.ILogger) *DedupSweeper {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &DedupSweeper{
		uowFactory:        uowFactory,
		generationService: generationService,
		concurrency:       concurrency,
		scheduler:         gocron.NewScheduler(time.UTC),
		logger:            logger,
	}
}

// Start schedules the sweep every interval. A run still in progress when the
// next one is due makes the scheduler skip it.
func (s *DedupSweeper) Start(interval time.Duration) error {
	s.scheduler.SingletonModeAll()
	if _, err := s.scheduler.Every(interval).Do(func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.logger.Error("DEDUP", "Sweep failed", map[string]interface{}{"error": err.Error()})
		}
	}); err != nil {
		return fmt.Errorf("schedule dedup sweep: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("DEDUP", "Dedup sweeper started", map[string]interface{}{"interval": interval.String()})
	return nil
}

func (s *DedupSweeper) Stop() {
	s.scheduler.Stop()
}

// Sweep runs one pass over all topics still in a syllabus.
func (s *DedupSweeper) Sweep(ctx context.Context) (*SweepReport, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	topics, err := uow.TopicRepository().FindAll(ctx, specification.Active{}, specification.InSyllabusOrder{})
	if err != nil {
		return nil, &generation.StoreUnavailableError{Op: "list topics", Err: err}
	}

	report := &SweepReport{Topics: len(topics), FailedIds: []string{}, Errors: []string{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, t := range topics {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			out, err := s.generationService.DeduplicateTopic(gctx, t.AssistantId, t.Slug)

			mu.Lock()
			defer mu.Unlock()
			var concurrent *generation.ConcurrentGenerationError
			switch {
			case errors.As(err, &concurrent):
				report.Skipped++
			case err != nil:
				report.Errors = append(report.Errors, fmt.Sprintf("%s/%s: %v", t.AssistantId, t.Slug, err))
			default:
				report.TestsRemoved += out.TestsRemoved
				report.FlashcardsRemoved += out.FlashcardsRemoved
				report.FailedIds = append(report.FailedIds, out.FailedIds...)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("DEDUP", "Sweep finished", map[string]interface{}{
		"topics":             report.Topics,
		"tests_removed":      report.TestsRemoved,
		"flashcards_removed": report.FlashcardsRemoved,
		"skipped":            report.Skipped,
		"failed_ids":         len(report.FailedIds),
		"errors":             len(report.Errors),
	})
	return report, nil
}
