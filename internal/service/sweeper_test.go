package service

import (
	"context"
	"testing"
	"time"

	"exam-prep-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupSweeper_Sweep(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.addTopic(t, "asst", "tema-1", 1, nil)
	f.seedTests(t, "asst", "tema-1", 5, 2)
	f.addTopic(t, "asst", "tema-2", 2, nil)
	f.seedCards(t, "asst", "tema-2", 4, 3)
	f.addTopic(t, "otro", "tema-1", 1, nil)
	f.seedTests(t, "otro", "tema-1", 3, 1)

	lease, err := f.locker.Acquire(ctx, "otro/tema-1", time.Minute)
	require.NoError(t, err)
	defer lease.Release(ctx)

	sweeper := NewDedupSweeper(f.uowFactory, f.generation, 2, logger.NewNopLogger())
	report, err := sweeper.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Topics)
	assert.Equal(t, 2, report.TestsRemoved)
	assert.Equal(t, 3, report.FlashcardsRemoved)
	assert.Equal(t, 1, report.Skipped, "a topic under generation is left for the next run")
	assert.Empty(t, report.Errors)

	tests, _ := f.counts(t, "otro", "tema-1")
	assert.Equal(t, 4, tests)
}

func TestDedupSweeper_StartAndStop(t *testing.T) {
	f := newFixture(t, nil)
	sweeper := NewDedupSweeper(f.uowFactory, f.generation, 0, logger.NewNopLogger())

	require.NoError(t, sweeper.Start(time.Hour))
	sweeper.Stop()
}

func TestDedupSweeper_SkipsArchivedTopics(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.addTopic(t, "asst", "antiguo", 1, nil)
	f.seedTests(t, "asst", "antiguo", 3, 1)
	f.addEntry(t, "asst", "tema-1", "Tema 1", 0)
	_, err := f.syllabus.ReconcileSyllabus(ctx, "asst")
	require.NoError(t, err)

	sweeper := NewDedupSweeper(f.uowFactory, f.generation, 2, logger.NewNopLogger())
	report, err := sweeper.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Topics)
	assert.Zero(t, report.TestsRemoved)

	tests, _ := f.counts(t, "asst", "antiguo")
	assert.Equal(t, 4, tests)
}
