package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/arotkhata/arotkhata/internal/season"
)

type stubReconciler struct {
	reconciled []int64
	perSeason  int
}

func (s *stubReconciler) ReconcileSeason(ctx context.Context, seasonID int64) (int, error) {
	s.reconciled = append(s.reconciled, seasonID)
	return s.perSeason, nil
}

type stubSeasonLister struct {
	seasons []season.Season
}

func (s *stubSeasonLister) List(ctx context.Context) ([]season.Season, error) {
	return s.seasons, nil
}

type stubInvalidator struct {
	bumped int
}

func (s *stubInvalidator) Invalidate(ctx context.Context) error {
	s.bumped++
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBalanceReconcileSingleSeason(t *testing.T) {
	rec := &stubReconciler{perSeason: 4}
	inv := &stubInvalidator{}
	job := NewBalanceReconcileJob(rec, &stubSeasonLister{}, inv, testLogger(), nil)

	task, err := NewBalanceReconcileTask(7)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []int64{7}, rec.reconciled)
	require.Equal(t, 1, inv.bumped)
}

func TestBalanceReconcileAllSeasons(t *testing.T) {
	rec := &stubReconciler{perSeason: 2}
	lister := &stubSeasonLister{seasons: []season.Season{{ID: 1}, {ID: 2}, {ID: 3}}}
	job := NewBalanceReconcileJob(rec, lister, &stubInvalidator{}, testLogger(), nil)

	task, err := NewBalanceReconcileTask(0)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []int64{1, 2, 3}, rec.reconciled)
}

func TestBalanceReconcileBadPayloadSkipsRetry(t *testing.T) {
	job := NewBalanceReconcileJob(&stubReconciler{}, &stubSeasonLister{}, nil, testLogger(), nil)

	task := asynq.NewTask(TaskBalanceReconcile, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}
