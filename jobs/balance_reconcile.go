package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/arotkhata/arotkhata/internal/jobmetrics"
	"github.com/arotkhata/arotkhata/internal/season"
)

// BalanceReconcilePayload scopes the reconcile run. SeasonID zero means every
// known season.
type BalanceReconcilePayload struct {
	SeasonID int64 `json:"season_id"`
}

// LedgerReconciler rebuilds customer balances for a season.
type LedgerReconciler interface {
	ReconcileSeason(ctx context.Context, seasonID int64) (int, error)
}

// SeasonLister enumerates known seasons.
type SeasonLister interface {
	List(ctx context.Context) ([]season.Season, error)
}

// ReportInvalidator drops cached report payloads.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// BalanceReconcileJob recomputes customer balance aggregates from source
// rows. The synchronous upserts on every mutation keep balances current; this
// job is the backstop that heals any drift.
type BalanceReconcileJob struct {
	Ledger  LedgerReconciler
	Seasons SeasonLister
	Reports ReportInvalidator
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewBalanceReconcileJob constructs the job handler.
func NewBalanceReconcileJob(ledger LedgerReconciler, seasons SeasonLister, reports ReportInvalidator, logger *slog.Logger, metrics *jobmetrics.Metrics) *BalanceReconcileJob {
	return &BalanceReconcileJob{
		Ledger:  ledger,
		Seasons: seasons,
		Reports: reports,
		Logger:  logger,
		Metrics: metrics,
	}
}

// NewBalanceReconcileTask creates an Asynq task for a reconcile run.
func NewBalanceReconcileTask(seasonID int64) (*asynq.Task, error) {
	data, err := json.Marshal(BalanceReconcilePayload{SeasonID: seasonID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBalanceReconcile, data), nil
}

// Handle processes TaskBalanceReconcile tasks.
func (j *BalanceReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.Metrics.Track("balance_reconcile")

	var payload BalanceReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}

	return tracker.End(j.run(ctx, payload.SeasonID))
}

func (j *BalanceReconcileJob) run(ctx context.Context, seasonID int64) error {
	seasonIDs := []int64{seasonID}
	if seasonID == 0 {
		seasons, err := j.Seasons.List(ctx)
		if err != nil {
			return err
		}
		seasonIDs = seasonIDs[:0]
		for _, sn := range seasons {
			seasonIDs = append(seasonIDs, sn.ID)
		}
	}

	var total int
	for _, id := range seasonIDs {
		n, err := j.Ledger.ReconcileSeason(ctx, id)
		if err != nil {
			return err
		}
		total += n
	}
	j.Logger.Info("balance reconcile complete",
		slog.Int("seasons", len(seasonIDs)),
		slog.Int("customers", total))

	if j.Reports != nil {
		if err := j.Reports.Invalidate(ctx); err != nil {
			j.Logger.Warn("report cache invalidation failed", slog.Any("error", err))
		}
	}
	return nil
}
