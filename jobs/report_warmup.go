package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/arotkhata/arotkhata/internal/jobmetrics"
	"github.com/arotkhata/arotkhata/internal/reports"
)

// ReportWarmupPayload scopes the warmup run. SeasonID zero warms every season.
type ReportWarmupPayload struct {
	SeasonID int64 `json:"season_id"`
}

// ReportWarmer computes a season summary, populating the cache as a side
// effect.
type ReportWarmer interface {
	SeasonSummary(ctx context.Context, seasonID int64) (*reports.SeasonSummary, error)
}

// ReportWarmupJob pre-computes season summaries so the first dashboard hit
// after an invalidation does not pay the aggregation cost.
type ReportWarmupJob struct {
	Reports ReportWarmer
	Seasons SeasonLister
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportWarmupJob constructs the job handler.
func NewReportWarmupJob(rep ReportWarmer, seasons SeasonLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{Reports: rep, Seasons: seasons, Logger: logger, Metrics: metrics}
}

// NewReportWarmupTask creates an Asynq task for a warmup run.
func NewReportWarmupTask(seasonID int64) (*asynq.Task, error) {
	data, err := json.Marshal(ReportWarmupPayload{SeasonID: seasonID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// Handle processes TaskReportWarmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.Metrics.Track("report_warmup")

	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}

	return tracker.End(j.run(ctx, payload.SeasonID))
}

func (j *ReportWarmupJob) run(ctx context.Context, seasonID int64) error {
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

	for _, id := range seasonIDs {
		if _, err := j.Reports.SeasonSummary(ctx, id); err != nil {
			return err
		}
	}
	j.Logger.Info("report warmup complete", slog.Int("seasons", len(seasonIDs)))
	return nil
}
