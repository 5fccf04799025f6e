package jobs

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBalanceReconcile rebuilds per-customer season balances from the
	// source transaction and payment rows.
	TaskBalanceReconcile = "ledger:reconcile_balances"
	// TaskReportWarmup pre-computes season summaries into the report cache.
	TaskReportWarmup = "reports:warmup"
)
