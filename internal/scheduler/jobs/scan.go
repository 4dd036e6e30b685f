package jobs

import (
	"context"
	"fmt"

	"github.com/mourafe/radarb3/internal/pipeline"
	"github.com/mourafe/radarb3/pkg/config"
	"github.com/mourafe/radarb3/pkg/logger"
)

// ScanJob refreshes the cached momentum scan after the session close.
// A warm cache means the first morning request serves instantly.
// ⭐ SSOT: 스캔 스케줄은 이 Job에서만
type ScanJob struct {
	pipeline *pipeline.Pipeline
	config   *config.Config
	logger   *logger.Logger
}

// NewScanJob creates a new scan job
func NewScanJob(p *pipeline.Pipeline, cfg *config.Config, log *logger.Logger) *ScanJob {
	return &ScanJob{
		pipeline: p,
		config:   cfg,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "momentum_scan"
}

// Schedule returns the cron schedule (default: 19:00 BRT on weekdays)
func (j *ScanJob) Schedule() string {
	return j.config.Scheduler.ScanSchedule
}

// Run executes the scan with default parameters, refreshing caches first
func (j *ScanJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled momentum scan")

	if err := j.pipeline.ForceRefresh(ctx); err != nil {
		return fmt.Errorf("refresh caches: %w", err)
	}

	result, err := j.pipeline.Run(ctx, j.config.DefaultScanParams())
	if err != nil {
		return fmt.Errorf("run scan: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"universe": result.UniverseSize,
		"matched":  len(result.Rows),
		"failed":   len(result.FailedTickers),
		"elapsed":  fmt.Sprintf("%dms", result.ElapsedMS),
	}).Info("Scheduled momentum scan completed")

	return nil
}
