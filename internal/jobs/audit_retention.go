// File: internal/jobs/audit_retention.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"prepwise_backend/internal/audit"
	"prepwise_backend/internal/config"
)

// AuditRetentionJob prunes auth events past the retention window on a
// schedule.
type AuditRetentionJob struct {
	recorder      *audit.Recorder
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewAuditRetentionJob creates a new AuditRetentionJob.
func NewAuditRetentionJob(
	recorder *audit.Recorder,
	logger *zap.Logger,
	cfg *config.Config,
) *AuditRetentionJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &AuditRetentionJob{
		recorder:      recorder,
		logger:        logger.Named("AuditRetentionJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *AuditRetentionJob) SetupAndStart() error {
	jobSpec := j.cfg.AuditPruneSchedule
	if jobSpec == "" {
		j.logger.Warn("Audit retention schedule not defined (AUDIT_PRUNE_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule audit retention job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Audit retention job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// runJob is the actual work performed by the cron job.
func (j *AuditRetentionJob) runJob() {
	j.logger.Info("Starting audit retention job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pruned, err := j.recorder.Prune(ctx, j.cfg.AuditRetentionDays)
	if err != nil {
		j.logger.Error("Audit retention job run failed", zap.Error(err))
	} else {
		j.logger.Info("Audit retention job run completed", zap.Int64("events_pruned", pruned))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *AuditRetentionJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping audit retention job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Audit retention job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Audit retention job scheduler stop timed out.")
		}
	}
}

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
