package cron

import (
	"context"
	"time"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/services/extraction"
	"github.com/dabhanushali/enacton-training/utils/auth"
	"github.com/gofiber/fiber/v2/log"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// jobTimeout bounds a single run of any job
const jobTimeout = 5 * time.Minute

// Dependencies are the services the jobs act on. Previews may be nil.
type Dependencies struct {
	Blacklist     *auth.BlacklistService
	Projects      *services.ProjectService
	Notifications *services.NotificationService
	Previews      *extraction.PreviewStore
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	db   *gorm.DB
	deps Dependencies
	now  func() time.Time
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, deps Dependencies) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{})))

	return &CronManager{
		cron: c,
		db:   db,
		deps: deps,
		now:  time.Now,
	}
}

// Start registers every job and starts the scheduler
func (m *CronManager) Start() error {
	log.Info("[CRON] starting cron jobs")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()
	log.Infof("[CRON] %d jobs scheduled", len(m.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish
func (m *CronManager) Stop() {
	log.Info("[CRON] stopping cron jobs")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Info("[CRON] cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	jobs := []struct {
		spec string
		name string
		run  func(ctx context.Context) (string, error)
	}{
		// Every hour: drop revoked tokens that have expired anyway
		{"0 0 * * * *", "cleanup_token_blacklist", m.CleanupTokenBlacklist},
		// Daily at 08:00: remind assignees about overdue work
		{"0 0 8 * * *", "overdue_assignment_reminders", m.SendOverdueReminders},
		// Every 30 minutes: forget abandoned extraction previews
		{"0 */30 * * * *", "sweep_extraction_previews", m.SweepExtractionPreviews},
	}

	for _, job := range jobs {
		job := job
		if _, err := m.cron.AddFunc(job.spec, func() { m.runJob(job.name, job.run) }); err != nil {
			return err
		}
	}
	return nil
}

// runJob records one execution in cron_job_logs around run
func (m *CronManager) runJob(name string, run func(ctx context.Context) (string, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	entry := m.logJobStart(ctx, name)
	message, err := run(ctx)
	if err != nil {
		m.logJobError(ctx, entry, err)
		return
	}
	m.logJobComplete(ctx, entry, message)
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(ctx context.Context, jobName string) *model.CronJobLog {
	log.Infof("[CRON] starting job %s", jobName)

	entry := &model.CronJobLog{
		JobName:   jobName,
		Status:    model.CronJobRunning,
		StartedAt: m.now(),
		Metadata:  []byte("{}"),
	}
	if err := m.db.WithContext(ctx).Create(entry).Error; err != nil {
		log.Warnf("[CRON] could not record start of %s: %v", jobName, err)
	}
	return entry
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(ctx context.Context, entry *model.CronJobLog, message string) {
	log.Infof("[CRON] completed job %s: %s", entry.JobName, message)
	m.finish(ctx, entry, map[string]interface{}{
		"status":  model.CronJobCompleted,
		"message": message,
	})
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(ctx context.Context, entry *model.CronJobLog, err error) {
	log.Errorf("[CRON] job %s failed: %v", entry.JobName, err)
	m.finish(ctx, entry, map[string]interface{}{
		"status":    model.CronJobFailed,
		"error_msg": err.Error(),
	})
}

func (m *CronManager) finish(ctx context.Context, entry *model.CronJobLog, updates map[string]interface{}) {
	if entry.ID == 0 {
		return
	}
	now := m.now()
	updates["completed_at"] = now
	updates["duration_ms"] = now.Sub(entry.StartedAt).Milliseconds()

	// the job context may have expired; the log row should still close
	err := m.db.WithContext(context.WithoutCancel(ctx)).
		Model(&model.CronJobLog{}).
		Where("id = ?", entry.ID).
		Updates(updates).Error
	if err != nil {
		log.Warnf("[CRON] could not record end of %s: %v", entry.JobName, err)
	}
}

// cronLogger adapts fiber's logger to cron.Logger for the Recover wrapper
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debugw("[CRON] "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Errorw("[CRON] "+msg+": "+err.Error(), keysAndValues...)
}
