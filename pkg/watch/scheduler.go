package watch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-catalog/pkg/config"
	"github.com/Sriram-PR/doc-catalog/pkg/models"
	"github.com/Sriram-PR/doc-catalog/pkg/orchestrate"
	"github.com/Sriram-PR/doc-catalog/pkg/storage"
	"github.com/Sriram-PR/doc-catalog/pkg/utils"
)

// DefaultInterval is used when neither the config nor the command line set one
const DefaultInterval = 5 * time.Second

// Scheduler polls job sources and regenerates catalogs whose source changed
type Scheduler struct {
	appCfg       *config.AppConfig
	jobKeys      []string
	interval     time.Duration
	log          *logrus.Entry
	stateManager *StateManager

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new watch scheduler
func NewScheduler(appCfg *config.AppConfig, jobKeys []string, interval time.Duration, log *logrus.Entry) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Scheduler{
		appCfg:       appCfg,
		jobKeys:      jobKeys,
		interval:     interval,
		log:          log,
		stateManager: NewStateManager(nil, log),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Run generates every catalog once, then checks sources every interval.
// Blocks until Stop is called. With state_dir set, job state is kept in a
// badger database so unchanged jobs are skipped after a restart.
func (s *Scheduler) Run() error {
	if s.appCfg.StateDir != "" {
		store, err := storage.NewBadgerStore(s.appCfg.StateDir, s.log)
		if err != nil {
			return err
		}
		defer store.Close()
		go store.RunGC(s.ctx, 10*time.Minute)

		s.stateManager = NewStateManager(store, s.log)
		if err := s.stateManager.Load(); err != nil {
			s.log.Warnf("Failed to load watch state: %v (starting fresh)", err)
		}
	}

	s.log.Infof("Starting watch mode for %d jobs, checking every %s", len(s.jobKeys), FormatInterval(s.interval))
	s.logSchedule()

	s.CheckOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.log.Info("Watch scheduler shutting down...")
			s.logStatus()
			return nil
		case <-ticker.C:
			s.CheckOnce()
		}
	}
}

// Stop stops the watch scheduler
func (s *Scheduler) Stop() {
	s.log.Info("Stopping watch scheduler...")
	s.cancel()
}

// CheckOnce fingerprints every job, runs the jobs whose source, settings or
// target changed since their last successful run, and returns one result per
// job in key order. Jobs with nothing changed are reported as Skipped.
func (s *Scheduler) CheckOnce() []models.JobResult {
	results := make([]models.JobResult, len(s.jobKeys))
	fingerprints := make(map[string]Fingerprint, len(s.jobKeys))
	var due []string
	dueIndex := make(map[string]int)

	for i, jobKey := range s.jobKeys {
		fp := s.fingerprint(jobKey)
		fingerprints[jobKey] = fp

		if !s.stateManager.ShouldRun(jobKey, fp) {
			state, _ := s.stateManager.GetJobState(jobKey)
			results[i] = models.JobResult{JobKey: jobKey, Success: true, Skipped: true, Headings: state.Headings}
			continue
		}
		dueIndex[jobKey] = i
		due = append(due, jobKey)
	}

	if len(due) == 0 {
		s.log.Debug("No changes detected")
		return results
	}

	s.log.Infof("Changes detected for %d jobs: %v", len(due), due)
	orch := orchestrate.NewOrchestrator(s.appCfg, due, s.log)
	for _, result := range orch.Run() {
		fp := fingerprints[result.JobKey]
		if jobCfg, ok := s.appCfg.Jobs[result.JobKey]; ok && result.Success {
			fp.Target = s.hashFile(result.JobKey, jobCfg.Target)
		}
		s.stateManager.UpdateJobState(result.JobKey, fp, result.Success, result.Headings, result.ErrorMessage())
		results[dueIndex[result.JobKey]] = result
	}
	return results
}

// fingerprint hashes the job's source, effective settings, preamble file and target
func (s *Scheduler) fingerprint(jobKey string) Fingerprint {
	jobCfg, ok := s.appCfg.Jobs[jobKey]
	if !ok {
		return Fingerprint{}
	}

	configHash := config.Fingerprint(jobCfg, *s.appCfg)
	if jobCfg.PreambleFile != "" {
		configHash = utils.CalculateBytesSHA256([]byte(configHash + s.hashFile(jobKey, jobCfg.PreambleFile)))
	}

	return Fingerprint{
		Source: s.hashFile(jobKey, jobCfg.Source),
		Config: configHash,
		Target: s.hashFile(jobKey, jobCfg.Target),
	}
}

// hashFile returns the SHA-256 of path, or "" when it cannot be read
func (s *Scheduler) hashFile(jobKey, path string) string {
	h, err := utils.CalculateFileSHA256(path)
	if err != nil {
		s.log.WithField("job", jobKey).Debugf("Cannot hash %s: %v", path, err)
		return ""
	}
	return h
}

// logSchedule logs the last known state of each job
func (s *Scheduler) logSchedule() {
	s.log.Info("Watched jobs:")
	for _, jobKey := range s.jobKeys {
		state, exists := s.stateManager.GetJobState(jobKey)
		if !exists {
			s.log.Infof("  %s: never run, will run immediately", jobKey)
			continue
		}
		status := "success"
		if !state.LastRunSuccess {
			status = "failed"
		}
		s.log.Infof("  %s: last run %s (%s, %d headings)",
			jobKey, state.LastRunTime.Format(time.RFC3339), status, state.Headings)
	}
}

// logStatus logs the final status of each job
func (s *Scheduler) logStatus() {
	status := s.GetStatus()
	for _, jobKey := range s.jobKeys {
		st := status[jobKey]
		if st.NeverRun {
			continue
		}
		if st.LastRunSuccess {
			s.log.Infof("  %s: %d headings, last generated %s", jobKey, st.Headings, st.LastRunTime.Format("15:04:05"))
		} else {
			s.log.Infof("  %s: failed at %s: %s", jobKey, st.LastRunTime.Format("15:04:05"), st.ErrorMessage)
		}
	}
}

// GetStatus returns the current status of all watched jobs
func (s *Scheduler) GetStatus() map[string]JobStatus {
	status := make(map[string]JobStatus)

	for _, jobKey := range s.jobKeys {
		state, exists := s.stateManager.GetJobState(jobKey)
		status[jobKey] = JobStatus{
			JobKey:         jobKey,
			LastRunTime:    state.LastRunTime,
			LastRunSuccess: state.LastRunSuccess,
			Headings:       state.Headings,
			ErrorMessage:   state.ErrorMessage,
			NeverRun:       !exists,
		}
	}

	return status
}

// JobStatus contains the status of a watched job
type JobStatus struct {
	JobKey         string
	LastRunTime    time.Time
	LastRunSuccess bool
	Headings       int
	ErrorMessage   string
	NeverRun       bool
}

// FormatInterval formats a duration for display
func FormatInterval(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		if secs > 0 {
			return fmt.Sprintf("%dm%ds", mins, secs)
		}
		return fmt.Sprintf("%dm", mins)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		mins := int(d.Minutes()) % 60
		if mins > 0 {
			return fmt.Sprintf("%dh%dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	if hours > 0 {
		return fmt.Sprintf("%dd%dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}

// ParseInterval parses a duration string with support for days
func ParseInterval(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("interval must be positive: %s", s)
		}
		return d, nil
	}

	// Day suffix, optionally followed by a standard duration ("1d12h")
	dayPart, remaining, found := strings.Cut(s, "d")
	if days, convErr := strconv.Atoi(dayPart); found && convErr == nil && days > 0 {
		d = time.Duration(days) * 24 * time.Hour
		if remaining != "" {
			extra, err := time.ParseDuration(remaining)
			if err != nil {
				return 0, fmt.Errorf("invalid interval format: %s", s)
			}
			d += extra
		}
		return d, nil
	}

	return 0, fmt.Errorf("invalid interval format: %s (examples: 2s, 30s, 5m, 1h)", s)
}
