package orchestrate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Sriram-PR/doc-catalog/pkg/config"
	"github.com/Sriram-PR/doc-catalog/pkg/models"
)

// Orchestrator runs several catalog jobs, up to max_parallel_jobs at a time
type Orchestrator struct {
	appCfg  *config.AppConfig
	log     *logrus.Entry
	jobKeys []string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewOrchestrator creates a new orchestrator for the given jobs
func NewOrchestrator(appCfg *config.AppConfig, jobKeys []string, log *logrus.Entry) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())

	return &Orchestrator{
		appCfg:  appCfg,
		log:     log,
		jobKeys: jobKeys,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Run executes all jobs and waits for completion.
// Results are returned in job key order. Jobs not started before Cancel report context.Canceled.
func (o *Orchestrator) Run() []models.JobResult {
	startTime := time.Now()
	o.log.Infof("Starting %d catalog jobs: %v", len(o.jobKeys), o.jobKeys)

	results := make([]models.JobResult, len(o.jobKeys))

	limit := o.appCfg.MaxParallelJobs
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(o.ctx)
	g.SetLimit(limit)

	for i, jobKey := range o.jobKeys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = models.JobResult{JobKey: jobKey, Error: err}
				return nil
			}
			results[i] = RunJob(o.appCfg, jobKey, o.log)
			return nil // a failed job must not cancel its siblings
		})
	}
	_ = g.Wait()

	o.logSummary(results, time.Since(startTime))
	return results
}

// Cancel stops jobs that have not started yet
func (o *Orchestrator) Cancel() {
	o.log.Info("Cancelling pending catalog jobs...")
	o.cancel()
}

// logSummary logs a summary of all job results
func (o *Orchestrator) logSummary(results []models.JobResult, totalDuration time.Duration) {
	o.log.Info("============================================")
	o.log.Infof("Catalog generation completed in %v", totalDuration)
	o.log.Info("Job Results:")

	totalHeadings := 0
	successCount := 0
	failCount := 0

	for _, r := range results {
		status := "SUCCESS"
		if !r.Success {
			status = "FAILED"
			failCount++
		} else {
			successCount++
		}
		totalHeadings += r.Headings

		o.log.Infof("  %s: %s - %d headings in %v", r.JobKey, status, r.Headings, r.Duration)
		if r.Error != nil {
			o.log.Infof("    Error: %v", r.Error)
		}
		if len(r.Mismatches) > 0 {
			o.log.Infof("    Unresolved anchors: %d", len(r.Mismatches))
		}
	}

	o.log.Info("--------------------------------------------")
	o.log.Infof("Total: %d jobs (%d success, %d failed), %d headings catalogued",
		len(results), successCount, failCount, totalHeadings)
	o.log.Info("============================================")
}

// ValidateJobKeys checks that all provided job keys exist in the config
// and that no two of them write the same target
func ValidateJobKeys(appCfg *config.AppConfig, jobKeys []string) error {
	for _, key := range jobKeys {
		if _, exists := appCfg.Jobs[key]; !exists {
			return fmt.Errorf("job '%s' not found. Available jobs: %v", key, GetAllJobKeys(appCfg))
		}
	}
	return appCfg.CheckTargetCollisions(jobKeys)
}

// GetAllJobKeys returns all job keys from the config, sorted
func GetAllJobKeys(appCfg *config.AppConfig) []string {
	keys := make([]string, 0, len(appCfg.Jobs))
	for k := range appCfg.Jobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
