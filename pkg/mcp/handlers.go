package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sriram-PR/doc-catalog/pkg/catalog"
	"github.com/Sriram-PR/doc-catalog/pkg/config"
	"github.com/Sriram-PR/doc-catalog/pkg/models"
	"github.com/Sriram-PR/doc-catalog/pkg/orchestrate"
	"github.com/Sriram-PR/doc-catalog/pkg/utils"
)

const defaultLinkDocument = "Reference.md"

// handleListJobs handles the list_jobs tool
func (s *Server) handleListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	appCfg := s.cfg.AppConfig
	keys := orchestrate.GetAllJobKeys(appCfg)
	jobs := make([]map[string]interface{}, 0, len(keys))

	for _, key := range keys {
		jobCfg := appCfg.Jobs[key]
		jobInfo := map[string]interface{}{
			"key":           key,
			"source":        jobCfg.Source,
			"target":        jobCfg.Target,
			"link_document": config.GetEffectiveLinkDocument(jobCfg),
			"mode":          config.GetEffectiveMode(jobCfg, *appCfg).String(),
			"filter":        config.GetEffectiveFilter(jobCfg, *appCfg).String(),
		}

		if s.runManager.IsRunning(key) {
			jobInfo["status"] = "running"
		}
		if last := s.runManager.LastRun(key); last != nil && !last.CompletedAt.IsZero() {
			jobInfo["last_run_id"] = last.ID
			jobInfo["last_run_status"] = last.Status
			jobInfo["last_run_at"] = last.CompletedAt.Format(time.RFC3339)
		}

		jobs = append(jobs, jobInfo)
	}

	result := map[string]interface{}{
		"jobs":        jobs,
		"config_path": s.cfg.ConfigPath,
		"total_jobs":  len(jobs),
	}

	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleRenderCatalog handles the render_catalog tool
func (s *Server) handleRenderCatalog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown := request.GetString("markdown", "")
	linkDocument := request.GetString("link_document", defaultLinkDocument)
	filter := models.FilterPolicy(request.GetString("filter", ""))
	counting := models.LevelCounting(request.GetString("level_counting", ""))
	verify := request.GetBool("verify_anchors", false)

	if filter != models.FilterUnset && filter != models.FilterNarrow && filter != models.FilterBroad {
		return mcp.NewToolResultError(fmt.Sprintf("unknown filter '%s' (supported: narrow, broad)", filter)), nil
	}
	if counting != models.LevelCountingUnset && !counting.IsValid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown level_counting '%s' (supported: anywhere, prefix)", counting)), nil
	}

	jobCfg := config.JobConfig{
		LinkDocument:  linkDocument,
		Filter:        filter,
		LevelCounting: counting,
	}
	// Global defaults apply, but custom keywords only exist per job
	appCfg := *s.cfg.AppConfig
	if appCfg.DefaultFilter == models.FilterCustom {
		appCfg.DefaultFilter = models.FilterNarrow
	}
	pipeline, err := orchestrate.NewPipeline(jobCfg, appCfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build pipeline: %v", err)), nil
	}

	source := []byte(markdown)
	entries, lines := pipeline.Run(source)

	result := map[string]interface{}{
		"link_document": strings.TrimPrefix(linkDocument, "./"),
		"headings":      len(entries),
		"catalog":       strings.Join(lines, "\n"),
	}
	if verify {
		mismatches := catalog.VerifyAnchors(source, entries)
		if mismatches == nil {
			mismatches = []string{}
		}
		result["mismatches"] = mismatches
	}

	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleGenerateCatalog handles the generate_catalog tool
func (s *Server) handleGenerateCatalog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobKey := request.GetString("job_key", "")
	if jobKey == "" {
		return mcp.NewToolResultError("job_key parameter is required"), nil
	}

	if _, exists := s.cfg.AppConfig.Jobs[jobKey]; !exists {
		return mcp.NewToolResultError(fmt.Sprintf("job '%s' not found. Available jobs: %v",
			jobKey, orchestrate.GetAllJobKeys(s.cfg.AppConfig))), nil
	}

	run, err := s.runManager.StartRun(jobKey)
	if err != nil {
		if errors.Is(err, utils.ErrJobRunning) {
			return mcp.NewToolResultError(fmt.Sprintf("a catalog run is already in progress for job '%s'", jobKey)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to start run: %v", err)), nil
	}

	jobResult := orchestrate.RunJob(s.cfg.AppConfig, jobKey, s.log)
	s.runManager.FinishRun(run.ID, jobResult)

	return mcp.NewToolResultText(formatJSON(runToMap(s.runManager.GetRun(run.ID)))), nil
}

// handleGetRun handles the get_run tool
func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return mcp.NewToolResultError("run_id parameter is required"), nil
	}

	run := s.runManager.GetRun(runID)
	if run == nil {
		return mcp.NewToolResultError(fmt.Sprintf("run '%s' not found", runID)), nil
	}

	return mcp.NewToolResultText(formatJSON(runToMap(run))), nil
}

func runToMap(run *Run) map[string]interface{} {
	result := map[string]interface{}{
		"run_id":     run.ID,
		"job_key":    run.JobKey,
		"status":     run.Status,
		"started_at": run.StartedAt.Format(time.RFC3339),
		"headings":   run.Headings,
	}
	if !run.CompletedAt.IsZero() {
		result["completed_at"] = run.CompletedAt.Format(time.RFC3339)
		result["duration_seconds"] = run.CompletedAt.Sub(run.StartedAt).Seconds()
	}
	if len(run.Mismatches) > 0 {
		result["mismatches"] = run.Mismatches
	}
	if run.ErrorMessage != "" {
		result["error_message"] = run.ErrorMessage
	}
	return result
}

// formatJSON formats data as an indented JSON string
func formatJSON(data map[string]interface{}) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(b)
}
