package orchestrate

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-catalog/pkg/catalog"
	"github.com/Sriram-PR/doc-catalog/pkg/config"
	"github.com/Sriram-PR/doc-catalog/pkg/models"
	"github.com/Sriram-PR/doc-catalog/pkg/output"
	"github.com/Sriram-PR/doc-catalog/pkg/utils"
)

// Pipeline extracts and renders the catalog for one job's settings
type Pipeline struct {
	extractor *catalog.Extractor
	renderer  *catalog.Renderer
}

// NewPipeline builds the extractor and renderer for a job
func NewPipeline(jobCfg config.JobConfig, appCfg config.AppConfig) (*Pipeline, error) {
	extractor, err := catalog.NewExtractorFromPolicy(
		config.GetEffectiveFilter(jobCfg, appCfg),
		jobCfg.ExcludeKeywords,
		jobCfg.ExcludePatterns,
		config.GetEffectiveLevelCounting(jobCfg, appCfg),
		config.GetEffectiveHeadingMarker(jobCfg, appCfg),
		config.GetEffectiveSkipCodeFences(jobCfg, appCfg),
	)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		extractor: extractor,
		renderer:  catalog.NewRenderer(config.GetEffectiveLinkDocument(jobCfg)),
	}, nil
}

// Run returns the heading entries of source and their rendered catalog lines
func (p *Pipeline) Run(source []byte) ([]models.HeadingEntry, []string) {
	entries := p.extractor.Extract(catalog.SplitLines(source))
	return entries, p.renderer.Render(entries)
}

// RunJob executes one configured job end to end: read, extract, render, verify, write.
func RunJob(appCfg *config.AppConfig, jobKey string, log *logrus.Entry) models.JobResult {
	startTime := time.Now()
	result := models.JobResult{JobKey: jobKey}
	jobLog := log.WithField("job", jobKey)

	fail := func(err error) models.JobResult {
		result.Error = err
		result.Success = false
		result.Duration = time.Since(startTime)
		jobLog.WithField("category", utils.CategorizeError(err)).Errorf("Job failed: %v", err)
		return result
	}

	jobCfg, ok := appCfg.Jobs[jobKey]
	if !ok {
		return fail(fmt.Errorf("%w: '%s'", utils.ErrUnknownJob, jobKey))
	}
	warnings, err := jobCfg.Validate()
	if err != nil {
		return fail(err)
	}
	for _, w := range warnings {
		jobLog.Warn(w)
	}
	if err := config.ValidateEffective(jobCfg, *appCfg); err != nil {
		return fail(err)
	}

	source, err := os.ReadFile(jobCfg.Source)
	if err != nil {
		return fail(fmt.Errorf("%w: %s: %w", utils.ErrSourceRead, jobCfg.Source, err))
	}

	pipeline, err := NewPipeline(jobCfg, *appCfg)
	if err != nil {
		return fail(err)
	}
	entries, lines := pipeline.Run(source)
	result.Headings = len(entries)
	jobLog.Debugf("Extracted %d headings from %s", len(entries), jobCfg.Source)

	if config.GetEffectiveVerifyAnchors(jobCfg, *appCfg) || config.GetEffectiveStrictAnchors(jobCfg, *appCfg) {
		result.Mismatches = catalog.VerifyAnchors(source, entries)
		for _, slug := range result.Mismatches {
			jobLog.Warnf("Catalog link #%s has no matching heading anchor in %s", slug, jobCfg.Source)
		}
		if len(result.Mismatches) > 0 && config.GetEffectiveStrictAnchors(jobCfg, *appCfg) {
			return fail(fmt.Errorf("%w: %d unresolved (%s)", utils.ErrAnchorMismatch,
				len(result.Mismatches), strings.Join(result.Mismatches, ", ")))
		}
	}

	preamble, err := loadPreamble(jobCfg)
	if err != nil {
		return fail(err)
	}

	writer := output.NewWriter(output.Options{
		Mode:            config.GetEffectiveMode(jobCfg, *appCfg),
		Marker:          jobCfg.Marker,
		MarkerWindow:    jobCfg.MarkerWindow,
		OnMissingMarker: config.GetEffectiveOnMissingMarker(jobCfg, *appCfg),
		Preamble:        preamble,
	}, jobLog)

	if _, err := writer.Write(jobCfg.Target, lines); err != nil {
		return fail(err)
	}

	result.Success = true
	result.Duration = time.Since(startTime)
	return result
}

func loadPreamble(jobCfg config.JobConfig) (string, error) {
	if jobCfg.PreambleFile == "" {
		return jobCfg.Preamble, nil
	}
	data, err := os.ReadFile(jobCfg.PreambleFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: preamble_file %s does not exist", utils.ErrConfigValidation, jobCfg.PreambleFile)
		}
		return "", fmt.Errorf("read preamble_file %s: %w", jobCfg.PreambleFile, err)
	}
	return string(data), nil
}
