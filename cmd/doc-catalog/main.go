package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/doc-catalog/pkg/catalog"
	"github.com/Sriram-PR/doc-catalog/pkg/config"
	applog "github.com/Sriram-PR/doc-catalog/pkg/log"
	"github.com/Sriram-PR/doc-catalog/pkg/models"
	"github.com/Sriram-PR/doc-catalog/pkg/orchestrate"
	"github.com/Sriram-PR/doc-catalog/pkg/utils"
	"github.com/Sriram-PR/doc-catalog/pkg/watch"
)

const (
	version           = "1.0.0"
	defaultConfigFile = "catalog.yaml"
)

func main() {
	_ = godotenv.Load() // Optional .env in the working directory

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(os.Args[2:])
	case "render":
		runRender(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "list-jobs":
		runListJobs(os.Args[2:])
	case "mcp-server":
		runMcpServer(os.Args[2:])
	case "version":
		fmt.Printf("doc-catalog %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printUsageTo(os.Stdout)
}

// printUsageTo writes usage information to the provided writer.
func printUsageTo(w io.Writer) {
	fmt.Fprintln(w, `doc-catalog - Markdown catalog (table of contents) generator

Usage:
  doc-catalog <command> [options]

Commands:
  generate    Regenerate catalogs for configured jobs
  render      Print the catalog of one markdown file to stdout
  watch       Regenerate catalogs whenever a source document changes
  validate    Validate configuration file
  list-jobs   List available job keys
  mcp-server  Start MCP server for AI tool integration
  version     Show version info

Environment:
  DOC_CATALOG_CONFIG     Default for -config (read from .env when present)
  DOC_CATALOG_LOG_LEVEL  Default for -loglevel

Run 'doc-catalog <command> -h' for command-specific help.`)
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultConfigPath() string {
	return getEnv("DOC_CATALOG_CONFIG", defaultConfigFile)
}

func defaultLogLevel() string {
	return getEnv("DOC_CATALOG_LOG_LEVEL", "info")
}

// loadConfig loads and parses the config file
func loadConfig(path string) (*config.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg config.AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// loadAndValidateConfig loads the config file, validates it, and logs warnings.
func loadAndValidateConfig(configFile string, log *logrus.Logger) *config.AppConfig {
	log.Infof("Loading configuration from %s", configFile)
	appCfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	appWarnings, err := appCfg.Validate()
	if err != nil {
		log.Fatalf("Config validation error: %v", err)
	}
	for _, w := range appWarnings {
		log.Warn(w)
	}

	return appCfg
}

// parseJobKeys resolves the -job / -jobs / --all-jobs selection.
// A nil result with allJobs set means every configured job.
func parseJobKeys(jobKey, jobs string, allJobs bool) ([]string, error) {
	if allJobs {
		return nil, nil
	}
	if jobs != "" {
		var keys []string
		for _, k := range strings.Split(jobs, ",") {
			k = strings.TrimSpace(k)
			if k != "" {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			return nil, fmt.Errorf("-jobs contains no job keys")
		}
		return keys, nil
	}
	if jobKey != "" {
		return []string{jobKey}, nil
	}
	return nil, fmt.Errorf("one of -job, -jobs, or --all-jobs is required")
}

// selectJobs resolves and validates the job keys to run.
func selectJobs(appCfg *config.AppConfig, keys []string, allJobs bool) ([]string, error) {
	if allJobs {
		keys = orchestrate.GetAllJobKeys(appCfg)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no jobs configured")
	}
	if err := orchestrate.ValidateJobKeys(appCfg, keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// runGenerate handles the generate subcommand
func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configFile := fs.String("config", defaultConfigPath(), "Path to config file")
	jobKey := fs.String("job", "", "Job key from config (single job)")
	jobs := fs.String("jobs", "", "Comma-separated job keys")
	allJobs := fs.Bool("all-jobs", false, "Run all configured jobs")
	logLevel := fs.String("loglevel", defaultLogLevel(), "Log level (debug, info, warn, error, fatal)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doc-catalog generate [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  doc-catalog generate -job esp32_readme\n")
		fmt.Fprintf(os.Stderr, "  doc-catalog generate -jobs esp32_readme,esp32_catalog\n")
		fmt.Fprintf(os.Stderr, "  doc-catalog generate --all-jobs\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	keys, err := parseJobKeys(*jobKey, *jobs, *allJobs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		os.Exit(1)
	}

	os.Exit(executeGenerate(*configFile, keys, *allJobs, *logLevel))
}

// executeGenerate runs the selected jobs and returns the exit code
func executeGenerate(configFile string, keys []string, allJobs bool, logLevelStr string) int {
	log := applog.NewLogger(logLevelStr, os.Stderr)
	appCfg := loadAndValidateConfig(configFile, log)

	keys, err := selectJobs(appCfg, keys, allJobs)
	if err != nil {
		log.Errorf("Invalid job selection: %v", err)
		return 1
	}

	orch := orchestrate.NewOrchestrator(appCfg, keys, applog.Component(log, "generate"))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		sig, ok := <-sigChan
		if !ok {
			return
		}
		log.Warnf("Received signal %v, cancelling pending jobs...", sig)
		orch.Cancel()
	}()

	results := orch.Run()
	for _, r := range results {
		if !r.Success {
			return 1
		}
	}
	return 0
}

// runRender handles the render subcommand
func runRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	linkDocument := fs.String("link", "", "Document path used in links (defaults to the file's base name)")
	filter := fs.String("filter", "narrow", "False-positive filter (narrow, broad)")
	levelCounting := fs.String("level-counting", "anywhere", "Heading level counting (anywhere, prefix)")
	verify := fs.Bool("verify-anchors", false, "Warn about links without a matching heading anchor")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doc-catalog render [options] <file.md>\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  doc-catalog render Reference.md\n")
		fmt.Fprintf(os.Stderr, "  doc-catalog render -link docs/Reference.md -filter broad Reference.md > CATALOG.md\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one markdown file is required")
		fs.Usage()
		os.Exit(1)
	}

	os.Exit(doRender(fs.Arg(0), *linkDocument, *filter, *levelCounting, *verify, os.Stdout, os.Stderr))
}

// doRender prints the catalog of one markdown file.
// Returns exit code (0 = success, 1 = error).
func doRender(path, linkDocument, filter, levelCounting string, verify bool, stdout, stderr io.Writer) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", fmt.Errorf("%w: %w", utils.ErrSourceRead, err))
		return 1
	}
	if linkDocument == "" {
		linkDocument = filepath.Base(path)
	}

	jobCfg := config.JobConfig{
		Source:        path,
		LinkDocument:  linkDocument,
		Filter:        models.FilterPolicy(filter),
		LevelCounting: models.LevelCounting(levelCounting),
	}
	if jobCfg.Filter == models.FilterCustom || (jobCfg.Filter != models.FilterUnset && !jobCfg.Filter.IsValid()) {
		fmt.Fprintf(stderr, "Error: unknown filter '%s' (supported: narrow, broad)\n", filter)
		return 1
	}
	if jobCfg.LevelCounting != models.LevelCountingUnset && !jobCfg.LevelCounting.IsValid() {
		fmt.Fprintf(stderr, "Error: unknown level counting '%s' (supported: anywhere, prefix)\n", levelCounting)
		return 1
	}

	pipeline, err := orchestrate.NewPipeline(jobCfg, config.AppConfig{})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	entries, lines := pipeline.Run(source)
	for _, line := range lines {
		fmt.Fprintln(stdout, line)
	}

	if verify {
		for _, slug := range catalog.VerifyAnchors(source, entries) {
			fmt.Fprintf(stderr, "WARN: #%s has no matching heading anchor\n", slug)
		}
	}
	return 0
}

// runWatch handles the watch subcommand
func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configFile := fs.String("config", defaultConfigPath(), "Path to config file")
	jobKey := fs.String("job", "", "Job key from config (single job)")
	jobs := fs.String("jobs", "", "Comma-separated job keys")
	allJobs := fs.Bool("all-jobs", false, "Watch all configured jobs")
	interval := fs.String("interval", "", "Source check interval (e.g., 2s, 30s, 5m); defaults to watch_interval from config")
	logLevel := fs.String("loglevel", defaultLogLevel(), "Log level (debug, info, warn, error, fatal)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doc-catalog watch [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  doc-catalog watch -job esp32_readme\n")
		fmt.Fprintf(os.Stderr, "  doc-catalog watch --all-jobs --interval 10s\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	keys, err := parseJobKeys(*jobKey, *jobs, *allJobs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		os.Exit(1)
	}

	executeWatch(*configFile, keys, *allJobs, *interval, *logLevel)
}

// executeWatch runs the watch scheduler
func executeWatch(configFile string, keys []string, allJobs bool, intervalStr, logLevelStr string) {
	log := applog.NewLogger(logLevelStr, os.Stderr)
	appCfg := loadAndValidateConfig(configFile, log)

	interval, err := resolveInterval(intervalStr, appCfg.WatchInterval)
	if err != nil {
		log.Fatalf("Invalid interval: %v", err)
	}
	log.Infof("Watch interval: %s", watch.FormatInterval(interval))

	keys, err = selectJobs(appCfg, keys, allJobs)
	if err != nil {
		log.Fatalf("Invalid job selection: %v", err)
	}

	scheduler := watch.NewScheduler(appCfg, keys, interval, applog.Component(log, "watch"))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warnf("Received signal %v, stopping watch...", sig)
		scheduler.Stop()
	}()

	if err := scheduler.Run(); err != nil {
		log.Fatalf("Watch scheduler error: %v", err)
	}

	log.Info("Watch mode stopped")
}

// resolveInterval picks the command-line interval, then the configured one, then the default
func resolveInterval(flagValue string, configured time.Duration) (time.Duration, error) {
	if flagValue != "" {
		return watch.ParseInterval(flagValue)
	}
	if configured > 0 {
		return configured, nil
	}
	return watch.DefaultInterval, nil
}

// runValidate handles the validate subcommand
func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configFile := fs.String("config", defaultConfigPath(), "Path to config file")
	jobKey := fs.String("job", "", "Job key to validate (optional, validates all if empty)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doc-catalog validate [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	exitCode := doValidate(*configFile, *jobKey, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// doValidate performs validation and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doValidate(configPath, jobKey string, stdout, stderr io.Writer) int {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	warnings, err := appCfg.Validate()
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	for _, w := range warnings {
		fmt.Fprintf(stdout, "WARN: %s\n", w)
	}

	if jobKey != "" {
		jobCfg, ok := appCfg.Jobs[jobKey]
		if !ok {
			fmt.Fprintf(stderr, "Error: job '%s' not found in config\n", jobKey)
			return 1
		}
		if !validateJob(appCfg, jobKey, jobCfg, stdout, stderr) {
			return 1
		}
		fmt.Fprintf(stdout, "OK: Job '%s' configuration is valid\n", jobKey)
	} else {
		hasError := false
		keys := orchestrate.GetAllJobKeys(appCfg)
		for _, key := range keys {
			if !validateJob(appCfg, key, appCfg.Jobs[key], stdout, stderr) {
				hasError = true
				continue
			}
			fmt.Fprintf(stdout, "OK: [%s]\n", key)
		}
		if err := appCfg.CheckTargetCollisions(keys); err != nil {
			fmt.Fprintf(stderr, "ERROR: %v\n", err)
			hasError = true
		}
		if hasError {
			return 1
		}
	}

	fmt.Fprintln(stdout, "\nConfiguration valid.")
	return 0
}

// validateJob prints warnings and errors for one job; returns false on a fatal error
func validateJob(appCfg *config.AppConfig, key string, jobCfg config.JobConfig, stdout, stderr io.Writer) bool {
	jobWarnings, err := jobCfg.Validate()
	if err == nil {
		err = config.ValidateEffective(jobCfg, *appCfg)
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: [%s] %v\n", key, err)
		return false
	}
	for _, w := range jobWarnings {
		fmt.Fprintf(stdout, "WARN: [%s] %s\n", key, w)
	}
	return true
}

// runListJobs handles the list-jobs subcommand
func runListJobs(args []string) {
	fs := flag.NewFlagSet("list-jobs", flag.ExitOnError)
	configFile := fs.String("config", defaultConfigPath(), "Path to config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doc-catalog list-jobs [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	exitCode := doListJobs(*configFile, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// doListJobs lists jobs and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doListJobs(configPath string, stdout, stderr io.Writer) int {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Jobs in %s:\n\n", configPath)
	for _, key := range orchestrate.GetAllJobKeys(appCfg) {
		job := appCfg.Jobs[key]
		fmt.Fprintf(stdout, "  %s\n", key)
		fmt.Fprintf(stdout, "    Source: %s\n", job.Source)
		fmt.Fprintf(stdout, "    Target: %s\n", job.Target)
		fmt.Fprintf(stdout, "    Mode: %s\n", config.GetEffectiveMode(job, *appCfg))
		if job.Marker != "" {
			fmt.Fprintf(stdout, "    Marker: %s\n", job.Marker)
		}
		fmt.Fprintln(stdout)
	}
	return 0
}
