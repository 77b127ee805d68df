// Command gtfs-validator validates a GTFS feed from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	gtfsvalidator "github.com/transitfeeds-oss/gtfs-validate"
	"github.com/transitfeeds-oss/gtfs-validate/buildinfo"
	"github.com/transitfeeds-oss/gtfs-validate/cliconfig"
)

// cliFlags mirrors the subset of gtfsvalidator.Config that is exposed on the
// command line; after the flags are parsed, a loaded cliconfig.File fills in
// only the flags the user did not pass, so flags the user actually passed
// always win.
type cliFlags struct {
	input        string
	format       string
	output       string
	countryCode  string
	maxMemoryMB  int64
	workers      int
	mode         string
	maxNotices   int
	timeout      time.Duration
	showProgress bool
	configPath   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	root := &cobra.Command{
		Use:   "gtfs-validator",
		Short: "Validate a GTFS static transit feed",
		Long: "gtfs-validator checks a GTFS feed (a ZIP archive or a directory of CSV\n" +
			"files) against the specification and reports errors, warnings and\n" +
			"informational notices.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, flags)
		},
	}

	root.Flags().StringVarP(&flags.input, "input", "i", "", "Path to GTFS feed (ZIP file or directory)")
	root.Flags().StringVarP(&flags.format, "format", "f", "console", "Output format: console, json, summary")
	root.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: stdout)")
	root.Flags().StringVarP(&flags.countryCode, "country", "c", "US", "Country code for validation (e.g., US, GB, FR)")
	root.Flags().Int64Var(&flags.maxMemoryMB, "memory", 0, "Maximum memory usage in MB (0 = no limit)")
	root.Flags().IntVarP(&flags.workers, "workers", "w", 4, "Number of parallel workers")
	root.Flags().StringVarP(&flags.mode, "mode", "m", "default", "Validation mode: performance, default, comprehensive")
	root.Flags().IntVar(&flags.maxNotices, "max-notices", 100, "Maximum notices per type (0 = no limit)")
	root.Flags().DurationVarP(&flags.timeout, "timeout", "t", 5*time.Minute, "Validation timeout")
	root.Flags().BoolVar(&flags.showProgress, "progress", false, "Show progress bar")
	root.Flags().StringVar(&flags.configPath, "config", "", "Path to a YAML config file providing flag defaults")

	if err := root.MarkFlagRequired("input"); err != nil {
		panic(err)
	}

	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "GTFS Validator CLI v%s\n", buildinfo.Version)
			fmt.Fprintln(cmd.OutOrStdout(), "A comprehensive GTFS feed validator written in Go")
			return nil
		},
	}
}

func runValidate(cmd *cobra.Command, flags *cliFlags) error {
	if flags.configPath != "" {
		fileDefaults, err := cliconfig.Load(flags.configPath)
		if err != nil {
			return err
		}
		applyConfigDefaults(cmd, flags, fileDefaults)
	}

	if err := validateInput(flags.input, flags.mode, flags.format); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), flags.timeout)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\n⚠️  Cancelling validation...\n")
		cancel()
	}()

	opts := []gtfsvalidator.Option{
		gtfsvalidator.WithCountryCode(flags.countryCode),
		gtfsvalidator.WithMaxMemory(flags.maxMemoryMB * 1024 * 1024),
		gtfsvalidator.WithParallelWorkers(flags.workers),
		gtfsvalidator.WithMaxNoticesPerType(flags.maxNotices),
	}

	switch flags.mode {
	case "performance":
		opts = append(opts, gtfsvalidator.WithValidationMode(gtfsvalidator.ValidationModePerformance))
	case "comprehensive":
		opts = append(opts, gtfsvalidator.WithValidationMode(gtfsvalidator.ValidationModeComprehensive))
	default:
		opts = append(opts, gtfsvalidator.WithValidationMode(gtfsvalidator.ValidationModeDefault))
	}

	if flags.showProgress {
		progressBar := NewProgressBar()
		opts = append(opts, gtfsvalidator.WithProgressCallback(func(info gtfsvalidator.ProgressInfo) {
			progressBar.Update(info.PercentComplete, info.CurrentValidator)
		}))
	}

	validator := gtfsvalidator.New(opts...)

	fmt.Fprintf(os.Stderr, "🚀 Starting GTFS validation...\n")
	fmt.Fprintf(os.Stderr, "   Feed: %s\n", filepath.Base(flags.input))
	fmt.Fprintf(os.Stderr, "   Mode: %s\n", flags.mode)
	if flags.maxNotices > 0 {
		fmt.Fprintf(os.Stderr, "   Notice limit: %d per type\n", flags.maxNotices)
	}
	fmt.Fprintf(os.Stderr, "\n")

	startTime := time.Now()
	report, err := validator.ValidateFileWithContext(ctx, flags.input)
	elapsed := time.Since(startTime)

	if err != nil {
		switch err {
		case context.Canceled:
			fmt.Fprintf(os.Stderr, "⚠️  Validation cancelled by user\n")
		case context.DeadlineExceeded:
			fmt.Fprintf(os.Stderr, "⏰ Validation timed out after %v\n", flags.timeout)
		default:
			fmt.Fprintf(os.Stderr, "❌ Validation Error: %v\n", err)
		}
		return err
	}

	fmt.Fprintf(os.Stderr, "✅ Validation completed in %.2fs\n\n", elapsed.Seconds())

	output := os.Stdout
	if flags.output != "" {
		file, err := os.Create(flags.output) // #nosec G304 -- path is an operator-supplied CLI flag
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Output Error: Failed to create output file '%s': %v\n", flags.output, err)
			return err
		}
		defer file.Close()
		output = file
		fmt.Fprintf(os.Stderr, "📄 Writing output to: %s\n", flags.output)
	}

	switch flags.format {
	case "json":
		if err := json.NewEncoder(output).Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "❌ JSON Error: Failed to encode report: %v\n", err)
			return err
		}
	case "summary":
		outputSummary(output, report, flags.input)
	case "console":
		outputConsole(output, report, flags.input)
	}

	if report.HasErrors() {
		fmt.Fprintf(os.Stderr, "💀 Validation FAILED: %d errors found\n", report.ErrorCount())
		return fmt.Errorf("validation found %d errors", report.ErrorCount())
	} else if report.HasWarnings() {
		fmt.Fprintf(os.Stderr, "⚠️  Validation completed with %d warnings\n", report.WarningCount())
	} else {
		fmt.Fprintf(os.Stderr, "🎉 Validation PASSED: Feed is valid!\n")
	}
	return nil
}

// applyConfigDefaults fills flags from a config file for any flag the user
// did not explicitly set on the command line.
func applyConfigDefaults(cmd *cobra.Command, flags *cliFlags, file *cliconfig.File) {
	set := cmd.Flags()

	if file.CountryCode != "" && !set.Changed("country") {
		flags.countryCode = file.CountryCode
	}
	if file.Mode != "" && !set.Changed("mode") {
		flags.mode = file.Mode
	}
	if file.Workers != 0 && !set.Changed("workers") {
		flags.workers = file.Workers
	}
	if file.MaxNoticesPerType != 0 && !set.Changed("max-notices") {
		flags.maxNotices = file.MaxNoticesPerType
	}
	if file.Format != "" && !set.Changed("format") {
		flags.format = file.Format
	}
	if file.Output != "" && !set.Changed("output") {
		flags.output = file.Output
	}
}

func validateInput(inputPath, mode, format string) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("Input Error: Path does not exist: '%s'", inputPath)
	}

	validModes := []string{"performance", "default", "comprehensive"}
	if !contains(validModes, mode) {
		return fmt.Errorf("invalid validation mode: '%s'. Valid modes: %s", mode, strings.Join(validModes, ", "))
	}

	validFormats := []string{"console", "json", "summary"}
	if !contains(validFormats, format) {
		return fmt.Errorf("invalid output format: '%s'. Valid formats: %s", format, strings.Join(validFormats, ", "))
	}

	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func outputSummary(output *os.File, report *gtfsvalidator.ValidationReport, inputPath string) {
	fmt.Fprintf(output, "GTFS Validation Summary\n")
	fmt.Fprintf(output, "======================\n\n")
	fmt.Fprintf(output, "Feed: %s\n", filepath.Base(inputPath))
	fmt.Fprintf(output, "Validation Time: %.2fs\n\n", report.Summary.ValidationTime)

	fmt.Fprintf(output, "Feed Statistics:\n")
	fmt.Fprintf(output, "  Agencies: %d\n", report.Summary.FeedInfo.AgencyCount)
	fmt.Fprintf(output, "  Routes: %d\n", report.Summary.FeedInfo.RouteCount)
	fmt.Fprintf(output, "  Trips: %d\n", report.Summary.FeedInfo.TripCount)
	fmt.Fprintf(output, "  Stops: %d\n", report.Summary.FeedInfo.StopCount)
	fmt.Fprintf(output, "  Stop Times: %d\n", report.Summary.FeedInfo.StopTimeCount)
	if report.Summary.FeedInfo.ServiceDateFrom != "" && report.Summary.FeedInfo.ServiceDateTo != "" {
		fmt.Fprintf(output, "  Service Period: %s to %s\n", report.Summary.FeedInfo.ServiceDateFrom, report.Summary.FeedInfo.ServiceDateTo)
	}

	fmt.Fprintf(output, "\nValidation Results:\n")
	fmt.Fprintf(output, "  Errors: %d\n", report.Summary.Counts.Errors)
	fmt.Fprintf(output, "  Warnings: %d\n", report.Summary.Counts.Warnings)
	fmt.Fprintf(output, "  Infos: %d\n", report.Summary.Counts.Infos)
	fmt.Fprintf(output, "  Total: %d\n", report.Summary.Counts.Total)

	if report.HasErrors() {
		fmt.Fprintf(output, "\n❌ Validation FAILED - Feed contains errors\n")
	} else if report.HasWarnings() {
		fmt.Fprintf(output, "\n⚠️  Validation completed with warnings\n")
	} else {
		fmt.Fprintf(output, "\n✅ Validation PASSED\n")
	}
}

func outputConsole(output *os.File, report *gtfsvalidator.ValidationReport, inputPath string) {
	outputSummary(output, report, inputPath)

	if len(report.Notices) > 0 {
		fmt.Fprintf(output, "\nSample Notices:\n")
		fmt.Fprintf(output, "===============\n")

		errorCount := 0
		warningCount := 0

		for _, notice := range report.Notices {
			if errorCount >= 5 && warningCount >= 5 {
				break
			}

			if notice.Severity == "ERROR" && errorCount < 5 {
				fmt.Fprintf(output, "ERROR: %s (%d instances)\n", notice.Code, notice.TotalNotices)
				if len(notice.SampleNotices) > 0 {
					showNoticeContext(output, notice.SampleNotices[0])
				}
				errorCount++
			} else if notice.Severity == "WARNING" && warningCount < 5 {
				fmt.Fprintf(output, "WARNING: %s (%d instances)\n", notice.Code, notice.TotalNotices)
				if len(notice.SampleNotices) > 0 {
					showNoticeContext(output, notice.SampleNotices[0])
				}
				warningCount++
			}
		}

		if len(report.Notices) > 10 {
			fmt.Fprintf(output, "\n... and %d more notices (use -f json for full details)\n", len(report.Notices)-10)
		}
	}
}

func showNoticeContext(output *os.File, context map[string]interface{}) {
	details := []string{}

	if filename, ok := context["filename"].(string); ok {
		details = append(details, fmt.Sprintf("file=%s", filename))
	}
	if row, ok := context["csvRowNumber"].(float64); ok {
		details = append(details, fmt.Sprintf("row=%d", int(row)))
	}
	if field, ok := context["fieldName"].(string); ok {
		details = append(details, fmt.Sprintf("field=%s", field))
	}
	if routeId, ok := context["routeId"].(string); ok {
		details = append(details, fmt.Sprintf("route=%s", routeId))
	}

	if len(details) > 0 {
		fmt.Fprintf(output, "       (%s)\n", strings.Join(details, ", "))
	}
}

// ProgressBar renders a single-line progress indicator on stderr.
type ProgressBar struct {
	lastPercent int
}

// NewProgressBar creates a progress bar with no prior state.
func NewProgressBar() *ProgressBar {
	return &ProgressBar{lastPercent: -1}
}

// Update redraws the bar if the integer percentage changed since last call.
func (p *ProgressBar) Update(percent float64, status string) {
	currentPercent := int(percent)
	if currentPercent == p.lastPercent {
		return
	}
	p.lastPercent = currentPercent

	barWidth := 40
	filled := int(float64(barWidth) * percent / 100)
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)

	if len(status) > 30 {
		status = status[:27] + "..."
	}

	fmt.Fprintf(os.Stderr, "\r[%s] %3d%% %s", bar, currentPercent, status)
}
