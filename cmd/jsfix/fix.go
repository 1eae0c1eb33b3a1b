package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/ludo-technologies/jsfix/app"
	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/fixer"
	"github.com/ludo-technologies/jsfix/service"
	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// confirmApply asks before files are written. Replaced in tests.
var confirmApply = promptConfirm

func fixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [path...]",
		Short: "Apply automatic fixes to JavaScript/TypeScript files",
		Long: `Analyze JavaScript/TypeScript files and apply the fixes planned for the
issues found. Fixes of one file are applied bottom-up as a single batch;
files are processed in parallel.

Exit codes:
  0 - All planned fixes applied (or nothing to fix)
  1 - At least one file failed

Examples:
  jsfix fix --dry-run src/
  jsfix fix --yes --category lint src/
  jsfix fix --max-concurrency 8 --fail-fast src/`,
		RunE: runFix,
	}

	addOutputFlags(cmd)
	addFilterFlags(cmd)
	cmd.Flags().StringP("config", "c", "", "Path to config file")
	cmd.Flags().Bool("no-progress", false, "Disable progress bars")
	cmd.Flags().Bool("dry-run", false, "Show the diff of every fix without writing files")
	cmd.Flags().BoolP("yes", "y", false, "Apply fixes without asking for confirmation")
	cmd.Flags().Int("max-concurrency", 0, "Maximum number of files fixed at once (default from config)")
	cmd.Flags().Bool("fail-fast", false, "Skip files not yet started once any file fails")
	cmd.Flags().Bool("no-stop-on-error", false, "Keep compiling a file's fixes after one fails")

	return cmd
}

func runFix(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no paths specified")
	}

	format, err := outputFormatFromFlags(cmd)
	if err != nil {
		return err
	}
	configPath, _ := cmd.Flags().GetString("config")
	logger := newLogger(cmd)

	loader := service.NewConfigurationLoader()
	cfg, err := loader.LoadConfig(configPath, args[0])
	if err != nil {
		return err
	}

	req := loader.FixRequest(cfg)
	req.Paths = args
	req.ConfigPath = configPath
	if err := applyFixFlags(cmd, req); err != nil {
		return err
	}

	pm := newProgress(cmd, format)
	defer pm.Close()

	uc := app.NewFixUseCaseWithRegistry(fixer.DefaultRegistry(), pm, logger)
	ctx := cmd.Context()

	response, err := uc.Plan(ctx, cfg, *req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	formatter := service.NewOutputFormatter()
	if response.Plan.TotalFixes() == 0 {
		if format.IsStructured() {
			return formatter.WritePlan(response, format, out)
		}
		fmt.Fprintf(out, "No fixes to apply (%d issues, %d skipped)\n",
			response.Plan.TotalIssues, response.Plan.Skipped.Total())
		return nil
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !req.DryRun && !yes {
		if !format.IsStructured() {
			if err := formatter.WritePlan(response, format, out); err != nil {
				return err
			}
		}
		ok, err := confirmApply(fmt.Sprintf("Apply %d fixes to %d files", response.Plan.TotalFixes(), len(response.Plan.Plans)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "Aborted, no files were changed")
			return nil
		}
	}

	response, err = uc.Apply(ctx, response, *req)
	if err != nil {
		return err
	}
	if err := formatter.WriteFix(response, format, out); err != nil {
		return err
	}

	exec := response.Execution
	logger.Info("fix run finished",
		slog.String("run_id", exec.RunID),
		slog.Int("applied", exec.AppliedFixes),
		slog.Int("failed_files", exec.FailedFiles))
	if !format.IsStructured() {
		writeSummaryLine(out, exec)
	}

	if exec.FailedFiles > 0 {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d files failed", exec.FailedFiles, exec.TotalFiles)}
	}
	return nil
}

// applyFixFlags overrides the configured request with flags set on the command line
func applyFixFlags(cmd *cobra.Command, req *domain.FixRequest) error {
	categories, minSeverity, err := filtersFromFlags(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("category") {
		req.Categories = categories
	}
	if cmd.Flags().Changed("min-severity") {
		req.MinSeverity = minSeverity
	}

	req.DryRun, _ = cmd.Flags().GetBool("dry-run")
	if cmd.Flags().Changed("max-concurrency") {
		n, _ := cmd.Flags().GetInt("max-concurrency")
		if n < 1 {
			return fmt.Errorf("--max-concurrency must be at least 1")
		}
		req.MaxConcurrency = n
	}
	if cmd.Flags().Changed("fail-fast") {
		req.FailFast, _ = cmd.Flags().GetBool("fail-fast")
	}
	if noStop, _ := cmd.Flags().GetBool("no-stop-on-error"); noStop {
		req.StopOnError = false
	}
	return nil
}

func writeSummaryLine(w io.Writer, exec *domain.ParallelExecutionResult) {
	verb := "Applied"
	if exec.DryRun {
		verb = "Would apply"
	}
	line := fmt.Sprintf("%s %d fixes in %d files", verb, exec.AppliedFixes, exec.SucceededFiles)
	switch {
	case exec.FailedFiles > 0:
		color.New(color.FgRed, color.Bold).Fprintf(w, "%s, %d files failed\n", line, exec.FailedFiles)
	case exec.SkippedFiles > 0:
		color.New(color.FgYellow, color.Bold).Fprintf(w, "%s, %d files skipped\n", line, exec.SkippedFiles)
	default:
		color.New(color.FgGreen, color.Bold).Fprintln(w, line)
	}
}

func promptConfirm(label string) (bool, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return false, fmt.Errorf("confirmation needs an interactive terminal; rerun with --yes or --dry-run")
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return true, nil
}
