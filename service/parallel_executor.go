package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/cache"
	"github.com/ludo-technologies/jsfix/internal/patch"
	"github.com/ludo-technologies/jsfix/internal/source"
	"github.com/pmezard/go-difflib/difflib"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrency bounds concurrent file tasks when no limit is configured
const DefaultMaxConcurrency = 4

// TaskError represents a single task failure
type TaskError struct {
	TaskName string
	Err      error
}

// Error implements the error interface
func (e TaskError) Error() string {
	return fmt.Sprintf("[%s] %v", e.TaskName, e.Err)
}

// Unwrap returns the underlying error
func (e TaskError) Unwrap() error {
	return e.Err
}

// AggregatedError collects all task failures
type AggregatedError struct {
	Errors []TaskError
}

// Error implements the error interface
func (e *AggregatedError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d tasks failed:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Unwrap returns the first error for errors.Is/As compatibility
func (e *AggregatedError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0].Err
}

// Reasons recorded on fixes and files that were not attempted
var (
	errSkippedAfterFailure = errors.New("skipped after an earlier fix in the file failed")
	errNotWritten          = errors.New("not written because another fix in the file failed")
	errFailFast            = errors.New("skipped after another file failed")
)

// ExecutorOptions controls one executor run
type ExecutorOptions struct {
	// MaxConcurrency bounds the number of files processed at once
	MaxConcurrency int

	// StopOnError stops compiling a file's remaining fixes after its first failure
	StopOnError bool

	// FailFast skips files not yet started once any file fails
	FailFast bool

	// DryRun computes patched text and diffs without writing
	DryRun bool
}

// DefaultExecutorOptions returns the options used when none are configured
func DefaultExecutorOptions() ExecutorOptions {
	return ExecutorOptions{
		MaxConcurrency: DefaultMaxConcurrency,
		StopOnError:    true,
	}
}

// ParallelExecutorImpl applies fix plans, one task per file, with bounded
// concurrency. Fixes of one file are compiled in descending line order and
// applied as a single batch before the file is written.
type ParallelExecutorImpl struct {
	content  *cache.Content
	progress domain.ProgressManager
	logger   *slog.Logger
}

// NewParallelExecutor creates an executor reading and writing through content
func NewParallelExecutor(content *cache.Content, logger *slog.Logger) *ParallelExecutorImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParallelExecutorImpl{
		content: content,
		logger:  logger,
	}
}

// NewParallelExecutorWithProgress creates an executor with progress tracking
func NewParallelExecutorWithProgress(content *cache.Content, pm domain.ProgressManager, logger *slog.Logger) *ParallelExecutorImpl {
	executor := NewParallelExecutor(content, logger)
	executor.progress = pm
	return executor
}

// Execute applies every plan and reports per-file outcomes. Files are admitted
// in plan order; a failing file never stops files already running.
func (e *ParallelExecutorImpl) Execute(ctx context.Context, plans []domain.FixPlan, opts ExecutorOptions) *domain.ParallelExecutionResult {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}

	start := time.Now()
	result := &domain.ParallelExecutionResult{
		RunID:          uuid.NewString(),
		TotalFiles:     len(plans),
		MaxConcurrency: opts.MaxConcurrency,
		DryRun:         opts.DryRun,
	}

	ctx, span := startExecuteSpan(ctx, result.RunID, len(plans), opts.DryRun)
	defer span.End()

	task := startTask(e.progress, "Applying fixes", len(plans))
	defer task.Complete()

	files := make([]domain.FileFixResult, len(plans))
	var anyFailed atomic.Bool

	// Go blocks while the limit is reached, so files start in plan order
	g := new(errgroup.Group)
	g.SetLimit(opts.MaxConcurrency)
	for i, plan := range plans {
		g.Go(func() error {
			defer task.Increment(1)

			switch {
			case ctx.Err() != nil:
				files[i] = skippedFile(plan, ctx.Err())
			case opts.FailFast && anyFailed.Load():
				files[i] = skippedFile(plan, errFailFast)
			default:
				files[i] = e.executeFile(ctx, plan, opts)
				if !files[i].Success {
					anyFailed.Store(true)
				}
			}
			return nil
		})
	}
	// tasks record failures in their results and always return nil
	_ = g.Wait()

	result.Files = files
	for _, f := range files {
		switch {
		case f.Skipped:
			result.SkippedFiles++
		case f.Success:
			result.SucceededFiles++
		default:
			result.FailedFiles++
		}
		for _, r := range f.Results {
			if r.Success {
				result.AppliedFixes++
			} else if !r.Skipped {
				result.FailedFixes++
			}
		}
	}
	result.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("fix.applied", result.AppliedFixes),
		attribute.Int("fix.failed", result.FailedFixes),
		attribute.Int("fix.failed_files", result.FailedFiles),
	)
	e.logger.Debug("fix run finished",
		slog.String("run_id", result.RunID),
		slog.Int("files", result.TotalFiles),
		slog.Int("applied", result.AppliedFixes),
		slog.Int("failed", result.FailedFixes),
		slog.Duration("duration", result.Duration))
	return result
}

// executeFile applies one plan. Text fixes compile against the current text
// and are applied and written under the file's cache lock; structural
// operations run afterwards against the updated origin.
func (e *ParallelExecutorImpl) executeFile(ctx context.Context, plan domain.FixPlan, opts ExecutorOptions) domain.FileFixResult {
	start := time.Now()
	res := domain.FileFixResult{File: plan.File}

	fixes := make([]domain.FixPlanItem, len(plan.Fixes))
	copy(fixes, plan.Fixes)
	SortFixesDescending(fixes)

	res.Results = make([]domain.FixResult, len(fixes))
	var textFixes, structural []int
	for i, item := range fixes {
		res.Results[i] = domain.FixResult{Issue: item.Issue, Operation: item.Operation}
		if item.Operation.Action.IsStructural() {
			structural = append(structural, i)
		} else {
			textFixes = append(textFixes, i)
		}
	}

	var diffs strings.Builder
	var fileErr error
	failed := false

	if len(textFixes) > 0 {
		var accepted []int
		var before, after string
		apply := func(current string) (string, bool, error) {
			var patches []patch.TextPatch
			patches, accepted, failed = compileFixes(current, fixes, textFixes, res.Results, opts.StopOnError)
			if failed {
				return current, false, nil
			}
			before = current
			after = patch.Apply(current, patches)
			return after, !opts.DryRun && after != current, nil
		}

		var err error
		if opts.DryRun {
			var current string
			if current, err = e.content.Get(plan.File); err == nil {
				_, _, err = apply(current)
			}
		} else {
			err = e.content.Update(plan.File, apply)
		}

		switch {
		case err != nil:
			fileErr = err
			failed = true
			reason := err.Error()
			for _, i := range textFixes {
				if !res.Results[i].Skipped && res.Results[i].Error == "" {
					res.Results[i].Error = reason
				}
			}
			e.logger.Warn("failed to write fixes",
				slog.String("file", plan.File),
				slog.Any("error", err))
		case failed:
			markSkipped(res.Results, accepted, errNotWritten)
		default:
			for _, i := range accepted {
				res.Results[i].Success = true
			}
			if after != before {
				if opts.DryRun {
					diffs.WriteString(unifiedDiff(plan.File, before, after))
				} else {
					res.WrittenFiles = append(res.WrittenFiles, plan.File)
				}
			}
		}
	}

	for _, i := range structural {
		if failed {
			reason := errNotWritten
			if opts.StopOnError {
				reason = errSkippedAfterFailure
			}
			markSkipped(res.Results, []int{i}, reason)
			continue
		}
		written, err := e.applyStructural(fixes[i].Operation, opts.DryRun, &diffs)
		res.WrittenFiles = append(res.WrittenFiles, written...)
		if err != nil {
			res.Results[i].Error = err.Error()
			failed = true
			continue
		}
		res.Results[i].Success = true
	}

	res.Diff = diffs.String()
	res.Success = fileErr == nil
	applied, failedFixes, skipped := 0, 0, 0
	for _, r := range res.Results {
		switch {
		case r.Success:
			applied++
		case r.Skipped:
			skipped++
		default:
			failedFixes++
			res.Success = false
			if res.Error == "" {
				res.Error = r.Error
			}
		}
	}
	if fileErr != nil {
		res.Error = fileErr.Error()
	}
	res.Duration = time.Since(start)

	recordFileFix(ctx, fileOutcome(res.Success, res.Skipped), res.Duration, applied, failedFixes, skipped)
	return res
}

// compileFixes turns the text fixes at indices into a non-overlapping patch
// set sorted for Apply. Fixes conflicting with an accepted one are skipped;
// a fix that fails to compile marks the batch failed.
func compileFixes(text string, fixes []domain.FixPlanItem, indices []int, results []domain.FixResult, stopOnError bool) (patches []patch.TextPatch, accepted []int, failed bool) {
	idx := source.NewIndex(text)
	for _, i := range indices {
		results[i].Skipped = false
		results[i].Error = ""
		if failed && stopOnError {
			markSkipped(results, []int{i}, errSkippedAfterFailure)
			continue
		}

		p, err := patch.Compile(idx, fixes[i].Operation)
		if err != nil {
			results[i].Error = err.Error()
			failed = true
			continue
		}
		if conflictsWithAny(*p, patches) {
			markSkipped(results, []int{i}, domain.ErrOverlappingFix)
			continue
		}
		patches = append(patches, *p)
		accepted = append(accepted, i)
	}
	patch.SortDescending(patches)
	return patches, accepted, failed
}

func conflictsWithAny(p patch.TextPatch, accepted []patch.TextPatch) bool {
	for _, a := range accepted {
		if patch.Conflicts(p, a) {
			return true
		}
	}
	return false
}

// applyStructural computes the files a structural operation produces and
// writes them, or renders their diffs in a dry run
func (e *ParallelExecutorImpl) applyStructural(op domain.FixOperation, dryRun bool, diffs *strings.Builder) ([]string, error) {
	origin, err := e.content.Get(op.File)
	if err != nil {
		return nil, err
	}
	files, err := patch.Structural(op, origin)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var written []string
	for _, path := range paths {
		if dryRun {
			before, _ := e.content.Get(path)
			diffs.WriteString(unifiedDiff(path, before, files[path]))
			continue
		}
		if err := e.content.Write(path, files[path]); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func markSkipped(results []domain.FixResult, indices []int, reason error) {
	for _, i := range indices {
		results[i].Success = false
		results[i].Skipped = true
		results[i].Error = reason.Error()
	}
}

func skippedFile(plan domain.FixPlan, reason error) domain.FileFixResult {
	res := domain.FileFixResult{
		File:    plan.File,
		Skipped: true,
		Error:   reason.Error(),
		Results: make([]domain.FixResult, len(plan.Fixes)),
	}
	for i, item := range plan.Fixes {
		res.Results[i] = domain.FixResult{
			Issue:     item.Issue,
			Operation: item.Operation,
			Skipped:   true,
			Error:     reason.Error(),
		}
	}
	return res
}

// unifiedDiff renders a git style diff of one file
func unifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}

	name := filepath.ToSlash(path)
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("--- a/%s\n+++ b/%s\n@@ changes @@\n%d bytes -> %d bytes\n",
			name, name, len(before), len(after))
	}
	return text
}
