package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func planItem(op domain.FixOperation) domain.FixPlanItem {
	return domain.FixPlanItem{
		Issue:      domain.QualityIssue{File: op.File, Line: op.Line, Rule: "test", Category: domain.CategoryLint},
		Operation:  op,
		Difficulty: domain.DifficultyTrivial,
	}
}

func deleteOp(file string, line int) domain.FixOperation {
	return domain.FixOperation{Action: domain.ActionDeleteLine, File: file, Line: line}
}

func replaceOp(file string, line int, code string) domain.FixOperation {
	return domain.FixOperation{Action: domain.ActionReplaceLine, File: file, Line: line, NewCode: domain.Code(code)}
}

const eightLines = "l1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\n"

func TestExecute_AppliesBatchBottomToTop(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.ts", eightLines)
	executor := NewParallelExecutor(cache.NewContent(), nil)

	plans := []domain.FixPlan{{
		File: path,
		// deliberately ascending; the executor orders fixes itself
		Fixes: []domain.FixPlanItem{
			planItem(deleteOp(path, 3)),
			planItem(deleteOp(path, 7)),
		},
	}}

	result := executor.Execute(context.Background(), plans, DefaultExecutorOptions())

	assert.Equal(t, "l1\nl2\nl4\nl5\nl6\nl8\n", readFile(t, path))
	assert.Equal(t, 1, result.TotalFiles)
	assert.Equal(t, 1, result.SucceededFiles)
	assert.Equal(t, 2, result.AppliedFixes)
	assert.Equal(t, 0, result.FailedFixes)
	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].Success)
	assert.Equal(t, []string{path}, result.Files[0].WrittenFiles)
	assert.Equal(t, DefaultMaxConcurrency, result.MaxConcurrency)

	_, err := uuid.Parse(result.RunID)
	assert.NoError(t, err, "RunID should be a UUID")
}

func TestExecute_StopOnErrorSkipsRestOfFile(t *testing.T) {
	dir := t.TempDir()
	broken := writeFile(t, dir, "broken.ts", eightLines)
	healthy := writeFile(t, dir, "healthy.ts", eightLines)
	executor := NewParallelExecutor(cache.NewContent(), nil)

	plans := []domain.FixPlan{
		{
			File: broken,
			Fixes: []domain.FixPlanItem{
				planItem(deleteOp(broken, 8)),
				planItem(domain.FixOperation{Action: domain.ActionReplaceLine, File: broken, Line: 5}),
				planItem(deleteOp(broken, 2)),
			},
		},
		{
			File:  healthy,
			Fixes: []domain.FixPlanItem{planItem(deleteOp(healthy, 1))},
		},
	}

	result := executor.Execute(context.Background(), plans, DefaultExecutorOptions())

	// the broken file is left untouched
	assert.Equal(t, eightLines, readFile(t, broken))
	assert.Equal(t, eightLines[3:], readFile(t, healthy))

	brokenResult := result.Files[0]
	assert.False(t, brokenResult.Success)
	assert.False(t, brokenResult.Skipped)
	assert.Empty(t, brokenResult.WrittenFiles)
	require.Len(t, brokenResult.Results, 3)

	// line 8 compiled before the failure but is not written
	assert.True(t, brokenResult.Results[0].Skipped)
	assert.Contains(t, brokenResult.Results[0].Error, errNotWritten.Error())
	assert.Contains(t, brokenResult.Results[1].Error, domain.ErrMissingNewCode.Error())
	assert.False(t, brokenResult.Results[1].Skipped)
	assert.True(t, brokenResult.Results[2].Skipped)
	assert.Equal(t, errSkippedAfterFailure.Error(), brokenResult.Results[2].Error)

	assert.True(t, result.Files[1].Success)
	assert.Equal(t, 1, result.SucceededFiles)
	assert.Equal(t, 1, result.FailedFiles)
	assert.Equal(t, 1, result.AppliedFixes)
	assert.Equal(t, 1, result.FailedFixes)
}

func TestExecute_ContinueAfterErrorStillSkipsWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.ts", eightLines)
	executor := NewParallelExecutor(cache.NewContent(), nil)

	plans := []domain.FixPlan{{
		File: path,
		Fixes: []domain.FixPlanItem{
			planItem(deleteOp(path, 20)),
			planItem(deleteOp(path, 2)),
		},
	}}

	opts := DefaultExecutorOptions()
	opts.StopOnError = false
	result := executor.Execute(context.Background(), plans, opts)

	assert.Equal(t, eightLines, readFile(t, path))
	file := result.Files[0]
	assert.False(t, file.Success)
	assert.Contains(t, file.Error, domain.ErrLineOutOfRange.Error())
	// the out-of-range fix sorts first
	assert.Contains(t, file.Results[0].Error, domain.ErrLineOutOfRange.Error())
	assert.True(t, file.Results[1].Skipped)
	assert.Equal(t, errNotWritten.Error(), file.Results[1].Error)
}

func TestExecute_OverlappingFixIsSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.ts", "keep\nconsole.log(x); debugger;\nend\n")
	executor := NewParallelExecutor(cache.NewContent(), nil)

	plans := []domain.FixPlan{{
		File: path,
		Fixes: []domain.FixPlanItem{
			planItem(deleteOp(path, 2)),
			planItem(replaceOp(path, 2, "console.log(x);")),
		},
	}}

	result := executor.Execute(context.Background(), plans, DefaultExecutorOptions())

	assert.Equal(t, "keep\nend\n", readFile(t, path))
	file := result.Files[0]
	assert.True(t, file.Success)
	assert.True(t, file.Results[0].Success)
	assert.True(t, file.Results[1].Skipped)
	assert.Equal(t, domain.ErrOverlappingFix.Error(), file.Results[1].Error)
	assert.Equal(t, 1, result.AppliedFixes)
	assert.Equal(t, 0, result.FailedFixes)
}

func TestExecute_StaleOperationFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.ts", "a\nb\n")
	executor := NewParallelExecutor(cache.NewContent(), nil)

	op := deleteOp(path, 1)
	op.OldCode = "changed"
	result := executor.Execute(context.Background(), []domain.FixPlan{{File: path, Fixes: []domain.FixPlanItem{planItem(op)}}}, DefaultExecutorOptions())

	assert.Equal(t, "a\nb\n", readFile(t, path))
	assert.False(t, result.Files[0].Success)
	assert.Contains(t, result.Files[0].Results[0].Error, domain.ErrStaleOperation.Error())
}

func TestExecute_DryRunNeverWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.ts", "const x: any = 1;\nconsole.log(x);\n")
	content := cache.NewContent()
	executor := NewParallelExecutor(content, nil)

	plans := []domain.FixPlan{{
		File: path,
		Fixes: []domain.FixPlanItem{
			planItem(deleteOp(path, 2)),
			planItem(replaceOp(path, 1, "const x: unknown = 1;")),
		},
	}}

	opts := DefaultExecutorOptions()
	opts.DryRun = true
	result := executor.Execute(context.Background(), plans, opts)

	assert.True(t, result.DryRun)
	assert.Equal(t, "const x: any = 1;\nconsole.log(x);\n", readFile(t, path))
	cached, err := content.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "const x: any = 1;\nconsole.log(x);\n", cached)

	file := result.Files[0]
	assert.True(t, file.Success)
	assert.Empty(t, file.WrittenFiles)
	assert.Contains(t, file.Diff, "+++ b/")
	assert.Contains(t, file.Diff, "-console.log(x);")
	assert.Contains(t, file.Diff, "+const x: unknown = 1;")
	assert.Equal(t, 2, result.AppliedFixes)
}

func TestExecute_FailFastSkipsPendingFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.ts", "a\n")
	second := writeFile(t, dir, "second.ts", "a\nb\n")
	executor := NewParallelExecutor(cache.NewContent(), nil)

	plans := []domain.FixPlan{
		{File: first, Fixes: []domain.FixPlanItem{planItem(deleteOp(first, 9))}},
		{File: second, Fixes: []domain.FixPlanItem{planItem(deleteOp(second, 1))}},
	}

	result := executor.Execute(context.Background(), plans, ExecutorOptions{
		MaxConcurrency: 1,
		StopOnError:    true,
		FailFast:       true,
	})

	assert.Equal(t, 1, result.FailedFiles)
	assert.Equal(t, 1, result.SkippedFiles)
	assert.True(t, result.Files[1].Skipped)
	assert.Equal(t, errFailFast.Error(), result.Files[1].Error)
	assert.True(t, result.Files[1].Results[0].Skipped)
	assert.Equal(t, "a\nb\n", readFile(t, second))
}

func TestExecute_WithoutFailFastFilesAreIsolated(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.ts", "a\n")
	second := writeFile(t, dir, "second.ts", "a\nb\n")
	executor := NewParallelExecutor(cache.NewContent(), nil)

	plans := []domain.FixPlan{
		{File: first, Fixes: []domain.FixPlanItem{planItem(deleteOp(first, 9))}},
		{File: second, Fixes: []domain.FixPlanItem{planItem(deleteOp(second, 1))}},
	}

	result := executor.Execute(context.Background(), plans, ExecutorOptions{MaxConcurrency: 1, StopOnError: true})

	assert.Equal(t, 1, result.FailedFiles)
	assert.Equal(t, 1, result.SucceededFiles)
	assert.Equal(t, "b\n", readFile(t, second))
}

func TestExecute_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.ts")
	executor := NewParallelExecutor(cache.NewContent(), nil)

	result := executor.Execute(context.Background(), []domain.FixPlan{{
		File:  path,
		Fixes: []domain.FixPlanItem{planItem(deleteOp(path, 1))},
	}}, DefaultExecutorOptions())

	assert.Equal(t, 1, result.FailedFiles)
	assert.NotEmpty(t, result.Files[0].Error)
	assert.NotEmpty(t, result.Files[0].Results[0].Error)
}

func TestExecute_CancelledContextSkipsFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.ts", "a\n")
	executor := NewParallelExecutor(cache.NewContent(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := executor.Execute(ctx, []domain.FixPlan{{
		File:  path,
		Fixes: []domain.FixPlanItem{planItem(deleteOp(path, 1))},
	}}, DefaultExecutorOptions())

	assert.Equal(t, 1, result.SkippedFiles)
	assert.Equal(t, "a\n", readFile(t, path))
}

func TestExecute_MoveFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "utils.ts", "export const a = 1;\n")
	executor := NewParallelExecutor(cache.NewContent(), nil)

	op := domain.FixOperation{Action: domain.ActionMoveFile, File: path, MoveTo: "lib/utils.ts"}
	result := executor.Execute(context.Background(), []domain.FixPlan{{
		File:  path,
		Fixes: []domain.FixPlanItem{planItem(op)},
	}}, DefaultExecutorOptions())

	require.True(t, result.Files[0].Success, result.Files[0].Error)
	target := filepath.Join(dir, "lib", "utils.ts")
	assert.Equal(t, "export const a = 1;\n", readFile(t, target))
	assert.Equal(t, "export * from './lib/utils';\n", readFile(t, path))
	assert.ElementsMatch(t, []string{path, target}, result.Files[0].WrittenFiles)
}

func TestExecute_StructuralRunsAfterTextFixes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "utils.ts", "debugger;\nexport const a = 1;\n")
	executor := NewParallelExecutor(cache.NewContent(), nil)

	move := domain.FixOperation{Action: domain.ActionMoveFile, File: path, MoveTo: "moved.ts"}
	result := executor.Execute(context.Background(), []domain.FixPlan{{
		File:  path,
		Fixes: []domain.FixPlanItem{planItem(move), planItem(deleteOp(path, 1))},
	}}, DefaultExecutorOptions())

	require.True(t, result.Files[0].Success, result.Files[0].Error)
	assert.Equal(t, "export const a = 1;\n", readFile(t, filepath.Join(dir, "moved.ts")))
	assert.Equal(t, 2, result.AppliedFixes)
}

func TestExecute_StructuralTraversalFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.ts", "x\n")
	executor := NewParallelExecutor(cache.NewContent(), nil)

	op := domain.FixOperation{Action: domain.ActionMoveFile, File: path, MoveTo: "../escape.ts"}
	result := executor.Execute(context.Background(), []domain.FixPlan{{
		File:  path,
		Fixes: []domain.FixPlanItem{planItem(op)},
	}}, DefaultExecutorOptions())

	assert.False(t, result.Files[0].Success)
	assert.Contains(t, result.Files[0].Results[0].Error, domain.ErrPathEscapesRoot.Error())
	assert.Equal(t, "x\n", readFile(t, path))
}

func TestExecute_ManyFilesConcurrently(t *testing.T) {
	dir := t.TempDir()
	var plans []domain.FixPlan
	for i := 0; i < 12; i++ {
		path := writeFile(t, dir, fmt.Sprintf("f%02d.ts", i), "console.log(1);\nkeep();\n")
		plans = append(plans, domain.FixPlan{File: path, Fixes: []domain.FixPlanItem{planItem(deleteOp(path, 1))}})
	}
	executor := NewParallelExecutorWithProgress(cache.NewContent(), &NoOpProgressManager{}, nil)

	result := executor.Execute(context.Background(), plans, ExecutorOptions{MaxConcurrency: 3, StopOnError: true})

	assert.Equal(t, 12, result.SucceededFiles)
	assert.Equal(t, 12, result.AppliedFixes)
	for i, f := range result.Files {
		assert.Equal(t, plans[i].File, f.File, "results keep plan order")
		assert.Equal(t, "keep();\n", readFile(t, f.File))
	}
}

func TestExecute_NoPlans(t *testing.T) {
	executor := NewParallelExecutor(cache.NewContent(), nil)
	result := executor.Execute(context.Background(), nil, ExecutorOptions{})

	assert.Equal(t, 0, result.TotalFiles)
	assert.Empty(t, result.Files)
	assert.Equal(t, DefaultMaxConcurrency, result.MaxConcurrency)
}

func TestAggregatedError(t *testing.T) {
	base := errors.New("boom")
	err := &AggregatedError{Errors: []TaskError{{TaskName: "a.ts", Err: base}, {TaskName: "b.ts", Err: errors.New("bad")}}}

	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "2 tasks failed")
	assert.Contains(t, err.Error(), "[b.ts] bad")
	assert.Equal(t, "[a.ts] boom", (&AggregatedError{Errors: err.Errors[:1]}).Error())
	assert.Equal(t, "no errors", (&AggregatedError{}).Error())
}
