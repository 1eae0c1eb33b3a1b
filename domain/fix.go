package domain

import "time"

// FixAction names the kind of edit a FixOperation performs
type FixAction string

const (
	ActionDeleteLine      FixAction = "delete-line"
	ActionReplaceLine     FixAction = "replace-line"
	ActionReplaceRange    FixAction = "replace-range"
	ActionInsertBefore    FixAction = "insert-before"
	ActionInsertAfter     FixAction = "insert-after"
	ActionExtractFunction FixAction = "extract-function"
	ActionSplitFile       FixAction = "split-file"
	ActionMoveFile        FixAction = "move-file"
	ActionCreateBarrel    FixAction = "create-barrel"
)

// IsStructural reports whether the action writes whole files instead of
// producing a text patch against its origin file.
func (a FixAction) IsStructural() bool {
	switch a {
	case ActionSplitFile, ActionMoveFile, ActionCreateBarrel:
		return true
	default:
		return false
	}
}

// FixOperation is a declarative description of one edit.
// Line and EndLine are 1-based and inclusive.
type FixOperation struct {
	Action   FixAction         `json:"action" yaml:"action"`
	File     string            `json:"file" yaml:"file"`
	Line     int               `json:"line,omitempty" yaml:"line,omitempty"`
	EndLine  int               `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	OldCode  string            `json:"old_code,omitempty" yaml:"old_code,omitempty"`
	NewCode  *string           `json:"new_code,omitempty" yaml:"new_code,omitempty"`
	NewFiles map[string]string `json:"new_files,omitempty" yaml:"new_files,omitempty"`
	MoveTo   string            `json:"move_to,omitempty" yaml:"move_to,omitempty"`
}

// Code returns a pointer to code, for filling FixOperation.NewCode
func Code(code string) *string {
	return &code
}

// Difficulty classifies how safe a fix is to apply without review
type Difficulty string

const (
	DifficultyTrivial Difficulty = "trivial"
	DifficultySafe    Difficulty = "safe"
	DifficultyRisky   Difficulty = "risky"
)

// FixPlanItem pairs an issue with the operation proposed for it
type FixPlanItem struct {
	Issue      QualityIssue `json:"issue" yaml:"issue"`
	Operation  FixOperation `json:"operation" yaml:"operation"`
	Difficulty Difficulty   `json:"difficulty" yaml:"difficulty"`
}

// FixPlan is the ordered set of fixes for one file.
// Fixes are sorted by descending line before application.
type FixPlan struct {
	File  string        `json:"file" yaml:"file"`
	Fixes []FixPlanItem `json:"fixes" yaml:"fixes"`
}

// SkipStats explains, per category, why issues did not turn into fixes
type SkipStats struct {
	Filtered       map[Category]int `json:"filtered" yaml:"filtered"`
	Unfixable      map[Category]int `json:"unfixable" yaml:"unfixable"`
	NoFixer        map[Category]int `json:"no_fixer" yaml:"no_fixer"`
	NoContent      map[Category]int `json:"no_content" yaml:"no_content"`
	NoFixGenerated map[Category]int `json:"no_fix_generated" yaml:"no_fix_generated"`
}

// NewSkipStats returns SkipStats with every map initialized
func NewSkipStats() *SkipStats {
	return &SkipStats{
		Filtered:       make(map[Category]int),
		Unfixable:      make(map[Category]int),
		NoFixer:        make(map[Category]int),
		NoContent:      make(map[Category]int),
		NoFixGenerated: make(map[Category]int),
	}
}

// Total sums every counter
func (s *SkipStats) Total() int {
	total := 0
	for _, m := range []map[Category]int{s.Filtered, s.Unfixable, s.NoFixer, s.NoContent, s.NoFixGenerated} {
		for _, n := range m {
			total += n
		}
	}
	return total
}

// FixPlanResponse is the outcome of building plans for a set of issues
type FixPlanResponse struct {
	Plans       []FixPlan  `json:"plans" yaml:"plans"`
	Skipped     *SkipStats `json:"skipped" yaml:"skipped"`
	TotalIssues int        `json:"total_issues" yaml:"total_issues"`
}

// TotalFixes counts fixes across all plans
func (r *FixPlanResponse) TotalFixes() int {
	n := 0
	for _, p := range r.Plans {
		n += len(p.Fixes)
	}
	return n
}

// FixResult is the outcome of applying one operation
type FixResult struct {
	Issue     QualityIssue `json:"issue" yaml:"issue"`
	Operation FixOperation `json:"operation" yaml:"operation"`
	Success   bool         `json:"success" yaml:"success"`
	Skipped   bool         `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Error     string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// FileFixResult is the outcome of applying one file's plan
type FileFixResult struct {
	File         string        `json:"file" yaml:"file"`
	Success      bool          `json:"success" yaml:"success"`
	Skipped      bool          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Results      []FixResult   `json:"results" yaml:"results"`
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
	Diff         string        `json:"diff,omitempty" yaml:"diff,omitempty"`
	WrittenFiles []string      `json:"written_files,omitempty" yaml:"written_files,omitempty"`
}

// ParallelExecutionResult aggregates FileFixResults of one run
type ParallelExecutionResult struct {
	RunID          string          `json:"run_id" yaml:"run_id"`
	Files          []FileFixResult `json:"files" yaml:"files"`
	TotalFiles     int             `json:"total_files" yaml:"total_files"`
	SucceededFiles int             `json:"succeeded_files" yaml:"succeeded_files"`
	FailedFiles    int             `json:"failed_files" yaml:"failed_files"`
	SkippedFiles   int             `json:"skipped_files" yaml:"skipped_files"`
	AppliedFixes   int             `json:"applied_fixes" yaml:"applied_fixes"`
	FailedFixes    int             `json:"failed_fixes" yaml:"failed_fixes"`
	Duration       time.Duration   `json:"duration" yaml:"duration"`
	MaxConcurrency int             `json:"max_concurrency" yaml:"max_concurrency"`
	DryRun         bool            `json:"dry_run" yaml:"dry_run"`
}

// FixRequest describes a fix run
type FixRequest struct {
	Paths      []string
	ConfigPath string

	Categories  []Category
	MinSeverity Severity

	DryRun         bool
	MaxConcurrency int
	StopOnError    bool
	FailFast       bool

	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string
}

// FixResponse bundles the plan and the execution result of a fix run
type FixResponse struct {
	Analysis  *AnalyzeResponse         `json:"analysis" yaml:"analysis"`
	Plan      *FixPlanResponse         `json:"plan" yaml:"plan"`
	Execution *ParallelExecutionResult `json:"execution" yaml:"execution"`
}
