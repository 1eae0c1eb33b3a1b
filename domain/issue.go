package domain

// Severity represents how serious a quality issue is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Level returns the severity as an integer for comparison.
// Unknown severities rank below info.
func (s Severity) Level() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityError:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// IsValid reports whether s is one of the known severities
func (s Severity) IsValid() bool {
	return s.Level() > 0
}

// Category groups issues by the kind of problem they describe
type Category string

const (
	CategoryLint            Category = "lint"
	CategoryTypeSafety      Category = "type-safety"
	CategorySecurity        Category = "security"
	CategoryHardcoded       Category = "hardcoded"
	CategoryLegacy          Category = "legacy"
	CategoryComplexity      Category = "complexity"
	CategoryMaintainability Category = "maintainability"
)

// AllCategories returns every category in a stable order
func AllCategories() []Category {
	return []Category{
		CategoryLint,
		CategoryTypeSafety,
		CategorySecurity,
		CategoryHardcoded,
		CategoryLegacy,
		CategoryComplexity,
		CategoryMaintainability,
	}
}

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// QualityIssue is a user-facing finding located at a file and line.
// Line is 0 for file-level issues.
type QualityIssue struct {
	File       string   `json:"file" yaml:"file"`
	Line       int      `json:"line,omitempty" yaml:"line,omitempty"`
	Column     int      `json:"column,omitempty" yaml:"column,omitempty"` // 1-based byte column, 0 when unknown
	Severity   Severity `json:"severity" yaml:"severity"`
	Category   Category `json:"category" yaml:"category"`
	Rule       string   `json:"rule" yaml:"rule"`
	Message    string   `json:"message" yaml:"message"`
	Suggestion string   `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Snippet    string   `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	FixerID    string   `json:"fixer_id,omitempty" yaml:"fixer_id,omitempty"`

	// Hint carries detector data a fixer needs, such as an inferred return type
	Hint string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// HasFixer reports whether the issue names a fixer
func (i QualityIssue) HasFixer() bool {
	return i.FixerID != ""
}

// FunctionInfo describes one function-like node after its scope closed
type FunctionInfo struct {
	Name       string `json:"name" yaml:"name"`
	StartLine  int    `json:"start_line" yaml:"start_line"`
	EndLine    int    `json:"end_line" yaml:"end_line"`
	StartByte  int    `json:"start_byte" yaml:"start_byte"`
	EndByte    int    `json:"end_byte" yaml:"end_byte"`
	ParamCount int    `json:"param_count" yaml:"param_count"`
	IsAsync    bool   `json:"is_async" yaml:"is_async"`
	IsExported bool   `json:"is_exported" yaml:"is_exported"`
	Complexity int    `json:"complexity" yaml:"complexity"`
	LineCount  int    `json:"line_count" yaml:"line_count"`
}

// FileAnalysis is the per-file result of a single analysis pass
type FileAnalysis struct {
	File        string         `json:"file" yaml:"file"`
	Issues      []QualityIssue `json:"issues" yaml:"issues"`
	Functions   []FunctionInfo `json:"functions" yaml:"functions"`
	TotalLines  int            `json:"total_lines" yaml:"total_lines"`
	ParseFailed bool           `json:"parse_failed,omitempty" yaml:"parse_failed,omitempty"`
}

// AnalyzeRequest describes an analysis run over a set of paths
type AnalyzeRequest struct {
	Paths      []string
	ConfigPath string

	// Filtering
	Categories  []Category
	MinSeverity Severity

	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string
}

// AnalyzeResponse collects the analysis of every file in a run
type AnalyzeResponse struct {
	Files       []FileAnalysis `json:"files" yaml:"files"`
	TotalIssues int            `json:"total_issues" yaml:"total_issues"`
	Errors      []string       `json:"errors,omitempty" yaml:"errors,omitempty"`
	GeneratedAt string         `json:"generated_at" yaml:"generated_at"`
	Version     string         `json:"version" yaml:"version"`
}

// AllIssues flattens the issues of every file in file order
func (r *AnalyzeResponse) AllIssues() []QualityIssue {
	var issues []QualityIssue
	for _, f := range r.Files {
		issues = append(issues, f.Issues...)
	}
	return issues
}
