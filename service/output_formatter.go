package service

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/ludo-technologies/jsfix/domain"
	"gopkg.in/yaml.v3"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// OutputFormatterImpl renders analysis and fix results
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data any) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

func writeStructured(writer io.Writer, format domain.OutputFormat, data any) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, data)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, data)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteAnalyze writes an analysis response in the specified format
func (f *OutputFormatterImpl) WriteAnalyze(response *domain.AnalyzeResponse, format domain.OutputFormat, writer io.Writer) error {
	if format.IsStructured() {
		return writeStructured(writer, format, response)
	}
	if format != domain.OutputFormatText {
		return fmt.Errorf("unsupported output format: %s", format)
	}

	fmt.Fprintf(writer, "\n%s\n", bold("=== jsfix Analysis Report ==="))
	fmt.Fprintf(writer, "Generated: %s\n", response.GeneratedAt)
	fmt.Fprintf(writer, "Version: %s\n\n", response.Version)

	for _, file := range response.Files {
		if len(file.Issues) == 0 && !file.ParseFailed {
			continue
		}
		fmt.Fprintf(writer, "%s\n", bold(file.File))
		if file.ParseFailed {
			fmt.Fprintf(writer, "  %s\n", yellow("file could not be parsed; only comment checks ran"))
		}
		for _, issue := range file.Issues {
			fixable := ""
			if issue.HasFixer() {
				fixable = " " + cyan("[fixable]")
			}
			fmt.Fprintf(writer, "  %4d  %s  %s  %s%s\n",
				issue.Line, severityLabel(issue.Severity), issue.Message, faint(issue.Rule), fixable)
			if issue.Suggestion != "" {
				fmt.Fprintf(writer, "        %s\n", faint(issue.Suggestion))
			}
		}
		fmt.Fprintln(writer)
	}

	fmt.Fprintf(writer, "Summary:\n")
	fmt.Fprintf(writer, "  Files analyzed: %d\n", len(response.Files))
	fmt.Fprintf(writer, "  Total issues: %d\n", response.TotalIssues)
	counts := make(map[domain.Category]int)
	for _, issue := range response.AllIssues() {
		counts[issue.Category]++
	}
	for _, c := range domain.AllCategories() {
		if counts[c] > 0 {
			fmt.Fprintf(writer, "    %s: %d\n", c, counts[c])
		}
	}

	if len(response.Errors) > 0 {
		fmt.Fprintf(writer, "\nErrors:\n")
		for _, e := range response.Errors {
			fmt.Fprintf(writer, "  - %s\n", e)
		}
	}
	return nil
}

// WritePlan writes the fix plan of a response before it is applied
func (f *OutputFormatterImpl) WritePlan(response *domain.FixResponse, format domain.OutputFormat, writer io.Writer) error {
	if format.IsStructured() {
		return writeStructured(writer, format, response.Plan)
	}
	if format != domain.OutputFormatText {
		return fmt.Errorf("unsupported output format: %s", format)
	}

	plan := response.Plan
	fmt.Fprintf(writer, "\n%s\n", bold("=== jsfix Fix Plan ==="))
	for _, p := range plan.Plans {
		fmt.Fprintf(writer, "%s\n", bold(p.File))
		for _, item := range p.Fixes {
			fmt.Fprintf(writer, "  %4d  %-14s %s %s\n",
				item.Operation.Line, item.Operation.Action, difficultyLabel(item.Difficulty), item.Issue.Message)
		}
	}

	fmt.Fprintf(writer, "\nIssues: %d, fixes planned: %d, skipped: %d\n",
		plan.TotalIssues, plan.TotalFixes(), plan.Skipped.Total())
	writeSkipStats(writer, plan.Skipped)
	return nil
}

// WriteFix writes the execution result of a response. Dry runs include the
// diff of every file.
func (f *OutputFormatterImpl) WriteFix(response *domain.FixResponse, format domain.OutputFormat, writer io.Writer) error {
	if format.IsStructured() {
		return writeStructured(writer, format, response)
	}
	if format != domain.OutputFormatText {
		return fmt.Errorf("unsupported output format: %s", format)
	}

	exec := response.Execution
	if exec == nil {
		return fmt.Errorf("fix response has no execution result")
	}

	title := "=== jsfix Fix Results ==="
	if exec.DryRun {
		title = "=== jsfix Fix Results (dry run) ==="
	}
	fmt.Fprintf(writer, "\n%s\n", bold(title))
	fmt.Fprintf(writer, "Run: %s\n\n", faint(exec.RunID))

	for _, file := range exec.Files {
		status := green("ok")
		switch {
		case file.Skipped:
			status = yellow("skipped")
		case !file.Success:
			status = red("failed")
		}
		fmt.Fprintf(writer, "%s %s\n", status, file.File)
		if file.Error != "" {
			fmt.Fprintf(writer, "    %s\n", file.Error)
		}
		for _, r := range file.Results {
			if r.Success || r.Error == "" {
				continue
			}
			fmt.Fprintf(writer, "    line %d %s: %s\n", r.Operation.Line, r.Operation.Action, r.Error)
		}
		if exec.DryRun && file.Diff != "" {
			writeDiff(writer, file.Diff)
		}
	}

	fmt.Fprintf(writer, "\nFiles: %d succeeded, %d failed, %d skipped of %d\n",
		exec.SucceededFiles, exec.FailedFiles, exec.SkippedFiles, exec.TotalFiles)
	fmt.Fprintf(writer, "Fixes: %d applied, %d failed\n", exec.AppliedFixes, exec.FailedFixes)
	fmt.Fprintf(writer, "Duration: %dms (concurrency %d)\n", exec.Duration.Milliseconds(), exec.MaxConcurrency)
	return nil
}

func writeSkipStats(writer io.Writer, s *domain.SkipStats) {
	if s == nil || s.Total() == 0 {
		return
	}
	reasons := []struct {
		label  string
		counts map[domain.Category]int
	}{
		{"filtered", s.Filtered},
		{"no fixer available", s.Unfixable},
		{"fixer not registered", s.NoFixer},
		{"file unreadable", s.NoContent},
		{"fixer declined", s.NoFixGenerated},
	}
	for _, r := range reasons {
		if len(r.counts) == 0 {
			continue
		}
		fmt.Fprintf(writer, "  %s: %s\n", r.label, formatCounts(r.counts))
	}
}

// formatCounts renders per-category counts sorted by category name
func formatCounts(counts map[domain.Category]int) string {
	keys := make([]string, 0, len(counts))
	for c := range counts {
		keys = append(keys, string(c))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[domain.Category(k)]))
	}
	return strings.Join(parts, " ")
}

func writeDiff(writer io.Writer, diff string) {
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprintf(writer, "    %s\n", bold(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintf(writer, "    %s\n", green(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintf(writer, "    %s\n", red(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprintf(writer, "    %s\n", cyan(line))
		default:
			fmt.Fprintf(writer, "    %s\n", line)
		}
	}
}

func severityLabel(s domain.Severity) string {
	label := fmt.Sprintf("%-8s", s)
	switch s {
	case domain.SeverityCritical, domain.SeverityError:
		return red(label)
	case domain.SeverityWarning:
		return yellow(label)
	default:
		return cyan(label)
	}
}

func difficultyLabel(d domain.Difficulty) string {
	label := fmt.Sprintf("%-8s", d)
	switch d {
	case domain.DifficultyTrivial:
		return green(label)
	case domain.DifficultySafe:
		return cyan(label)
	default:
		return yellow(label)
	}
}
