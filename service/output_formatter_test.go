package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/ludo-technologies/jsfix/domain"
	"gopkg.in/yaml.v3"
)

func init() {
	color.NoColor = true
}

func sampleAnalysis() *domain.AnalyzeResponse {
	return &domain.AnalyzeResponse{
		Files: []domain.FileAnalysis{
			{
				File: "src/app.ts",
				Issues: []domain.QualityIssue{
					{File: "src/app.ts", Line: 2, Severity: domain.SeverityWarning, Category: domain.CategoryLint,
						Rule: "no-console", Message: "console.log call left in code", FixerID: "remove-debug"},
					{File: "src/app.ts", Line: 5, Severity: domain.SeverityError, Category: domain.CategorySecurity,
						Rule: "no-eval", Message: "eval() executes arbitrary code"},
				},
			},
			{File: "src/clean.ts"},
		},
		TotalIssues: 2,
		GeneratedAt: "2026-01-02T03:04:05Z",
		Version:     "1.0.0",
		Errors:      []string{"src/broken.ts: permission denied"},
	}
}

func sampleFixResponse(dryRun bool) *domain.FixResponse {
	skipped := domain.NewSkipStats()
	skipped.Unfixable[domain.CategorySecurity] = 1
	issue := sampleAnalysis().Files[0].Issues[0]
	op := domain.FixOperation{Action: domain.ActionDeleteLine, File: "src/app.ts", Line: 2}
	return &domain.FixResponse{
		Analysis: sampleAnalysis(),
		Plan: &domain.FixPlanResponse{
			Plans: []domain.FixPlan{{
				File:  "src/app.ts",
				Fixes: []domain.FixPlanItem{{Issue: issue, Operation: op, Difficulty: domain.DifficultyTrivial}},
			}},
			Skipped:     skipped,
			TotalIssues: 2,
		},
		Execution: &domain.ParallelExecutionResult{
			RunID: "run-1",
			Files: []domain.FileFixResult{{
				File:    "src/app.ts",
				Success: true,
				Results: []domain.FixResult{{Issue: issue, Operation: op, Success: true}},
				Diff:    "--- a/src/app.ts\n+++ b/src/app.ts\n@@ -1,2 +1 @@\n const a = 1;\n-console.log(a);\n",
			}},
			TotalFiles:     1,
			SucceededFiles: 1,
			AppliedFixes:   1,
			MaxConcurrency: 4,
			DryRun:         dryRun,
		},
	}
}

func TestWriteJSON(t *testing.T) {
	data := map[string]any{
		"name":  "test",
		"value": 42,
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, data); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse output as JSON: %v", err)
	}
	if result["name"] != "test" {
		t.Errorf("Expected name to be 'test', got %v", result["name"])
	}
}

func TestOutputFormatterWriteAnalyzeText(t *testing.T) {
	var buf bytes.Buffer
	if err := NewOutputFormatter().WriteAnalyze(sampleAnalysis(), domain.OutputFormatText, &buf); err != nil {
		t.Fatalf("WriteAnalyze failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"jsfix Analysis Report",
		"src/app.ts",
		"console.log call left in code",
		"[fixable]",
		"Total issues: 2",
		"lint: 1",
		"security: 1",
		"permission denied",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "src/clean.ts") {
		t.Error("files without issues should not be listed")
	}
}

func TestOutputFormatterWriteAnalyzeStructured(t *testing.T) {
	formatter := NewOutputFormatter()

	var jsonBuf bytes.Buffer
	if err := formatter.WriteAnalyze(sampleAnalysis(), domain.OutputFormatJSON, &jsonBuf); err != nil {
		t.Fatalf("WriteAnalyze JSON failed: %v", err)
	}
	var decoded domain.AnalyzeResponse
	if err := json.Unmarshal(jsonBuf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.TotalIssues != 2 || decoded.Files[0].Issues[0].FixerID != "remove-debug" {
		t.Errorf("decoded = %+v", decoded)
	}

	var yamlBuf bytes.Buffer
	if err := formatter.WriteAnalyze(sampleAnalysis(), domain.OutputFormatYAML, &yamlBuf); err != nil {
		t.Fatalf("WriteAnalyze YAML failed: %v", err)
	}
	var generic map[string]any
	if err := yaml.Unmarshal(yamlBuf.Bytes(), &generic); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if generic["total_issues"] != 2 {
		t.Errorf("total_issues = %v, want 2", generic["total_issues"])
	}
}

func TestOutputFormatterUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := NewOutputFormatter().WriteAnalyze(sampleAnalysis(), domain.OutputFormat("html"), &buf); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestOutputFormatterWritePlan(t *testing.T) {
	var buf bytes.Buffer
	if err := NewOutputFormatter().WritePlan(sampleFixResponse(false), domain.OutputFormatText, &buf); err != nil {
		t.Fatalf("WritePlan failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{"jsfix Fix Plan", "delete-line", "trivial", "fixes planned: 1", "no fixer available: security=1"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestOutputFormatterWriteFix(t *testing.T) {
	tests := []struct {
		name     string
		dryRun   bool
		contains []string
		excludes []string
	}{
		{
			name:     "applied",
			contains: []string{"jsfix Fix Results", "ok src/app.ts", "1 applied"},
			excludes: []string{"-console.log(a);", "dry run"},
		},
		{
			name:     "dry run shows diff",
			dryRun:   true,
			contains: []string{"(dry run)", "-console.log(a);", "+++ b/src/app.ts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewOutputFormatter().WriteFix(sampleFixResponse(tt.dryRun), domain.OutputFormatText, &buf); err != nil {
				t.Fatalf("WriteFix failed: %v", err)
			}
			output := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("output missing %q:\n%s", want, output)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(output, unwanted) {
					t.Errorf("output should not contain %q:\n%s", unwanted, output)
				}
			}
		})
	}
}

func TestOutputFormatterWriteFixWithoutExecution(t *testing.T) {
	resp := sampleFixResponse(false)
	resp.Execution = nil

	var buf bytes.Buffer
	if err := NewOutputFormatter().WriteFix(resp, domain.OutputFormatText, &buf); err == nil {
		t.Error("expected error without an execution result")
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    domain.OutputFormat
		wantErr bool
	}{
		{"", domain.OutputFormatText, false},
		{"JSON", domain.OutputFormatJSON, false},
		{" yaml ", domain.OutputFormatYAML, false},
		{"html", "", true},
	}

	for _, tt := range tests {
		got, err := domain.ParseOutputFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
