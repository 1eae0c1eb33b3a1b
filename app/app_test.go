package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/config"
	"github.com/ludo-technologies/jsfix/internal/testutil"
)

func TestFileHelperCollectJSFiles(t *testing.T) {
	tempDir := t.TempDir()

	testFiles := []string{"test.js", "test.ts", "test.jsx", "test.tsx", "test.txt"}
	for _, f := range testFiles {
		path := filepath.Join(tempDir, f)
		if err := os.WriteFile(path, []byte("// test"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	helper := NewFileHelper()

	files, err := helper.CollectJSFiles([]string{tempDir}, true, nil, nil)
	if err != nil {
		t.Fatalf("CollectJSFiles failed: %v", err)
	}

	// Should find 4 JS/TS files
	if len(files) != 4 {
		t.Errorf("Expected 4 JS/TS files, got %d", len(files))
	}
}

func TestFileHelperIsValidJSFile(t *testing.T) {
	helper := NewFileHelper()

	tests := []struct {
		path     string
		expected bool
	}{
		{"test.js", true},
		{"test.ts", true},
		{"test.jsx", true},
		{"test.tsx", true},
		{"test.mjs", true},
		{"test.cjs", true},
		{"test.mts", true},
		{"test.cts", true},
		{"TEST.TS", true},
		{"test.py", false},
		{"test.go", false},
		{"test.txt", false},
	}

	for _, tt := range tests {
		result := helper.IsValidJSFile(tt.path)
		if result != tt.expected {
			t.Errorf("IsValidJSFile(%s) = %v, expected %v", tt.path, result, tt.expected)
		}
	}
}

func TestFileHelperPatterns(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{
		"src/app.ts":                "export const a = 1;\n",
		"src/app.test.ts":           "test();\n",
		"src/lib/util.js":           "module.exports = {};\n",
		"src/types.d.ts":            "declare const x: number;\n",
		"node_modules/pkg/index.js": "module.exports = {};\n",
		"dist/bundle.min.js":        "x();\n",
	})
	cfg := config.DefaultConfig()

	tests := []struct {
		name      string
		recursive bool
		include   []string
		exclude   []string
		want      []string
	}{
		{
			name:      "defaults",
			recursive: true,
			include:   cfg.Analysis.IncludePatterns,
			exclude:   cfg.Analysis.ExcludePatterns,
			want:      []string{"src/app.test.ts", "src/app.ts", "src/lib/util.js"},
		},
		{
			name:      "base name exclude",
			recursive: true,
			include:   cfg.Analysis.IncludePatterns,
			exclude:   append([]string{"*.test.ts"}, cfg.Analysis.ExcludePatterns...),
			want:      []string{"src/app.ts", "src/lib/util.js"},
		},
		{
			name:      "include narrows",
			recursive: true,
			include:   []string{"src/lib/**"},
			want:      []string{"src/lib/util.js"},
		},
		{
			name:      "not recursive",
			recursive: false,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := NewFileHelper().CollectJSFiles([]string{dir}, tt.recursive, tt.include, tt.exclude)
			if err != nil {
				t.Fatalf("CollectJSFiles failed: %v", err)
			}
			got := relativeAll(t, dir, files)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("files = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFileHelperGitignore(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{
		".gitignore":       "generated/\n*.gen.ts\n",
		"src/app.ts":       "export const a = 1;\n",
		"src/api.gen.ts":   "export const b = 2;\n",
		"generated/out.js": "x();\n",
	})

	files, err := NewFileHelper().CollectJSFiles([]string{dir}, true, nil, nil)
	if err != nil {
		t.Fatalf("CollectJSFiles failed: %v", err)
	}
	if got := relativeAll(t, dir, files); strings.Join(got, ",") != "src/app.ts" {
		t.Errorf("files = %v, want [src/app.ts]", got)
	}

	files, err = NewFileHelper().WithGitignore(false).CollectJSFiles([]string{dir}, true, nil, nil)
	if err != nil {
		t.Fatalf("CollectJSFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Errorf("without gitignore got %d files, want 3", len(files))
	}
}

func TestResolveFilePaths(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{
		"a.ts":              "a();\n",
		"b.ts":              "b();\n",
		"README.md":         "# readme\n",
		"vendor/lib.min.js": "x();\n",
	})
	a, b := filepath.Join(dir, "a.ts"), filepath.Join(dir, "b.ts")
	explicit := []string{
		b,
		a,
		filepath.Join(dir, "README.md"),
		filepath.Join(dir, "vendor", "lib.min.js"),
		b,
	}

	files, err := ResolveFilePaths(NewFileHelper(), explicit, true, nil, []string{"*.min.js"})
	if err != nil {
		t.Fatalf("ResolveFilePaths failed: %v", err)
	}
	if len(files) != 2 || files[0] != a || files[1] != b {
		t.Errorf("expected only the sorted, deduplicated script files, got %v", files)
	}

	if _, err := ResolveFilePaths(NewFileHelper(), []string{filepath.Join(dir, "missing")}, true, nil, nil); err == nil {
		t.Error("expected error for a missing path")
	}
}

func TestAnalyzeUseCase(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{
		"src/app.ts":   "const a = 1;\nconsole.log(a);\n",
		"src/clean.ts": "export const b = 2;\n",
	})
	cfg := config.DefaultConfig()

	uc := NewAnalyzeUseCase(nil, nil)
	resp, err := uc.Execute(context.Background(), cfg, domain.AnalyzeRequest{
		Paths:           []string{dir},
		Recursive:       true,
		IncludePatterns: cfg.Analysis.IncludePatterns,
		ExcludePatterns: cfg.Analysis.ExcludePatterns,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(resp.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(resp.Files))
	}
	found := false
	for _, issue := range resp.AllIssues() {
		if issue.Rule == "no-console" && issue.Line == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("no-console issue not reported: %+v", resp.AllIssues())
	}
	if resp.Version == "" || resp.GeneratedAt == "" {
		t.Error("response metadata not set")
	}
}

func TestAnalyzeUseCase_NoFiles(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{"README.md": "# readme\n"})

	_, err := NewAnalyzeUseCase(nil, nil).Execute(context.Background(), config.DefaultConfig(), domain.AnalyzeRequest{
		Paths:     []string{dir},
		Recursive: true,
	})
	if err == nil {
		t.Fatal("expected error when no files are found")
	}
	if !domain.IsKind(err, domain.ErrorKindAnalysis) {
		t.Errorf("error kind = %v, want analysis", err)
	}
}

func fixRequest(cfg *config.Config, dir string) domain.FixRequest {
	req := domain.FixRequest{
		Paths:           []string{dir},
		Recursive:       true,
		IncludePatterns: cfg.Analysis.IncludePatterns,
		ExcludePatterns: cfg.Analysis.ExcludePatterns,
		StopOnError:     true,
		MaxConcurrency:  2,
	}
	return req
}

func TestFixUseCase_Execute(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{
		"src/app.ts": "const a = 1;\nconsole.log(a);\n",
	})
	cfg := config.DefaultConfig()

	resp, err := NewFixUseCase(nil).Execute(context.Background(), cfg, fixRequest(cfg, dir))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if got := resp.Plan.Skipped.Total() + resp.Plan.TotalFixes(); got != resp.Plan.TotalIssues {
		t.Errorf("skipped + fixes = %d, want %d", got, resp.Plan.TotalIssues)
	}
	if resp.Execution.AppliedFixes != 1 {
		t.Errorf("AppliedFixes = %d, want 1", resp.Execution.AppliedFixes)
	}
	if got := testutil.ReadFile(t, filepath.Join(dir, "src/app.ts")); got != "const a = 1;\n" {
		t.Errorf("file after fix = %q", got)
	}
}

func TestFixUseCase_DryRun(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{
		"src/app.ts": "const a = 1;\nconsole.log(a);\n",
	})
	cfg := config.DefaultConfig()
	req := fixRequest(cfg, dir)
	req.DryRun = true

	uc := NewFixUseCase(nil)
	resp, err := uc.Plan(context.Background(), cfg, req)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if resp.Execution != nil {
		t.Error("Plan must not execute")
	}

	resp, err = uc.Apply(context.Background(), resp, req)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(resp.Execution.Files) != 1 || !strings.Contains(resp.Execution.Files[0].Diff, "-console.log(a);") {
		t.Errorf("dry run diff missing: %+v", resp.Execution.Files)
	}
	if got := testutil.ReadFile(t, filepath.Join(dir, "src/app.ts")); got != "const a = 1;\nconsole.log(a);\n" {
		t.Errorf("dry run modified the file: %q", got)
	}
}

func TestFixUseCase_DisabledFixer(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{
		"src/app.ts": "console.log(1);\n",
	})
	cfg := config.DefaultConfig()
	cfg.Fix.Fixers = map[string]bool{"remove-debug": false}

	resp, err := NewFixUseCase(nil).Execute(context.Background(), cfg, fixRequest(cfg, dir))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if resp.Plan.TotalFixes() != 0 {
		t.Errorf("TotalFixes = %d, want 0", resp.Plan.TotalFixes())
	}
	if got := testutil.ReadFile(t, filepath.Join(dir, "src/app.ts")); got != "console.log(1);\n" {
		t.Errorf("file changed: %q", got)
	}
}

func TestFixUseCase_ApplyWithoutPlan(t *testing.T) {
	_, err := NewFixUseCase(nil).Apply(context.Background(), nil, domain.FixRequest{})
	if !domain.IsKind(err, domain.ErrorKindFix) {
		t.Errorf("error = %v, want fix error", err)
	}
}

func relativeAll(t *testing.T, root string, files []string) []string {
	t.Helper()
	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatalf("Rel failed: %v", err)
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	return rel
}
