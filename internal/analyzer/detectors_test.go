package analyzer

import (
	"testing"
)

func TestSuspiciousCallDetector(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind DetectionKind
		want int
	}{
		{"console log", "console.log('x');", DetectConsoleCall, 1},
		{"console table", "console.table(rows);", DetectConsoleCall, 1},
		{"console error is not debug output", "console.error(err);", DetectConsoleCall, 0},
		{"logger log", "logger.log('x');", DetectConsoleCall, 0},
		{"debugger", "function f() { debugger; }", DetectDebugger, 1},
		{"alert", "alert('hi');", DetectDialogCall, 1},
		{"window confirm", "if (window.confirm('sure?')) go();", DetectDialogCall, 1},
		{"eval", "eval(code);", DetectEval, 1},
		{"new Function", "const f = new Function('a', 'return a');", DetectEval, 1},
		{"method named eval", "parser.eval(code);", DetectEval, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyze(t, "a.js", tt.src)
			if got := countKind(result.Detections, tt.kind); got != tt.want {
				t.Errorf("detections of kind %d = %d, want %d (%+v)", tt.kind, got, tt.want, result.Detections)
			}
		})
	}
}

func TestTypeEscapeDetector(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind DetectionKind
		want int
	}{
		{"any annotation", "let a: any = load();", DetectAnyType, 1},
		{"any parameter", "function f(x: any, y: any) {}", DetectAnyType, 2},
		{"unknown annotation", "let a: unknown = load();", DetectAnyType, 0},
		{"as any", "const v = data as any;", DetectAnyCast, 1},
		{"double cast", "const v = data as unknown as User;", DetectDoubleCast, 1},
		{"non-null", "const n = user!.name;", DetectNonNull, 1},
		{"as string", "const v = data as string;", DetectAnyCast, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyze(t, "a.ts", tt.src)
			if got := countKind(result.Detections, tt.kind); got != tt.want {
				t.Errorf("detections of kind %d = %d, want %d (%+v)", tt.kind, got, tt.want, result.Detections)
			}
		})
	}
}

func TestHardcodedStrings(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
		kind DetectionKind
		want int
	}{
		{"absolute url", "src/api.js", "fetch('https://api.acme.io/v1/users');", DetectHardcodedURL, 1},
		{"localhost", "src/api.js", "fetch('http://localhost:3000/');", DetectHardcodedURL, 0},
		{"example domain", "src/api.js", "const u = 'https://docs.example.com/x';", DetectHardcodedURL, 0},
		{"w3 namespace", "src/svg.js", "const ns = 'http://www.w3.org/2000/svg';", DetectHardcodedURL, 0},
		{"relative path", "src/api.js", "fetch('/api/users');", DetectHardcodedURL, 0},
		{"hex color", "src/button.js", "el.fill = '#ff0000';", DetectHardcodedColor, 1},
		{"short hex color", "src/button.js", "el.fill = '#f00';", DetectHardcodedColor, 1},
		{"color in theme file", "src/theme.js", "export const primary = '#ff0000';", DetectHardcodedColor, 0},
		{"not a color", "src/button.js", "el.id = '#main-1';", DetectHardcodedColor, 0},
		{"import source", "src/a.js", "import x from 'https://cdn.acme.io/x.js';", DetectHardcodedURL, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyze(t, tt.path, tt.src)
			if got := countKind(result.Detections, tt.kind); got != tt.want {
				t.Errorf("detections of kind %d = %d, want %d (%+v)", tt.kind, got, tt.want, result.Detections)
			}
		})
	}
}

func TestLegacyPatternDetector(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind DetectionKind
		want int
	}{
		{"require", "const fs = require('fs');", DetectRequire, 1},
		{"method named require", "loader.require('fs');", DetectRequire, 0},
		{"exec template", "exec(`rm -rf ${dir}`);", DetectExecInjection, 1},
		{"exec concat", "child_process.execSync('ls ' + dir);", DetectExecInjection, 1},
		{"exec constant", "exec('ls -la');", DetectExecInjection, 0},
		{"exec plain template", "exec(`ls -la`);", DetectExecInjection, 0},
		{"path join request", "const p = path.join(root, req.params.file);", DetectPathTraversal, 1},
		{"path resolve argv", "const p = resolve(process.argv[2]);", DetectPathTraversal, 1},
		{"path join constant", "const p = path.join(root, 'static');", DetectPathTraversal, 0},
		{"array join", "const s = parts.join(query);", DetectPathTraversal, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyze(t, "a.js", tt.src)
			if got := countKind(result.Detections, tt.kind); got != tt.want {
				t.Errorf("detections of kind %d = %d, want %d (%+v)", tt.kind, got, tt.want, result.Detections)
			}
		})
	}
}

func TestRequireModuleName(t *testing.T) {
	result := analyze(t, "a.js", "const fs = require('fs');")
	if len(result.Detections) != 1 {
		t.Fatalf("detections = %+v", result.Detections)
	}
	if got := result.Detections[0].Payload.Name; got != "fs" {
		t.Errorf("module = %q, want fs", got)
	}
}

func TestReturnTypeDetector(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		src    string
		want   int
		detail string
	}{
		{"exported void function", "a.ts", "export function save() { store(); }", 1, "void"},
		{"exported async function", "a.ts", "export async function load() { await fetchAll(); }", 1, "Promise<void>"},
		{"exported value function", "a.ts", "export function sum(a: number) { return a; }", 1, ""},
		{"exported arrow expression body", "a.ts", "export const twice = (n: number) => n * 2;", 1, ""},
		{"exported arrow block body", "a.ts", "export const reset = () => { state.clear(); };", 1, "void"},
		{"annotated", "a.ts", "export function sum(a: number): number { return a; }", 0, ""},
		{"not exported", "a.ts", "function hidden() {}", 0, ""},
		{"javascript file", "a.js", "export function save() { store(); }", 0, ""},
		{"nested return does not count", "a.ts", "export function run() { items.map(function (x) { return x; }); }", 1, "void"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyze(t, tt.path, tt.src)
			var found []Detection
			for _, d := range result.Detections {
				if d.Kind == DetectMissingReturnType {
					found = append(found, d)
				}
			}
			if len(found) != tt.want {
				t.Fatalf("detections = %d, want %d (%+v)", len(found), tt.want, result.Detections)
			}
			if tt.want == 1 && found[0].Payload.Detail != tt.detail {
				t.Errorf("detail = %q, want %q", found[0].Payload.Detail, tt.detail)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{"1_000", 1000, true},
		{"0x1F", 31, true},
		{"0b101", 5, true},
		{"0o17", 15, true},
		{"3.5e2", 350, true},
		{"10n", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseNumber(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseNumber(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsUpperCaseName(t *testing.T) {
	tests := map[string]bool{
		"MAX":         true,
		"MAX_RETRIES": true,
		"HTTP2":       true,
		"_PRIVATE":    true,
		"max":         false,
		"Max":         false,
		"2FAST":       false,
		"__":          false,
		"":            false,
	}
	for name, want := range tests {
		if got := isUpperCaseName(name); got != want {
			t.Errorf("isUpperCaseName(%q) = %v, want %v", name, got, want)
		}
	}
}
