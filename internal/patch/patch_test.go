package patch

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/source"
)

func numberedLines(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d;\n", i)
	}
	return b.String()
}

func compileAll(t *testing.T, text string, ops []domain.FixOperation) []TextPatch {
	t.Helper()
	idx := source.NewIndex(text)
	patches := make([]TextPatch, 0, len(ops))
	for _, op := range ops {
		p, err := Compile(idx, op)
		require.NoError(t, err)
		require.NotNil(t, p)
		patches = append(patches, *p)
	}
	SortDescending(patches)
	return patches
}

func TestCompile(t *testing.T) {
	text := "a();\nb();\nc();\n"

	tests := []struct {
		name string
		op   domain.FixOperation
		want string
	}{
		{"delete line", domain.FixOperation{Action: domain.ActionDeleteLine, Line: 2}, "a();\nc();\n"},
		{"delete last line", domain.FixOperation{Action: domain.ActionDeleteLine, Line: 3}, "a();\nb();\n"},
		{"replace line", domain.FixOperation{Action: domain.ActionReplaceLine, Line: 2, NewCode: domain.Code("B();")}, "a();\nB();\nc();\n"},
		{"replace range", domain.FixOperation{Action: domain.ActionReplaceRange, Line: 1, EndLine: 2, NewCode: domain.Code("ab();")}, "ab();\nc();\n"},
		{"extract function", domain.FixOperation{Action: domain.ActionExtractFunction, Line: 2, EndLine: 3, NewCode: domain.Code("bc();")}, "a();\nbc();\n"},
		{"insert before", domain.FixOperation{Action: domain.ActionInsertBefore, Line: 1, NewCode: domain.Code("'use strict';")}, "'use strict';\na();\nb();\nc();\n"},
		{"insert after", domain.FixOperation{Action: domain.ActionInsertAfter, Line: 3, NewCode: domain.Code("d();")}, "a();\nb();\nc();\nd();\n"},
		{"guarded by old code", domain.FixOperation{Action: domain.ActionDeleteLine, Line: 1, OldCode: "a();"}, "b();\nc();\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(source.NewIndex(text), tt.op)
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, tt.want, Apply(text, []TextPatch{*p}))
		})
	}
}

func TestCompileTrailingNewlineSemantics(t *testing.T) {
	noNewline := "a();\nb();"

	p, err := Compile(source.NewIndex(noNewline), domain.FixOperation{Action: domain.ActionReplaceLine, Line: 2, NewCode: domain.Code("B();")})
	require.NoError(t, err)
	assert.Equal(t, "a();\nB();", Apply(noNewline, []TextPatch{*p}))

	p, err = Compile(source.NewIndex(noNewline), domain.FixOperation{Action: domain.ActionInsertAfter, Line: 2, NewCode: domain.Code("c();")})
	require.NoError(t, err)
	assert.Equal(t, "a();\nb();\nc();", Apply(noNewline, []TextPatch{*p}))

	crlf := "a();\r\nb();\r\n"
	p, err = Compile(source.NewIndex(crlf), domain.FixOperation{Action: domain.ActionReplaceLine, Line: 1, NewCode: domain.Code("A();"), OldCode: "a();"})
	require.NoError(t, err)
	assert.Equal(t, "A();\r\nb();\r\n", Apply(crlf, []TextPatch{*p}))

	p, err = Compile(source.NewIndex(crlf), domain.FixOperation{Action: domain.ActionInsertBefore, Line: 2, NewCode: domain.Code("x();")})
	require.NoError(t, err)
	assert.Equal(t, "a();\r\nx();\r\nb();\r\n", Apply(crlf, []TextPatch{*p}))
}

func TestCompileErrors(t *testing.T) {
	idx := source.NewIndex("a();\nb();\n")

	tests := []struct {
		name string
		op   domain.FixOperation
		want error
	}{
		{"replace without code", domain.FixOperation{Action: domain.ActionReplaceLine, Line: 1}, domain.ErrMissingNewCode},
		{"insert without code", domain.FixOperation{Action: domain.ActionInsertAfter, Line: 1}, domain.ErrMissingNewCode},
		{"line zero", domain.FixOperation{Action: domain.ActionDeleteLine, Line: 0}, domain.ErrLineOutOfRange},
		{"line past end", domain.FixOperation{Action: domain.ActionDeleteLine, Line: 3}, domain.ErrLineOutOfRange},
		{"inverted range", domain.FixOperation{Action: domain.ActionReplaceRange, Line: 2, EndLine: 1, NewCode: domain.Code("")}, domain.ErrLineOutOfRange},
		{"stale old code", domain.FixOperation{Action: domain.ActionDeleteLine, Line: 1, OldCode: "console.log(1);"}, domain.ErrStaleOperation},
		{"unknown action", domain.FixOperation{Action: "rename-symbol", Line: 1}, domain.ErrUnsupportedAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(idx, tt.op)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompileStructuralIsNotAPatch(t *testing.T) {
	for _, action := range []domain.FixAction{domain.ActionSplitFile, domain.ActionMoveFile, domain.ActionCreateBarrel} {
		p, err := Compile(source.NewIndex("x"), domain.FixOperation{Action: action})
		assert.NoError(t, err)
		assert.Nil(t, p, "action %s", action)
	}
}

func TestApplyNonInterference(t *testing.T) {
	text := numberedLines(30)
	patches := compileAll(t, text, []domain.FixOperation{
		{Action: domain.ActionDeleteLine, Line: 4},
		{Action: domain.ActionReplaceLine, Line: 10, NewCode: domain.Code("ten();")},
		{Action: domain.ActionInsertBefore, Line: 25, NewCode: domain.Code("inserted();")},
	})
	require.False(t, Overlaps(patches))

	got := Apply(text, patches)

	// every byte outside the patched ranges survives in order
	pos := len(text)
	rest := got
	for _, p := range patches {
		untouched := text[p.End:pos]
		require.True(t, strings.HasSuffix(rest, untouched), "suffix after %v changed", p)
		rest = strings.TrimSuffix(rest, untouched)
		require.True(t, strings.HasSuffix(rest, p.Replacement))
		rest = strings.TrimSuffix(rest, p.Replacement)
		pos = p.Start
	}
	assert.Equal(t, text[:pos], rest)
}

func TestApplySingleMatchesSegments(t *testing.T) {
	text := numberedLines(5)
	for _, p := range []TextPatch{
		{Start: 0, End: 0, Replacement: "head\n"},
		{Start: 8, End: 16, Replacement: ""},
		{Start: 16, End: 24, Replacement: "x();\n"},
		{Start: len(text), End: len(text), Replacement: "tail\n"},
	} {
		assert.Equal(t, applyOne(text, p), applySegments(text, []TextPatch{p}), "patch %v", p)
	}
}

func TestLineOrderSafety(t *testing.T) {
	text := numberedLines(25)
	ops := []domain.FixOperation{
		{Action: domain.ActionReplaceLine, Line: 5, NewCode: domain.Code("five();")},
		{Action: domain.ActionDeleteLine, Line: 12},
		{Action: domain.ActionInsertAfter, Line: 20, NewCode: domain.Code("after20();")},
	}

	batch := Apply(text, compileAll(t, text, ops))

	sequential := text
	for _, line := range []int{20, 12, 5} {
		for _, op := range ops {
			if op.Line != line {
				continue
			}
			p, err := Compile(source.NewIndex(sequential), op)
			require.NoError(t, err)
			sequential = Apply(sequential, []TextPatch{*p})
		}
	}

	assert.Equal(t, sequential, batch)
	assert.Contains(t, batch, "line 4;\nfive();\nline 6;\n")
	assert.NotContains(t, batch, "line 12;")
	assert.Contains(t, batch, "line 20;\nafter20();\nline 21;\n")
}

func TestBatchEqualsSequentialDeleteAndInsert(t *testing.T) {
	text := numberedLines(10)
	ops := []domain.FixOperation{
		{Action: domain.ActionDeleteLine, Line: 3},
		{Action: domain.ActionInsertBefore, Line: 7, NewCode: domain.Code("seven();")},
	}

	batch := Apply(text, compileAll(t, text, ops))

	p7, err := Compile(source.NewIndex(text), ops[1])
	require.NoError(t, err)
	step := Apply(text, []TextPatch{*p7})
	p3, err := Compile(source.NewIndex(step), ops[0])
	require.NoError(t, err)
	sequential := Apply(step, []TextPatch{*p3})

	assert.Equal(t, sequential, batch)
	assert.NotContains(t, batch, "line 3;")
	assert.Contains(t, batch, "line 6;\nseven();\nline 7;\n")
}

func TestInsertAndDeleteAtSameLine(t *testing.T) {
	text := numberedLines(3)
	patches := compileAll(t, text, []domain.FixOperation{
		{Action: domain.ActionInsertBefore, Line: 2, NewCode: domain.Code("new();")},
		{Action: domain.ActionDeleteLine, Line: 2},
	})
	require.False(t, Overlaps(patches))
	assert.Equal(t, "line 1;\nnew();\nline 3;\n", Apply(text, patches))
}

func TestConflicts(t *testing.T) {
	tests := []struct {
		name string
		a, b TextPatch
		want bool
	}{
		{"disjoint", TextPatch{Start: 10, End: 20}, TextPatch{Start: 0, End: 10}, false},
		{"overlap", TextPatch{Start: 5, End: 15}, TextPatch{Start: 0, End: 10}, true},
		{"nested", TextPatch{Start: 2, End: 4}, TextPatch{Start: 0, End: 10}, true},
		{"insert at boundary", TextPatch{Start: 10, End: 10}, TextPatch{Start: 0, End: 10}, false},
		{"insert inside", TextPatch{Start: 5, End: 5}, TextPatch{Start: 0, End: 10}, true},
		{"two inserts same offset", TextPatch{Start: 3, End: 3}, TextPatch{Start: 3, End: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Conflicts(tt.a, tt.b))
			assert.Equal(t, tt.want, Conflicts(tt.b, tt.a))
		})
	}
}

func TestStructuralSplitFile(t *testing.T) {
	origin := filepath.Join("src", "utils.ts")
	files, err := Structural(domain.FixOperation{
		Action: domain.ActionSplitFile,
		File:   origin,
		NewFiles: map[string]string{
			"utils/strings.ts": "export const trim = (s: string) => s.trim();\n",
			"utils/numbers.ts": "export const inc = (n: number) => n + 1;\n",
		},
	}, "old content")
	require.NoError(t, err)

	assert.Len(t, files, 3)
	assert.Equal(t, "export const inc = (n: number) => n + 1;\n", files[filepath.Join("src", "utils", "numbers.ts")])
	assert.Equal(t, "export * from './utils/numbers';\nexport * from './utils/strings';\n", files[origin])
}

func TestStructuralMoveFile(t *testing.T) {
	origin := filepath.Join("src", "old.ts")
	files, err := Structural(domain.FixOperation{
		Action: domain.ActionMoveFile,
		File:   origin,
		MoveTo: "lib/new.ts",
	}, "export const x = 1;\n")
	require.NoError(t, err)

	assert.Equal(t, "export const x = 1;\n", files[filepath.Join("src", "lib", "new.ts")])
	assert.Equal(t, "export * from './lib/new';\n", files[origin])
}

func TestStructuralCreateBarrel(t *testing.T) {
	origin := filepath.Join("src", "components", "button.ts")
	files, err := Structural(domain.FixOperation{
		Action:   domain.ActionCreateBarrel,
		File:     origin,
		NewFiles: map[string]string{"button.ts": "", "card.tsx": ""},
	}, "")
	require.NoError(t, err)

	assert.Len(t, files, 1)
	assert.Equal(t, "export * from './button';\nexport * from './card';\n", files[filepath.Join("src", "components", "index.ts")])
}

func TestStructuralRejectsTraversal(t *testing.T) {
	tests := []domain.FixOperation{
		{Action: domain.ActionSplitFile, File: "src/a.ts", NewFiles: map[string]string{"../escape.ts": "x"}},
		{Action: domain.ActionMoveFile, File: "src/a.ts", MoveTo: "../../etc/passwd"},
		{Action: domain.ActionMoveFile, File: "src/a.ts", MoveTo: "/tmp/a.ts"},
		{Action: domain.ActionCreateBarrel, File: "src/a.ts", NewFiles: map[string]string{"..": ""}},
	}
	for _, op := range tests {
		_, err := Structural(op, "")
		assert.ErrorIs(t, err, domain.ErrPathEscapesRoot, "op %+v", op)
	}
}

func TestStructuralMalformed(t *testing.T) {
	_, err := Structural(domain.FixOperation{Action: domain.ActionMoveFile, File: "src/a.ts"}, "")
	assert.ErrorIs(t, err, domain.ErrMissingNewCode)

	_, err = Structural(domain.FixOperation{Action: domain.ActionDeleteLine, File: "src/a.ts"}, "")
	assert.ErrorIs(t, err, domain.ErrUnsupportedAction)
}
