package patch

import (
	"fmt"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/source"
)

// Compile converts op into a patch against the text held by idx.
// Structural operations are not patches and yield nil with no error.
// A malformed or stale operation fails on its own; nothing is modified.
func Compile(idx *source.Index, op domain.FixOperation) (*TextPatch, error) {
	if op.Action.IsStructural() {
		return nil, nil
	}
	if !idx.ValidLine(op.Line) {
		return nil, fmt.Errorf("%s at line %d of %d: %w", op.Action, op.Line, idx.LineCount(), domain.ErrLineOutOfRange)
	}

	switch op.Action {
	case domain.ActionDeleteLine:
		if err := checkOldCode(idx, op, op.Line); err != nil {
			return nil, err
		}
		start, end, _ := idx.LineSpan(op.Line)
		return &TextPatch{Start: start, End: end}, nil

	case domain.ActionReplaceLine, domain.ActionReplaceRange, domain.ActionExtractFunction:
		endLine := op.Line
		if op.Action != domain.ActionReplaceLine && op.EndLine != 0 {
			endLine = op.EndLine
		}
		if endLine < op.Line || !idx.ValidLine(endLine) {
			return nil, fmt.Errorf("%s lines %d-%d of %d: %w", op.Action, op.Line, endLine, idx.LineCount(), domain.ErrLineOutOfRange)
		}
		if op.NewCode == nil {
			return nil, fmt.Errorf("%s at line %d: %w", op.Action, op.Line, domain.ErrMissingNewCode)
		}
		if err := checkOldCode(idx, op, endLine); err != nil {
			return nil, err
		}
		start, _, _ := idx.LineSpan(op.Line)
		_, end, _ := idx.LineSpan(endLine)
		return &TextPatch{Start: start, End: end, Replacement: *op.NewCode + idx.LineEnding(endLine)}, nil

	case domain.ActionInsertBefore:
		if op.NewCode == nil {
			return nil, fmt.Errorf("%s at line %d: %w", op.Action, op.Line, domain.ErrMissingNewCode)
		}
		start, _, _ := idx.LineSpan(op.Line)
		return &TextPatch{Start: start, End: start, Replacement: *op.NewCode + newlineFor(idx, op.Line)}, nil

	case domain.ActionInsertAfter:
		if op.NewCode == nil {
			return nil, fmt.Errorf("%s at line %d: %w", op.Action, op.Line, domain.ErrMissingNewCode)
		}
		_, end, _ := idx.LineSpan(op.Line)
		if idx.LineEnding(op.Line) == "" {
			// last line without a terminator
			return &TextPatch{Start: end, End: end, Replacement: newlineFor(idx, op.Line) + *op.NewCode}, nil
		}
		return &TextPatch{Start: end, End: end, Replacement: *op.NewCode + idx.LineEnding(op.Line)}, nil
	}

	return nil, fmt.Errorf("%q: %w", op.Action, domain.ErrUnsupportedAction)
}

// checkOldCode verifies that the lines op targets still hold OldCode.
// An empty OldCode skips the check.
func checkOldCode(idx *source.Index, op domain.FixOperation, endLine int) error {
	if op.OldCode == "" {
		return nil
	}
	start, _, _ := idx.LineSpan(op.Line)
	_, end, _ := idx.LineSpan(endLine)
	current := idx.Slice(start, end-len(idx.LineEnding(endLine)))
	if current != op.OldCode {
		return fmt.Errorf("line %d no longer matches %q: %w", op.Line, op.OldCode, domain.ErrStaleOperation)
	}
	return nil
}

// newlineFor returns the line terminator used around line, defaulting to "\n"
func newlineFor(idx *source.Index, line int) string {
	if eol := idx.LineEnding(line); eol != "" {
		return eol
	}
	if line > 1 {
		if eol := idx.LineEnding(line - 1); eol != "" {
			return eol
		}
	}
	return "\n"
}
