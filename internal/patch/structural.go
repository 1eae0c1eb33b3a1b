package patch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ludo-technologies/jsfix/domain"
)

// BarrelFile is the file name create-barrel writes when MoveTo is empty
const BarrelFile = "index.ts"

// Structural computes the files a split-file, move-file or create-barrel
// operation writes, keyed by path. originText is the current content of
// op.File. Every path must resolve inside the origin's directory.
func Structural(op domain.FixOperation, originText string) (map[string]string, error) {
	dir := filepath.Dir(op.File)
	files := make(map[string]string)

	switch op.Action {
	case domain.ActionSplitFile:
		if len(op.NewFiles) == 0 {
			return nil, fmt.Errorf("split-file %s without new files: %w", op.File, domain.ErrMissingNewCode)
		}
		var stub strings.Builder
		for _, name := range sortedKeys(op.NewFiles) {
			target, err := resolveInside(dir, name)
			if err != nil {
				return nil, err
			}
			files[target] = op.NewFiles[name]
			stub.WriteString(reexport(dir, target))
		}
		files[op.File] = stub.String()

	case domain.ActionMoveFile:
		if op.MoveTo == "" {
			return nil, fmt.Errorf("move-file %s without a destination: %w", op.File, domain.ErrMissingNewCode)
		}
		target, err := resolveInside(dir, op.MoveTo)
		if err != nil {
			return nil, err
		}
		if target == filepath.Clean(op.File) {
			return nil, fmt.Errorf("move-file %s onto itself: %w", op.File, domain.ErrUnsupportedAction)
		}
		content := originText
		if op.NewCode != nil {
			content = *op.NewCode
		}
		files[target] = content
		files[op.File] = reexport(dir, target)

	case domain.ActionCreateBarrel:
		if len(op.NewFiles) == 0 {
			return nil, fmt.Errorf("create-barrel %s without modules: %w", op.File, domain.ErrMissingNewCode)
		}
		barrel := filepath.Join(dir, BarrelFile)
		if op.MoveTo != "" {
			var err error
			if barrel, err = resolveInside(dir, op.MoveTo); err != nil {
				return nil, err
			}
		}
		barrelDir := filepath.Dir(barrel)
		var index strings.Builder
		for _, name := range sortedKeys(op.NewFiles) {
			module, err := resolveInside(dir, name)
			if err != nil {
				return nil, err
			}
			if content := op.NewFiles[name]; content != "" {
				files[module] = content
			}
			index.WriteString(reexport(barrelDir, module))
		}
		files[barrel] = index.String()

	default:
		return nil, fmt.Errorf("%q is not a structural action: %w", op.Action, domain.ErrUnsupportedAction)
	}

	return files, nil
}

// resolveInside joins name onto dir and rejects results outside dir
func resolveInside(dir, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", fmt.Errorf("%q: %w", name, domain.ErrPathEscapesRoot)
	}
	target := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", name, domain.ErrPathEscapesRoot)
	}
	return target, nil
}

// reexport renders an export-all statement for target relative to dir
func reexport(dir, target string) string {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		rel = target
	}
	spec := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
	if !strings.HasPrefix(spec, ".") {
		spec = "./" + spec
	}
	return fmt.Sprintf("export * from '%s';\n", spec)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
