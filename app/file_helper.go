package app

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ludo-technologies/jsfix/internal/constants"
	ignore "github.com/sabhiram/go-gitignore"
)

// FileHelper collects JavaScript/TypeScript files from paths
type FileHelper struct {
	respectGitignore bool
}

// NewFileHelper creates a FileHelper that honours .gitignore files
func NewFileHelper() *FileHelper {
	return &FileHelper{respectGitignore: true}
}

// WithGitignore controls whether .gitignore files are honoured
func (h *FileHelper) WithGitignore(respect bool) *FileHelper {
	h.respectGitignore = respect
	return h
}

// CollectJSFiles collects JavaScript/TypeScript files from paths. Patterns are
// doublestar globs matched against the path relative to the directory being
// walked; a pattern without a slash also matches the base name. The result is
// sorted and free of duplicates.
func (h *FileHelper) CollectJSFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			// explicitly named files skip the include patterns
			if h.isJSFile(path) && !matchAny(path, excludePatterns) {
				add(filepath.Clean(path))
			}
			continue
		}

		gitignore := h.loadGitignore(path)
		err = filepath.WalkDir(path, func(filePath string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if filePath == path {
				return nil
			}
			rel, relErr := filepath.Rel(path, filePath)
			if relErr != nil {
				return relErr
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if !recursive || d.Name() == ".git" {
					return filepath.SkipDir
				}
				if matchAny(rel+"/", excludePatterns) || (gitignore != nil && gitignore.MatchesPath(rel+"/")) {
					return filepath.SkipDir
				}
				return nil
			}

			if !h.isJSFile(filePath) {
				return nil
			}
			if len(includePatterns) > 0 && !matchAny(rel, includePatterns) {
				return nil
			}
			if matchAny(rel, excludePatterns) {
				return nil
			}
			if gitignore != nil && gitignore.MatchesPath(rel) {
				return nil
			}
			add(filePath)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// loadGitignore compiles the .gitignore at the root of dir, if any
func (h *FileHelper) loadGitignore(dir string) *ignore.GitIgnore {
	if !h.respectGitignore {
		return nil
	}
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gitignore, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gitignore
}

// IsValidJSFile checks if a file is a valid JavaScript/TypeScript file
func (h *FileHelper) IsValidJSFile(path string) bool {
	return h.isJSFile(path)
}

// isJSFile checks if a file is JavaScript/TypeScript based on extension
func (h *FileHelper) isJSFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range constants.SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// matchAny reports whether path, or its base name for slash-free patterns,
// matches one of patterns
func matchAny(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(strings.TrimSuffix(slashed, "/"))
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, slashed); err == nil && matched {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if matched, err := doublestar.Match(pattern, base); err == nil && matched {
				return true
			}
		}
	}
	return false
}

// ResolveFilePaths collects the JavaScript/TypeScript files named by paths.
// Explicit files go through the same extension and exclude checks as walked ones.
func ResolveFilePaths(
	fileHelper *FileHelper,
	paths []string,
	recursive bool,
	includePatterns []string,
	excludePatterns []string,
) ([]string, error) {
	return fileHelper.CollectJSFiles(paths, recursive, includePatterns, excludePatterns)
}
