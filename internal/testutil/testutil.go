// Package testutil provides helper functions for testing jsfix components
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/jsfix/internal/parser"
)

// CreateTestTree parses source as filename and fails the test on a syntax error
func CreateTestTree(t *testing.T, filename, source string) *parser.Node {
	t.Helper()
	tree := parser.ParseForLanguage(context.Background(), filename, []byte(source), false)
	if tree.Empty() {
		t.Fatalf("Failed to parse test code: %v", tree.Err)
	}
	return tree.Root
}

// WriteProject creates files under a fresh temporary directory and returns it.
// Keys are slash separated paths relative to the directory.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

// ReadFile returns the content of path, failing the test on error
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

// FindFunction finds a function-like node by name
func FindFunction(root *parser.Node, name string) *parser.Node {
	var found *parser.Node
	root.Walk(func(n *parser.Node) bool {
		if n.IsFunction() && n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// CountNodesOfKind counts nodes of a specific kind in a tree
func CountNodesOfKind(root *parser.Node, kind parser.NodeKind) int {
	count := 0
	root.Walk(func(n *parser.Node) bool {
		if n.Kind == kind {
			count++
		}
		return true
	})
	return count
}
