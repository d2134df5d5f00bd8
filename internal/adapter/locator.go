// Package adapter connects the evaluation core to the runtime and the filesystem.
package adapter

import (
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	m "arbor.dev/pkg/arbor/internal/model"
)

// RuntimeLocator resolves the file and line where the body's function is declared.
func RuntimeLocator(code m.TestCode) m.SourceLocation {
	if code == nil {
		return m.SourceLocation{}
	}

	fn := runtime.FuncForPC(reflect.ValueOf(code).Pointer())
	if fn == nil {
		return m.SourceLocation{}
	}

	file, line := fn.FileLine(fn.Entry())

	return m.SourceLocation{Path: file, Line: line}
}

// RelativeLocator wraps RuntimeLocator and reports paths relative to root
// when they lie below it.
func RelativeLocator(root string) func(m.TestCode) m.SourceLocation {
	root = filepath.Clean(root)

	return func(code m.TestCode) m.SourceLocation {
		location := RuntimeLocator(code)
		if location.IsEmpty() || root == "" || root == "." {
			return location
		}

		rel, err := filepath.Rel(root, location.Path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return location
		}

		location.Path = filepath.ToSlash(rel)

		return location
	}
}
