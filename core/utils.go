package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Getwd returns the project's root directory: the closest parent of the
// current directory that contains a go.mod file. Falls back to the current
// directory when none is found (eg. a deployed binary).
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("core.Getwd: %v", err)
	}
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return wd
		}
		dir = parent
	}
}

// CleanString trims leading and trailing whitespace, optionally lower-casing
// the result.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		s = strings.ToLower(s)
	}
	return s
}
