// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ModelExt is the file extension of loadable model files.
const ModelExt = ".gguf"

// ScanDir returns the names of the *.gguf files in dir, sorted.
// A missing directory yields an empty list, not an error.
func ScanDir(dir string) ([]string, error) {
	base, err := ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read models dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsModelFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// IsModelFile reports whether name looks like a loadable model file.
func IsModelFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ModelExt)
}

// ResolvePath joins the models directory and a model name into a file path.
func ResolvePath(dir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("model name is empty")
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	base, err := ExpandHome(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, name), nil
}

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// MergeNames returns configured followed by the discovered names it does not
// already contain. Order within each list is kept.
func MergeNames(configured, discovered []string) []string {
	seen := make(map[string]bool, len(configured)+len(discovered))
	out := make([]string, 0, len(configured)+len(discovered))
	for _, list := range [][]string{configured, discovered} {
		for _, n := range list {
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
