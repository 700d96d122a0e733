// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package msgcheck

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// CollectSources lists the files directly inside each of dirs whose
// extension is one of exts. Subdirectories are not entered. Paths are
// returned directory by directory, sorted by name within each.
func CollectSources(dirs, exts []string) ([]string, error) {
	var paths []string

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read source directory: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !slices.Contains(exts, filepath.Ext(entry.Name())) {
				continue
			}

			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	return paths, nil
}

// rootMarkers identify a project root when git is unavailable.
var rootMarkers = []string{"package.json", "go.mod"}

// FindProjectRoot returns a stable root directory for source references.
// Preference order:
//  1. git toplevel directory
//  2. nearest parent directory that contains package.json or go.mod
//  3. the provided working directory
func FindProjectRoot(wd string) string {
	if root := gitTopLevel(wd); root != "" {
		return root
	}

	if root := nearestMarkerDir(wd); root != "" {
		return root
	}

	return wd
}

func gitTopLevel(wd string) string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")

	cmd.Dir = wd

	out, err := cmd.Output()
	if err != nil {
		return ""
	}

	root := strings.TrimSpace(string(out))
	if root == "" {
		return ""
	}

	return filepath.Clean(root)
}

func nearestMarkerDir(start string) string {
	dir := filepath.Clean(start)

	for {
		for _, marker := range rootMarkers {
			if fileExists(filepath.Join(dir, marker)) {
				return dir
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}

		dir = parent
	}
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)

	return err == nil && !fi.IsDir()
}

// relPath makes file relative to root, with forward slashes.
func relPath(root, file string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, file); err == nil {
			file = rel
		}
	}

	return filepath.ToSlash(file)
}
