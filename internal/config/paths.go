package config

import (
	"os"
	"path/filepath"
	"strings"
)

// MediaDir is the local upload root. Relative paths hang off the directory
// of the running binary so the server behaves the same from any cwd.
func (s StorageConfig) MediaDir() string {
	return resolveRuntimePath(s.Local.Dir, defaultMediaDir)
}

func executableDir() string {
	exe, err := os.Executable()
	if err == nil && strings.TrimSpace(exe) != "" {
		if resolved, resolveErr := filepath.EvalSymlinks(exe); resolveErr == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, wdErr := os.Getwd(); wdErr == nil {
		return wd
	}
	return "."
}

func resolveRuntimePath(raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = fallback
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(executableDir(), target))
}
