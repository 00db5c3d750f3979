// Package fileio performs the raw file reads and writes behind the
// gateway, after the policy check has approved the path.
package fileio

import (
	"log/slog"
	"os"
	"path/filepath"

	"llmgate/internal/domain"
)

// Accessor reads and writes files. It is stateless and safe for
// concurrent use.
type Accessor struct {
	logger *slog.Logger
}

func NewAccessor(logger *slog.Logger) *Accessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Accessor{logger: logger}
}

// Read returns the content of the regular file at path. A missing
// target, a directory, or a dangling symlink all surface as
// domain.NotFoundError; a file that exists but cannot be read surfaces
// as domain.IOError.
func (a *Accessor) Read(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", &domain.NotFoundError{Path: path}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &domain.IOError{Op: "read", Path: path, Err: err}
	}
	return string(data), nil
}

// Write stores content at path, creating any missing parent directories
// first. Parent creation is unconditional once the path has passed
// policy; intermediate directories are not re-checked.
func (a *Accessor) Write(path, content string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &domain.IOError{Op: "mkdir", Path: dir, Err: err}
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return &domain.IOError{Op: "write", Path: path, Err: err}
	}
	a.logger.Debug("file written", "path", path, "bytes", len(content))
	return nil
}
