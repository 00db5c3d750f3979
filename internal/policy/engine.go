// Package policy decides whether a requested shell command or file path
// is permitted under the configured security level.
//
// Two deliberate properties of the original contract are preserved and
// must not be "fixed" here:
//
//   - Command checks classify only the first whitespace-delimited token.
//     Compound constructs (pipes, ';', backticks) are never inspected,
//     so "ls; rm -rf /" passes the medium check.
//   - Path checks are a raw string-prefix match, not canonicalized:
//     "/home/user2" is allowed when "/home/user" is an allowed prefix.
package policy

import (
	"fmt"
	"log/slog"
	"strings"

	"llmgate/internal/config"
	"llmgate/internal/domain"
)

// mediumDenied is the fixed blocklist applied at medium security. Any
// base command not named here is implicitly permitted.
var mediumDenied = map[string]bool{
	"rm":    true,
	"rmdir": true,
	"mv":    true,
	"dd":    true,
	"mkfs":  true,
	">":     true,
	"sudo":  true,
	"su":    true,
}

// highAllowed is the fixed allowlist applied at high security.
var highAllowed = map[string]bool{
	"ls": true, "dir": true, "pwd": true, "echo": true,
	"cat": true, "head": true, "tail": true, "grep": true,
	"find": true, "wc": true, "date": true, "ps": true, "df": true,
}

// Engine evaluates commands and paths against the process-wide security
// level. All fields are read-only after construction, so concurrent
// checks need no locking.
type Engine struct {
	level        domain.SecurityLevel
	allowedPaths []string
	logger       *slog.Logger
}

func NewEngine(cfg config.SecurityConfig, logger *slog.Logger) (*Engine, error) {
	level, err := domain.ParseSecurityLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	paths := make([]string, len(cfg.AllowedPaths))
	copy(paths, cfg.AllowedPaths)
	return &Engine{
		level:        level,
		allowedPaths: paths,
		logger:       logger,
	}, nil
}

// Level returns the configured security level.
func (e *Engine) Level() domain.SecurityLevel { return e.level }

// CheckCommand decides whether a command string may be executed.
// It never returns an error: an unparseable (empty) command is simply
// not allowed under medium and high security.
func (e *Engine) CheckCommand(command string) domain.Decision {
	if e.level == domain.SecurityLow {
		return domain.Allow()
	}

	fields := strings.Fields(command)
	if len(fields) == 0 {
		return domain.Deny("empty command")
	}
	base := fields[0]

	switch e.level {
	case domain.SecurityMedium:
		if mediumDenied[base] {
			e.logger.Warn("command blocked",
				"level", e.level,
				"base", base,
				"command", command,
			)
			return domain.Deny(fmt.Sprintf("command %q is blocked at medium security", base))
		}
		return domain.Allow()
	default: // high
		if highAllowed[base] {
			return domain.Allow()
		}
		e.logger.Warn("command blocked",
			"level", e.level,
			"base", base,
			"command", command,
		)
		return domain.Deny(fmt.Sprintf("command %q is not in the high-security allowlist", base))
	}
}

// CheckPath decides whether a file path may be read or written. The
// match is a plain string prefix against the configured allowed paths.
func (e *Engine) CheckPath(path string) domain.Decision {
	if e.level == domain.SecurityLow {
		return domain.Allow()
	}

	for _, prefix := range e.allowedPaths {
		if strings.HasPrefix(path, prefix) {
			return domain.Allow()
		}
	}
	e.logger.Warn("path blocked", "level", e.level, "path", path)
	return domain.Deny(fmt.Sprintf("path %q is outside the allowed paths", path))
}
