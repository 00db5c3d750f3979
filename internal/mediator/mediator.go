// Package mediator turns raw executor and file-accessor output into
// structured, provenance-explicit responses for a language-model
// consumer.
//
// The consumer of these responses is prone to conflating similarly
// named files and directories across different parts of a filesystem,
// so every success path redundantly restates the exact absolute
// location and an explicit negative assertion ("not in parent or other
// directories"). That redundancy is the contract, not incidental
// verbosity.
package mediator

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"llmgate/internal/domain"
)

// Status classifies the outcome of a wrapped operation.
type Status string

const (
	StatusSuccess  Status = "SUCCESS"
	StatusNoOutput Status = "SUCCESS_NO_OUTPUT"
	StatusWarning  Status = "WARNING"
)

// Response is the structured result returned for every successful
// operation. It is built fresh per request and never mutated after
// construction.
type Response struct {
	Status            Status         `json:"status"`
	Output            string         `json:"output,omitempty"`
	Content           string         `json:"content,omitempty"`
	Stderr            string         `json:"stderr,omitempty"`
	Context           map[string]any `json:"context,omitempty"`
	StructuredOutput  map[string]any `json:"structured_output,omitempty"`
	Warning           string         `json:"warning,omitempty"`
	SuggestedResponse string         `json:"suggested_response,omitempty"`
	Guidance          string         `json:"guidance,omitempty"`
}

const (
	directoryScopeWarning = "IMPORTANT: The files and directories listed above exist ONLY in the exact directory path specified, not in parent or other directories. Any output suggesting these files exist elsewhere is incorrect."
	fileScopeWarning      = "IMPORTANT: This file exists ONLY at the exact path specified. The content shown is from that specific file. Any output suggesting this content exists in a different file is incorrect."
	noOutputGuidance      = "The command completed without producing any output. This commonly means an empty directory, a file with no content, or a command that prints nothing on success. Do not report results that are not shown here."
)

// Mediator wraps raw results. It is stateless and safe for concurrent
// use; getwd is injected so tests can pin the working directory.
type Mediator struct {
	logger *slog.Logger
	getwd  func() (string, error)
}

type Option func(*Mediator)

// WithGetwd overrides how the current directory is resolved when a
// command names no explicit path.
func WithGetwd(fn func() (string, error)) Option {
	return func(m *Mediator) { m.getwd = fn }
}

func New(logger *slog.Logger, opts ...Option) *Mediator {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Mediator{logger: logger, getwd: defaultGetwd}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WrapCommand classifies a finished command into one of three states
// and enriches the success case per command shape:
//
//	NoOutput:    stdout and stderr both empty
//	WarningOnly: stderr non-empty, stdout empty (still HTTP success)
//	Success:     stdout non-empty
func (m *Mediator) WrapCommand(command string, res domain.ExecutionResult) *Response {
	stdoutEmpty := strings.TrimSpace(res.Stdout) == ""
	stderrEmpty := strings.TrimSpace(res.Stderr) == ""

	switch {
	case stdoutEmpty && stderrEmpty:
		return &Response{
			Status: StatusNoOutput,
			Context: map[string]any{
				"command_executed": command,
				"exit_code":        res.ExitCode,
			},
			Guidance: noOutputGuidance,
		}
	case stdoutEmpty:
		// The command ran and produced only stderr. This is data, not a
		// hard failure; the gateway still reports HTTP success.
		return &Response{
			Status: StatusWarning,
			Stderr: res.Stderr,
			Context: map[string]any{
				"command_executed": command,
				"exit_code":        res.ExitCode,
				"note":             "The command produced no standard output, only the warning text shown in 'stderr'.",
			},
		}
	default:
		resp := m.classify(command).enrich(command, res.Stdout)
		resp.Status = StatusSuccess
		return resp
	}
}

// WrapFileRead builds the structured response for a successfully read
// file: absolute location, counts, type classification, a capped
// preview, and the exact-path warning.
func (m *Mediator) WrapFileRead(path, content string) *Response {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	name := filepath.Base(abs)
	dir := filepath.Dir(abs)

	fileType := classifyFileType(name)
	lineCount := strings.Count(content, "\n") + 1

	return &Response{
		Status:  StatusSuccess,
		Content: content,
		Context: map[string]any{
			"file_path":       abs,
			"file_name":       name,
			"file_size_bytes": len(content),
			"line_count":      lineCount,
			"file_type":       fileType,
		},
		StructuredOutput: map[string]any{
			"file":           name,
			"exact_location": abs,
			"directory":      dir,
			"preview":        preview(content),
		},
		Warning: fileScopeWarning,
		SuggestedResponse: fmt.Sprintf(
			"File: %s\nLocation: %s\nType: %s\nSize: %d bytes\nLines: %d\n\nContent of %s:\n```\n%s\n```",
			name, abs, fileType, len(content), lineCount, name, capContent(content, 1000),
		),
	}
}

// preview returns the first 5 lines of content with an explicit
// truncation marker when more follow.
func preview(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) <= 5 {
		return content
	}
	return strings.Join(lines[:5], "\n") + "\n[...]"
}

// capContent truncates content to max bytes with an explicit marker.
func capContent(content string, max int) string {
	if len(content) <= max {
		return content
	}
	return content[:max] + "..."
}

// classifyFileType maps a filename extension to a coarse content class
// for the response metadata.
func classifyFileType(name string) string {
	if !strings.Contains(name, ".") {
		return "text"
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".js":
		return "json/javascript"
	case ".py":
		return "python"
	case ".go":
		return "go"
	case ".md":
		return "markdown"
	case ".csv", ".tsv":
		return "csv/tabular data"
	case ".html", ".htm":
		return "html"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "text"
	}
}

func defaultGetwd() (string, error) {
	return filepath.Abs(".")
}
