package mediator

import (
	"fmt"
	"path/filepath"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

// shape is a command-specific enrichment strategy. classify picks one
// from the first token of the command; enrich builds the response body
// for a command that produced stdout.
type shape interface {
	enrich(command, stdout string) *Response
}

func (m *Mediator) classify(command string) shape {
	toks := tokens(command)
	if len(toks) == 0 {
		return genericShape{}
	}
	switch filepath.Base(toks[0]) {
	case "ls", "dir":
		return listShape{m: m}
	case "cat", "head", "tail":
		return fileViewShape{}
	case "find":
		return findShape{}
	default:
		return genericShape{}
	}
}

// tokens splits a command line with shell quoting rules, falling back
// to whitespace splitting when the line is not well-formed shell (an
// unclosed quote must not make enrichment fail).
func tokens(command string) []string {
	toks, err := shellwords.Parse(command)
	if err != nil || len(toks) == 0 {
		return strings.Fields(command)
	}
	return toks
}

// pathLike reports whether a token names a filesystem location
// explicitly rather than relying on the working directory.
func pathLike(tok string) bool {
	return strings.HasPrefix(tok, "/") ||
		strings.HasPrefix(tok, "./") ||
		strings.HasPrefix(tok, "../")
}

const currentDirLabel = "Current directory"

// listShape handles directory listings. Only long-format lines (mode
// column first) are parsed into the file and subdirectory lists; short
// format output carries no mode information and contributes nothing to
// the counts.
type listShape struct {
	m *Mediator
}

func (s listShape) enrich(command, stdout string) *Response {
	target := s.targetDir(command)

	targetPath := ""
	if target == currentDirLabel {
		wd, err := s.m.getwd()
		if err != nil {
			wd = "."
		}
		targetPath = wd
	} else if abs, err := filepath.Abs(target); err == nil {
		targetPath = abs
	} else {
		targetPath = target
	}

	var files, dirs []string
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 9 && (line[0] == 'd' || line[0] == '-') {
			name := strings.Join(fields[8:], " ")
			if line[0] == 'd' {
				dirs = append(dirs, name)
			} else {
				files = append(files, name)
			}
		}
	}

	return &Response{
		Output: stdout,
		Context: map[string]any{
			"command_executed": command,
			"directory_path":   targetPath,
			"file_count":       len(files),
			"directory_count":  len(dirs),
			"is_empty":         len(files) == 0 && len(dirs) == 0,
		},
		StructuredOutput: map[string]any{
			"directory":                        target,
			"files_in_this_directory":          files,
			"subdirectories_in_this_directory": dirs,
		},
		Warning:           directoryScopeWarning,
		SuggestedResponse: listingSummary(target, files, dirs),
	}
}

// targetDir resolves which directory the listing describes: the first
// explicit path token anywhere in the command, else the first argument
// when it is not a flag, else the working directory.
func (s listShape) targetDir(command string) string {
	toks := tokens(command)
	for _, tok := range toks {
		if pathLike(tok) {
			return tok
		}
	}
	if len(toks) > 1 && !strings.HasPrefix(toks[1], "-") {
		return toks[1]
	}
	return currentDirLabel
}

func listingSummary(target string, files, dirs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Directory listing for: %s\n\n", target)
	fmt.Fprintf(&b, "Files found directly in this directory (%d):\n%s\n\n", len(files), bulleted(files))
	fmt.Fprintf(&b, "Subdirectories found directly in this directory (%d):\n%s\n\n", len(dirs), bulleted(dirs))
	b.WriteString("Note: These files and directories exist ONLY in the specific path shown above, not in parent directories.")
	return b.String()
}

func bulleted(names []string) string {
	if len(names) == 0 {
		return "None"
	}
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(name)
	}
	return b.String()
}

// fileViewShape handles cat/head/tail: identify which file the output
// came from and restate it so the consumer cannot attribute the content
// to a different file.
type fileViewShape struct{}

func (fileViewShape) enrich(command, stdout string) *Response {
	filename := viewedFile(command)

	return &Response{
		Output: stdout,
		Context: map[string]any{
			"command_executed": command,
			"file_read":        filename,
			"content_length":   len(stdout),
			"note":             fmt.Sprintf("This output shows the content of the file %s.", filename),
		},
	}
}

// viewedFile picks the file argument out of a cat/head/tail command:
// the first token that is an explicit path or contains a dot, else the
// last token.
func viewedFile(command string) string {
	toks := tokens(command)
	for _, tok := range toks {
		if pathLike(tok) || strings.Contains(tok, ".") {
			return tok
		}
	}
	if len(toks) > 1 {
		return toks[len(toks)-1]
	}
	return ""
}

// findShape handles find: report where the search ran, what pattern it
// used, and how many items matched.
type findShape struct{}

func (findShape) enrich(command, stdout string) *Response {
	toks := tokens(command)

	searchPath := currentDirLabel
	searchPattern := ""
	for i := 1; i < len(toks); i++ {
		switch {
		case pathLike(toks[i]):
			searchPath = toks[i]
		case toks[i] == "-name" && i+1 < len(toks):
			searchPattern = toks[i+1]
		}
	}

	found := 0
	for _, line := range strings.Split(stdout, "\n") {
		if strings.TrimSpace(line) != "" {
			found++
		}
	}

	return &Response{
		Output: stdout,
		Context: map[string]any{
			"command_executed": command,
			"search_path":      searchPath,
			"search_pattern":   searchPattern,
			"items_found":      found,
			"note":             fmt.Sprintf("This output shows files/directories found in %s matching the specified criteria.", searchPath),
		},
	}
}

// genericShape is the fallback: pass the output through with minimal
// context and no shape-specific enrichment.
type genericShape struct{}

func (genericShape) enrich(command, stdout string) *Response {
	commandType := ""
	if toks := tokens(command); len(toks) > 0 {
		commandType = toks[0]
	}
	return &Response{
		Output: stdout,
		Context: map[string]any{
			"command_executed": command,
			"command_type":     commandType,
			"note":             "This is the raw output of the command. Interpret with care.",
		},
	}
}
