// Package executor runs policy-approved shell commands.
//
// Execution is a full shell escape hatch on purpose: the command string
// is handed to `sh -c` verbatim, and the safety property of the system
// rests entirely on the policy check that precedes it, not on any
// sandboxing here.
package executor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"syscall"
	"time"

	"llmgate/internal/domain"
)

// Shell executes commands through the system shell. It is stateless and
// safe for concurrent use.
type Shell struct {
	logger *slog.Logger
}

func NewShell(logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{logger: logger}
}

// Execute runs command under `sh -c`, blocking until it terminates.
// No timeout is applied here; that is a documented limitation of the
// contract. Cancelling ctx kills the spawned process group, so
// backgrounded or piped children die with the shell instead of holding
// the output pipes open.
//
// A command that runs and exits nonzero is NOT an error: the exit code
// and stderr are surfaced as data in the ExecutionResult. An error is
// returned only when the shell could not be spawned (domain.SpawnError)
// or the context was cancelled.
func (s *Shell) Execute(ctx context.Context, command string) (domain.ExecutionResult, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)

	// The shell leads its own process group; cancellation signals the
	// whole group, not just sh. WaitDelay bounds the pipe drain in case
	// a grandchild escapes the group.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return domain.ExecutionResult{}, &domain.SpawnError{Command: command, Err: err}
	}

	err := cmd.Wait()

	result := domain.ExecutionResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if ctx.Err() != nil {
			// The process was killed because the request went away.
			return domain.ExecutionResult{}, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			s.logger.Debug("command exited nonzero",
				"command", command,
				"exit", result.ExitCode,
			)
			return result, nil
		}
		return domain.ExecutionResult{}, &domain.SpawnError{Command: command, Err: err}
	}

	return result, nil
}
