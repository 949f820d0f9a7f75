// Package command runs one-shot shell commands with a deadline.
package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sys/unix"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultShell   = "/bin/sh"

	timedOutMessage = "Command timed out"
	emptyMessage    = "empty command"
)

// Result is the outcome of one command. ExitCode is -1 when the command
// timed out, was rejected or could not start, and -N when it died from
// signal N.
type Result struct {
	Stdout   string        `json:"stdout" yaml:"stdout"`
	Stderr   string        `json:"stderr" yaml:"stderr"`
	ExitCode int           `json:"returncode" yaml:"returncode"`
	Success  bool          `json:"success" yaml:"success"`
	TimedOut bool          `json:"timed_out" yaml:"timed_out"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

type Runner struct {
	shell  string
	logger *log.Logger
}

func NewRunner(shell string, logger *log.Logger) *Runner {
	if shell == "" {
		shell = DefaultShell
	}
	return &Runner{shell: shell, logger: logger}
}

// Run executes line through the shell and waits for it, at most timeout
// (DefaultTimeout when timeout <= 0). On expiry the command's whole process
// group is killed. Run never returns an error; failures are described by
// the Result.
func (r *Runner) Run(ctx context.Context, line string, timeout time.Duration) Result {
	if strings.TrimSpace(line) == "" {
		return Result{Stderr: emptyMessage, ExitCode: -1}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(execCtx, r.shell, "-c", line)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative pid addresses the group, so background children die too.
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	// Grandchildren may hold the pipes open after the group is killed.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		if r.logger != nil {
			r.logger.Warnf("command timed out after %s: %q", timeout, line)
		}
		return Result{
			Stderr:   timedOutMessage,
			ExitCode: -1,
			TimedOut: true,
			Duration: elapsed,
		}
	}

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			res.Stdout = ""
			res.Stderr = err.Error()
			res.ExitCode = -1
			return res
		}
		res.ExitCode = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			res.ExitCode = -int(ws.Signal())
		}
		return res
	}

	res.Success = true
	return res
}
