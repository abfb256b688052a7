package launch

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"
)

// Starter starts one external process. Implementations must not block on
// the process after it has started.
type Starter interface {
	Start(ctx context.Context, name string, args []string) (Handle, error)
}

// Handle refers to a started process. Exactly one of Wait or Release should
// be called.
type Handle interface {
	PID() int
	Wait() Result
	Release() error
}

// Result holds everything known about one launch.
type Result struct {
	Path     string        // Entry path passed as the argument.
	PID      int           // Zero when the process never started.
	Started  bool
	Err      error         // Start error, or a wait error other than a non-zero exit.
	ExitCode int           // -1 unless Waited.
	Duration time.Duration // Start to exit; zero unless Waited.
	Waited   bool
}

// Failed reports whether the launch failed to start or, once waited, exited
// non-zero.
func (r Result) Failed() bool {
	return r.Err != nil || (r.Waited && r.ExitCode != 0)
}

// ExecStarter starts processes with os/exec. Nil writers send the child's
// output to the null device.
type ExecStarter struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecStarter returns a starter whose children share this process's
// stdout and stderr, or write to the null device when discardOutput is set.
func NewExecStarter(discardOutput bool) *ExecStarter {
	if discardOutput {
		return &ExecStarter{}
	}
	return &ExecStarter{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Start launches name with args. ctx only gates the start; a process that
// has started is never signalled when ctx is cancelled later.
func (s *ExecStarter) Start(ctx context.Context, name string, args []string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmd := exec.Command(name, args...)
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execHandle{cmd: cmd, start: start}, nil
}

type execHandle struct {
	cmd   *exec.Cmd
	start time.Time
}

func (h *execHandle) PID() int { return h.cmd.Process.Pid }

func (h *execHandle) Wait() Result {
	err := h.cmd.Wait()
	res := Result{
		PID:      h.cmd.Process.Pid,
		Started:  true,
		Waited:   true,
		ExitCode: -1,
		Duration: time.Since(h.start),
	}
	if h.cmd.ProcessState != nil {
		res.ExitCode = h.cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		res.Err = err
	}
	return res
}

func (h *execHandle) Release() error {
	return h.cmd.Process.Release()
}
