package action

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	logx "tickd/pkg/logx"
)

const maxCapturedOutput = 4 << 10

// killWaitDelay bounds how long Run may linger after cancellation when a
// grandchild still holds the stdout/stderr pipe.
const killWaitDelay = 3 * time.Second

// commandAction runs the schedule's payload as a shell command.
// Output is captured (truncated) for the log; a non-zero exit is an error.
type commandAction struct {
	log logx.Logger
}

func (a *commandAction) Name() string { return "command" }

func (a *commandAction) Run(ctx context.Context, req Request) error {
	line := strings.TrimSpace(req.Text)
	if line == "" {
		return errors.New("command action requires a non-empty text")
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", line)
	// Own process group: on timeout the whole group is killed, so children
	// spawned by the shell cannot keep a worker pinned by holding the
	// output pipe open.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	cmd.WaitDelay = killWaitDelay

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	out := buf.String()
	if len(out) > maxCapturedOutput {
		out = out[:maxCapturedOutput] + "... (truncated)"
	}

	if err != nil {
		a.log.Warn("command failed",
			logx.String("schedule", req.ScheduleID),
			logx.Err(err),
			logx.String("output", out),
		)
		return err
	}
	a.log.Debug("command ok",
		logx.String("schedule", req.ScheduleID),
		logx.String("output", out),
	)
	return nil
}
