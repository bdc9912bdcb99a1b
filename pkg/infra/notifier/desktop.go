package notifier

import (
	"context"
	"os/exec"
	"strconv"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// Command runs an external program
type Command func(ctx context.Context, name string, args ...string) error

func execCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return goerr.Wrap(err, "command failed",
			goerr.V("name", name),
			goerr.V("output", string(out)),
		)
	}
	return nil
}

// Desktop shows messages through notify-send
type Desktop struct {
	bin     string
	timeout time.Duration
	run     Command
}

// DesktopOption is a functional option for Desktop
type DesktopOption func(*Desktop)

// WithDisplayTimeout sets how long the popup stays visible
func WithDisplayTimeout(d time.Duration) DesktopOption {
	return func(n *Desktop) {
		n.timeout = d
	}
}

// WithCommand replaces process execution, mainly for tests
func WithCommand(c Command) DesktopOption {
	return func(n *Desktop) {
		n.run = c
	}
}

// NewDesktop creates a notify-send backed notifier
func NewDesktop(bin string, opts ...DesktopOption) *Desktop {
	if bin == "" {
		bin = "notify-send"
	}
	n := &Desktop{
		bin:     bin,
		timeout: 10 * time.Second,
		run:     execCommand,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Desktop) Send(ctx context.Context, msg *model.Message) {
	args := []string{
		"-u", string(msg.Urgency),
		"-t", strconv.FormatInt(n.timeout.Milliseconds(), 10),
		msg.Title,
		msg.Body,
	}
	if err := n.run(ctx, n.bin, args...); err != nil {
		ctxlog.From(ctx).Warn("Failed to show desktop notification", "error", err, "title", msg.Title)
	}
}
