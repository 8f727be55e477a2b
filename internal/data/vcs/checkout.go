// Package vcs opens files for edit in source control before they are
// rewritten.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	apperrors "topicsdk/internal/core/errors"
	"topicsdk/internal/shared/observability"
	"topicsdk/internal/shared/util"
)

const PathPlaceholder = "{path}"

// CommandCheckout runs a configured command such as "sd edit {path}" for
// each file, throttled by a shared limiter.
type CommandCheckout struct {
	args    []string
	limiter *util.Limiter
	run     func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewCommandCheckout splits command on whitespace. It must name a program
// and contain the {path} placeholder.
func NewCommandCheckout(command string, rate float64, burst int) (*CommandCheckout, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, apperrors.New(apperrors.CodeValidationError, "checkout command is empty")
	}
	if !strings.Contains(command, PathPlaceholder) {
		return nil, apperrors.Newf(apperrors.CodeValidationError, "checkout command %q does not contain %s", command, PathPlaceholder)
	}
	return &CommandCheckout{
		args:    args,
		limiter: util.NewLimiter(rate, burst),
		run:     runCommand,
	}, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Checkout opens path for edit. Output of a failed command is included in
// the error.
func (c *CommandCheckout) Checkout(ctx context.Context, path string) error {
	if err := c.limiter.Wait(ctx, 1); err != nil {
		observability.CheckoutsTotal.WithLabelValues("cancelled").Inc()
		return apperrors.Wrap(err, apperrors.CodeIO, "checkout cancelled")
	}

	args := make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = strings.ReplaceAll(a, PathPlaceholder, path)
	}
	slog.Debug("checking out", "command", strings.Join(args, " "))

	out, err := c.run(ctx, args[0], args[1:]...)
	if err != nil {
		observability.CheckoutsTotal.WithLabelValues("error").Inc()
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return apperrors.AddContext(
			apperrors.Wrap(err, apperrors.CodeIO, fmt.Sprintf("checkout failed: %s", msg)),
			apperrors.CtxPath, path)
	}
	observability.CheckoutsTotal.WithLabelValues("ok").Inc()
	return nil
}
