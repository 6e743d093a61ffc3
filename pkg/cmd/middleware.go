package cmd

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// Middleware wraps a command (e.g. logging, recovery).
type Middleware func(Command) Command

// Apply applies middlewares in order; the first in the list is the outermost.
func Apply(c Command, mws ...Middleware) Command {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}

// Recover turns a panic inside a command into an error.
func Recover(log *zap.SugaredLogger) Middleware {
	return func(c Command) Command {
		return Wrap(c, func(ctx context.Context, inv *Invocation) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Errorw("command panicked", "command", c.Name(), "panic", r, "stack", string(debug.Stack()))
					err = fmt.Errorf("command %s panicked: %v", c.Name(), r)
				}
			}()
			return c.Run(ctx, inv)
		})
	}
}

// Logging logs every invocation with its duration and outcome.
func Logging(log *zap.SugaredLogger) Middleware {
	return func(c Command) Command {
		return Wrap(c, func(ctx context.Context, inv *Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)
			fields := []any{"command", c.Name(), "args", inv.Args, "took", time.Since(start)}
			if err != nil {
				log.Warnw("command failed", append(fields, "error", err)...)
			} else {
				log.Debugw("command done", fields...)
			}
			return err
		})
	}
}
