// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is dispatched
// (Discord text messages, CLI) is defined by adapters that wrap this.
package cmd

import (
	"context"
	"strings"
)

// Invocation carries the input any command runner can pass: arguments and an
// opaque payload. Adapters set Data to their own context (e.g. the Discord
// message being handled).
type Invocation struct {
	Name string
	Args []string
	Data any
}

// Command is the universal contract: identity plus execution.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Aliased commands can be invoked by alternative names.
type Aliased interface {
	Aliases() []string
}

// Help carries the detail shown by the help command.
type Help struct {
	Category    string
	Information string
	Usage       string
	Example     string
}

// Documented commands describe their usage beyond the one line description.
type Documented interface {
	Help() Help
}

// Parse splits a prefixed message into a command name and its arguments.
// ok is false when content does not start with prefix or names no command.
func Parse(prefix, content string) (name string, args []string, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(content), prefix)
	if !found || prefix == "" {
		return "", nil, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}
