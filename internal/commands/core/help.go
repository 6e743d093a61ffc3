// Package core holds the bot's general commands.
package core

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"lonely/internal/commands"
	"lonely/internal/config"
	"lonely/pkg/cmd"
)

const Category = "general"

// Lookup is the part of cmd.Registry help reads.
type Lookup interface {
	Get(name string) cmd.Command
	GetAll() []cmd.Command
}

type HelpCommand struct {
	Commands Lookup
}

func (c *HelpCommand) Name() string { return "help" }
func (c *HelpCommand) Description() string {
	return "List all of my commands or info about a specific command."
}
func (c *HelpCommand) Aliases() []string { return []string{"commands"} }

func (c *HelpCommand) Help() cmd.Help {
	return cmd.Help{Category: Category, Usage: "[command name]", Example: "play"}
}

func (c *HelpCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := commands.FromInvocation(inv)
	if err != nil {
		return err
	}
	if len(inv.Args) == 0 {
		return mc.Reply(c.overview(mc.Prefix))
	}
	found := c.Commands.Get(inv.Args[0])
	if found == nil {
		return mc.Reply("Command given was not valid!")
	}
	return mc.Reply(Details(mc.Prefix, found))
}

func (c *HelpCommand) overview(prefix string) string {
	byCategory := map[string][]cmd.Command{}
	for _, command := range c.Commands.GetAll() {
		cat := helpOf(command).Category
		byCategory[cat] = append(byCategory[cat], command)
	}

	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	slices.SortFunc(cats, compareCategories)

	var b strings.Builder
	b.WriteString("**Available commands**\n")
	for _, cat := range cats {
		list := byCategory[cat]
		fmt.Fprintf(&b, "\n**%s**\n", strings.ToUpper(cat[:1])+cat[1:])
		for _, command := range list {
			fmt.Fprintf(&b, "**%s**: %s\n", command.Name(), command.Description())
		}
	}
	fmt.Fprintf(&b, "\nYou can send \"%shelp [command name]\" to get info on a specific command!", prefix)
	return b.String()
}

// Details renders the help page of one command.
func Details(prefix string, c cmd.Command) string {
	h := helpOf(c)
	lines := []string{"**Help for: " + c.Name() + "**"}

	if a, ok := cmd.Root(c).(cmd.Aliased); ok && len(a.Aliases()) > 0 {
		lines = append(lines, "**Aliases:** "+strings.Join(a.Aliases(), ", "))
	}
	info := h.Information
	if info == "" {
		info = c.Description()
	}
	if info != "" {
		lines = append(lines, "**Information:** "+info)
	}
	if h.Usage != "" {
		lines = append(lines, fmt.Sprintf("**Usage:** `%s%s %s`", prefix, c.Name(), h.Usage))
	}
	if h.Example != "" {
		lines = append(lines, fmt.Sprintf("**Example:** `%s%s %s`", prefix, c.Name(), h.Example))
	}
	return strings.Join(lines, "\n")
}

func compareCategories(a, b string) int {
	wa, oka := config.CategoryWeights[a]
	wb, okb := config.CategoryWeights[b]
	switch {
	case oka && okb:
		return cmp.Compare(wa, wb)
	case oka:
		return -1
	case okb:
		return 1
	}
	return strings.Compare(a, b)
}

func helpOf(c cmd.Command) cmd.Help {
	var h cmd.Help
	if d, ok := cmd.Root(c).(cmd.Documented); ok {
		h = d.Help()
	}
	if h.Category == "" {
		h.Category = Category
	}
	return h
}
