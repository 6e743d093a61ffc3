// Package profile links Discord users to their game accounts.
package profile

import (
	"context"
	"errors"
	"fmt"

	"lonely/internal/commands"
	"lonely/internal/storage"
	"lonely/pkg/cmd"
)

// Profiles is the part of storage.ProfileStore the command needs.
type Profiles interface {
	LinkSteam(ctx context.Context, discordID, steamID string) (bool, error)
	Get(ctx context.Context, discordID string) (storage.Profile, error)
}

type SteamIDCommand struct {
	Profiles Profiles
}

func (c *SteamIDCommand) Name() string        { return "steamid" }
func (c *SteamIDCommand) Description() string { return "Link your current Discord ID to your Steam ID" }

func (c *SteamIDCommand) Help() cmd.Help {
	return cmd.Help{
		Category:    "dota",
		Information: "Stores or updates your steam ID. Send the command without an ID to see the one you linked.",
		Usage:       "[Steam32 ID]",
		Example:     "123456789",
	}
}

func (c *SteamIDCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := commands.FromInvocation(inv)
	if err != nil {
		return err
	}

	if len(inv.Args) == 0 {
		p, err := c.Profiles.Get(ctx, mc.AuthorID)
		if errors.Is(err, storage.ErrNotFound) {
			return mc.Reply(fmt.Sprintf("%s You have not linked a Steam ID yet. Use `%s%s [Steam32 ID]`", mc.Mention(), mc.Prefix, c.Name()))
		}
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		return mc.Reply(fmt.Sprintf("%s Your Steam ID is **%s**", mc.Mention(), p.SteamID))
	}

	steamID := inv.Args[0]
	created, err := c.Profiles.LinkSteam(ctx, mc.AuthorID, steamID)
	if errors.Is(err, storage.ErrInvalidInput) {
		return mc.Reply(fmt.Sprintf("%s **%s** is not a valid Steam32 ID", mc.Mention(), steamID))
	}
	if err != nil {
		return fmt.Errorf("link steam id: %w", err)
	}
	if created {
		return mc.Reply(fmt.Sprintf("%s Added Steam ID to be **%s**", mc.Mention(), steamID))
	}
	return mc.Reply(fmt.Sprintf("%s Successfully updated Steam ID to be **%s**", mc.Mention(), steamID))
}
