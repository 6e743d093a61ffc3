package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lonely/internal/storage"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and edit linked Steam IDs",
	}

	withStore := func(run func(cmd *cobra.Command, s storage.ProfileStore, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			s, err := storage.Open(cmd.Context(), opts.driver, opts.path)
			if err != nil {
				return err
			}
			defer s.Close()
			return run(cmd, s, args)
		}
	}

	profile.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all profiles",
			Args:  cobra.NoArgs,
			RunE: withStore(func(cmd *cobra.Command, s storage.ProfileStore, _ []string) error {
				list, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, p := range list {
					keyColor.Fprintf(out, "%s", p.DiscordID)
					fmt.Fprintf(out, "\t%s\t", p.SteamID)
					mutedColor.Fprintln(out, p.UpdatedAt.Format(time.RFC3339))
				}
				mutedColor.Fprintf(out, "%d profile(s)\n", len(list))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "get <discord-id>",
			Short: "Show one profile",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, s storage.ProfileStore, args []string) error {
				p, err := s.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				keyColor.Fprintf(cmd.OutOrStdout(), "%s", p.DiscordID)
				fmt.Fprintf(cmd.OutOrStdout(), "\t%s\n", p.SteamID)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "link <discord-id> <steam32-id>",
			Short: "Create or update a profile",
			Args:  cobra.ExactArgs(2),
			RunE: withStore(func(cmd *cobra.Command, s storage.ProfileStore, args []string) error {
				created, err := s.LinkSteam(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				verb := "updated"
				if created {
					verb = "added"
				}
				okColor.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", verb, args[0], args[1])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete <discord-id>",
			Short: "Remove a profile",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, s storage.ProfileStore, args []string) error {
				if err := s.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				okColor.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			}),
		},
	)
	return profile
}
