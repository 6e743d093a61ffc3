package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lonely/internal/music/source_resolver"
)

func newResolveCmd() *cobra.Command {
	var (
		rate    float64
		timeout time.Duration
		stream  bool
	)
	c := &cobra.Command{
		Use:   "resolve <url or search query>",
		Short: "Resolve a play request the way the bot does",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			r := source_resolver.New(rate)
			song, err := r.Resolve(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			okColor.Fprintln(out, song.Title)
			fmt.Fprintf(out, "url:      %s\nsource:   %s\nduration: %s\n", song.URL, song.Source, song.FormattedDuration())
			if stream {
				link, err := r.StreamURL(ctx, song)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "stream:   %s\n", link)
			}
			return nil
		},
	}
	c.Flags().Float64Var(&rate, "rate", 2, "search requests per second")
	c.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "resolution timeout")
	c.Flags().BoolVar(&stream, "stream", false, "also print the media URL")
	return c
}
