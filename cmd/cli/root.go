package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lonely/internal/config"
	"lonely/internal/logging"
)

var (
	okColor    = color.New(color.FgHiGreen)
	keyColor   = color.New(color.FgHiCyan)
	mutedColor = color.New(color.FgHiBlack)
)

type rootOptions struct {
	driver   string
	path     string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	defaults, err := config.LoadStorage()
	if err != nil {
		defaults = config.Storage{StorageDriver: config.StorageDatastore, StoragePath: "datastore.json"}
	}

	root := &cobra.Command{
		Use:           "lonely-cli",
		Short:         "Admin tool for the lonely bot: profiles and source resolution.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := logging.Init(logging.Config{Level: opts.logLevel})
			return err
		},
	}
	root.PersistentFlags().StringVar(&opts.driver, "driver", defaults.StorageDriver, "profile store backend (datastore or sqlite)")
	root.PersistentFlags().StringVar(&opts.path, "path", defaults.StoragePath, "profile store file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(newProfileCmd(opts), newResolveCmd())
	return root
}
