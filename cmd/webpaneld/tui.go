package main

import (
	"github.com/spf13/cobra"

	"webpanel/internal/client"
	"webpanel/internal/tui"
)

func newTUICmd(opts *options) *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal view of a running webpaneld",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("server") {
				cfg, err := loadConfig(opts)
				if err != nil {
					return err
				}
				server = serverURL(cfg.Addr)
			}
			return tui.Run(client.New(server))
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "Daemon base URL (defaults to the configured addr)")
	return cmd
}
