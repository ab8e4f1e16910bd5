package cmd

import (
	"github.com/spf13/cobra"

	"github.com/avstrong/staybook/internal/app"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the booking HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadDeps(cmd)
			if err != nil {
				return err
			}

			return app.Run(rt.conf, rt.l)
		},
	}
}
