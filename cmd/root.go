package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avstrong/staybook/internal/config"
	"github.com/avstrong/staybook/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
)

type deps struct {
	conf *config.Config
	l    *logger.Logger
}

func loadDeps(cmd *cobra.Command) (*deps, error) {
	envFile, _ := cmd.Flags().GetString("env-file")

	conf, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &deps{
		conf: conf,
		l:    logger.New(os.Stderr, conf.LogLevel, conf.LogFormat),
	}, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of staybook",
		Run: func(cmd *cobra.Command, _ []string) {
			out := fmt.Sprintf("staybook %s", version)
			if commit != "none" && commit != "" {
				out += fmt.Sprintf(" (%s)", commit)
			}

			fmt.Fprintln(cmd.OutOrStdout(), out)
		},
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "staybook",
		Short:         "Stay pricing and availability for marketplace listings",
		Long:          `Quote stays, inspect room calendars, record partner inventory and serve the booking API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("env-file", ".env", "path of the .env file to load")
	root.AddCommand(serveCmd(), quoteCmd(), calendarCmd(), inventoryCmd(), versionCmd())

	return root
}

// Execute runs the command line. Interrupts cancel the command's context.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return newRootCmd().ExecuteContext(ctx)
}
