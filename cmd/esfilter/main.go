package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atomic77/esfilter/pkg/logger"
)

type rootOptions struct {
	DbLocation string
	LogLevel   string
}

func (o *rootOptions) logger() (*zap.Logger, error) {
	return logger.New(logger.Config{Level: o.LogLevel})
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "esfilter",
		Short:         "Translate Elasticsearch queries into Typesense searches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.DbLocation, "db", "esfilter.db", "location of the sqlite profile database")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", logger.Info, "log level (debug|info|warning|error)")

	cmd.AddCommand(newTranslateCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newProfileCommand(opts))
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "esfilter:", err)
		os.Exit(1)
	}
}
