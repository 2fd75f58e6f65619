// Package cmd wires the command line: serving the site, running migrations
// and small admin utilities.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ministry-site/internal/config"
	"ministry-site/internal/logger"
)

// app carries state shared by the subcommands.
type app struct {
	configFile string
	logLevel   string

	v   *viper.Viper
	cfg config.Config
	log *slog.Logger
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "[ERROR]", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ministry-site",
		Short:         "Ministry website, admin panel and floating audio player",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (default ./config.yml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		a.serveCmd(),
		a.migrateCmd(),
		a.tokenCmd(),
		a.probeCmd(),
	)
	return root
}

// load reads the configuration. flags maps config keys to flag names of cmd
// that override them.
func (a *app) load(cmd *cobra.Command, flags map[string]string) error {
	a.v = config.New(a.configFile)
	for key, name := range flags {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	if a.logLevel != "" {
		a.v.Set("log.level", a.logLevel)
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}
