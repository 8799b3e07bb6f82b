package main

import (
	"fmt"

	"news_aggregator/internal/config"
	"news_aggregator/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli carries what every subcommand needs once flags are parsed.
type cli struct {
	v   *viper.Viper
	cfg *config.Config
	log logger.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "aggregator",
		Short:         "Scrapes local news sites and summarizes new articles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	root.PersistentFlags().String(config.KeyConfig, config.DefaultConfigPath, "path to the YAML config file")
	root.PersistentFlags().Bool(config.KeyDebug, false, "enable debug logging")

	root.AddCommand(
		newServeCommand(c),
		newSyncCommand(c),
		newSourcesCommand(c),
	)
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := config.BindEnv(c.v); err != nil {
		return err
	}

	cfg, err := config.Load(c.v)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	c.cfg = cfg
	c.log = log
	return nil
}
