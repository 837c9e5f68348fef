package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/iwvelando/rate-impact/internal/config"
	"github.com/iwvelando/rate-impact/internal/presets"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newPresetsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets [region]",
		Short: "Show the regional preset rates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := root.loadConfiguration(cmd)
			if err != nil {
				return err
			}
			logger, err := initializeLogger(conf.Logging, root.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			store, err := presetStore(cmd, logger)
			if err != nil {
				return err
			}

			var doc interface{}
			if len(args) == 1 {
				preset, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				doc = preset
			} else {
				list, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				doc = list
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("failed to encode presets: %w", err)
			}
			return enc.Close()
		},
	}
	cmd.AddCommand(newPresetsSeedCmd(root))
	return cmd
}

func newPresetsSeedCmd(root *rootOptions) *cobra.Command {
	var (
		redisURL  string
		keyPrefix string
		file      string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write preset rates into the Redis preset store",
		Long: `seed writes every preset from the built-in table, or from a YAML preset
file, into Redis so the server picks up refreshed rates without a rebuild.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "main.seedPresets"

			logger, err := initializeLogger(config.LoggingConfig{}, root.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			if redisURL == "" {
				env, err := config.LoadEnvironment(config.DefaultEnvFiles...)
				if err != nil {
					return err
				}
				redisURL = env.PresetsRedisURL
			}
			if redisURL == "" {
				return errors.New("no redis url: set --redis-url or PRESETS_REDIS_URL")
			}

			source := presets.DefaultTable()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open preset file: %w", err)
				}
				defer f.Close()
				if source, err = presets.LoadTable(f); err != nil {
					return err
				}
			}

			store, ok := presets.NewStore(cmd.Context(), redisURL, keyPrefix, logger).(*presets.RedisStore)
			if !ok {
				return errors.New("redis preset store unavailable")
			}

			list, err := source.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range list {
				if err := store.Put(cmd.Context(), p); err != nil {
					return err
				}
				logger.Info("seeded preset",
					zap.String("op", op),
					zap.String("region", p.Region),
				)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d presets\n", len(list))
			return nil
		},
	}

	cmd.Flags().StringVar(&redisURL, "redis-url", "", "redis url (defaults to PRESETS_REDIS_URL)")
	cmd.Flags().StringVar(&keyPrefix, "key-prefix", presets.DefaultKeyPrefix, "redis key prefix")
	cmd.Flags().StringVar(&file, "file", "", "YAML preset file to seed instead of the built-in table")
	return cmd
}
