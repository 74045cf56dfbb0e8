package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/config"
	"github.com/aretw0/parley/internal/logging"
	redisadapter "github.com/aretw0/parley/pkg/adapters/redis"
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Parley is a stacked, resumable dialog orchestration engine",
	Long: `Parley runs multi-turn conversational skills: slot-filling dialogs that
suspend on prompts, survive process restarts, and recover cleanly from
cancellation, retries and interruptions.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a parley.yaml configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads the --config file, honoring --debug.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	switch cfg.LogLevel {
	case "debug":
		return logging.New(slog.LevelDebug)
	case "warn":
		return logging.New(slog.LevelWarn)
	case "error":
		return logging.New(slog.LevelError)
	default:
		return logging.New(slog.LevelInfo)
	}
}

// engineOptions maps the config onto engine options.
func engineOptions(cfg config.Config, logger *slog.Logger) []parley.Option {
	opts := storageOptions(cfg)
	opts = append(opts, parley.WithLogger(logger))
	if cfg.InterruptThreshold > 0 {
		opts = append(opts, parley.WithInterruptThreshold(cfg.InterruptThreshold))
	}
	return opts
}

// storageOptions maps the Redis config onto engine options. Without a Redis
// address the engine keeps its in-memory store.
func storageOptions(cfg config.Config) []parley.Option {
	if cfg.Redis.Addr == "" {
		return nil
	}

	storeOpts := []redisadapter.Option{}
	if cfg.Redis.TTLSeconds > 0 {
		storeOpts = append(storeOpts, redisadapter.WithTTL(time.Duration(cfg.Redis.TTLSeconds)*time.Second))
	}
	store := redisadapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, storeOpts...)

	opts := []parley.Option{parley.WithStore(store)}
	if cfg.Redis.Lock {
		opts = append(opts, parley.WithLocker(redisadapter.NewLocker(store.Client(), store.Prefix())))
	}
	return opts
}
