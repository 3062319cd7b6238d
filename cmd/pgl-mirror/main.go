package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paulschiretz/pgl-mirror/pkg/buildinfo"
	"github.com/paulschiretz/pgl-mirror/pkg/config"
	"github.com/paulschiretz/pgl-mirror/pkg/engine"
	"github.com/paulschiretz/pgl-mirror/pkg/metrics"
	"github.com/paulschiretz/pgl-mirror/pkg/pathcmd"
	"github.com/paulschiretz/pgl-mirror/pkg/pathresolve"
	"github.com/paulschiretz/pgl-mirror/pkg/pathscan"
	"github.com/paulschiretz/pgl-mirror/pkg/plog"
	"github.com/paulschiretz/pgl-mirror/pkg/pool"
	"github.com/paulschiretz/pgl-mirror/pkg/progress"
	"github.com/paulschiretz/pgl-mirror/pkg/scheduler"
)

const configFileName = "pgl-mirror"

var home, _ = os.UserHomeDir()

var rootCmd = &cobra.Command{
	Use:     "pgl-mirror",
	Short:   "One-way folder mirroring on an interval",
	Long:    "pgl-mirror keeps one or more target folders as exact copies of their source folders,\nre-syncing on a fixed interval until stopped.",
	Version: buildinfo.Version,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringArrayP("pair", "p", nil, `folder pair "<source>=>:<target>" (repeatable)`)
	rootCmd.Flags().IntP("interval", "i", config.DefaultIntervalSeconds, "seconds between sync passes")
	rootCmd.Flags().Bool("once", false, "run a single sync pass and exit")
	rootCmd.Flags().Bool("dry-run", false, "log copies and deletes without touching the target")
	rootCmd.Flags().Bool("preserve-attrs", false, "propagate file mode and timestamps")
	rootCmd.Flags().StringArrayP("exclude", "x", nil, "glob pattern to skip (repeatable)")
	rootCmd.Flags().String("log-level", "info", "debug, info, warn or error")
	rootCmd.Flags().String("log-file", "", "also write JSON logs to this file (daily rotation)")
	rootCmd.Flags().Bool("no-color", false, "disable colored console output")
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(home, ".config", "pgl-mirror"))
		viper.SetConfigName(configFileName)
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.BindPFlag("pairs", cmd.Flags().Lookup("pair"))
	viper.BindPFlag("interval_seconds", cmd.Flags().Lookup("interval"))
	viper.BindPFlag("once", cmd.Flags().Lookup("once"))
	viper.BindPFlag("dry_run", cmd.Flags().Lookup("dry-run"))
	viper.BindPFlag("preserve_attrs", cmd.Flags().Lookup("preserve-attrs"))
	viper.BindPFlag("excludes", cmd.Flags().Lookup("exclude"))
	viper.BindPFlag("log_level", cmd.Flags().Lookup("log-level"))
	viper.BindPFlag("log_file", cmd.Flags().Lookup("log-file"))
	viper.BindPFlag("no_color", cmd.Flags().Lookup("no-color"))

	viper.SetEnvPrefix("PGL_MIRROR")
	viper.AutomaticEnv()

	return nil
}

// run wires the collaborators and drives sync passes until the context
// is canceled. Cancellation by signal is a clean shutdown, not an error.
func run(ctx context.Context, cfg config.Config) error {
	log, closer, err := plog.New(plog.Options{
		Level:    cfg.LogLevel,
		NoColor:  cfg.NoColor,
		FilePath: cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		return err
	}
	defer closer.Close()

	log.Info("starting", "app", buildinfo.Name, "version", buildinfo.Version)

	if cfg.LockFile != "" {
		lock := flock.New(cfg.LockFile)
		locked, err := lock.TryLock()
		if err != nil {
			log.Error("instance lock failed", "path", cfg.LockFile, "error", err)
			return err
		}
		if !locked {
			err := fmt.Errorf("another instance holds the lock at %s", cfg.LockFile)
			log.Error(err.Error())
			return err
		}
		defer lock.Unlock()
	}

	m := &metrics.SyncMetrics{}
	sink := progress.NewConsole()
	buffers := pool.NewBufferPool(cfg.BufferSizeKB)
	resolver := pathresolve.New(mustWorkingDir(), pathresolve.HostRules(), log)
	excl := pathscan.NewExclusions(cfg.Excludes)
	scanner := pathscan.New(resolver, excl, sink, m, log)
	env := pathcmd.NewEnv(log, m, buffers, cfg.DryRun)

	orch := engine.New(resolver, scanner, env, sink, m, engine.Options{
		PreserveAttrs:  cfg.PreserveAttrs,
		PruneEmptyDirs: true,
	}, log)

	pairs, err := orch.ValidatePairs(cfg.ParsePairs(log))
	if err != nil {
		log.Error("startup failed", "error", err)
		return err
	}

	if cfg.Once {
		err := orch.SyncAll(ctx, pairs)
		if errors.Is(err, context.Canceled) {
			log.Info("canceled, shutting down")
			return nil
		}
		return err
	}

	sched := scheduler.New(scheduler.RunnerFunc(func(ctx context.Context) error {
		return orch.SyncAll(ctx, pairs)
	}), time.Duration(cfg.IntervalSeconds)*time.Second, log)

	err = sched.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("canceled, shutting down")
		return nil
	}
	return err
}

func mustWorkingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return string(filepath.Separator)
	}
	return wd
}
