package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dshills/nixdoc/internal/config"
	"github.com/dshills/nixdoc/internal/indexer"
	"github.com/dshills/nixdoc/internal/report"
	"github.com/dshills/nixdoc/internal/searcher"
	"github.com/dshills/nixdoc/internal/storage"
)

// app carries the state shared by all commands of one invocation
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "nixdoc <pattern> [directory]",
		Short: "Search documentation comments of Nix lambdas",
		Long: `nixdoc scans a directory of Nix files for lambda bindings that carry a
documentation comment and prints those whose name or text matches a regular
expression. The directory defaults to the current one.`,
		Example: `  nixdoc concatMap ~/src/nixpkgs/lib
  nixdoc '(?i)^fold' --workers 8
  nixdoc doc lib/lists.nix 42
  nixdoc pos lib/lists.nix foldl'`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		RunE: a.runSearch,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./.nixdoc.yaml when present)")
	flags.Int(config.KeyWorkers, 0, "number of files scanned concurrently (default: number of CPUs)")
	flags.String(config.KeyExtension, ".nix", "file extension to scan")
	flags.StringSlice(config.KeyExclude, []string{".git"}, "directory names never entered")
	flags.Bool(config.KeyNoFollowSymlinks, false, "do not follow symbolic links")
	flags.Bool(config.KeyCache, false, "reuse entries of unchanged files from the on-disk cache")
	flags.String(config.KeyCachePath, "", "cache database location (default: user cache directory)")
	flags.String(config.KeyColor, string(report.ColorAuto), "style output: auto, always or never")
	flags.String(config.KeyLogLevel, "warn", "log level: debug, info, warn or error")

	for _, key := range []string{
		config.KeyWorkers,
		config.KeyExtension,
		config.KeyExclude,
		config.KeyNoFollowSymlinks,
		config.KeyCache,
		config.KeyCachePath,
		config.KeyColor,
		config.KeyLogLevel,
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newDocCmd(a))
	rootCmd.AddCommand(newPosCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// load resolves the configuration and the stderr logger
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix: config.AppName,
		Level:  cfg.Level(),
	})
	if cfg.File != "" {
		a.logger.Debug("loaded config", "file", cfg.File)
	}
	return nil
}

// openCache opens the entry cache when enabled. Failures are logged and the
// command continues without a cache.
func (a *app) openCache() storage.Storage {
	if !a.cfg.Cache {
		return nil
	}

	path, err := a.cfg.ResolveCachePath()
	if err != nil {
		a.logger.Warn("cache disabled", "err", err)
		return nil
	}

	cache, err := storage.NewSQLiteStorage(path)
	if err != nil {
		a.logger.Warn("cache disabled", "path", path, "err", err)
		return nil
	}

	a.logger.Debug("opened cache", "path", path, "driver", storage.DriverName)
	return cache
}

func (a *app) newIndexer(cache storage.Storage) *indexer.Indexer {
	return indexer.New(&indexer.Config{
		Workers: a.cfg.Workers,
		Walker:  a.cfg.WalkerOptions(),
		Cache:   cache,
		Logger:  a.logger,
	})
}

func (a *app) runSearch(cmd *cobra.Command, args []string) error {
	pattern := args[0]
	root := "."
	if len(args) > 1 {
		root = args[1]
	}

	cache := a.openCache()
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}

	resp, err := searcher.NewSearcher(a.newIndexer(cache)).Search(cmd.Context(), pattern, root)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.NewFormatter(out, a.cfg.ColorMode()).Write(out, resp.Result.Entries); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	for _, w := range resp.Result.Warnings {
		a.logger.Warn("skipped", "path", w.Path, "err", w.Err)
	}

	a.logger.Debug("search complete",
		"matches", resp.Result.Len(),
		"scanned", resp.Statistics.FilesScanned,
		"cached", resp.Statistics.FilesCached,
		"entries", resp.Statistics.EntriesFound,
		"duration", resp.Duration)

	return nil
}
