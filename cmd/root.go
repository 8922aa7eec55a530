package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ixink/uiu-student-bot/internal/cache"
	"github.com/ixink/uiu-student-bot/internal/config"
	"github.com/ixink/uiu-student-bot/internal/fallback"
	"github.com/ixink/uiu-student-bot/internal/fetch"
	"github.com/ixink/uiu-student-bot/internal/profile"
	"github.com/ixink/uiu-student-bot/internal/ratelimit"
	"github.com/ixink/uiu-student-bot/internal/recommend"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "uiubot",
	Short: "Campus info aggregator for UIU students",
	Long: "uiubot aggregates notices, events, learning resources, trending repos, " +
		"jobs and faculty info from campus and community sources, personalizes them " +
		"against a student profile, and serves them over a CLI and a small HTTP API.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("uiubot %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

func newLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// app bundles the wired pipeline for commands. Callers must close it.
type app struct {
	cfg      *config.Config
	cache    *cache.Cache
	profiles *profile.Store
	svc      *recommend.Service
	log      *zap.Logger
}

func newApp() (*app, error) {
	log, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	c, err := cache.Open(config.CachePath())
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	p, err := profile.Open(config.UserDBPath())
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("opening user database: %w", err)
	}

	fb, err := fallback.New()
	if err != nil {
		c.Close()
		p.Close()
		return nil, fmt.Errorf("loading fallback data: %w", err)
	}

	svc := recommend.New(cfg, c, p,
		fetch.New(cfg.FetchTimeoutDuration(), log),
		ratelimit.New(cfg.Cooldown()),
		fb, log)

	return &app{cfg: cfg, cache: c, profiles: p, svc: svc, log: log}, nil
}

func (a *app) close() {
	a.cache.Close()
	a.profiles.Close()
	a.log.Sync()
}
