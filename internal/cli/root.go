// Package cli implements the mawaqitics command tree.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mawaqitics/internal/cache"
	"mawaqitics/internal/config"
	applog "mawaqitics/internal/log"
	"mawaqitics/internal/mawaqit"
	"mawaqitics/internal/planner"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string
	pretty     bool

	cfg *config.Config
}

// setup loads .env and the YAML config, then initializes logging. Called
// from every subcommand's PersistentPreRunE.
func (a *app) setup() error {
	// Missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	applog.Setup(cfg.LogLevel, a.pretty)

	a.cfg = cfg
	return nil
}

// newCache builds the cache manager from the loaded config.
func (a *app) newCache() (*cache.Manager, error) {
	return cache.New(a.cfg.CacheDir, time.Duration(a.cfg.CacheMaxAgeHours)*time.Hour)
}

// newGenerator wires the planner with its fetch client and cache.
func (a *app) newGenerator() (*planner.Generator, *cache.Manager, error) {
	cacheMgr, err := a.newCache()
	if err != nil {
		return nil, nil, err
	}
	client := mawaqit.NewClient(a.cfg.Mawaqit)
	return planner.New(a.cfg, client, cacheMgr), cacheMgr, nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "mawaqitics",
		Short:         "Generate ICS calendars from Mawaqit prayer times",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "config.yaml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().BoolVar(&a.pretty, "pretty", false, "human-readable log output")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newCacheCmd(a))

	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
