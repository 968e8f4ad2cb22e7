package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mawaqitics/internal/mawaqit"
	"mawaqitics/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, cacheMgr, err := a.newGenerator()
			if err != nil {
				return err
			}
			directory := mawaqit.NewDirectory(a.cfg.MosqueDataDir)
			server := web.New(a.cfg, gen, directory, cacheMgr)

			// Periodic eviction keeps the cache dir from accumulating
			// stale day/month entries.
			scheduler := cron.New()
			if _, err := scheduler.AddFunc(a.cfg.EvictionCron, func() {
				removed := cacheMgr.EvictExpired(time.Now())
				if removed > 0 {
					log.Info().Int("removed", removed).Msg("cache eviction pass")
				}
			}); err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.Run(ctx)
		},
	}
}
