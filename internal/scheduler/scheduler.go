package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"kpi-dashboard-backend/config"
	"kpi-dashboard-backend/internal/service"
)

// NewScheduler wires the periodic schema refresh job into the fx lifecycle.
func NewScheduler(lc fx.Lifecycle, cfg *config.Config, refreshSvc service.SchemaRefreshService) *cron.Cron {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))

	if !cfg.SchemaRefresh.Enabled {
		log.Info().Msg("Schema refresh scheduler disabled")
		return c
	}

	schedule := cfg.SchemaRefresh.Schedule
	_, err := c.AddFunc(schedule, func() {
		go func() {
			err := refreshSvc.RefreshSchemas(context.Background())
			if err != nil {
				log.Error().Err(err).Msg("Error during scheduled schema refresh")
			}
		}()
	})

	if err != nil {
		log.Fatal().Err(err).Str("schedule", schedule).Msg("Failed to add cron job")
		return nil
	}
	log.Info().Str("schedule", schedule).Msg("Scheduled schema refresh job")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msg("Starting cron scheduler")
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Stopping cron scheduler...")
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
				log.Info().Msg("Cron scheduler stopped gracefully.")
				return nil
			case <-ctx.Done():
				log.Error().Msg("Context cancelled while waiting for cron scheduler to stop.")
				return ctx.Err()
			}
		},
	})

	return c
}
