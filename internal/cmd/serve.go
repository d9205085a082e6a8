package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/output"
	"github.com/catalogbridge/ckan2csw/internal/scheduler"
)

var serveSkipInitial bool

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Harvest now and then on a schedule",
		Long: `Harvest once at startup and then every cron.daysInterval days at
cron.hourStart in cron.timezone, until interrupted.

A failed scheduled harvest is logged and the schedule continues. With
cacheCodelists enabled and a mappingsDir configured, edited codelist files
are picked up without a restart.

Examples:
  # Harvest every 3 days at 04:00 Madrid time
  CKAN2CSW_CRON_TIMEZONE=Europe/Madrid ckan2csw serve`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().BoolVar(&serveSkipInitial, "skip-initial", false,
		"Wait for the first scheduled activation instead of harvesting at startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	var loc *time.Location
	if cfg.Cron.Timezone != "" {
		l, err := time.LoadLocation(cfg.Cron.Timezone)
		if err != nil {
			return exitError(oerrors.NewConfigError("unknown time zone "+cfg.Cron.Timezone, "cron.timezone", ""))
		}
		loc = l
	}

	sched, err := scheduler.New(scheduler.Options{
		DaysInterval: cfg.Cron.DaysInterval,
		HourStart:    cfg.Cron.HourStart,
		Location:     loc,
	})
	if err != nil {
		return exitError(err)
	}

	h, err := newHarvester(cfg, cmd.OutOrStdout())
	if err != nil {
		return exitError(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := func(ctx context.Context) error {
		closeLog, err := startRunLog()
		if err != nil {
			output.Warn("could not open run log", "error", err)
		}
		defer closeLog()
		_, err = h.run(ctx)
		return err
	}

	if !serveSkipInitial {
		if err := job(ctx); err != nil {
			// Configuration errors are fatal. Anything else is retried on schedule.
			if errors.Is(err, oerrors.ErrConfig) {
				return exitError(err)
			}
			output.Error("initial harvest failed", "error", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.CacheCodelists && cfg.MappingsDir != "" {
		g.Go(func() error {
			return h.engine.Codelists().Watch(ctx, cfg.MappingsDir)
		})
	}
	g.Go(func() error {
		sched.Start(ctx, job)
		return nil
	})

	return exitError(g.Wait())
}
