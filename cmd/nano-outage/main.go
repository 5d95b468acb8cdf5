// Command nano-outage polls EPON OLTs and reports branches where many ONUs
// deregistered together with a wire-down reason.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	southbound "github.com/nanoncore/nano-outage"
	"github.com/nanoncore/nano-outage/config"
	"github.com/nanoncore/nano-outage/correlation"
	"github.com/nanoncore/nano-outage/logger"
	"github.com/nanoncore/nano-outage/poller"
	"github.com/nanoncore/nano-outage/report"
	"github.com/nanoncore/nano-outage/types"
)

var version = "dev"

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		if isHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("nano-outage %s\n", version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		logger.Fatal().Err(err).Msg("nano-outage stopped")
	}
}

func run(ctx context.Context, opts *options) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}

	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	hosts, err := opts.hosts(cfg)
	if err != nil {
		return err
	}
	if len(hosts) == 0 {
		return errors.New("host list is empty")
	}

	devices := make([]*types.EquipmentConfig, 0, len(hosts))
	for _, h := range hosts {
		devices = append(devices, cfg.Equipment(h))
	}

	reporter, err := report.New(cfg.Output.Format, os.Stdout)
	if err != nil {
		return err
	}

	engine := correlation.New(cfg.Correlation.Threshold, cfg.Correlation.MinClusterSize)

	scheduler := poller.New(devices, newDriver, engine, reporter, poller.Options{
		Interval:       cfg.Poll.Interval,
		Concurrency:    cfg.Poll.Concurrency,
		BackoffInitial: cfg.Poll.BackoffInitial,
		BackoffMax:     cfg.Poll.BackoffMax,
		ModelFilter:    cfg.DeniedModel,
	})

	logger.Info().
		Int("devices", len(devices)).
		Str("vendor", cfg.Vendor).
		Dur("interval", cfg.Poll.Interval).
		Int("concurrency", cfg.Poll.Concurrency).
		Bool("once", opts.Once).
		Msg("Starting nano-outage")

	if opts.Once {
		scheduler.RunOnce(ctx)
		return nil
	}
	return scheduler.Run(ctx)
}

func newDriver(cfg *types.EquipmentConfig) (types.OutageDriver, error) {
	return southbound.NewDriver(cfg.Vendor, cfg.Protocol, cfg)
}
