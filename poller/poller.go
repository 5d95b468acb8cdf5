// Package poller drives collection and correlation across a fleet of OLTs.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/nanoncore/nano-outage/correlation"
	"github.com/nanoncore/nano-outage/logger"
	"github.com/nanoncore/nano-outage/model"
	"github.com/nanoncore/nano-outage/report"
	"github.com/nanoncore/nano-outage/types"
)

const (
	defaultInterval       = 3 * time.Second
	defaultConcurrency    = 4
	defaultBackoffInitial = 3 * time.Second
	defaultBackoffMax     = 5 * time.Minute
)

// DriverFactory opens a driver for one device.
type DriverFactory func(cfg *types.EquipmentConfig) (types.OutageDriver, error)

// ModelFilter reports whether a sysDescr belongs to an unsupported model,
// returning the matched model name.
type ModelFilter func(sysDescr string) (string, bool)

// Options tune the scheduler.
type Options struct {
	// Interval is the pause between the end of one cycle and the start of the next
	Interval time.Duration

	// Concurrency bounds the number of devices polled at once
	Concurrency int

	// BackoffInitial and BackoffMax bound the per-device retry delay after
	// a recoverable failure
	BackoffInitial time.Duration
	BackoffMax     time.Duration

	// ModelFilter skips unsupported models before collection; nil accepts all
	ModelFilter ModelFilter
}

// Outcome is the result of polling one device in one cycle.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeBackoff     Outcome = "backoff"
	OutcomeUnsupported Outcome = "unsupported"
	OutcomeFailed      Outcome = "failed"
)

// DeviceResult is the per-device result of a cycle.
type DeviceResult struct {
	Device   string
	Outcome  Outcome
	Clusters []model.Cluster
	ONUs     int
	Errors   int
	Err      error
}

// CycleResult summarizes one pass over every device.
type CycleResult struct {
	Devices []DeviceResult
	Events  int
}

// Count returns the number of devices with the given outcome.
func (r CycleResult) Count(o Outcome) int {
	n := 0
	for _, d := range r.Devices {
		if d.Outcome == o {
			n++
		}
	}
	return n
}

type deviceState struct {
	backoff *backoff.ExponentialBackOff
	nextTry time.Time
}

// Scheduler polls every device once per cycle. Devices run concurrently,
// bounded by Options.Concurrency; a device failing with a recoverable error
// is skipped until its backoff delay has passed.
type Scheduler struct {
	devices   []*types.EquipmentConfig
	newDriver DriverFactory
	engine    *correlation.Engine
	reporter  report.Reporter
	opts      Options
	logger    zerolog.Logger
	now       func() time.Time

	mu    sync.Mutex
	state map[string]*deviceState
}

// New creates a scheduler.
func New(devices []*types.EquipmentConfig, newDriver DriverFactory, engine *correlation.Engine, reporter report.Reporter, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.BackoffInitial <= 0 {
		opts.BackoffInitial = defaultBackoffInitial
	}
	if opts.BackoffMax < opts.BackoffInitial {
		opts.BackoffMax = max(defaultBackoffMax, opts.BackoffInitial)
	}

	return &Scheduler{
		devices:   devices,
		newDriver: newDriver,
		engine:    engine,
		reporter:  reporter,
		opts:      opts,
		logger:    logger.WithComponent("poller"),
		now:       time.Now,
		state:     make(map[string]*deviceState),
	}
}

// SetLogger replaces the scheduler logger.
func (s *Scheduler) SetLogger(l zerolog.Logger) {
	s.logger = l
}

// Run polls until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		s.RunOnce(ctx)
		timer.Reset(s.opts.Interval)
	}
}

// RunOnce polls every device once and returns when all are done.
func (s *Scheduler) RunOnce(ctx context.Context) CycleResult {
	start := s.now()
	p := pool.New().WithMaxGoroutines(s.opts.Concurrency)
	resultsChan := make(chan DeviceResult, len(s.devices))

	for _, dev := range s.devices {
		dev := dev
		if wait, ok := s.inBackoff(dev.Name); ok {
			s.logger.Debug().
				Str("device", dev.Name).
				Dur("retry_in", wait).
				Msg("Device in backoff, skipping")
			resultsChan <- DeviceResult{Device: dev.Name, Outcome: OutcomeBackoff}
			continue
		}

		p.Go(func() {
			resultsChan <- s.pollDevice(ctx, dev)
		})
	}

	p.Wait()
	close(resultsChan)

	byDevice := make(map[string]DeviceResult, len(s.devices))
	for r := range resultsChan {
		byDevice[r.Device] = r
	}

	// keep host list order
	var result CycleResult
	for _, dev := range s.devices {
		r := byDevice[dev.Name]
		result.Devices = append(result.Devices, r)
		result.Events += len(r.Clusters)
	}

	s.logger.Info().
		Int("devices", len(s.devices)).
		Int("ok", result.Count(OutcomeOK)).
		Int("failed", result.Count(OutcomeFailed)).
		Int("backoff", result.Count(OutcomeBackoff)).
		Int("unsupported", result.Count(OutcomeUnsupported)).
		Int("events", result.Events).
		Dur("took", s.now().Sub(start)).
		Msg("Polling cycle complete")

	return result
}

func (s *Scheduler) pollDevice(ctx context.Context, cfg *types.EquipmentConfig) DeviceResult {
	log := s.logger.With().Str("device", cfg.Name).Logger()
	res := DeviceResult{Device: cfg.Name}

	inv, err := s.collect(ctx, cfg, log)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrModelNotSupported):
		log.Info().Err(err).Msg("Program does not work for this switch model, skipping")
		res.Outcome = OutcomeUnsupported
		res.Err = err
		s.recordSuccess(cfg.Name)
		return res
	default:
		res.Outcome = OutcomeFailed
		res.Err = err
		if ctx.Err() != nil {
			return res
		}

		he := types.Humanize(cfg.Name, err)
		ev := log.Warn().Err(err).Str("code", he.Code)
		if he.Action != "" {
			ev = ev.Str("action", he.Action)
		}
		if types.IsRecoverable(err) {
			wait := s.recordFailure(cfg.Name)
			ev.Dur("retry_in", wait).Msg(he.Message)
		} else {
			ev.Msg("Collection failed")
		}
		return res
	}

	s.recordSuccess(cfg.Name)

	res.Outcome = OutcomeOK
	res.ONUs = inv.ONUCount()
	res.Errors = len(inv.Errors)
	res.Clusters = s.engine.FindMassEvents(inv)

	for _, c := range res.Clusters {
		log.Info().
			Str("branch", c.Branch).
			Int("onus", c.Size()).
			Time("window_start", c.Start).
			Time("window_end", c.End).
			Msg("Mass deregistration detected")
	}

	if err := s.reporter.Report(cfg.Name, res.Clusters); err != nil {
		log.Error().Err(err).Msg("Failed to write report")
	}

	return res
}

func (s *Scheduler) collect(ctx context.Context, cfg *types.EquipmentConfig, log zerolog.Logger) (*model.Inventory, error) {
	drv, err := s.newDriver(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	if err := drv.Connect(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		if err := drv.Disconnect(context.WithoutCancel(ctx)); err != nil {
			log.Debug().Err(err).Msg("Disconnect failed")
		}
	}()

	status, err := drv.GetEquipmentStatus(ctx)
	if err != nil {
		return nil, err
	}

	if s.opts.ModelFilter != nil {
		if name, denied := s.opts.ModelFilter(status.Description); denied {
			return nil, fmt.Errorf("%w: %s", types.ErrModelNotSupported, name)
		}
	}

	log.Debug().Str("sys_descr", status.Description).Msg("Collecting ONU inventory")

	return drv.CollectONUs(ctx)
}

// inBackoff reports whether a device must be skipped this cycle.
func (s *Scheduler) inBackoff(device string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.state[device]
	if !ok || st.nextTry.IsZero() {
		return 0, false
	}
	wait := st.nextTry.Sub(s.now())
	return wait, wait > 0
}

func (s *Scheduler) recordFailure(device string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.state[device]
	if !ok {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = s.opts.BackoffInitial
		bo.MaxInterval = s.opts.BackoffMax
		bo.RandomizationFactor = 0.2
		bo.Reset()
		st = &deviceState{backoff: bo}
		s.state[device] = st
	}

	wait := st.backoff.NextBackOff()
	st.nextTry = s.now().Add(wait)
	return wait
}

func (s *Scheduler) recordSuccess(device string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.state[device]; ok {
		st.backoff.Reset()
		st.nextTry = time.Time{}
	}
}
