package reporter

import (
	"context"
	"log/slog"
	"time"

	"vigil-reporter/internal/forwarder"
)

type deliverer interface {
	Send(ctx context.Context, report forwarder.Report) error
}

type loadSampler interface {
	CPU() float64
	RAM() float64
}

// manager owns the report loop. It is built once per Run and never shared.
type manager struct {
	sender     deliverer
	sampler    loadSampler
	replicaID  string
	interval   time.Duration
	startDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) bool
	logger     *slog.Logger
	observer   Observer
}

func (m *manager) run(ctx context.Context) {
	m.logger.Debug("now running", slog.Duration("interval", m.interval))
	defer m.logger.Debug("stopped")

	if !m.sleep(ctx, m.startDelay) {
		return
	}
	for {
		if err := m.report(ctx, false); err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn("last report failed, trying again sooner than usual",
				slog.String("error", err.Error()),
				slog.Duration("retryIn", m.interval/2),
			)
			if !m.sleep(ctx, m.interval/2) {
				return
			}
			_ = m.report(ctx, true)
		}
		if !m.sleep(ctx, m.interval) {
			return
		}
	}
}

func (m *manager) report(ctx context.Context, retry bool) error {
	cpu, ram := m.sampler.CPU(), m.sampler.RAM()
	m.observer.LoadSampled(cpu, ram)

	err := m.sender.Send(ctx, forwarder.NewReport(m.replicaID, m.interval, cpu, ram))
	m.observer.ReportFinished(retry, err)
	return err
}

// sleepContext waits for d and reports false if ctx ended first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
