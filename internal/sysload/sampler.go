package sysload

import (
	"log/slog"
)

// Source exposes the raw host figures the sampler normalises.
type Source interface {
	CPUCount() (int, error)
	LoadAverage() (float64, error)
	Memory() (total, available uint64, err error)
}

// Sampler turns host metrics into the load fractions sent with each report.
// Read failures never escape: a figure that cannot be read is reported as 0.
type Sampler struct {
	source Source
	logger *slog.Logger
}

// NewSampler returns a Sampler reading from source. A nil source reads the local host.
func NewSampler(source Source, logger *slog.Logger) *Sampler {
	if source == nil {
		source = HostSource{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{source: source, logger: logger}
}

// CPU returns the load average divided by the logical core count.
func (s *Sampler) CPU() float64 {
	count, err := s.source.CPUCount()
	if err != nil {
		s.logger.Debug("read cpu count failed", slog.String("error", err.Error()))
		return 0
	}
	avg, err := s.source.LoadAverage()
	if err != nil {
		s.logger.Debug("read load average failed", slog.String("error", err.Error()))
		return 0
	}
	return CPU(count, avg)
}

// RAM returns the fraction of memory in use.
func (s *Sampler) RAM() float64 {
	total, available, err := s.source.Memory()
	if err != nil {
		s.logger.Debug("read memory stats failed", slog.String("error", err.Error()))
		return 0
	}
	return RAM(total, available)
}

// CPU normalises a load average by count, treating counts below one as one.
func CPU(count int, loadAverage float64) float64 {
	if count < 1 {
		count = 1
	}
	return loadAverage / float64(count)
}

// RAM returns 1 - available/total, or 0 when total is unknown.
func RAM(total, available uint64) float64 {
	if total == 0 {
		return 0
	}
	return 1 - float64(available)/float64(total)
}
