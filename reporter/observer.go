package reporter

// Observer receives per-cycle events from a running reporter.
// Calls come from the reporter goroutine, one at a time.
type Observer interface {
	LoadSampled(cpu, ram float64)
	ReportFinished(retry bool, err error)
}

type noopObserver struct{}

func (noopObserver) LoadSampled(float64, float64) {}

func (noopObserver) ReportFinished(bool, error) {}
