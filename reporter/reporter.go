// Package reporter pushes periodic load heartbeats to a Vigil status page.
//
// A Reporter is configured through a Builder and started with Run, which
// returns immediately and reports from a background goroutine until the
// context is cancelled or the returned Task is stopped.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vigil-reporter/internal/forwarder"
	"vigil-reporter/internal/sysload"
	"vigil-reporter/internal/version"
)

const (
	// DefaultInterval is the delay between two reports.
	DefaultInterval = 30 * time.Second
	// StartDelay leaves the host service time to finish its own startup.
	StartDelay = 10 * time.Second
)

var (
	ErrMissingProbeID   = errors.New("missing probe_id")
	ErrMissingNodeID    = errors.New("missing node_id")
	ErrMissingReplicaID = errors.New("missing replica_id")
)

// Reporter is an immutable, validated reporter configuration.
type Reporter struct {
	url       string
	token     string
	probeID   string
	nodeID    string
	replicaID string
	interval  time.Duration
	userAgent string
	logger    *slog.Logger
	observer  Observer

	source     sysload.Source
	startDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) bool
}

// Builder collects Reporter settings. Setters mutate the builder and return it.
type Builder struct {
	reporter Reporter
}

// New starts building a Reporter for the status page at url, authenticated with token.
func New(url, token string) *Builder {
	return &Builder{
		reporter: Reporter{
			url:        url,
			token:      token,
			interval:   DefaultInterval,
			userAgent:  "vigil-reporter-go/" + version.Value(),
			startDelay: StartDelay,
			sleep:      sleepContext,
		},
	}
}

func (b *Builder) ProbeID(probeID string) *Builder {
	b.reporter.probeID = probeID
	return b
}

func (b *Builder) NodeID(nodeID string) *Builder {
	b.reporter.nodeID = nodeID
	return b
}

func (b *Builder) ReplicaID(replicaID string) *Builder {
	b.reporter.replicaID = replicaID
	return b
}

// Interval sets the delay between reports. Non-positive values keep the default.
func (b *Builder) Interval(interval time.Duration) *Builder {
	if interval > 0 {
		b.reporter.interval = interval
	}
	return b
}

// Logger sets the logger used by the reporter. Defaults to slog.Default().
func (b *Builder) Logger(logger *slog.Logger) *Builder {
	b.reporter.logger = logger
	return b
}

// Observer registers a receiver for load and delivery events.
func (b *Builder) Observer(observer Observer) *Builder {
	b.reporter.observer = observer
	return b
}

func (b *Builder) UserAgent(userAgent string) *Builder {
	b.reporter.userAgent = userAgent
	return b
}

// TryBuild validates the identifiers and returns the finished Reporter.
func (b *Builder) TryBuild() (*Reporter, error) {
	if err := b.reporter.validate(); err != nil {
		return nil, err
	}
	r := b.reporter
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With(slog.String("component", "vigil-reporter"))
	if r.observer == nil {
		r.observer = noopObserver{}
	}
	return &r, nil
}

// Build is TryBuild for configuration known at compile time: a missing
// identifier is a programming error and panics.
func (b *Builder) Build() *Reporter {
	r, err := b.TryBuild()
	if err != nil {
		panic(err.Error())
	}
	return r
}

func (r *Reporter) validate() error {
	if r.probeID == "" {
		return ErrMissingProbeID
	}
	if r.nodeID == "" {
		return ErrMissingNodeID
	}
	if r.replicaID == "" {
		return ErrMissingReplicaID
	}
	return nil
}

// ReportURL returns the endpoint this reporter posts to.
func (r *Reporter) ReportURL() string {
	return forwarder.ReportURL(r.url, r.probeID, r.nodeID)
}

// Interval returns the configured delay between reports.
func (r *Reporter) Interval() time.Duration {
	return r.interval
}

// Run starts reporting in a new goroutine and returns without waiting for
// the first report. It fails only when the HTTP client cannot be set up.
func (r *Reporter) Run(ctx context.Context) (*Task, error) {
	r.logger.Debug("will run", slog.String("url", r.url))
	if err := r.validate(); err != nil {
		return nil, err
	}
	sender, err := forwarder.NewSender(r.ReportURL(), r.token, r.userAgent, r.logger)
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}

	m := &manager{
		sender:     sender,
		sampler:    sysload.NewSampler(r.source, r.logger),
		replicaID:  r.replicaID,
		interval:   r.interval,
		startDelay: r.startDelay,
		sleep:      r.sleep,
		logger:     r.logger,
		observer:   r.observer,
	}

	runCtx, cancel := context.WithCancel(ctx)
	task := &Task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(task.done)
		defer cancel()
		m.run(runCtx)
	}()
	return task, nil
}

// Task is the handle to a running reporter.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop asks the reporter goroutine to exit. It does not wait.
func (t *Task) Stop() {
	t.cancel()
}

// Done is closed once the reporter goroutine has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the reporter goroutine has returned.
func (t *Task) Wait() {
	<-t.done
}
