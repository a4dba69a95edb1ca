// Package telemetry keeps bounded, process-local records of client image
// failures, load times and network conditions.
package telemetry

import (
	"slices"
	"sync"
	"time"

	"github.com/rescuedogs/rescue-edge/internal/core/observability"
)

const (
	MaxErrors          = 10
	MaxLoadSamples     = 100
	MaxNetworkSamples  = 50
	DefaultReportEvery = 5

	slowLoadThreshold = 3 * time.Second
)

type ErrorRecord struct {
	URL        string    `json:"url"`
	Preset     string    `json:"preset,omitempty"`
	Message    string    `json:"message,omitempty"`
	Connection string    `json:"connection,omitempty"`
	Retry      int       `json:"retry,omitempty"`
	At         time.Time `json:"at"`
}

type LoadSample struct {
	URL        string        `json:"url"`
	Preset     string        `json:"preset,omitempty"`
	Duration   time.Duration `json:"duration"`
	Connection string        `json:"connection,omitempty"`
	At         time.Time     `json:"at"`
}

type NetworkSample struct {
	EffectiveType string    `json:"effective_type"`
	DownlinkMbps  float64   `json:"downlink_mbps,omitempty"`
	RTTMillis     int       `json:"rtt_ms,omitempty"`
	SaveData      bool      `json:"save_data,omitempty"`
	At            time.Time `json:"at"`
}

// Batch is handed to a Reporter every ReportEvery errors.
type Batch struct {
	TotalErrors uint64        `json:"total_errors"`
	Errors      []ErrorRecord `json:"errors"`
	At          time.Time     `json:"at"`
}

// Reporter delivers batches without blocking the caller.
type Reporter interface {
	Report(Batch)
}

type Snapshot struct {
	TotalErrors  uint64          `json:"total_errors"`
	TotalLoads   uint64          `json:"total_loads"`
	RecentErrors []ErrorRecord   `json:"recent_errors"`
	AvgLoadMs    float64         `json:"avg_load_ms"`
	P95LoadMs    float64         `json:"p95_load_ms"`
	SlowShare    float64         `json:"slow_share"`
	Network      []NetworkSample `json:"network"`
}

type Tracker struct {
	mu          sync.Mutex
	errors      *ring[ErrorRecord]
	loads       *ring[LoadSample]
	network     *ring[NetworkSample]
	reportEvery uint64
	reporter    Reporter
	now         func() time.Time
}

type Option func(*Tracker)

func WithReporter(r Reporter) Option { return func(t *Tracker) { t.reporter = r } }

func WithReportEvery(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.reportEvery = uint64(n)
		}
	}
}

func WithClock(now func() time.Time) Option { return func(t *Tracker) { t.now = now } }

func New(opts ...Option) *Tracker {
	t := &Tracker{
		errors:      newRing[ErrorRecord](MaxErrors),
		loads:       newRing[LoadSample](MaxLoadSamples),
		network:     newRing[NetworkSample](MaxNetworkSamples),
		reportEvery: DefaultReportEvery,
		now:         time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// RecordError stores the failure and, on every ReportEvery-th error, hands a
// batch to the reporter outside the lock.
func (t *Tracker) RecordError(rec ErrorRecord) {
	if rec.At.IsZero() {
		rec.At = t.now()
	}
	observability.ObserveImageError(rec.Preset)

	t.mu.Lock()
	t.errors.push(rec)
	total := t.errors.total
	var batch *Batch
	if t.reporter != nil && total%t.reportEvery == 0 {
		batch = &Batch{TotalErrors: total, Errors: t.errors.items(), At: t.now()}
	}
	t.mu.Unlock()

	if batch != nil {
		t.reporter.Report(*batch)
	}
}

func (t *Tracker) RecordLoad(s LoadSample) {
	if s.Duration < 0 {
		return
	}
	if s.At.IsZero() {
		s.At = t.now()
	}
	observability.ObserveImageLoad(s.Preset, s.Duration.Seconds())

	t.mu.Lock()
	t.loads.push(s)
	t.mu.Unlock()
}

func (t *Tracker) RecordNetwork(s NetworkSample) {
	if s.At.IsZero() {
		s.At = t.now()
	}
	t.mu.Lock()
	t.network.push(s)
	t.mu.Unlock()
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	errs := t.errors.items()
	loads := t.loads.items()
	net := t.network.items()
	s := Snapshot{
		TotalErrors:  t.errors.total,
		TotalLoads:   t.loads.total,
		RecentErrors: errs,
		Network:      net,
	}
	t.mu.Unlock()

	if len(loads) == 0 {
		return s
	}
	ms := make([]float64, len(loads))
	var sum float64
	slow := 0
	for i, l := range loads {
		ms[i] = float64(l.Duration) / float64(time.Millisecond)
		sum += ms[i]
		if l.Duration >= slowLoadThreshold {
			slow++
		}
	}
	slices.Sort(ms)
	s.AvgLoadMs = sum / float64(len(ms))
	s.P95LoadMs = ms[nearestRank(len(ms), 0.95)]
	s.SlowShare = float64(slow) / float64(len(ms))
	return s
}

// Reset clears retained records and totals.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errors.reset()
	t.loads.reset()
	t.network.reset()
	t.errors.total, t.loads.total, t.network.total = 0, 0, 0
}

func nearestRank(n int, p float64) int {
	i := int(float64(n)*p+0.999999) - 1
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
