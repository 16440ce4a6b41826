package fusion

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/metrics"
)

// tickSampleMeter rates accepted samples and logs a throughput line on an
// interval while a session is active.
type tickSampleMeter struct {
	interval time.Duration
	started  time.Time
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	label    time.Time
	reg      metrics.Registry
	count    metrics.Counter
	meter    metrics.Meter
	logger   *slog.Logger
}

func newTickSampleMeter(interval time.Duration, logger *slog.Logger) *tickSampleMeter {
	// Enable metrics package.
	// Won't work without this global setting.
	metrics.Enabled = true

	reg := metrics.NewRegistry()
	m := &tickSampleMeter{
		reg:      reg,
		interval: interval,
		started:  time.Now(),
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		count:    metrics.NewCounter(),
		meter:    metrics.NewMeter(),
		logger:   logger,
	}
	if err := reg.Register("sample.count", m.count); err != nil {
		panic(err)
	}
	if err := reg.Register("sample.meter", m.meter); err != nil {
		panic(err)
	}
	go m.run()
	return m
}

func (m *tickSampleMeter) mark(label time.Time) {
	m.label = label
	m.count.Inc(1)
	m.meter.Mark(1)
}

// run logs until stop; Ticker.Stop never closes its channel, so the done
// channel carries the exit signal.
func (m *tickSampleMeter) run() {
	for {
		select {
		case <-m.done:
			return
		case <-m.ticker.C:
			m.log()
		}
	}
}

func (m *tickSampleMeter) log() {
	snap := m.meter.Snapshot()
	m.logger.Info("Fused samples", "n", humanize.Comma(snap.Count()),
		"last", m.label.Format(time.DateTime),
		"sps", snap.Rate1(),
		"running", time.Since(m.started).Round(time.Second))
}

func (m *tickSampleMeter) stop() {
	if m == nil {
		return
	}
	m.stopOnce.Do(func() {
		m.ticker.Stop()
		close(m.done)
		m.meter.Stop()
	})
}
