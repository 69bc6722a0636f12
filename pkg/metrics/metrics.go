// Package metrics provides optional in-process instrumentation for
// segment and table lifecycle events, built on
// github.com/prometheus/client_golang/prometheus. It exposes no HTTP
// handler and starts no server. Callers that want HTTP exposition
// register Collectors with their own prometheus.Registerer and wire it up
// themselves.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors bundles the gauges and counters ZeroIPC updates as segments and
// tables are created, opened, and closed. The zero value is safe to use:
// every method is a no-op until Register is called.
type Collectors struct {
	segmentsCreated prometheus.Counter
	segmentsOpened  prometheus.Counter
	segmentsClosed  prometheus.Counter
	tableEntries    prometheus.Gauge
	bumpCursorBytes prometheus.Gauge
	registered      bool
}

// New constructs an unregistered Collectors instance.
func New() *Collectors {
	return &Collectors{
		segmentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zeroipc",
			Subsystem: "segment",
			Name:      "created_total",
			Help:      "Number of segments created by this process.",
		}),
		segmentsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zeroipc",
			Subsystem: "segment",
			Name:      "opened_total",
			Help:      "Number of segments opened by this process.",
		}),
		segmentsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zeroipc",
			Subsystem: "segment",
			Name:      "closed_total",
			Help:      "Number of segment handles closed by this process.",
		}),
		tableEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zeroipc",
			Subsystem: "table",
			Name:      "entries",
			Help:      "Entry count of the most recently observed table, per segment created by this process.",
		}),
		bumpCursorBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zeroipc",
			Subsystem: "table",
			Name:      "bump_cursor_bytes",
			Help:      "Bump-allocation cursor position, per segment created by this process.",
		}),
	}
}

// Register adds every collector to reg. Safe to call at most once per
// Collectors instance.
func (c *Collectors) Register(reg prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{
		c.segmentsCreated, c.segmentsOpened, c.segmentsClosed,
		c.tableEntries, c.bumpCursorBytes,
	} {
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	c.registered = true
	return nil
}

// ObserveSegmentCreated records a successful segment creation.
func (c *Collectors) ObserveSegmentCreated() {
	if c == nil || !c.registered {
		return
	}
	c.segmentsCreated.Inc()
}

// ObserveSegmentOpened records a successful segment open.
func (c *Collectors) ObserveSegmentOpened() {
	if c == nil || !c.registered {
		return
	}
	c.segmentsOpened.Inc()
}

// ObserveSegmentClosed records a segment handle close.
func (c *Collectors) ObserveSegmentClosed() {
	if c == nil || !c.registered {
		return
	}
	c.segmentsClosed.Inc()
}

// ObserveTableState records the table's current entry count and bump cursor.
func (c *Collectors) ObserveTableState(entryCount, nextOffset uint32) {
	if c == nil || !c.registered {
		return
	}
	c.tableEntries.Set(float64(entryCount))
	c.bumpCursorBytes.Set(float64(nextOffset))
}
