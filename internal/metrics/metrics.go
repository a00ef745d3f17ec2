package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"yasno-exporter/internal/schedule"
)

// Source yields the schedule snapshot to evaluate on each scrape.
type Source interface {
	Current() *schedule.Schedule
}

// Collector projects every group of the current snapshot at scrape time
// and emits the per-group gauge families. An empty snapshot emits no
// per-group samples; the scrape itself always succeeds.
type Collector struct {
	source Source
	now    func() time.Time

	status      *prometheus.Desc
	remaining   *prometheus.Desc
	untilChange *prometheus.Desc

	// one-hot status families kept for dashboard compatibility with the
	// yasno_* metric set
	blackout         *prometheus.Desc
	possibleBlackout *prometheus.Desc
	noBlackout       *prometheus.Desc
}

func NewCollector(source Source) *Collector {
	return &Collector{
		source: source,
		now:    time.Now,
		status: prometheus.NewDesc(
			"power_status",
			"Current power status for the group: 0=available, 1=unavailable, 2=possible outage, -1=unknown.",
			[]string{"group"}, nil,
		),
		remaining: prometheus.NewDesc(
			"power_seconds_remaining",
			"Seconds left in the current schedule window.",
			[]string{"group"}, nil,
		),
		untilChange: prometheus.NewDesc(
			"power_seconds_until_next_change",
			"Seconds until the power status changes.",
			[]string{"group"}, nil,
		),
		blackout: prometheus.NewDesc(
			"yasno_blackout",
			"1 when a scheduled outage is in effect for the group.",
			[]string{"group"}, nil,
		),
		possibleBlackout: prometheus.NewDesc(
			"yasno_possible_blackout",
			"1 when a possible outage is in effect for the group.",
			[]string{"group"}, nil,
		),
		noBlackout: prometheus.NewDesc(
			"yasno_no_blackout",
			"1 when power is scheduled to be on for the group.",
			[]string{"group"}, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.status
	ch <- c.remaining
	ch <- c.untilChange
	ch <- c.blackout
	ch <- c.possibleBlackout
	ch <- c.noBlackout
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Current()
	now := c.now()

	for _, group := range s.GroupNames() {
		p := schedule.Project(s, group, now)

		ch <- prometheus.MustNewConstMetric(c.status, prometheus.GaugeValue, float64(p.Status), group)
		ch <- prometheus.MustNewConstMetric(c.remaining, prometheus.GaugeValue, p.Remaining.Seconds(), group)
		ch <- prometheus.MustNewConstMetric(c.untilChange, prometheus.GaugeValue, p.UntilChange.Seconds(), group)

		ch <- prometheus.MustNewConstMetric(c.blackout, prometheus.GaugeValue, oneHot(p.Status, schedule.StatusUnavailable), group)
		ch <- prometheus.MustNewConstMetric(c.possibleBlackout, prometheus.GaugeValue, oneHot(p.Status, schedule.StatusPossible), group)
		ch <- prometheus.MustNewConstMetric(c.noBlackout, prometheus.GaugeValue, oneHot(p.Status, schedule.StatusAvailable), group)
	}
}

func oneHot(got, want schedule.Status) float64 {
	if got == want {
		return 1
	}
	return 0
}

// Health carries the exporter's self-observability instruments. It
// implements snapshot.Reporter.
type Health struct {
	failures          *prometheus.CounterVec
	lastFetch         prometheus.Gauge
	upstreamReachable prometheus.Gauge
}

func NewHealth(reg prometheus.Registerer) *Health {
	factory := promauto.With(reg)
	return &Health{
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_fetch_failures_total",
			Help: "Schedule refreshes that failed, by failure category.",
		}, []string{"category"}),
		lastFetch: factory.NewGauge(prometheus.GaugeOpts{
			Name: "schedule_last_fetch_timestamp",
			Help: "Unix timestamp of the last successful schedule fetch.",
		}),
		upstreamReachable: factory.NewGauge(prometheus.GaugeOpts{
			Name: "upstream_reachable",
			Help: "1 when the upstream host answers ICMP pings.",
		}),
	}
}

func (h *Health) RefreshFailed(category string) {
	h.failures.WithLabelValues(category).Inc()
}

func (h *Health) RefreshSucceeded(fetchedAt time.Time) {
	h.lastFetch.Set(float64(fetchedAt.Unix()))
}

func (h *Health) SetUpstreamReachable(ok bool) {
	if ok {
		h.upstreamReachable.Set(1)
	} else {
		h.upstreamReachable.Set(0)
	}
}
