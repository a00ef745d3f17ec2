package probe

import (
	"context"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"github.com/rs/zerolog"
)

// StatusSetter receives the probe outcome (the upstream_reachable gauge).
type StatusSetter interface {
	SetUpstreamReachable(ok bool)
}

// Probe pings the upstream host on an interval and reports the result.
type Probe struct {
	host     string
	interval time.Duration
	setter   StatusSetter
	log      zerolog.Logger
}

func New(host string, interval time.Duration, setter StatusSetter, logger zerolog.Logger) *Probe {
	return &Probe{host: host, interval: interval, setter: setter, log: logger}
}

// Start runs the probe loop until ctx is cancelled.
func (p *Probe) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.setter.SetUpstreamReachable(p.ping())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.setter.SetUpstreamReachable(p.ping())
		}
	}
}

// ping sends ICMP pings to the upstream host and reports reachability.
func (p *Probe) ping() bool {
	pinger, err := probing.NewPinger(p.host)
	if err != nil {
		p.log.Warn().Err(err).Str("host", p.host).Msg("failed to create pinger")
		return false
	}
	pinger.Count = 3
	pinger.Timeout = 5 * time.Second
	pinger.SetPrivileged(true)
	if err := pinger.Run(); err != nil {
		return false
	}
	return pinger.Statistics().PacketsRecv > 0
}
