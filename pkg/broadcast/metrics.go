package broadcast

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	delivered   prometheus.Counter
	dropped     prometheus.Counter
	subscribers prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer, namespace string) (*metrics, error) {
	m := &metrics{
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "delivered_total",
			Help:      "Messages placed into subscriber buffers.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "dropped_total",
			Help:      "Messages dropped because a subscriber buffer was full.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "subscribers",
			Help:      "Currently attached subscribers.",
		}),
	}

	var err error
	if m.delivered, err = register(reg, m.delivered); err != nil {
		return nil, err
	}
	if m.dropped, err = register(reg, m.dropped); err != nil {
		return nil, err
	}
	if m.subscribers, err = register(reg, m.subscribers); err != nil {
		return nil, err
	}
	return m, nil
}

// register reuses an identical collector that is already registered, so several
// broadcasters can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

func (m *metrics) deliver() {
	if m != nil {
		m.delivered.Inc()
	}
}

func (m *metrics) drop() {
	if m != nil {
		m.dropped.Inc()
	}
}

func (m *metrics) attach() {
	if m != nil {
		m.subscribers.Inc()
	}
}

func (m *metrics) detach() {
	if m != nil {
		m.subscribers.Dec()
	}
}
