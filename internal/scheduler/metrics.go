package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics exposes pending job gauge and outcome counters of scheduler
func RegisterMetrics(registerer prometheus.Registerer, s *Scheduler) error {
	pending := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "eagle_restorations_pending",
		Help: "Number of scheduled role restorations waiting to fire",
	}, func() float64 {
		return float64(s.Len())
	})

	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eagle_restorations_total",
		Help: "Number of role restorations by final state",
	}, []string{"state"})

	for _, c := range []prometheus.Collector{pending, outcomes} {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}

	s.Observe(func(job Job) {
		outcomes.WithLabelValues(job.State.String()).Inc()
	})

	return nil
}
