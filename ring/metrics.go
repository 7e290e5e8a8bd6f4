package ring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "nttkernel"
	metricsSubsystem = "ring"
)

// Metrics counts transforms and table builds. A nil *Metrics is valid and records nothing.
type Metrics struct {
	transforms  *prometheus.CounterVec
	tableBuilds prometheus.Counter
}

// NewMetrics creates the counters and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {

	factory := promauto.With(reg)

	return &Metrics{
		transforms: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "transforms_total",
			Help:      "Number of transforms dispatched, by direction and engine",
		}, []string{"direction", "engine"}),
		tableBuilds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "table_builds_total",
			Help:      "Number of root-of-unity tables built",
		}),
	}
}

func (m *Metrics) transform(direction string, kind EngineKind) {
	if m == nil {
		return
	}
	m.transforms.WithLabelValues(direction, kind.String()).Inc()
}

func (m *Metrics) tableBuilt() {
	if m == nil {
		return
	}
	m.tableBuilds.Inc()
}
