package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"

	"github.com/cadenceapp/cadence-server/internal/metrics"
)

// ProvideMetrics provides the Prometheus metrics registry and collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)

	m := metrics.NewMetrics(prometheus.NewRegistry())
	if err := m.RegisterDBStats(storeHandle.DB(), "cadence"); err != nil {
		return nil, err
	}
	return m, nil
}
