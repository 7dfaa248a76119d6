package metrics

import (
	"github.com/google/wire"
)

// ProviderSet is a Wire provider set for metrics
var ProviderSet = wire.NewSet(
	ProvideMetrics,
	ProvideMetricsServer,
)

// ProvideMetrics returns nil when metrics are disabled; every recorder
// method accepts a nil receiver.
func ProvideMetrics(config *MetricsConfig) *Metrics {
	if !config.Enable {
		return nil
	}
	return New()
}

func ProvideMetricsServer(config *MetricsConfig, m *Metrics) *Server {
	return NewServer(*config, m)
}
