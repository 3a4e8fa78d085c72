package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// GateRejections counts requests stopped by the request gate
	GateRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_rejections_total",
			Help: "Total number of requests rejected by the request gate",
		},
		[]string{"reason"}, // "missing_token", "invalid_token", "no_tenant", "invalid_session"
	)

	// ModuleAccessDenied counts route-level guard denials per module
	ModuleAccessDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "module_access_denied_total",
			Help: "Total number of requests denied by the module guard",
		},
		[]string{"module"},
	)

	// TenantMismatch counts attempted cross-tenant writes
	TenantMismatch = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_mismatch_total",
			Help: "Total number of creates rejected for carrying a foreign organization id",
		},
		[]string{"entity"},
	)

	// AccessorCacheSize tracks the number of cached tenant accessors
	AccessorCacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tenant_accessor_cache_size",
			Help: "Number of tenant accessors currently cached",
		},
	)

	// DBOperationDuration records store operation durations
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "entity"},
	)
)

func init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDurationHistogram)
	prometheus.MustRegister(StatusCodeCategoryCounter)

	prometheus.MustRegister(GateRejections)
	prometheus.MustRegister(ModuleAccessDenied)
	prometheus.MustRegister(TenantMismatch)
	prometheus.MustRegister(AccessorCacheSize)
	prometheus.MustRegister(DBOperationDuration)
}

// RecordGateRejection records a gate rejection by reason
func RecordGateRejection(reason string) {
	GateRejections.With(prometheus.Labels{"reason": reason}).Inc()
}

// RecordModuleDenied records a guard denial for a module
func RecordModuleDenied(module string) {
	ModuleAccessDenied.With(prometheus.Labels{"module": module}).Inc()
}

// RecordTenantMismatch records a rejected cross-tenant create
func RecordTenantMismatch(entity string) {
	TenantMismatch.With(prometheus.Labels{"entity": entity}).Inc()
}

// SetAccessorCacheSize updates the accessor cache gauge
func SetAccessorCacheSize(n int) {
	AccessorCacheSize.Set(float64(n))
}

// TrackDBOperation measures a store operation; use as defer TrackDBOperation(op, entity)(time.Now())
func TrackDBOperation(operation, entity string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
			"entity":    entity,
		}).Observe(time.Since(start).Seconds())
	}
}
