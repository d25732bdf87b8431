package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/yuriy-kovalchuk/livedns-manager/internal/livedns"
)

var (
	recordReconciles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livedns_record_reconciles_total",
			Help: "Record set reconciles by outcome.",
		},
		[]string{"action"},
	)

	recordReconcileErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "livedns_record_reconcile_errors_total",
			Help: "Record set reconciles that returned an error.",
		},
	)
)

func init() {
	metrics.Registry.MustRegister(recordReconciles, recordReconcileErrors)
}

func observeResult(res *livedns.Result) {
	if res == nil {
		return
	}
	recordReconciles.WithLabelValues(string(res.Action)).Inc()
}
