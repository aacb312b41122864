// Package metrics provides datastore metrics for observability
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains Prometheus metrics for datastore operations
type DatastoreMetrics struct {
	registry *prometheus.Registry

	dbOperationsTotal      *prometheus.CounterVec
	dbOperationDuration    *prometheus.HistogramVec
	dbOperationErrorsTotal *prometheus.CounterVec

	dbTransactionsTotal   *prometheus.CounterVec
	dbTransactionDuration prometheus.Histogram

	dbQueryResultSizeHist *prometheus.HistogramVec
	dbTableRowCountGauge  *prometheus.GaugeVec
	slowQueriesTotal      prometheus.Counter

	// collectors is a slice of all collectors for easier iteration
	collectors []prometheus.Collector
}

// NewDatastoreMetrics creates and registers a new DatastoreMetrics instance.
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register datastore metrics: %w", err)
	}
	return m, nil
}

func (m *DatastoreMetrics) initMetrics() {
	m.dbOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datastore_db_operations_total",
		Help: "Total number of database operations",
	}, []string{"operation", "table", "status"})

	m.dbOperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "datastore_db_operation_duration_seconds",
		Help:    "Duration of database operations in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
	}, []string{"operation", "table"})

	m.dbOperationErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datastore_db_operation_errors_total",
		Help: "Total number of database operation errors",
	}, []string{"operation", "table", "error_type"})

	m.dbTransactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datastore_db_transactions_total",
		Help: "Total number of database transactions",
	}, []string{"status"})

	m.dbTransactionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "datastore_db_transaction_duration_seconds",
		Help:    "Duration of database transactions in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	m.dbQueryResultSizeHist = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "datastore_db_query_result_size",
		Help:    "Number of rows returned by queries",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"operation", "table"})

	m.dbTableRowCountGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "datastore_db_table_rows",
		Help: "Row count per table",
	}, []string{"table"})

	m.slowQueriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "datastore_slow_queries_total",
		Help: "Queries slower than the slow query threshold",
	})

	m.collectors = []prometheus.Collector{
		m.dbOperationsTotal,
		m.dbOperationDuration,
		m.dbOperationErrorsTotal,
		m.dbTransactionsTotal,
		m.dbTransactionDuration,
		m.dbQueryResultSizeHist,
		m.dbTableRowCountGauge,
		m.slowQueriesTotal,
	}
}

// Describe implements the prometheus.Collector interface
func (m *DatastoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the prometheus.Collector interface
func (m *DatastoreMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordDbOperation records a database operation
func (m *DatastoreMetrics) RecordDbOperation(operation, table, status string) {
	m.dbOperationsTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordDbOperationDuration records the duration of a database operation
func (m *DatastoreMetrics) RecordDbOperationDuration(operation, table string, duration float64) {
	m.dbOperationDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordDbOperationError records a database operation error
func (m *DatastoreMetrics) RecordDbOperationError(operation, table, errorType string) {
	m.dbOperationErrorsTotal.WithLabelValues(operation, table, errorType).Inc()
}

// RecordTransaction records a committed or rolled back transaction and its duration
func (m *DatastoreMetrics) RecordTransaction(status string, duration float64) {
	m.dbTransactionsTotal.WithLabelValues(status).Inc()
	m.dbTransactionDuration.Observe(duration)
}

// RecordQueryResultSize records the number of rows a query returned
func (m *DatastoreMetrics) RecordQueryResultSize(operation, table string, resultSize int) {
	m.dbQueryResultSizeHist.WithLabelValues(operation, table).Observe(float64(resultSize))
}

// UpdateTableRowCount sets the row count gauge of a table
func (m *DatastoreMetrics) UpdateTableRowCount(table string, rowCount int64) {
	m.dbTableRowCountGauge.WithLabelValues(table).Set(float64(rowCount))
}

// RecordSlowQuery counts a query that exceeded the slow threshold
func (m *DatastoreMetrics) RecordSlowQuery() {
	m.slowQueriesTotal.Inc()
}
