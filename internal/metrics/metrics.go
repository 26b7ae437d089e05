package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, recorded by the metrics middleware.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Till and order metrics, recorded by the service layer.
var (
	RegistersOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "till_registers_opened_total",
		Help: "Number of cash register sessions opened",
	})

	RegistersClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "till_registers_closed_total",
		Help: "Number of cash register sessions closed",
	})

	// TillBalance tracks the running balance of the currently open register.
	TillBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "till_running_balance",
		Help: "Running balance of the open cash register",
	})

	TillTransactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "till_transactions_total",
			Help: "Number of register transactions recorded, by type",
		},
		[]string{"type"},
	)

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Number of orders opened",
	})

	PaymentsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_completed_total",
		Help: "Number of fully settled order payments",
	})

	PaymentAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_amount_total",
		Help: "Total amount settled through completed payments",
	})
)
