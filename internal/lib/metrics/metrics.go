// Package metrics объявляет метрики Prometheus сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "review_aggregator"

var (
	// HTTPRequestsTotal число обработанных запросов по шаблону маршрута.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Number of HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration время обработки запроса.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	SignupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Number of successful signups.",
	})

	TokensIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Number of bearer tokens issued in exchange for a confirmation code.",
	})

	// TokenExchangeFailuresTotal отказы при обмене кода, по причине.
	TokenExchangeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_exchange_failures_total",
		Help:      "Number of rejected confirmation code exchanges by reason.",
	}, []string{"reason"})

	ReviewsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_created_total",
		Help:      "Number of reviews created.",
	})

	// CatalogCacheRequests обращения к кешу справочников: hit, miss или error.
	CatalogCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_requests_total",
		Help:      "Catalog list cache lookups by result.",
	}, []string{"result"})

	ConfirmationsPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "confirmations_purged_total",
		Help:      "Number of expired confirmation codes removed by the scheduler.",
	})
)
