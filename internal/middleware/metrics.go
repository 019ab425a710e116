package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "refugio_redis_errors_total",
		Help: "Total number of Redis command errors.",
	},
	[]string{"command"},
)

// AdoptionRequestsSubmitted counts adoption request submissions (created or updated).
var AdoptionRequestsSubmitted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "refugio_adoption_requests_total",
		Help: "Total number of adoption request submissions.",
	},
	[]string{"outcome"},
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
