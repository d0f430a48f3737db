package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "felix_orders_created_total",
		Help: "Количество созданных заказов по источнику",
	}, []string{"source"})

	StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "felix_order_status_changes_total",
		Help: "Смены статуса заказов",
	}, []string{"kind", "status"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "felix_notifications_total",
		Help: "Отправленные уведомления Telegram по результату",
	}, []string{"type", "result"})

	TimersStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "felix_timers_started_total",
		Help: "Запущенные таймеры работ",
	})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "felix_login_attempts_total",
		Help: "Попытки входа механиков",
	}, []string{"result"})

	// CircuitBreakerState: 0 - closed, 1 - half-open, 2 - open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "felix_circuit_breaker_state",
		Help: "Состояние предохранителей внешних вызовов",
	}, []string{"name"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "felix_http_request_duration_seconds",
		Help:    "Длительность HTTP-запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
)

// Middleware меряет длительность запросов по шаблону маршрута, а не по сырому пути.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			code := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					code = he.Code
				}
			}
			httpDuration.WithLabelValues(c.Request().Method, route, strconv.Itoa(code)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler отдаёт метрики в формате Prometheus.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
