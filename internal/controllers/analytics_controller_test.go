package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/services"
)

type stubAnalyticsService struct {
	services.AnalyticsServiceInterface

	breakers     []dto.CircuitBreakerDTO
	board        *dto.DashboardDTO
	dashboardErr error
	lastDays     int
}

func (s *stubAnalyticsService) OrdersPerDay(ctx context.Context, days int) ([]dto.DailyOrdersDTO, error) {
	s.lastDays = days
	return []dto.DailyOrdersDTO{}, nil
}

func (s *stubAnalyticsService) CircuitBreakers(ctx context.Context) []dto.CircuitBreakerDTO {
	return s.breakers
}

func (s *stubAnalyticsService) Dashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	return s.board, s.dashboardErr
}

func newAnalyticsEcho(svc *stubAnalyticsService) *echo.Echo {
	e := echo.New()
	ctrl := NewAnalyticsController(svc, zap.NewNop())
	e.GET("/api/metrics/orders/daily", ctrl.OrdersDaily)
	e.GET("/api/metrics/circuit-breakers", ctrl.CircuitBreakers)
	e.GET("/api/metrics/dashboard", ctrl.Dashboard)
	return e
}

func TestAnalyticsController_OrdersDailyRange(t *testing.T) {
	svc := &stubAnalyticsService{}
	e := newAnalyticsEcho(svc)

	rec := doRequest(e, http.MethodGet, "/api/metrics/orders/daily", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, svc.lastDays)

	rec = doRequest(e, http.MethodGet, "/api/metrics/orders/daily?days=366", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsController_CircuitBreakers(t *testing.T) {
	svc := &stubAnalyticsService{breakers: []dto.CircuitBreakerDTO{{Name: "telegram", State: "open", FailureCount: 5}}}
	e := newAnalyticsEcho(svc)

	rec := doRequest(e, http.MethodGet, "/api/metrics/circuit-breakers", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Body struct {
			CircuitBreakers []dto.CircuitBreakerDTO `json:"circuit_breakers"`
		} `json:"body"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Body.CircuitBreakers, 1)
	assert.Equal(t, "open", env.Body.CircuitBreakers[0].State)
	assert.Equal(t, uint32(5), env.Body.CircuitBreakers[0].FailureCount)
}

func TestAnalyticsController_Dashboard(t *testing.T) {
	t.Run("сводка", func(t *testing.T) {
		svc := &stubAnalyticsService{board: &dto.DashboardDTO{
			HealthStatus: services.HealthWarning,
			Alerts:       dto.DashboardAlertsDTO{Count: 1, Warnings: 1, Items: []dto.AlertDTO{{Severity: "warning", Type: "stuck_orders"}}},
		}}
		rec := doRequest(newAnalyticsEcho(svc), http.MethodGet, "/api/metrics/dashboard", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"health_status":"warning"`)
		assert.Contains(t, rec.Body.String(), `"stuck_orders"`)
	})

	t.Run("ошибка БД", func(t *testing.T) {
		svc := &stubAnalyticsService{dashboardErr: errors.New("connection refused")}
		rec := doRequest(newAnalyticsEcho(svc), http.MethodGet, "/api/metrics/dashboard", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
