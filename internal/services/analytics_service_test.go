package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/entities"
	"felix-hub/internal/repositories"
	"felix-hub/pkg/constants"
	"felix-hub/pkg/telegram"
)

func TestSuccessRate(t *testing.T) {
	assert.Equal(t, 100.0, successRate(0, 0))
	assert.Equal(t, 66.67, successRate(2, 3))
	assert.Equal(t, 0.0, successRate(0, 5))
}

func TestAnalyticsService_NotificationSuccessRate(t *testing.T) {
	repo := &fakeAnalyticsRepo{rates: []dto.NotificationRateDTO{
		{Type: constants.NotificationNewOrder, Total: 10, Successful: 9},
		{Type: constants.NotificationStatusChanged, Total: 10, Successful: 10},
	}}
	svc := NewAnalyticsService(repo, &fakeNotificationLogRepo{}, nil, zap.NewNop())

	rates, err := svc.NotificationSuccessRate(context.Background(), 24)
	require.NoError(t, err)
	require.Len(t, rates, 3)
	assert.Equal(t, 90.0, rates[0].SuccessRate)

	overall := rates[2]
	assert.Equal(t, OverallNotificationType, overall.Type)
	assert.Equal(t, 20, overall.Total)
	assert.Equal(t, 1, overall.Failed)
	assert.Equal(t, 95.0, overall.SuccessRate)
}

func TestAnalyticsService_Alerts(t *testing.T) {
	t.Run("всё спокойно", func(t *testing.T) {
		repo := &fakeAnalyticsRepo{rates: []dto.NotificationRateDTO{{Type: "new_order", Total: 100, Successful: 100}}}
		svc := NewAnalyticsService(repo, &fakeNotificationLogRepo{}, nil, zap.NewNop())

		alerts, err := svc.Alerts(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, alerts)
		assert.Empty(t, alerts)
	})

	t.Run("низкая доставка и зависшие заказы", func(t *testing.T) {
		repo := &fakeAnalyticsRepo{
			rates: []dto.NotificationRateDTO{{Type: "new_order", Total: 100, Successful: 97}},
			stale: 4,
		}
		svc := NewAnalyticsService(repo, &fakeNotificationLogRepo{}, nil, zap.NewNop())

		alerts, err := svc.Alerts(context.Background())
		require.NoError(t, err)
		require.Len(t, alerts, 2)
		assert.Equal(t, "warning", alerts[0].Severity)
		assert.Equal(t, "notification_failure_rate", alerts[0].Type)
		assert.Equal(t, "stuck_orders", alerts[1].Type)
		assert.Equal(t, 4, alerts[1].Count)
	})

	t.Run("всплеск ошибок", func(t *testing.T) {
		failures := make([]entities.NotificationLog, 12)
		repo := &fakeAnalyticsRepo{rates: []dto.NotificationRateDTO{{Type: "new_order", Total: 20, Successful: 8}}}
		svc := NewAnalyticsService(repo, &fakeNotificationLogRepo{failures: failures}, nil, zap.NewNop())

		alerts, err := svc.Alerts(context.Background())
		require.NoError(t, err)
		require.Len(t, alerts, 2)
		assert.Equal(t, "critical", alerts[0].Severity)
		assert.Equal(t, "notification_failure_spike", alerts[1].Type)
		assert.Equal(t, 10, alerts[1].Count, "выборка ограничена порогом")
	})
}

func TestAnalyticsService_DailySummary(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		byStatus: map[string]int{constants.StatusNew: 3, constants.StatusReady: 2},
		rates:    []dto.NotificationRateDTO{{Type: "new_order", Total: 4, Successful: 3}},
	}
	svc := NewAnalyticsService(repo, &fakeNotificationLogRepo{}, nil, zap.NewNop()).(*AnalyticsService)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC) }

	summary, err := svc.DailySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", summary.Date)
	assert.Equal(t, 5, summary.Orders.Total)
	assert.Equal(t, 1, summary.Notifications.Failed)
	assert.Equal(t, 75.0, summary.Notifications.SuccessRate)
}

func TestAnalyticsService_DailySummaryCountsUTCDay(t *testing.T) {
	svc := NewAnalyticsService(&fakeAnalyticsRepo{}, &fakeNotificationLogRepo{}, nil, zap.NewNop()).(*AnalyticsService)
	// 02:00 11 марта по UTC+5 - в UTC ещё 10 марта
	svc.now = func() time.Time { return time.Date(2026, 3, 11, 2, 0, 0, 0, time.FixedZone("UTC+5", 5*3600)) }

	summary, err := svc.DailySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", summary.Date)
}

type fakeBreakers []telegram.BreakerStatus

func (f fakeBreakers) Breakers() []telegram.BreakerStatus { return f }

func TestAnalyticsService_CircuitBreakers(t *testing.T) {
	t.Run("без источника - пустой список", func(t *testing.T) {
		svc := NewAnalyticsService(&fakeAnalyticsRepo{}, &fakeNotificationLogRepo{}, nil, zap.NewNop())
		breakers := svc.CircuitBreakers(context.Background())
		assert.NotNil(t, breakers)
		assert.Empty(t, breakers)
	})

	t.Run("открытый предохранитель - критичное предупреждение", func(t *testing.T) {
		failedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		source := fakeBreakers{{Name: "telegram", State: "open", TotalFailures: 5, ConsecutiveFailures: 5, LastFailureAt: &failedAt}}
		svc := NewAnalyticsService(&fakeAnalyticsRepo{}, &fakeNotificationLogRepo{}, source, zap.NewNop())

		breakers := svc.CircuitBreakers(context.Background())
		require.Len(t, breakers, 1)
		assert.Equal(t, uint32(5), breakers[0].FailureCount)
		assert.Equal(t, &failedAt, breakers[0].LastFailureTime)

		alerts, err := svc.Alerts(context.Background())
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, "critical", alerts[0].Severity)
		assert.Equal(t, "circuit_breaker_open", alerts[0].Type)
	})
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	testCases := []struct {
		name       string
		repo       *fakeAnalyticsRepo
		breakers   fakeBreakers
		wantHealth string
		wantAlerts [2]int
	}{
		{
			name:       "всё в порядке",
			repo:       &fakeAnalyticsRepo{rates: []dto.NotificationRateDTO{{Type: "new_order", Total: 10, Successful: 10}}},
			breakers:   fakeBreakers{{Name: "telegram", State: "closed"}},
			wantHealth: HealthHealthy,
		},
		{
			name:       "зависшие заказы",
			repo:       &fakeAnalyticsRepo{stale: 2},
			breakers:   fakeBreakers{{Name: "telegram", State: "half-open"}},
			wantHealth: HealthWarning,
			wantAlerts: [2]int{0, 2},
		},
		{
			name:       "предохранитель открыт",
			repo:       &fakeAnalyticsRepo{stale: 1},
			breakers:   fakeBreakers{{Name: "telegram", State: "open"}},
			wantHealth: HealthCritical,
			wantAlerts: [2]int{1, 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewAnalyticsService(tc.repo, &fakeNotificationLogRepo{}, tc.breakers, zap.NewNop()).(*AnalyticsService)
			svc.now = func() time.Time { return time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC) }

			board, err := svc.Dashboard(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.wantHealth, board.HealthStatus)
			assert.Equal(t, "2026-03-10T15:30:00Z", board.Timestamp)
			assert.Equal(t, "2026-03-10", board.DailySummary.Date)
			assert.Equal(t, tc.wantAlerts[0], board.Alerts.Critical)
			assert.Equal(t, tc.wantAlerts[1], board.Alerts.Warnings)
			assert.Equal(t, tc.wantAlerts[0]+tc.wantAlerts[1], board.Alerts.Count)
			require.Len(t, board.CircuitBreakers, 1)
			assert.Equal(t, tc.breakers[0].State, board.CircuitBreakers[0].State)

			overall := board.NotificationSuccessRate[len(board.NotificationSuccessRate)-1]
			assert.Equal(t, OverallNotificationType, overall.Type)
		})
	}
}

func TestExportService_ExportOrders(t *testing.T) {
	orders := newFakeOrderRepo()
	carNumber := "1234567"
	orders.put(entities.Order{
		MechanicName: "Иван", Category: "Тормоза", VIN: carNumber, CarNumber: &carNumber,
		SelectedParts: []entities.OrderPart{{Name: "Колодки", Quantity: 2}, {Name: "Диски", Quantity: 1}},
		IsOriginal:    true, Status: constants.StatusReady, WorkStatus: constants.WorkStatusCompleted, Printed: true,
	})
	orders.put(entities.Order{MechanicName: "Пётр", Category: "Двигатель", VIN: "VIN0001", Status: constants.StatusNew})

	svc := NewExportService(orders, zap.NewNop()).(*ExportService)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

	file, err := svc.ExportOrders(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Equal(t, "felix_orders_20260310.xlsx", file.FileName)
	assert.Equal(t, 2, file.Rows)
	assert.Contains(t, orders.lastFilter.Filter, repositories.OrderFilterCreatedFrom)

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "Иван", rows[1][2])
	assert.Equal(t, "1234567", rows[1][5])
	assert.Equal(t, "Колодки x2, Диски", rows[1][6])
	assert.Equal(t, "Да", rows[1][7])
	assert.Equal(t, "Нет", rows[2][7])
}

func TestExportService_Validation(t *testing.T) {
	orders := newFakeOrderRepo()
	svc := NewExportService(orders, zap.NewNop())

	_, err := svc.ExportOrders(context.Background(), 0, "")
	assert.Equal(t, 400, httpCode(err))
	_, err = svc.ExportOrders(context.Background(), MaxExportDays+1, "")
	assert.Equal(t, 400, httpCode(err))
	_, err = svc.ExportOrders(context.Background(), 30, "архив")
	assert.Equal(t, 400, httpCode(err))

	_, err = svc.ExportOrders(context.Background(), 30, constants.StatusReady)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusReady, orders.lastFilter.Filter["status"])
}
