package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/repositories"
	"felix-hub/pkg/constants"
	"felix-hub/pkg/telegram"
	"felix-hub/pkg/utils"
)

const (
	OverallNotificationType = "overall"

	alertSuccessRateWarning  = 99.0
	alertSuccessRateCritical = 95.0
	alertFailureSpike        = 10
	staleOrderAge            = 24 * time.Hour
	dashboardDays            = 7
	dashboardHours           = 24

	HealthHealthy  = "healthy"
	HealthWarning  = "warning"
	HealthCritical = "critical"
)

// BreakerSource отдаёт состояние предохранителей внешних вызовов (сейчас только Telegram).
type BreakerSource interface {
	Breakers() []telegram.BreakerStatus
}

type AnalyticsServiceInterface interface {
	OrdersPerDay(ctx context.Context, days int) ([]dto.DailyOrdersDTO, error)
	StatusChanges(ctx context.Context, days int) ([]dto.StatusChangeDTO, error)
	NotificationSuccessRate(ctx context.Context, hours int) ([]dto.NotificationRateDTO, error)
	NotificationFailures(ctx context.Context, hours, limit int) ([]dto.NotificationFailureDTO, error)
	DailySummary(ctx context.Context) (*dto.DailySummaryDTO, error)
	Alerts(ctx context.Context) ([]dto.AlertDTO, error)
	CircuitBreakers(ctx context.Context) []dto.CircuitBreakerDTO
	Dashboard(ctx context.Context) (*dto.DashboardDTO, error)
}

type AnalyticsService struct {
	analyticsRepo       repositories.AnalyticsRepositoryInterface
	notificationLogRepo repositories.NotificationLogRepositoryInterface
	breakers            BreakerSource
	logger              *zap.Logger
	now                 func() time.Time
}

func NewAnalyticsService(
	analyticsRepo repositories.AnalyticsRepositoryInterface,
	notificationLogRepo repositories.NotificationLogRepositoryInterface,
	breakers BreakerSource,
	logger *zap.Logger,
) AnalyticsServiceInterface {
	return &AnalyticsService{
		analyticsRepo:       analyticsRepo,
		notificationLogRepo: notificationLogRepo,
		breakers:            breakers,
		logger:              logger,
		now:                 time.Now,
	}
}

func (s *AnalyticsService) OrdersPerDay(ctx context.Context, days int) ([]dto.DailyOrdersDTO, error) {
	return s.analyticsRepo.OrdersPerDay(ctx, s.now().AddDate(0, 0, -days))
}

func (s *AnalyticsService) StatusChanges(ctx context.Context, days int) ([]dto.StatusChangeDTO, error) {
	return s.analyticsRepo.StatusChanges(ctx, s.now().AddDate(0, 0, -days))
}

// successRate в процентах, два знака. Без уведомлений - 100.
func successRate(successful, total int) float64 {
	if total == 0 {
		return 100
	}
	return math.Round(float64(successful)/float64(total)*10000) / 100
}

// NotificationSuccessRate: строки по типам и итоговая строка overall в конце.
func (s *AnalyticsService) NotificationSuccessRate(ctx context.Context, hours int) ([]dto.NotificationRateDTO, error) {
	rates, err := s.analyticsRepo.NotificationRates(ctx, s.now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		return nil, err
	}

	overall := dto.NotificationRateDTO{Type: OverallNotificationType}
	for i := range rates {
		rates[i].SuccessRate = successRate(rates[i].Successful, rates[i].Total)
		overall.Total += rates[i].Total
		overall.Successful += rates[i].Successful
	}
	overall.Failed = overall.Total - overall.Successful
	overall.SuccessRate = successRate(overall.Successful, overall.Total)
	return append(rates, overall), nil
}

func (s *AnalyticsService) NotificationFailures(ctx context.Context, hours, limit int) ([]dto.NotificationFailureDTO, error) {
	logs, err := s.notificationLogRepo.GetFailures(ctx, s.now().Add(-time.Duration(hours)*time.Hour), limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificationFailureDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.NotificationFailureDTO{
			ID:           l.ID,
			OrderID:      l.OrderID,
			Type:         l.Type,
			Recipient:    l.Recipient,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		})
	}
	return out, nil
}

func (s *AnalyticsService) DailySummary(ctx context.Context) (*dto.DailySummaryDTO, error) {
	today := utils.StartOfDay(s.now())

	byStatus, err := s.analyticsRepo.OrdersByStatusSince(ctx, today)
	if err != nil {
		return nil, err
	}
	rates, err := s.analyticsRepo.NotificationRates(ctx, today)
	if err != nil {
		return nil, err
	}

	summary := &dto.DailySummaryDTO{Date: today.Format(utils.DateLayout)}
	summary.Orders.ByStatus = byStatus
	for _, n := range byStatus {
		summary.Orders.Total += n
	}
	for _, r := range rates {
		summary.Notifications.Total += r.Total
		summary.Notifications.Successful += r.Successful
	}
	summary.Notifications.Failed = summary.Notifications.Total - summary.Notifications.Successful
	summary.Notifications.SuccessRate = successRate(summary.Notifications.Successful, summary.Notifications.Total)
	return summary, nil
}

// Alerts: падение доли доставленных уведомлений, зависшие новые заказы, всплеск ошибок.
func (s *AnalyticsService) Alerts(ctx context.Context) ([]dto.AlertDTO, error) {
	alerts := make([]dto.AlertDTO, 0)

	rates, err := s.NotificationSuccessRate(ctx, 1)
	if err != nil {
		return nil, err
	}
	overall := rates[len(rates)-1]
	if overall.Total > 0 && overall.SuccessRate < alertSuccessRateWarning {
		severity := "warning"
		if overall.SuccessRate < alertSuccessRateCritical {
			severity = "critical"
		}
		alerts = append(alerts, dto.AlertDTO{
			Severity: severity,
			Type:     "notification_failure_rate",
			Message:  fmt.Sprintf("Доля доставленных уведомлений %.2f%% (порог %.0f%%)", overall.SuccessRate, alertSuccessRateWarning),
			Details:  overall,
		})
	}

	stale, err := s.analyticsRepo.CountStaleOrders(ctx, constants.StatusNew, s.now().Add(-staleOrderAge))
	if err != nil {
		return nil, err
	}
	if stale > 0 {
		alerts = append(alerts, dto.AlertDTO{
			Severity: "warning",
			Type:     "stuck_orders",
			Message:  fmt.Sprintf("%d заказов в статусе «%s» дольше 24 ч", stale, constants.StatusNew),
			Count:    stale,
		})
	}

	failures, err := s.notificationLogRepo.GetFailures(ctx, s.now().Add(-time.Hour), alertFailureSpike)
	if err != nil {
		return nil, err
	}
	if len(failures) >= alertFailureSpike {
		alerts = append(alerts, dto.AlertDTO{
			Severity: "critical",
			Type:     "notification_failure_spike",
			Message:  fmt.Sprintf("%d ошибок отправки уведомлений за последний час", len(failures)),
			Count:    len(failures),
		})
	}

	for _, b := range s.CircuitBreakers(ctx) {
		switch b.State {
		case "open":
			alerts = append(alerts, dto.AlertDTO{
				Severity: "critical",
				Type:     "circuit_breaker_open",
				Message:  fmt.Sprintf("Предохранитель %s открыт, отправка приостановлена", b.Name),
				Details:  b,
			})
		case "half-open":
			alerts = append(alerts, dto.AlertDTO{
				Severity: "warning",
				Type:     "circuit_breaker_half_open",
				Message:  fmt.Sprintf("Предохранитель %s проверяет восстановление", b.Name),
				Details:  b,
			})
		}
	}

	if len(alerts) > 0 {
		s.logger.Warn("Активные предупреждения", zap.Int("count", len(alerts)))
	}
	return alerts, nil
}

func (s *AnalyticsService) CircuitBreakers(ctx context.Context) []dto.CircuitBreakerDTO {
	out := make([]dto.CircuitBreakerDTO, 0)
	if s.breakers == nil {
		return out
	}
	for _, b := range s.breakers.Breakers() {
		out = append(out, dto.CircuitBreakerDTO{
			Name:                b.Name,
			State:               b.State,
			Requests:            b.Requests,
			SuccessCount:        b.TotalSuccesses,
			FailureCount:        b.TotalFailures,
			ConsecutiveFailures: b.ConsecutiveFailures,
			LastFailureTime:     b.LastFailureAt,
		})
	}
	return out
}

// Dashboard собирает сводку, графики за неделю, доставку за сутки, предупреждения и предохранители.
// health_status - худшая severity среди предупреждений.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	summary, err := s.DailySummary(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.OrdersPerDay(ctx, dashboardDays)
	if err != nil {
		return nil, err
	}
	changes, err := s.StatusChanges(ctx, dashboardDays)
	if err != nil {
		return nil, err
	}
	rates, err := s.NotificationSuccessRate(ctx, dashboardHours)
	if err != nil {
		return nil, err
	}
	alerts, err := s.Alerts(ctx)
	if err != nil {
		return nil, err
	}

	board := &dto.DashboardDTO{
		HealthStatus:            HealthHealthy,
		Timestamp:               s.now().UTC().Format(time.RFC3339),
		DailySummary:            summary,
		OrdersLast7Days:         orders,
		StatusChangesLast7Days:  changes,
		NotificationSuccessRate: rates,
		Alerts:                  dto.DashboardAlertsDTO{Count: len(alerts), Items: alerts},
		CircuitBreakers:         s.CircuitBreakers(ctx),
	}
	for _, a := range alerts {
		switch a.Severity {
		case "critical":
			board.Alerts.Critical++
		case "warning":
			board.Alerts.Warnings++
		}
	}
	switch {
	case board.Alerts.Critical > 0:
		board.HealthStatus = HealthCritical
	case board.Alerts.Warnings > 0:
		board.HealthStatus = HealthWarning
	}
	return board, nil
}
