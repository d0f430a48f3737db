package services

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/entities"
	"felix-hub/internal/repositories"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/metrics"
	"felix-hub/pkg/utils"
)

type TimeLogServiceInterface interface {
	StartTimer(ctx context.Context, mechanicID, orderID uint64) (*dto.TimeLogDTO, error)
	StopTimer(ctx context.Context, mechanicID, orderID uint64, data dto.StopTimerDTO) (*dto.TimeLogDTO, error)
	AddManualTime(ctx context.Context, mechanicID, orderID uint64, data dto.ManualTimeDTO) (*dto.TimeLogDTO, error)
	GetActiveTimer(ctx context.Context, mechanicID uint64) (*dto.TimeLogDTO, error)
	GetHistory(ctx context.Context, mechanicID uint64, startDate, endDate string) (*dto.TimeHistoryDTO, error)
	GetStats(ctx context.Context, mechanicID uint64, allTime bool) (*dto.MechanicStatsDTO, error)
}

type TimeLogService struct {
	txManager     repositories.TxManagerInterface
	orderRepo     repositories.OrderRepositoryInterface
	timeLogRepo   repositories.TimeLogRepositoryInterface
	analyticsRepo repositories.AnalyticsRepositoryInterface
	logger        *zap.Logger
	now           func() time.Time
}

func NewTimeLogService(
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	timeLogRepo repositories.TimeLogRepositoryInterface,
	analyticsRepo repositories.AnalyticsRepositoryInterface,
	logger *zap.Logger,
) TimeLogServiceInterface {
	return &TimeLogService{
		txManager:     txManager,
		orderRepo:     orderRepo,
		timeLogRepo:   timeLogRepo,
		analyticsRepo: analyticsRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// StartTimer: второй активный таймер механика отсекает уникальный индекс (409).
func (s *TimeLogService) StartTimer(ctx context.Context, mechanicID, orderID uint64) (*dto.TimeLogDTO, error) {
	var started *entities.TimeLog
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := assignedOrder(ctx, s.orderRepo, tx, mechanicID, orderID, false); err != nil {
			return err
		}
		var err error
		started, err = s.timeLogRepo.StartTimer(ctx, tx, orderID, mechanicID, s.now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.TimersStarted.Inc()
	s.logger.Info("Таймер запущен", zap.Uint64("order_id", orderID), zap.Uint64("mechanic_id", mechanicID))
	out := timeLogToDTO(*started)
	return &out, nil
}

func (s *TimeLogService) StopTimer(ctx context.Context, mechanicID, orderID uint64, data dto.StopTimerDTO) (*dto.TimeLogDTO, error) {
	var stopped *entities.TimeLog
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		active, err := s.timeLogRepo.FindActiveForOrder(ctx, tx, orderID, mechanicID)
		if err != nil {
			return err
		}
		endedAt := s.now().UTC()
		duration := utils.WholeMinutes(active.StartedAt, endedAt)

		stopped, err = s.timeLogRepo.StopTimer(ctx, tx, active.ID, endedAt, duration, utils.EmptyToNil(data.Notes))
		if err != nil {
			return err
		}
		return s.orderRepo.AddTotalTime(ctx, tx, orderID, duration)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Таймер остановлен",
		zap.Uint64("order_id", orderID),
		zap.Uint64("mechanic_id", mechanicID),
		zap.Int("minutes", utils.SafeDeref(stopped.DurationMinutes)),
	)
	out := timeLogToDTO(*stopped)
	return &out, nil
}

func (s *TimeLogService) AddManualTime(ctx context.Context, mechanicID, orderID uint64, data dto.ManualTimeDTO) (*dto.TimeLogDTO, error) {
	if !data.EndedAt.After(data.StartedAt) {
		return nil, apperrors.NewBadRequestError("ended_at должен быть позже started_at")
	}
	duration := utils.WholeMinutes(data.StartedAt, data.EndedAt)
	if data.DurationMinutes != nil {
		duration = *data.DurationMinutes
	}

	var created *entities.TimeLog
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := assignedOrder(ctx, s.orderRepo, tx, mechanicID, orderID, true); err != nil {
			return err
		}
		endedAt := data.EndedAt.UTC()
		var err error
		created, err = s.timeLogRepo.CreateManual(ctx, tx, entities.TimeLog{
			OrderID:         orderID,
			MechanicID:      mechanicID,
			StartedAt:       data.StartedAt.UTC(),
			EndedAt:         &endedAt,
			DurationMinutes: &duration,
			Notes:           utils.EmptyToNil(data.Notes),
		})
		if err != nil {
			return err
		}
		return s.orderRepo.AddTotalTime(ctx, tx, orderID, duration)
	})
	if err != nil {
		return nil, err
	}
	out := timeLogToDTO(*created)
	return &out, nil
}

// GetActiveTimer возвращает nil, если таймер не запущен.
func (s *TimeLogService) GetActiveTimer(ctx context.Context, mechanicID uint64) (*dto.TimeLogDTO, error) {
	active, err := s.timeLogRepo.FindActive(ctx, mechanicID)
	if err != nil || active == nil {
		return nil, err
	}
	out := timeLogToDTO(*active)
	return &out, nil
}

func (s *TimeLogService) GetHistory(ctx context.Context, mechanicID uint64, startDate, endDate string) (*dto.TimeHistoryDTO, error) {
	from, to, err := utils.ParseDateRange(startDate, endDate, s.now())
	if err != nil {
		return nil, apperrors.NewHttpError(400, err.Error(), err, nil)
	}

	logs, err := s.timeLogRepo.GetHistory(ctx, mechanicID, from, to)
	if err != nil {
		return nil, err
	}

	history := &dto.TimeHistoryDTO{Sessions: timeLogsToDTO(logs)}
	orders := make(map[uint64]struct{})
	for _, l := range logs {
		history.Stats.TotalMinutes += utils.SafeDeref(l.DurationMinutes)
		orders[l.OrderID] = struct{}{}
	}
	history.Stats.SessionsCount = len(logs)
	history.Stats.OrdersCount = len(orders)
	return history, nil
}

func (s *TimeLogService) GetStats(ctx context.Context, mechanicID uint64, allTime bool) (*dto.MechanicStatsDTO, error) {
	today := utils.StartOfDay(s.now())

	counts, err := s.analyticsRepo.MechanicOrderCounts(ctx, mechanicID, today)
	if err != nil {
		return nil, err
	}
	minutesToday, err := s.timeLogRepo.SumMinutes(ctx, mechanicID, &today)
	if err != nil {
		return nil, err
	}

	stats := &dto.MechanicStatsDTO{
		ActiveOrders:     counts.Active,
		CompletedToday:   counts.CompletedSince,
		TimeTodayMinutes: minutesToday,
	}
	if allTime {
		total, err := s.timeLogRepo.SumMinutes(ctx, mechanicID, nil)
		if err != nil {
			return nil, err
		}
		avg := math.Round(counts.AvgOrderTime*10) / 10
		stats.TotalMinutes = &total
		stats.TotalCompleted = &counts.TotalCompleted
		stats.AvgOrderTime = &avg
	}
	return stats, nil
}
