package services

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/entities"
	"felix-hub/internal/repositories"
	"felix-hub/pkg/constants"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/metrics"
	"felix-hub/pkg/types"
	"felix-hub/pkg/utils"
)

// OrderWorkServiceInterface - работа механика с назначенными ему заказами.
type OrderWorkServiceInterface interface {
	GetAssignedOrders(ctx context.Context, mechanicID uint64, filter types.Filter) ([]dto.OrderDTO, uint64, error)
	GetOrderDetails(ctx context.Context, mechanicID, orderID uint64) (*dto.OrderDetailsDTO, error)
	UpdateWorkStatus(ctx context.Context, mechanicID, orderID uint64, status string) (*dto.OrderDTO, error)
	AddComment(ctx context.Context, mechanicID, orderID uint64, data dto.CreateCommentDTO) (*dto.CommentDTO, error)
	GetComments(ctx context.Context, mechanicID, orderID uint64) ([]dto.CommentDTO, error)
	AddCustomWork(ctx context.Context, mechanicID, orderID uint64, data dto.CreateCustomWorkDTO) (*dto.CustomWorkDTO, error)
	AddCustomPart(ctx context.Context, mechanicID, orderID uint64, data dto.CreateCustomPartDTO) (*dto.CustomPartDTO, error)
}

type OrderWorkService struct {
	txManager      repositories.TxManagerInterface
	orderRepo      repositories.OrderRepositoryInterface
	commentRepo    repositories.OrderCommentRepositoryInterface
	customRepo     repositories.CustomItemRepositoryInterface
	timeLogRepo    repositories.TimeLogRepositoryInterface
	assignmentRepo repositories.AssignmentRepositoryInterface
	historyRepo    repositories.OrderHistoryRepositoryInterface
	logger         *zap.Logger
}

func NewOrderWorkService(
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	commentRepo repositories.OrderCommentRepositoryInterface,
	customRepo repositories.CustomItemRepositoryInterface,
	timeLogRepo repositories.TimeLogRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	historyRepo repositories.OrderHistoryRepositoryInterface,
	logger *zap.Logger,
) OrderWorkServiceInterface {
	return &OrderWorkService{
		txManager:      txManager,
		orderRepo:      orderRepo,
		commentRepo:    commentRepo,
		customRepo:     customRepo,
		timeLogRepo:    timeLogRepo,
		assignmentRepo: assignmentRepo,
		historyRepo:    historyRepo,
		logger:         logger,
	}
}

// assignedOrder отдаёт заказ, только если он назначен механику. Чужой заказ - 404.
func assignedOrder(ctx context.Context, repo repositories.OrderRepositoryInterface, tx pgx.Tx, mechanicID, orderID uint64, forUpdate bool) (*entities.Order, error) {
	var (
		order *entities.Order
		err   error
	)
	if forUpdate {
		order, err = repo.FindOrderForUpdate(ctx, tx, orderID)
	} else {
		order, err = repo.FindOrder(ctx, tx, orderID)
	}
	if err != nil {
		return nil, err
	}
	if order.AssignedMechanicID == nil || *order.AssignedMechanicID != mechanicID {
		return nil, apperrors.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderWorkService) GetAssignedOrders(ctx context.Context, mechanicID uint64, filter types.Filter) ([]dto.OrderDTO, uint64, error) {
	if filter.Filter == nil {
		filter.Filter = make(map[string]interface{})
	}
	// в SPA механика status - это статус работ
	if status, ok := filter.Filter["status"].(string); ok {
		delete(filter.Filter, "status")
		if !constants.IsValidWorkStatus(status) && !strings.Contains(status, ",") {
			return nil, 0, apperrors.NewBadRequestError("Неверный статус работ: " + status)
		}
		filter.Filter["work_status"] = status
	}
	filter.Filter["assigned_mechanic_id"] = mechanicID
	if len(filter.Sort) == 0 {
		filter.Sort = map[string]string{"updated_at": "desc"}
	}

	orders, total, err := s.orderRepo.GetOrders(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ordersToDTO(orders), total, nil
}

func (s *OrderWorkService) GetOrderDetails(ctx context.Context, mechanicID, orderID uint64) (*dto.OrderDetailsDTO, error) {
	order, err := assignedOrder(ctx, s.orderRepo, nil, mechanicID, orderID, false)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.GetComments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	logs, err := s.timeLogRepo.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	works, err := s.customRepo.GetWorks(ctx, orderID)
	if err != nil {
		return nil, err
	}
	parts, err := s.customRepo.GetParts(ctx, orderID)
	if err != nil {
		return nil, err
	}
	history, err := s.historyRepo.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	details := &dto.OrderDetailsDTO{
		OrderDTO:    orderToDTO(*order),
		Comments:    make([]dto.CommentDTO, 0, len(comments)),
		TimeLogs:    timeLogsToDTO(logs),
		CustomWorks: make([]dto.CustomWorkDTO, 0, len(works)),
		CustomParts: make([]dto.CustomPartDTO, 0, len(parts)),
		History:     make([]dto.OrderHistoryDTO, 0, len(history)),
	}
	for _, c := range comments {
		details.Comments = append(details.Comments, commentToDTO(c))
	}
	for _, w := range works {
		details.CustomWorks = append(details.CustomWorks, customWorkToDTO(w))
	}
	for _, p := range parts {
		details.CustomParts = append(details.CustomParts, customPartToDTO(p))
	}
	for _, h := range history {
		details.History = append(details.History, historyToDTO(h))
	}
	return details, nil
}

func (s *OrderWorkService) UpdateWorkStatus(ctx context.Context, mechanicID, orderID uint64, status string) (*dto.OrderDTO, error) {
	if !constants.IsValidWorkStatus(status) {
		return nil, apperrors.NewBadRequestError("Неверный статус работ: " + status)
	}

	var (
		updated *entities.Order
		changed bool
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, err := assignedOrder(ctx, s.orderRepo, tx, mechanicID, orderID, true)
		if err != nil {
			return err
		}
		if !constants.CanTransitWork(order.WorkStatus, status) {
			return apperrors.NewHttpError(400,
				"Нельзя перевести заказ из «"+order.WorkStatus+"» в «"+status+"»",
				apperrors.ErrInvalidTransition, nil)
		}

		if order.WorkStatus != status {
			old := order.WorkStatus
			order.WorkStatus = status
			if err := s.orderRepo.UpdateOrder(ctx, tx, *order); err != nil {
				return err
			}
			if err := s.assignmentRepo.UpdateStatus(ctx, tx, orderID, mechanicID, constants.AssignmentStatusFor(status)); err != nil {
				return err
			}
			if err := s.historyRepo.CreateHistoryEvent(ctx, tx, entities.OrderHistory{
				OrderID:  orderID,
				Event:    constants.HistoryEventWorkStatus,
				OldValue: &old,
				NewValue: &status,
				Actor:    utils.ActorFromCtx(ctx),
			}); err != nil {
				return err
			}
			changed = true
		}

		updated, err = s.orderRepo.FindOrder(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		metrics.StatusChanges.WithLabelValues(constants.HistoryEventWorkStatus, status).Inc()
		s.logger.Info("Статус работ изменён",
			zap.Uint64("order_id", orderID),
			zap.Uint64("mechanic_id", mechanicID),
			zap.String("work_status", status),
		)
	}
	out := orderToDTO(*updated)
	return &out, nil
}

func (s *OrderWorkService) AddComment(ctx context.Context, mechanicID, orderID uint64, data dto.CreateCommentDTO) (*dto.CommentDTO, error) {
	text := strings.TrimSpace(data.Comment)
	if text == "" {
		return nil, apperrors.NewBadRequestError("Комментарий не может быть пустым")
	}

	var created *entities.OrderComment
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := assignedOrder(ctx, s.orderRepo, tx, mechanicID, orderID, true); err != nil {
			return err
		}
		var err error
		created, err = s.commentRepo.CreateComment(ctx, tx, entities.OrderComment{
			OrderID:    orderID,
			MechanicID: &mechanicID,
			Comment:    text,
		})
		if err != nil {
			return err
		}
		return s.orderRepo.IncrementComments(ctx, tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	out := commentToDTO(*created)
	return &out, nil
}

func (s *OrderWorkService) GetComments(ctx context.Context, mechanicID, orderID uint64) ([]dto.CommentDTO, error) {
	if _, err := assignedOrder(ctx, s.orderRepo, nil, mechanicID, orderID, false); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.GetComments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CommentDTO, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentToDTO(c))
	}
	return out, nil
}

func (s *OrderWorkService) AddCustomWork(ctx context.Context, mechanicID, orderID uint64, data dto.CreateCustomWorkDTO) (*dto.CustomWorkDTO, error) {
	name := strings.TrimSpace(data.Name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("Название работы обязательно")
	}

	var created *entities.CustomWorkItem
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := assignedOrder(ctx, s.orderRepo, tx, mechanicID, orderID, false); err != nil {
			return err
		}
		var err error
		created, err = s.customRepo.CreateWork(ctx, tx, entities.CustomWorkItem{
			OrderID:              orderID,
			Name:                 name,
			Description:          utils.EmptyToNil(data.Description),
			Price:                data.Price,
			EstimatedTimeMinutes: data.EstimatedTimeMinutes,
			AddedByMechanicID:    &mechanicID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Добавлена работа", zap.Uint64("order_id", orderID), zap.String("name", name))
	out := customWorkToDTO(*created)
	return &out, nil
}

func (s *OrderWorkService) AddCustomPart(ctx context.Context, mechanicID, orderID uint64, data dto.CreateCustomPartDTO) (*dto.CustomPartDTO, error) {
	name := strings.TrimSpace(data.Name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("Название детали обязательно")
	}
	quantity := 1
	if data.Quantity != nil {
		quantity = *data.Quantity
	}

	var created *entities.CustomPartItem
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := assignedOrder(ctx, s.orderRepo, tx, mechanicID, orderID, false); err != nil {
			return err
		}
		var err error
		created, err = s.customRepo.CreatePart(ctx, tx, entities.CustomPartItem{
			OrderID:           orderID,
			Name:              name,
			PartNumber:        utils.EmptyToNil(data.PartNumber),
			Price:             data.Price,
			Quantity:          quantity,
			AddedByMechanicID: &mechanicID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Добавлена деталь", zap.Uint64("order_id", orderID), zap.String("name", name))
	out := customPartToDTO(*created)
	return &out, nil
}
