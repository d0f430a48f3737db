package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	uploadcfg "felix-hub/config"
	"felix-hub/internal/dto"
	"felix-hub/internal/entities"
	"felix-hub/internal/events"
	"felix-hub/internal/repositories"
	"felix-hub/pkg/config"
	"felix-hub/pkg/constants"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/filestorage"
	"felix-hub/pkg/imaging"
	"felix-hub/pkg/metrics"
	"felix-hub/pkg/types"
	"felix-hub/pkg/utils"
)

const (
	OrderSourceAPI      = "api"
	OrderSourceMechanic = "mechanic"

	maxVINLength       = 50
	maxCarNumberStored = 20
)

type OrderServiceInterface interface {
	GetOrders(ctx context.Context, filter types.Filter) ([]dto.OrderDTO, uint64, error)
	FindOrder(ctx context.Context, id uint64) (*dto.OrderDTO, error)
	GetOrderHistory(ctx context.Context, id uint64) ([]dto.OrderHistoryDTO, error)
	CreateOrder(ctx context.Context, data dto.CreateOrderDTO) (*dto.OrderDTO, error)
	CreateMechanicOrder(ctx context.Context, mechanicID uint64, data dto.CreateMechanicOrderDTO, photo io.Reader) (*dto.OrderDTO, error)
	UpdateOrder(ctx context.Context, id uint64, data dto.UpdateOrderDTO, rawBody []byte) (*dto.OrderDTO, error)
	DeleteOrder(ctx context.Context, id uint64) error
	PrintOrder(ctx context.Context, id uint64) (*dto.OrderDTO, error)
	AssignOrder(ctx context.Context, id uint64, mechanicID *uint64) (*dto.OrderDTO, error)
	UploadPhoto(ctx context.Context, id uint64, photo io.Reader) (*dto.OrderDTO, error)
	GetStats(ctx context.Context) (*dto.OrderStatsDTO, error)
}

type OrderService struct {
	txManager      repositories.TxManagerInterface
	orderRepo      repositories.OrderRepositoryInterface
	partRepo       repositories.PartRepositoryInterface
	categoryRepo   repositories.CategoryRepositoryInterface
	mechanicRepo   repositories.MechanicRepositoryInterface
	assignmentRepo repositories.AssignmentRepositoryInterface
	historyRepo    repositories.OrderHistoryRepositoryInterface
	fileStorage    filestorage.FileStorageInterface
	publisher      EventPublisher
	features       config.Features
	logger         *zap.Logger
	now            func() time.Time
}

func NewOrderService(
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	partRepo repositories.PartRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	mechanicRepo repositories.MechanicRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	historyRepo repositories.OrderHistoryRepositoryInterface,
	fileStorage filestorage.FileStorageInterface,
	publisher EventPublisher,
	features config.Features,
	logger *zap.Logger,
) OrderServiceInterface {
	return &OrderService{
		txManager:      txManager,
		orderRepo:      orderRepo,
		partRepo:       partRepo,
		categoryRepo:   categoryRepo,
		mechanicRepo:   mechanicRepo,
		assignmentRepo: assignmentRepo,
		historyRepo:    historyRepo,
		fileStorage:    fileStorage,
		publisher:      publisher,
		features:       features,
		logger:         logger,
		now:            time.Now,
	}
}

// normalizeOrderFilter проверяет значения фильтров и приводит ID к числу.
func normalizeOrderFilter(filter types.Filter) (types.Filter, error) {
	if filter.Filter == nil {
		filter.Filter = make(map[string]interface{})
	}
	if status, ok := filter.Filter["status"].(string); ok && !constants.IsValidOrderStatus(status) && !strings.Contains(status, ",") {
		return filter, apperrors.NewBadRequestError("Неверный статус: " + status)
	}
	if ws, ok := filter.Filter["work_status"].(string); ok && !constants.IsValidWorkStatus(ws) && !strings.Contains(ws, ",") {
		return filter, apperrors.NewBadRequestError("Неверный статус работ: " + ws)
	}
	if raw, ok := filter.Filter["assigned_mechanic_id"].(string); ok {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, apperrors.NewBadRequestError("assigned_mechanic_id должен быть числом")
		}
		filter.Filter["assigned_mechanic_id"] = id
	}
	return filter, nil
}

func (s *OrderService) GetOrders(ctx context.Context, filter types.Filter) ([]dto.OrderDTO, uint64, error) {
	filter, err := normalizeOrderFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	orders, total, err := s.orderRepo.GetOrders(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ordersToDTO(orders), total, nil
}

func (s *OrderService) FindOrder(ctx context.Context, id uint64) (*dto.OrderDTO, error) {
	order, err := s.orderRepo.FindOrder(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	out := orderToDTO(*order)
	return &out, nil
}

func (s *OrderService) GetOrderHistory(ctx context.Context, id uint64) ([]dto.OrderHistoryDTO, error) {
	if _, err := s.orderRepo.FindOrder(ctx, nil, id); err != nil {
		return nil, err
	}
	history, err := s.historyRepo.GetByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderHistoryDTO, 0, len(history))
	for _, h := range history {
		out = append(out, historyToDTO(h))
	}
	return out, nil
}

// resolveVehicle возвращает VIN и нормализованный номер авто с учётом флагов.
func (s *OrderService) resolveVehicle(vinRaw json.RawMessage, carNumberInputs ...*string) (string, *string, error) {
	var vinInput *string
	if !isAbsent(vinRaw) {
		var v string
		if err := json.Unmarshal(vinRaw, &v); err != nil {
			return "", nil, apperrors.NewBadRequestError("vin должен быть строкой")
		}
		vinInput = &v
	}

	var carInput string
	for _, in := range carNumberInputs {
		if in != nil && strings.TrimSpace(*in) != "" {
			carInput = *in
			break
		}
	}

	if s.features.EnableCarNumber {
		carNumber := utils.NormalizeCarNumber(carInput)
		if carNumber == "" && vinInput != nil {
			carNumber = utils.NormalizeCarNumber(*vinInput)
		}
		if carNumber == "" {
			return "", nil, apperrors.NewBadRequestError("carNumber обязателен при создании заказа")
		}
		if err := s.checkCarNumber(carNumber); err != nil {
			return "", nil, err
		}

		vin := carNumber
		if vinInput != nil && strings.TrimSpace(*vinInput) != "" {
			vin = utils.NormalizeCarNumber(*vinInput)
		}
		if len(vin) > maxVINLength {
			return "", nil, apperrors.NewBadRequestError("VIN слишком длинный")
		}
		return vin, &carNumber, nil
	}

	if vinInput == nil {
		return "", nil, apperrors.NewBadRequestError("Отсутствует обязательное поле: vin")
	}
	vin := strings.TrimSpace(*vinInput)
	if len([]rune(vin)) < utils.MinVINLength {
		return "", nil, apperrors.NewBadRequestError(fmt.Sprintf("VIN должен содержать минимум %d символа", utils.MinVINLength))
	}
	if len([]rune(vin)) > maxVINLength {
		return "", nil, apperrors.NewBadRequestError("VIN слишком длинный")
	}

	if carInput == "" {
		carInput = vin
	}
	carNumber := utils.NormalizeCarNumber(carInput)
	if len([]rune(carNumber)) > maxCarNumberStored {
		carNumber = string([]rune(carNumber)[:maxCarNumberStored])
	}
	return vin, utils.EmptyToNil(&carNumber), nil
}

func (s *OrderService) checkCarNumber(carNumber string) error {
	if len([]rune(carNumber)) > maxCarNumberStored {
		return apperrors.NewBadRequestError("carNumber слишком длинный")
	}
	if !s.features.AllowAnyCarNumber && !utils.IsValidCarNumber(carNumber) {
		return apperrors.NewBadRequestError(fmt.Sprintf(
			"carNumber должен содержать %d-%d символов и состоять из букв и цифр",
			utils.MinCarNumberLength, utils.MaxCarNumberLength))
	}
	return nil
}

func rawToString(raw json.RawMessage) (string, bool) {
	if isAbsent(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// partTypeFor согласует part_type и устаревший is_original.
func partTypeFor(partType *string, isOriginal *bool) (string, bool, error) {
	if partType != nil && *partType != "" {
		pt := strings.ToLower(strings.TrimSpace(*partType))
		switch pt {
		case constants.PartTypeOriginal, constants.PartTypeAnalog, constants.PartTypeAny:
			return pt, pt == constants.PartTypeOriginal, nil
		}
		return "", false, apperrors.NewBadRequestError("part_type должен быть original, analog или any")
	}
	if isOriginal == nil {
		return constants.PartTypeAny, false, nil
	}
	if *isOriginal {
		return constants.PartTypeOriginal, true, nil
	}
	return constants.PartTypeAnalog, false, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, data dto.CreateOrderDTO) (*dto.OrderDTO, error) {
	mechanicName := strings.TrimSpace(data.MechanicName)
	category := strings.TrimSpace(data.Category)
	telegramID, ok := rawToString(data.TelegramID)
	switch {
	case mechanicName == "":
		return nil, apperrors.NewBadRequestError("Отсутствует обязательное поле: mechanic_name")
	case !ok || telegramID == "":
		return nil, apperrors.NewBadRequestError("Отсутствует обязательное поле: telegram_id")
	case category == "":
		return nil, apperrors.NewBadRequestError("Отсутствует обязательное поле: category")
	}

	parts, err := resolveParts(ctx, data.Parts, data.SelectedParts, s.partRepo)
	if err != nil {
		return nil, err
	}

	vin, carNumber, err := s.resolveVehicle(data.VIN, data.CarNumberAlt, data.CarNumber)
	if err != nil {
		return nil, err
	}

	partType, isOriginal, err := partTypeFor(data.PartType, data.IsOriginal)
	if err != nil {
		return nil, err
	}

	language := constants.LangRU
	if data.Language != nil && *data.Language != "" {
		language = *data.Language
		if language != constants.LangRU && language != constants.LangHE && language != constants.LangEN {
			return nil, apperrors.NewBadRequestError("language должен быть ru, he или en")
		}
	}

	status := constants.StatusNew
	if data.Status != nil && *data.Status != "" {
		if !constants.IsValidOrderStatus(*data.Status) {
			return nil, apperrors.NewBadRequestError("Неверный статус: " + *data.Status)
		}
		status = *data.Status
	}

	if data.CategoryID != nil {
		if _, err := s.categoryRepo.FindCategory(ctx, *data.CategoryID); err != nil {
			return nil, err
		}
	}

	source := data.Source
	if source == "" {
		source = OrderSourceAPI
	}

	order := entities.Order{
		MechanicName:       mechanicName,
		TelegramID:         telegramID,
		Category:           category,
		CategoryID:         data.CategoryID,
		VIN:                vin,
		CarNumber:          carNumber,
		SelectedParts:      parts,
		PartType:           partType,
		IsOriginal:         isOriginal,
		PhotoURL:           utils.EmptyToNil(data.PhotoURL),
		Status:             status,
		Printed:            status == constants.StatusReady,
		Language:           language,
		AssignedMechanicID: data.AssignedMechanicID,
		WorkStatus:         constants.WorkStatusNew,
	}
	return s.insertOrder(ctx, order, source)
}

// insertOrder сохраняет заказ (и назначение, если есть) и публикует order.created.
func (s *OrderService) insertOrder(ctx context.Context, order entities.Order, source string) (*dto.OrderDTO, error) {
	var created *entities.Order
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, err := s.orderRepo.CreateOrder(ctx, tx, order)
		if err != nil {
			return err
		}
		if order.AssignedMechanicID != nil {
			if err := s.assignmentRepo.Upsert(ctx, tx, id, *order.AssignedMechanicID, constants.AssignmentAssigned); err != nil {
				return err
			}
			if err := s.writeHistory(ctx, tx, id, constants.HistoryEventAssign, nil, uintToPtrString(order.AssignedMechanicID)); err != nil {
				return err
			}
		}
		created, err = s.orderRepo.FindOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка создания заказа", zap.Error(err))
		return nil, err
	}

	metrics.OrdersCreated.WithLabelValues(source).Inc()
	s.logger.Info("Создан заказ",
		zap.Uint64("id", created.ID),
		zap.String("mechanic", created.MechanicName),
		zap.String("source", source),
	)
	s.publisher.Publish(ctx, events.OrderCreatedEvent{Order: *created, Source: source})

	out := orderToDTO(*created)
	return &out, nil
}

// CreateMechanicOrder - заказ из мастера механика: создатель и исполнитель - сам механик.
func (s *OrderService) CreateMechanicOrder(ctx context.Context, mechanicID uint64, data dto.CreateMechanicOrderDTO, photo io.Reader) (*dto.OrderDTO, error) {
	mechanic, err := s.mechanicRepo.FindMechanic(ctx, mechanicID)
	if err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.FindCategory(ctx, data.CategoryID)
	if err != nil {
		return nil, err
	}

	found, err := s.partRepo.FindPartsByIDs(ctx, data.PartIDs)
	if err != nil {
		return nil, err
	}
	parts := make([]entities.OrderPart, 0, len(data.PartIDs))
	for _, partID := range data.PartIDs {
		p, ok := found[partID]
		if !ok {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("Деталь с id %d не найдена", partID))
		}
		id := partID
		parts = append(parts, entities.OrderPart{PartID: &id, Name: p.NameRu, Quantity: 1})
	}

	carNumber := utils.NormalizeCarNumber(data.CarNumber)
	if carNumber == "" {
		return nil, apperrors.NewBadRequestError("carNumber обязателен при создании заказа")
	}
	if err := s.checkCarNumber(carNumber); err != nil {
		return nil, err
	}

	partType, isOriginal, err := partTypeFor(&data.PartType, nil)
	if err != nil {
		return nil, err
	}

	var photoURL *string
	if photo != nil {
		url, err := s.storePhoto(photo)
		if err != nil {
			return nil, err
		}
		photoURL = &url
	}

	language := data.Language
	if language == "" {
		language = constants.LangRU
	}

	telegramID := utils.SafeDeref(mechanic.TelegramID)
	if telegramID == "" {
		telegramID = "mechanic:" + strconv.FormatUint(mechanic.ID, 10)
	}

	order := entities.Order{
		MechanicName:       mechanic.Name,
		TelegramID:         telegramID,
		Category:           category.NameRu,
		CategoryID:         &category.ID,
		VIN:                carNumber,
		CarNumber:          &carNumber,
		SelectedParts:      parts,
		PartType:           partType,
		IsOriginal:         isOriginal,
		PhotoURL:           photoURL,
		Status:             constants.StatusNew,
		Language:           language,
		AssignedMechanicID: &mechanic.ID,
		WorkStatus:         constants.WorkStatusNew,
	}

	ctx = utils.WithActor(ctx, mechanic.Name)
	result, err := s.insertOrder(ctx, order, OrderSourceMechanic)
	if err != nil && photoURL != nil {
		if delErr := s.fileStorage.Delete(*photoURL); delErr != nil {
			s.logger.Warn("Не удалось удалить фото после ошибки", zap.String("url", *photoURL), zap.Error(delErr))
		}
	}
	return result, err
}

func (s *OrderService) UpdateOrder(ctx context.Context, id uint64, data dto.UpdateOrderDTO, rawBody []byte) (*dto.OrderDTO, error) {
	var (
		updated       *entities.Order
		oldStatus     string
		assignedEvent *events.OrderAssignedEvent
	)
	actor := utils.ActorFromCtx(ctx)

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, err := s.orderRepo.FindOrderForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		before := *order
		oldStatus = order.Status

		changed, err := utils.ApplyPatch(order, &data, rawBody)
		if err != nil {
			return apperrors.NewHttpError(400, "Невалидный JSON", err, nil)
		}

		if err := s.applyOrderPatchRules(ctx, order, &before, changed, data); err != nil {
			return err
		}
		if !slices.Contains(changed, "work_status") {
			resetWorkOnReassign(order, before.AssignedMechanicID)
		}

		if err := s.orderRepo.UpdateOrder(ctx, tx, *order); err != nil {
			return err
		}

		if order.Status != before.Status {
			if err := s.writeHistory(ctx, tx, id, constants.HistoryEventStatus, &before.Status, &order.Status); err != nil {
				return err
			}
		}
		if order.WorkStatus != before.WorkStatus {
			if err := s.writeHistory(ctx, tx, id, constants.HistoryEventWorkStatus, &before.WorkStatus, &order.WorkStatus); err != nil {
				return err
			}
			if order.AssignedMechanicID != nil && ptrEqual(order.AssignedMechanicID, before.AssignedMechanicID) {
				if err := s.assignmentRepo.UpdateStatus(ctx, tx, id, *order.AssignedMechanicID, constants.AssignmentStatusFor(order.WorkStatus)); err != nil {
					return err
				}
			}
		}
		if !ptrEqual(order.AssignedMechanicID, before.AssignedMechanicID) {
			mechanic, err := s.syncAssignment(ctx, tx, order, before.AssignedMechanicID)
			if err != nil {
				return err
			}
			if mechanic != nil {
				assignedEvent = &events.OrderAssignedEvent{Mechanic: *mechanic, Actor: actor}
			}
		}

		updated, err = s.orderRepo.FindOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterStatusChange(ctx, *updated, oldStatus, actor)
	if assignedEvent != nil {
		assignedEvent.Order = *updated
		s.publisher.Publish(ctx, *assignedEvent)
	}

	out := orderToDTO(*updated)
	return &out, nil
}

// applyOrderPatchRules проверяет пришедшие поля и выводит зависимые значения.
func (s *OrderService) applyOrderPatchRules(ctx context.Context, order, before *entities.Order, changed []string, data dto.UpdateOrderDTO) error {
	changedSet := make(map[string]bool, len(changed))
	for _, c := range changed {
		changedSet[c] = true
	}

	if !isAbsent(data.Parts) || !isAbsent(data.SelectedParts) {
		parts, err := resolveParts(ctx, data.Parts, data.SelectedParts, s.partRepo)
		if err != nil {
			return err
		}
		order.SelectedParts = parts
	}

	if changedSet["status"] && !constants.IsValidOrderStatus(order.Status) {
		return apperrors.NewBadRequestError("Неверный статус: " + order.Status)
	}
	if order.Status == constants.StatusReady && before.Status != constants.StatusReady {
		order.Printed = true
	}

	if changedSet["work_status"] && !constants.IsValidWorkStatus(order.WorkStatus) {
		return apperrors.NewBadRequestError("Неверный статус работ: " + order.WorkStatus)
	}

	if changedSet["car_number"] && order.CarNumber != nil {
		normalized := utils.NormalizeCarNumber(*order.CarNumber)
		if normalized == "" {
			order.CarNumber = nil
		} else {
			if s.features.EnableCarNumber {
				if err := s.checkCarNumber(normalized); err != nil {
					return err
				}
			}
			if len([]rune(normalized)) > maxCarNumberStored {
				return apperrors.NewBadRequestError("carNumber слишком длинный")
			}
			order.CarNumber = &normalized
		}
	}

	if changedSet["vin"] {
		order.VIN = strings.TrimSpace(order.VIN)
		if !s.features.EnableCarNumber && len([]rune(order.VIN)) < utils.MinVINLength {
			return apperrors.NewBadRequestError(fmt.Sprintf("VIN должен содержать минимум %d символа", utils.MinVINLength))
		}
	}

	switch {
	case changedSet["part_type"]:
		order.IsOriginal = order.PartType == constants.PartTypeOriginal
	case changedSet["is_original"]:
		if order.IsOriginal {
			order.PartType = constants.PartTypeOriginal
		} else if order.PartType == constants.PartTypeOriginal {
			order.PartType = constants.PartTypeAnalog
		}
	}

	if strings.TrimSpace(order.MechanicName) == "" || strings.TrimSpace(order.Category) == "" {
		return apperrors.NewBadRequestError("mechanic_name и category не могут быть пустыми")
	}
	return nil
}

// resetWorkOnReassign: при передаче заказа другому механику работа начинается с начала.
func resetWorkOnReassign(order *entities.Order, previous *uint64) {
	if previous != nil && order.AssignedMechanicID != nil && *previous != *order.AssignedMechanicID {
		order.WorkStatus = constants.WorkStatusNew
	}
}

// syncAssignment приводит work_order_assignments к order.AssignedMechanicID.
func (s *OrderService) syncAssignment(ctx context.Context, tx pgx.Tx, order *entities.Order, previous *uint64) (*entities.Mechanic, error) {
	var mechanic *entities.Mechanic
	if order.AssignedMechanicID == nil {
		if err := s.assignmentRepo.Remove(ctx, tx, order.ID); err != nil {
			return nil, err
		}
	} else {
		m, err := s.mechanicRepo.FindMechanic(ctx, *order.AssignedMechanicID)
		if err != nil {
			return nil, err
		}
		if !m.Active {
			return nil, apperrors.NewBadRequestError("Нельзя назначить неактивного механика")
		}
		mechanic = m
		if err := s.assignmentRepo.Upsert(ctx, tx, order.ID, m.ID, constants.AssignmentStatusFor(order.WorkStatus)); err != nil {
			return nil, err
		}
	}
	return mechanic, s.writeHistory(ctx, tx, order.ID, constants.HistoryEventAssign,
		uintToPtrString(previous), uintToPtrString(order.AssignedMechanicID))
}

func (s *OrderService) afterStatusChange(ctx context.Context, order entities.Order, oldStatus, actor string) {
	if order.Status == oldStatus {
		return
	}
	metrics.StatusChanges.WithLabelValues(constants.HistoryEventStatus, order.Status).Inc()
	s.logger.Info("Статус заказа изменён",
		zap.Uint64("id", order.ID),
		zap.String("old", oldStatus),
		zap.String("new", order.Status),
		zap.String("actor", actor),
	)
	s.publisher.Publish(ctx, events.OrderStatusChangedEvent{
		Order:     order,
		OldStatus: oldStatus,
		NewStatus: order.Status,
		Actor:     actor,
	})
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uint64) error {
	order, err := s.orderRepo.FindOrder(ctx, nil, id)
	if err != nil {
		return err
	}
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.orderRepo.DeleteOrder(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	if order.PhotoURL != nil {
		if err := s.fileStorage.Delete(*order.PhotoURL); err != nil {
			s.logger.Warn("Не удалось удалить фото заказа", zap.Uint64("id", id), zap.Error(err))
		}
	}
	s.logger.Info("Удалён заказ", zap.Uint64("id", id))
	return nil
}

// PrintOrder отмечает заказ напечатанным; сама печать - забота клиента.
func (s *OrderService) PrintOrder(ctx context.Context, id uint64) (*dto.OrderDTO, error) {
	var updated *entities.Order
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, err := s.orderRepo.FindOrderForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !order.Printed {
			order.Printed = true
			if err := s.orderRepo.UpdateOrder(ctx, tx, *order); err != nil {
				return err
			}
		}
		updated, err = s.orderRepo.FindOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Печать заказа", zap.Uint64("id", id), zap.String("actor", utils.ActorFromCtx(ctx)))
	out := orderToDTO(*updated)
	return &out, nil
}

func (s *OrderService) AssignOrder(ctx context.Context, id uint64, mechanicID *uint64) (*dto.OrderDTO, error) {
	var (
		updated  *entities.Order
		mechanic *entities.Mechanic
	)
	actor := utils.ActorFromCtx(ctx)

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, err := s.orderRepo.FindOrderForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if ptrEqual(order.AssignedMechanicID, mechanicID) {
			updated = order
			return nil
		}
		previous, oldWork := order.AssignedMechanicID, order.WorkStatus
		order.AssignedMechanicID = mechanicID
		resetWorkOnReassign(order, previous)
		if err := s.orderRepo.UpdateOrder(ctx, tx, *order); err != nil {
			return err
		}
		if order.WorkStatus != oldWork {
			if err := s.writeHistory(ctx, tx, id, constants.HistoryEventWorkStatus, &oldWork, &order.WorkStatus); err != nil {
				return err
			}
		}
		if mechanic, err = s.syncAssignment(ctx, tx, order, previous); err != nil {
			return err
		}
		updated, err = s.orderRepo.FindOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if mechanic != nil {
		s.logger.Info("Заказ назначен механику", zap.Uint64("id", id), zap.Uint64("mechanic_id", mechanic.ID))
		s.publisher.Publish(ctx, events.OrderAssignedEvent{Order: *updated, Mechanic: *mechanic, Actor: actor})
	}
	out := orderToDTO(*updated)
	return &out, nil
}

func (s *OrderService) storePhoto(photo io.Reader) (string, error) {
	rules := uploadcfg.UploadContexts[constants.UploadContextOrderPhoto.String()]
	data, err := imaging.Process(photo, rules.MaxDimension)
	if err != nil {
		return "", apperrors.NewHttpError(400, "Не удалось обработать фото", err, nil)
	}
	url, err := s.fileStorage.Save(bytes.NewReader(data), "photo.jpg", rules.PathPrefix)
	if err != nil {
		return "", fmt.Errorf("не удалось сохранить фото: %w", err)
	}
	return url, nil
}

func (s *OrderService) UploadPhoto(ctx context.Context, id uint64, photo io.Reader) (*dto.OrderDTO, error) {
	order, err := s.orderRepo.FindOrder(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	url, err := s.storePhoto(photo)
	if err != nil {
		return nil, err
	}

	oldURL := order.PhotoURL
	order.PhotoURL = &url
	if err := s.orderRepo.UpdateOrder(ctx, nil, *order); err != nil {
		_ = s.fileStorage.Delete(url)
		return nil, err
	}
	if oldURL != nil && *oldURL != url {
		if err := s.fileStorage.Delete(*oldURL); err != nil {
			s.logger.Warn("Не удалось удалить старое фото", zap.String("url", *oldURL), zap.Error(err))
		}
	}
	return s.FindOrder(ctx, id)
}

func (s *OrderService) GetStats(ctx context.Context) (*dto.OrderStatsDTO, error) {
	byStatus, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	today, err := s.orderRepo.CountCreatedSince(ctx, utils.StartOfDay(s.now()))
	if err != nil {
		return nil, err
	}

	stats := &dto.OrderStatsDTO{ByStatus: make(map[string]uint64, len(constants.OrderStatuses)), Today: today}
	for _, st := range constants.OrderStatuses {
		stats.ByStatus[st] = 0
	}
	for st, n := range byStatus {
		stats.ByStatus[st] = n
		stats.Total += n
	}
	return stats, nil
}

func (s *OrderService) writeHistory(ctx context.Context, tx pgx.Tx, orderID uint64, event string, oldValue, newValue *string) error {
	return s.historyRepo.CreateHistoryEvent(ctx, tx, entities.OrderHistory{
		OrderID:  orderID,
		Event:    event,
		OldValue: oldValue,
		NewValue: newValue,
		Actor:    utils.ActorFromCtx(ctx),
	})
}

func ptrEqual(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func uintToPtrString(v *uint64) *string {
	if v == nil {
		return nil
	}
	s := strconv.FormatUint(*v, 10)
	return &s
}
