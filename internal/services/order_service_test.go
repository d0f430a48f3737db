package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/entities"
	"felix-hub/internal/events"
	"felix-hub/pkg/config"
	"felix-hub/pkg/constants"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/types"
	"felix-hub/pkg/utils"
)

// httpCode - код, который клиент получит за эту ошибку.
func httpCode(err error) int {
	var httpErr *apperrors.HttpError
	if apperrors.As(err, &httpErr) {
		return httpErr.Code
	}
	return apperrors.StatusCode(err)
}

type orderFixture struct {
	svc         *OrderService
	orders      *fakeOrderRepo
	parts       *fakePartRepo
	categories  *fakeCategoryRepo
	mechanics   *fakeMechanicRepo
	assignments *fakeAssignmentRepo
	history     *fakeHistoryRepo
	files       *fakeFileStorage
	publisher   *fakePublisher
}

func newOrderFixture(features config.Features) *orderFixture {
	f := &orderFixture{
		orders: newFakeOrderRepo(),
		parts: newFakePartRepo(
			entities.Part{ID: 7, CategoryID: 1, NameRu: "Масляный фильтр"},
			entities.Part{ID: 8, CategoryID: 1, NameRu: "Воздушный фильтр"},
		),
		categories: newFakeCategoryRepo(entities.Category{ID: 1, NameRu: "Двигатель", Icon: "⚙️"}),
		mechanics: newFakeMechanicRepo(
			entities.Mechanic{ID: 1, Email: "ivan@felix.com", Name: "Иван Петров", Active: true},
			entities.Mechanic{ID: 2, Email: "alex@felix.com", Name: "Алексей Сидоров", Active: true},
			entities.Mechanic{ID: 3, Email: "old@felix.com", Name: "Уволен", Active: false},
		),
		assignments: newFakeAssignmentRepo(),
		history:     &fakeHistoryRepo{},
		files:       &fakeFileStorage{},
		publisher:   &fakePublisher{},
	}
	f.svc = NewOrderService(&fakeTxManager{}, f.orders, f.parts, f.categories, f.mechanics,
		f.assignments, f.history, f.files, f.publisher, features, zap.NewNop()).(*OrderService)
	return f
}

func carNumberFeatures() config.Features {
	return config.Features{EnableCarNumber: true}
}

func validCreateDTO() dto.CreateOrderDTO {
	return dto.CreateOrderDTO{
		MechanicName:  "Иван",
		TelegramID:    json.RawMessage(`123456`),
		Category:      "Тормоза",
		CarNumberAlt:  utils.ToPtr("12-345 67"),
		SelectedParts: json.RawMessage(`["Передние колодки", "Диски передние"]`),
	}
}

func TestOrderService_CreateOrder_NormalizesCarNumber(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())

	created, err := f.svc.CreateOrder(context.Background(), validCreateDTO())
	require.NoError(t, err)

	require.NotNil(t, created.CarNumber)
	assert.Equal(t, "1234567", *created.CarNumber)
	assert.Equal(t, "1234567", created.VIN, "без vin в VIN попадает номер авто")
	assert.Equal(t, "123456", created.TelegramID, "числовой telegram_id хранится строкой")
	assert.Equal(t, constants.StatusNew, created.Status)
	assert.Equal(t, constants.WorkStatusNew, created.WorkStatus)
	assert.Equal(t, constants.PartTypeAny, created.PartType)
	assert.Equal(t, constants.LangRU, created.Language)
	assert.False(t, created.Printed)
	require.Len(t, created.SelectedParts, 2)
	assert.Equal(t, "Передние колодки", created.SelectedParts[0].Name)
	assert.Equal(t, 1, created.SelectedParts[0].Quantity)

	assert.Equal(t, []string{events.OrderCreated}, f.publisher.names())
	ev := f.publisher.events[0].(events.OrderCreatedEvent)
	assert.Equal(t, OrderSourceAPI, ev.Source)
	assert.Equal(t, created.ID, ev.Order.ID)
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(d *dto.CreateOrderDTO)
	}{
		{"без имени механика", func(d *dto.CreateOrderDTO) { d.MechanicName = "  " }},
		{"без telegram_id", func(d *dto.CreateOrderDTO) { d.TelegramID = nil }},
		{"без категории", func(d *dto.CreateOrderDTO) { d.Category = "" }},
		{"без деталей", func(d *dto.CreateOrderDTO) { d.SelectedParts = nil }},
		{"пустой список деталей", func(d *dto.CreateOrderDTO) { d.SelectedParts = json.RawMessage(`[]`) }},
		{"детали не строки", func(d *dto.CreateOrderDTO) { d.SelectedParts = json.RawMessage(`[1, 2]`) }},
		{"короткий номер", func(d *dto.CreateOrderDTO) { d.CarNumberAlt = utils.ToPtr("AB") }},
		{"номер со спецсимволами", func(d *dto.CreateOrderDTO) { d.CarNumberAlt = utils.ToPtr("12#345") }},
		{"нет номера и vin", func(d *dto.CreateOrderDTO) { d.CarNumberAlt = nil }},
		{"неизвестный статус", func(d *dto.CreateOrderDTO) { d.Status = utils.ToPtr("архив") }},
		{"неизвестный язык", func(d *dto.CreateOrderDTO) { d.Language = utils.ToPtr("de") }},
		{"неизвестный part_type", func(d *dto.CreateOrderDTO) { d.PartType = utils.ToPtr("used") }},
		{"нулевое количество", func(d *dto.CreateOrderDTO) {
			d.Parts = json.RawMessage(`[{"name": "Колодки", "quantity": 0}]`)
		}},
		{"отрицательная цена", func(d *dto.CreateOrderDTO) {
			d.Parts = json.RawMessage(`[{"name": "Колодки", "price": -1}]`)
		}},
		{"деталь без name и partId", func(d *dto.CreateOrderDTO) { d.Parts = json.RawMessage(`[{"quantity": 1}]`) }},
		{"неизвестный partId", func(d *dto.CreateOrderDTO) { d.Parts = json.RawMessage(`[{"partId": 99}]`) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newOrderFixture(carNumberFeatures())
			data := validCreateDTO()
			tc.mutate(&data)

			_, err := f.svc.CreateOrder(context.Background(), data)
			require.Error(t, err)
			assert.Equal(t, 400, httpCode(err))
			assert.Empty(t, f.orders.orders, "заказ не должен создаваться")
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestOrderService_CreateOrder_ModernParts(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())
	data := validCreateDTO()
	data.Parts = json.RawMessage(`[
		{"partId": 7, "quantity": "2"},
		{"partId": "8", "name": "Фильтр воздуха K&N"},
		{"name": "Своя деталь", "isCustom": true, "price": "10.5", "note": "под заказ"}
	]`)

	created, err := f.svc.CreateOrder(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, created.SelectedParts, 3, "parts важнее selected_parts")

	assert.Equal(t, "Масляный фильтр", created.SelectedParts[0].Name, "название берётся из каталога")
	assert.Equal(t, 2, created.SelectedParts[0].Quantity)
	require.NotNil(t, created.SelectedParts[0].PartID)
	assert.Equal(t, uint64(7), *created.SelectedParts[0].PartID)

	assert.Equal(t, "Фильтр воздуха K&N", created.SelectedParts[1].Name, "переданное имя не перезаписывается")

	custom := created.SelectedParts[2]
	assert.True(t, custom.IsCustom)
	require.NotNil(t, custom.Price)
	assert.InDelta(t, 10.5, *custom.Price, 0.0001)
	require.NotNil(t, custom.Note)
	assert.Equal(t, "под заказ", *custom.Note)
}

func TestOrderService_CreateOrder_LegacyVIN(t *testing.T) {
	f := newOrderFixture(config.Features{})

	data := validCreateDTO()
	data.CarNumberAlt = nil
	data.VIN = json.RawMessage(`"abc"`)
	_, err := f.svc.CreateOrder(context.Background(), data)
	assert.Equal(t, 400, httpCode(err), "VIN короче 4 символов")

	data.VIN = nil
	_, err = f.svc.CreateOrder(context.Background(), data)
	assert.Equal(t, 400, httpCode(err), "без флага VIN обязателен")

	data.VIN = json.RawMessage(`" wvwzzz1jzxw000001 "`)
	created, err := f.svc.CreateOrder(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "wvwzzz1jzxw000001", created.VIN)
	require.NotNil(t, created.CarNumber)
	assert.Equal(t, "WVWZZZ1JZXW000001", *created.CarNumber)
}

func TestOrderService_CreateOrder_ReadyIsPrinted(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())
	data := validCreateDTO()
	data.Status = utils.ToPtr(constants.StatusReady)
	data.IsOriginal = utils.ToPtr(true)

	created, err := f.svc.CreateOrder(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, created.Printed)
	assert.Equal(t, constants.PartTypeOriginal, created.PartType)
	assert.True(t, created.IsOriginal)
}

func TestOrderService_CreateOrder_WithAssignee(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())
	data := validCreateDTO()
	data.AssignedMechanicID = utils.ToPtr(uint64(2))

	created, err := f.svc.CreateOrder(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, assignmentRecord{MechanicID: 2, Status: constants.AssignmentAssigned}, f.assignments.assignments[created.ID])
	assigns := f.history.byEvent(constants.HistoryEventAssign)
	require.Len(t, assigns, 1)
	assert.Nil(t, assigns[0].OldValue)
	assert.Equal(t, "2", *assigns[0].NewValue)
}

func TestOrderService_CreateMechanicOrder(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())

	created, err := f.svc.CreateMechanicOrder(context.Background(), 1, dto.CreateMechanicOrderDTO{
		CategoryID: 1,
		PartIDs:    []uint64{7, 8},
		CarNumber:  "ab 123 cd",
		PartType:   constants.PartTypeAnalog,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Иван Петров", created.MechanicName)
	assert.Equal(t, "mechanic:1", created.TelegramID)
	assert.Equal(t, "Двигатель", created.Category)
	assert.Equal(t, "AB123CD", created.VIN)
	require.NotNil(t, created.AssignedMechanicID)
	assert.Equal(t, uint64(1), *created.AssignedMechanicID)
	assert.Equal(t, constants.LangRU, created.Language)
	require.Len(t, created.SelectedParts, 2)
	assert.Equal(t, "Воздушный фильтр", created.SelectedParts[1].Name)
	assert.Nil(t, created.PhotoURL)

	assigns := f.history.byEvent(constants.HistoryEventAssign)
	require.Len(t, assigns, 1)
	assert.Equal(t, "Иван Петров", assigns[0].Actor)

	ev := f.publisher.events[0].(events.OrderCreatedEvent)
	assert.Equal(t, OrderSourceMechanic, ev.Source)

	_, err = f.svc.CreateMechanicOrder(context.Background(), 1, dto.CreateMechanicOrderDTO{
		CategoryID: 1, PartIDs: []uint64{7, 404}, CarNumber: "1234567", PartType: constants.PartTypeAny,
	}, nil)
	assert.Equal(t, 400, httpCode(err))

	_, err = f.svc.CreateMechanicOrder(context.Background(), 1, dto.CreateMechanicOrderDTO{
		CategoryID: 42, PartIDs: []uint64{7}, CarNumber: "1234567", PartType: constants.PartTypeAny,
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestOrderService_UpdateOrder_Status(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())
	created, err := f.svc.CreateOrder(context.Background(), validCreateDTO())
	require.NoError(t, err)

	ctx := utils.WithActor(context.Background(), "admin")
	updated, err := f.svc.UpdateOrder(ctx, created.ID,
		dto.UpdateOrderDTO{Status: null.StringFrom(constants.StatusReady)},
		[]byte(`{"status": "готов"}`))
	require.NoError(t, err)

	assert.Equal(t, constants.StatusReady, updated.Status)
	assert.True(t, updated.Printed, "готов помечает заказ напечатанным")

	statusRows := f.history.byEvent(constants.HistoryEventStatus)
	require.Len(t, statusRows, 1)
	assert.Equal(t, constants.StatusNew, *statusRows[0].OldValue)
	assert.Equal(t, constants.StatusReady, *statusRows[0].NewValue)
	assert.Equal(t, "admin", statusRows[0].Actor)

	assert.Equal(t, []string{events.OrderCreated, events.OrderStatusChanged}, f.publisher.names())
	ev := f.publisher.events[1].(events.OrderStatusChangedEvent)
	assert.Equal(t, constants.StatusNew, ev.OldStatus)
	assert.Equal(t, constants.StatusReady, ev.NewStatus)
}

func TestOrderService_UpdateOrder_SameStatusNoEvent(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())
	created, err := f.svc.CreateOrder(context.Background(), validCreateDTO())
	require.NoError(t, err)

	_, err = f.svc.UpdateOrder(context.Background(), created.ID,
		dto.UpdateOrderDTO{Status: null.StringFrom(constants.StatusNew)},
		[]byte(`{"status": "новый"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{events.OrderCreated}, f.publisher.names())
	assert.Empty(t, f.history.byEvent(constants.HistoryEventStatus))
}

func TestOrderService_UpdateOrder_Rejects(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())
	created, err := f.svc.CreateOrder(context.Background(), validCreateDTO())
	require.NoError(t, err)

	_, err = f.svc.UpdateOrder(context.Background(), created.ID,
		dto.UpdateOrderDTO{Status: null.StringFrom("архив")}, []byte(`{"status": "архив"}`))
	assert.Equal(t, 400, httpCode(err))

	_, err = f.svc.UpdateOrder(context.Background(), created.ID,
		dto.UpdateOrderDTO{MechanicName: null.StringFrom(" ")}, []byte(`{"mechanic_name": " "}`))
	assert.Equal(t, 400, httpCode(err))

	_, err = f.svc.UpdateOrder(context.Background(), created.ID, dto.UpdateOrderDTO{}, []byte(`{broken`))
	assert.Equal(t, 400, httpCode(err))

	_, err = f.svc.UpdateOrder(context.Background(), 999,
		dto.UpdateOrderDTO{Status: null.StringFrom(constants.StatusReady)}, []byte(`{"status": "готов"}`))
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)

	stored := f.orders.orders[created.ID]
	assert.Equal(t, constants.StatusNew, stored.Status, "отклонённый PATCH не меняет заказ")
	assert.Equal(t, "Иван", stored.MechanicName)
}

func TestOrderService_UpdateOrder_CarNumberAndPartType(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())
	created, err := f.svc.CreateOrder(context.Background(), validCreateDTO())
	require.NoError(t, err)

	updated, err := f.svc.UpdateOrder(context.Background(), created.ID, dto.UpdateOrderDTO{
		CarNumber: null.StringFrom("ab-12 34"),
		PartType:  null.StringFrom(constants.PartTypeOriginal),
	}, []byte(`{"car_number": "ab-12 34", "part_type": "original"}`))
	require.NoError(t, err)
	assert.Equal(t, "AB1234", *updated.CarNumber)
	assert.True(t, updated.IsOriginal)

	updated, err = f.svc.UpdateOrder(context.Background(), created.ID,
		dto.UpdateOrderDTO{IsOriginal: null.BoolFrom(false)}, []byte(`{"is_original": false}`))
	require.NoError(t, err)
	assert.Equal(t, constants.PartTypeAnalog, updated.PartType)

	_, err = f.svc.UpdateOrder(context.Background(), created.ID,
		dto.UpdateOrderDTO{CarNumber: null.StringFrom("X")}, []byte(`{"car_number": "X"}`))
	assert.Equal(t, 400, httpCode(err))
}

func TestOrderService_AssignOrder(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())
	created, err := f.svc.CreateOrder(context.Background(), validCreateDTO())
	require.NoError(t, err)
	ctx := context.Background()

	assigned, err := f.svc.AssignOrder(ctx, created.ID, utils.ToPtr(uint64(1)))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), *assigned.AssignedMechanicID)
	assert.Equal(t, uint64(1), f.assignments.assignments[created.ID].MechanicID)
	assert.Equal(t, []string{events.OrderCreated, events.OrderAssigned}, f.publisher.names())

	// механик начал работу, затем заказ передали другому
	stored := f.orders.orders[created.ID]
	stored.WorkStatus = constants.WorkStatusInProgress
	f.orders.orders[created.ID] = stored

	reassigned, err := f.svc.AssignOrder(ctx, created.ID, utils.ToPtr(uint64(2)))
	require.NoError(t, err)
	assert.Equal(t, constants.WorkStatusNew, reassigned.WorkStatus)
	assert.Equal(t, assignmentRecord{MechanicID: 2, Status: constants.AssignmentAssigned}, f.assignments.assignments[created.ID])

	// повторное назначение того же механика ничего не меняет
	_, err = f.svc.AssignOrder(ctx, created.ID, utils.ToPtr(uint64(2)))
	require.NoError(t, err)
	assert.Len(t, f.history.byEvent(constants.HistoryEventAssign), 2)

	_, err = f.svc.AssignOrder(ctx, created.ID, utils.ToPtr(uint64(3)))
	assert.Equal(t, 400, httpCode(err), "неактивного механика назначить нельзя")

	_, err = f.svc.AssignOrder(ctx, created.ID, utils.ToPtr(uint64(77)))
	assert.ErrorIs(t, err, apperrors.ErrMechanicNotFound)

	unassigned, err := f.svc.AssignOrder(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, unassigned.AssignedMechanicID)
	assert.NotContains(t, f.assignments.assignments, created.ID)
	assert.Len(t, f.publisher.names(), 3, "снятие назначения не уведомляет")
}

func TestOrderService_ReassignResetsWorkStatusOnBothPaths(t *testing.T) {
	testCases := []struct {
		name     string
		reassign func(f *orderFixture, id uint64) (*dto.OrderDTO, error)
	}{
		{"через assign", func(f *orderFixture, id uint64) (*dto.OrderDTO, error) {
			return f.svc.AssignOrder(context.Background(), id, utils.ToPtr(uint64(2)))
		}},
		{"через PATCH", func(f *orderFixture, id uint64) (*dto.OrderDTO, error) {
			return f.svc.UpdateOrder(context.Background(), id,
				dto.UpdateOrderDTO{AssignedMechanicID: null.Uint64From(2)}, []byte(`{"assigned_mechanic_id": 2}`))
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newOrderFixture(carNumberFeatures())
			created, err := f.svc.CreateOrder(context.Background(), validCreateDTO())
			require.NoError(t, err)
			_, err = f.svc.AssignOrder(context.Background(), created.ID, utils.ToPtr(uint64(1)))
			require.NoError(t, err)

			stored := f.orders.orders[created.ID]
			stored.WorkStatus = constants.WorkStatusInProgress
			f.orders.orders[created.ID] = stored

			reassigned, err := tc.reassign(f, created.ID)
			require.NoError(t, err)
			assert.Equal(t, constants.WorkStatusNew, reassigned.WorkStatus)
			assert.Equal(t, assignmentRecord{MechanicID: 2, Status: constants.AssignmentAssigned}, f.assignments.assignments[created.ID])

			workHistory := f.history.byEvent(constants.HistoryEventWorkStatus)
			require.Len(t, workHistory, 1)
			assert.Equal(t, constants.WorkStatusNew, *workHistory[0].NewValue)
		})
	}

	t.Run("явный work_status в PATCH сохраняется", func(t *testing.T) {
		f := newOrderFixture(carNumberFeatures())
		created, err := f.svc.CreateOrder(context.Background(), validCreateDTO())
		require.NoError(t, err)
		_, err = f.svc.AssignOrder(context.Background(), created.ID, utils.ToPtr(uint64(1)))
		require.NoError(t, err)

		updated, err := f.svc.UpdateOrder(context.Background(), created.ID, dto.UpdateOrderDTO{
			AssignedMechanicID: null.Uint64From(2),
			WorkStatus:         null.StringFrom(constants.WorkStatusPaused),
		}, []byte(`{"assigned_mechanic_id": 2, "work_status": "на паузе"}`))
		require.NoError(t, err)
		assert.Equal(t, constants.WorkStatusPaused, updated.WorkStatus)
		assert.Equal(t, constants.AssignmentPaused, f.assignments.assignments[created.ID].Status)
	})
}

func TestOrderService_PrintAndDelete(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())
	data := validCreateDTO()
	data.PhotoURL = utils.ToPtr("/uploads/orders/old.jpg")
	created, err := f.svc.CreateOrder(context.Background(), data)
	require.NoError(t, err)

	printed, err := f.svc.PrintOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, printed.Printed)

	require.NoError(t, f.svc.DeleteOrder(context.Background(), created.ID))
	assert.Equal(t, []string{"/uploads/orders/old.jpg"}, f.files.deleted)
	_, err = f.svc.FindOrder(context.Background(), created.ID)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)

	assert.ErrorIs(t, f.svc.DeleteOrder(context.Background(), created.ID), apperrors.ErrOrderNotFound)
}

func TestOrderService_GetOrders_Filters(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())

	_, _, err := f.svc.GetOrders(context.Background(), types.Filter{Filter: map[string]interface{}{"status": "архив"}})
	assert.Equal(t, 400, httpCode(err))

	_, _, err = f.svc.GetOrders(context.Background(), types.Filter{Filter: map[string]interface{}{"assigned_mechanic_id": "abc"}})
	assert.Equal(t, 400, httpCode(err))

	_, _, err = f.svc.GetOrders(context.Background(), types.Filter{Filter: map[string]interface{}{
		"status":               "новый,готов",
		"assigned_mechanic_id": "5",
	}})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), f.orders.lastFilter.Filter["assigned_mechanic_id"])
}

func TestOrderService_GetStats(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())
	f.orders.byStatus = map[string]uint64{constants.StatusNew: 2, constants.StatusReady: 1}
	f.orders.today = 1

	stats, err := f.svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stats.Total)
	assert.Equal(t, uint64(1), stats.Today)
	assert.Len(t, stats.ByStatus, len(constants.OrderStatuses), "все статусы присутствуют, даже нулевые")
	assert.Equal(t, uint64(0), stats.ByStatus[constants.StatusIssued])
	assert.Equal(t, uint64(2), stats.ByStatus[constants.StatusNew])
}

func TestOrderService_GetStats_TodayIsUTCDay(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())
	// 23:30 10 марта в UTC-3 - уже 11 марта по UTC
	f.svc.now = func() time.Time { return time.Date(2026, 3, 10, 23, 30, 0, 0, time.FixedZone("UTC-3", -3*3600)) }

	_, err := f.svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), f.orders.todaySince)
}

func TestOrderService_GetOrderHistory(t *testing.T) {
	f := newOrderFixture(carNumberFeatures())
	created, err := f.svc.CreateOrder(context.Background(), validCreateDTO())
	require.NoError(t, err)
	_, err = f.svc.AssignOrder(context.Background(), created.ID, utils.ToPtr(uint64(1)))
	require.NoError(t, err)

	history, err := f.svc.GetOrderHistory(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, constants.HistoryEventAssign, history[0].Event)
	assert.Equal(t, utils.SystemActor, history[0].Actor)

	_, err = f.svc.GetOrderHistory(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
}
