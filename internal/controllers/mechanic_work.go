package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/services"
	"felix-hub/pkg/constants"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/utils"
)

// MechanicWorkController - SPA механика: заказы, комментарии, таймеры.
type MechanicWorkController struct {
	orderService     services.OrderServiceInterface
	orderWorkService services.OrderWorkServiceInterface
	timeLogService   services.TimeLogServiceInterface
	logger           *zap.Logger
}

func NewMechanicWorkController(
	orderService services.OrderServiceInterface,
	orderWorkService services.OrderWorkServiceInterface,
	timeLogService services.TimeLogServiceInterface,
	logger *zap.Logger,
) *MechanicWorkController {
	return &MechanicWorkController{
		orderService:     orderService,
		orderWorkService: orderWorkService,
		timeLogService:   timeLogService,
		logger:           logger,
	}
}

// mechanicAndOrder достаёт ID механика из токена и ID заказа из пути.
func (c *MechanicWorkController) mechanicAndOrder(ctx echo.Context) (uint64, uint64, error) {
	mechanicID, err := utils.GetMechanicIDFromCtx(ctx.Request().Context())
	if err != nil {
		return 0, 0, err
	}
	orderID, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return 0, 0, err
	}
	return mechanicID, orderID, nil
}

func (c *MechanicWorkController) GetOrders(ctx echo.Context) error {
	mechanicID, err := utils.GetMechanicIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query(), "status")

	orders, total, err := c.orderWorkService.GetAssignedOrders(ctx.Request().Context(), mechanicID, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, orders, "Успешно", http.StatusOK, total)
}

// CreateOrder принимает multipart из мастера создания заказа.
func (c *MechanicWorkController) CreateOrder(ctx echo.Context) error {
	mechanicID, err := utils.GetMechanicIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	payload, err := parseMechanicOrderForm(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Ошибка валидации", err, nil), c.logger)
	}

	var photo io.Reader
	fileHeader, err := ctx.FormFile("photo")
	switch {
	case err == nil:
		src, err := fileHeader.Open()
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusInternalServerError, "Ошибка обработки файла", err, nil), c.logger)
		}
		defer src.Close()
		if err := utils.ValidateFile(fileHeader, src, constants.UploadContextOrderPhoto.String()); err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, err.Error(), apperrors.ErrBadRequest, nil), c.logger)
		}
		photo = src
	case err != http.ErrMissingFile:
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Не удалось прочитать фото", err, nil), c.logger)
	}

	order, err := c.orderService.CreateMechanicOrder(ctx.Request().Context(), mechanicID, payload, photo)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "Заказ создан", http.StatusCreated)
}

func parseMechanicOrderForm(ctx echo.Context) (dto.CreateMechanicOrderDTO, error) {
	var payload dto.CreateMechanicOrderDTO

	categoryID, err := strconv.ParseUint(strings.TrimSpace(ctx.FormValue("category_id")), 10, 64)
	if err != nil {
		return payload, apperrors.NewBadRequestError("category_id должен быть числом")
	}
	payload.CategoryID = categoryID

	if raw := strings.TrimSpace(ctx.FormValue("part_ids")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload.PartIDs); err != nil {
			return payload, apperrors.NewBadRequestError("part_ids должен быть JSON-массивом чисел")
		}
	}

	payload.CarNumber = ctx.FormValue("car_number")
	if payload.CarNumber == "" {
		payload.CarNumber = ctx.FormValue("carNumber")
	}
	payload.PartType = strings.ToLower(strings.TrimSpace(ctx.FormValue("part_type")))
	payload.Language = strings.TrimSpace(ctx.FormValue("language"))
	return payload, nil
}

func (c *MechanicWorkController) GetOrderDetails(ctx echo.Context) error {
	mechanicID, orderID, err := c.mechanicAndOrder(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	details, err := c.orderWorkService.GetOrderDetails(ctx.Request().Context(), mechanicID, orderID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, details, "Успешно", http.StatusOK)
}

func (c *MechanicWorkController) UpdateStatus(ctx echo.Context) error {
	mechanicID, orderID, err := c.mechanicAndOrder(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateWorkStatusDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	status := payload.Status
	if status == "" {
		status = payload.WorkStatus
	}
	if status == "" {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Поле status обязательно"), c.logger)
	}
	order, err := c.orderWorkService.UpdateWorkStatus(ctx.Request().Context(), mechanicID, orderID, status)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "Статус обновлён", http.StatusOK)
}

func (c *MechanicWorkController) GetComments(ctx echo.Context) error {
	mechanicID, orderID, err := c.mechanicAndOrder(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	comments, err := c.orderWorkService.GetComments(ctx.Request().Context(), mechanicID, orderID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, comments, "Успешно", http.StatusOK)
}

func (c *MechanicWorkController) AddComment(ctx echo.Context) error {
	mechanicID, orderID, err := c.mechanicAndOrder(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.CreateCommentDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	comment, err := c.orderWorkService.AddComment(ctx.Request().Context(), mechanicID, orderID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, comment, "Комментарий добавлен", http.StatusCreated)
}

func (c *MechanicWorkController) AddCustomWork(ctx echo.Context) error {
	mechanicID, orderID, err := c.mechanicAndOrder(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.CreateCustomWorkDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	work, err := c.orderWorkService.AddCustomWork(ctx.Request().Context(), mechanicID, orderID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, work, "Работа добавлена", http.StatusCreated)
}

func (c *MechanicWorkController) AddCustomPart(ctx echo.Context) error {
	mechanicID, orderID, err := c.mechanicAndOrder(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.CreateCustomPartDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	part, err := c.orderWorkService.AddCustomPart(ctx.Request().Context(), mechanicID, orderID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, part, "Деталь добавлена", http.StatusCreated)
}

func (c *MechanicWorkController) StartTimer(ctx echo.Context) error {
	mechanicID, orderID, err := c.mechanicAndOrder(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	timer, err := c.timeLogService.StartTimer(ctx.Request().Context(), mechanicID, orderID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, timer, "Таймер запущен", http.StatusCreated)
}

func (c *MechanicWorkController) StopTimer(ctx echo.Context) error {
	mechanicID, orderID, err := c.mechanicAndOrder(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	// тело необязательно
	var payload dto.StopTimerDTO
	if ctx.Request().ContentLength > 0 {
		if err := bindAndValidate(ctx, &payload); err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
	}
	timer, err := c.timeLogService.StopTimer(ctx.Request().Context(), mechanicID, orderID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, timer, "Таймер остановлен", http.StatusOK)
}

func (c *MechanicWorkController) AddManualTime(ctx echo.Context) error {
	mechanicID, orderID, err := c.mechanicAndOrder(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ManualTimeDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	entry, err := c.timeLogService.AddManualTime(ctx.Request().Context(), mechanicID, orderID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, entry, "Время добавлено", http.StatusCreated)
}

func (c *MechanicWorkController) GetActiveTimer(ctx echo.Context) error {
	mechanicID, err := utils.GetMechanicIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	timer, err := c.timeLogService.GetActiveTimer(ctx.Request().Context(), mechanicID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if timer == nil {
		return utils.SuccessResponse(ctx, nil, "Активного таймера нет", http.StatusOK)
	}
	return utils.SuccessResponse(ctx, timer, "Успешно", http.StatusOK)
}

func (c *MechanicWorkController) GetTimeHistory(ctx echo.Context) error {
	mechanicID, err := utils.GetMechanicIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	history, err := c.timeLogService.GetHistory(ctx.Request().Context(), mechanicID, ctx.QueryParam("start_date"), ctx.QueryParam("end_date"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, history, "Успешно", http.StatusOK)
}

func (c *MechanicWorkController) GetStats(ctx echo.Context) error {
	mechanicID, err := utils.GetMechanicIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	allTime, _ := strconv.ParseBool(ctx.QueryParam("all_time"))
	stats, err := c.timeLogService.GetStats(ctx.Request().Context(), mechanicID, allTime)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, stats, "Успешно", http.StatusOK)
}
