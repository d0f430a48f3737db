package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"felix-hub/internal/entities"
	"felix-hub/internal/repositories"
	"felix-hub/pkg/constants"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/types"
	"felix-hub/pkg/utils"
)

const (
	DefaultExportDays = 30
	MaxExportDays     = 365

	exportSheet       = "Заказы"
	exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeaders = []string{
	"ID", "Дата", "Механик", "Категория", "VIN", "Номер авто",
	"Детали", "Оригинал", "Статус", "Статус работ", "Напечатан",
}

// ExportFile - готовая к отдаче книга Excel.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
	Rows        int
}

type ExportServiceInterface interface {
	ExportOrders(ctx context.Context, days int, status string) (*ExportFile, error)
}

type ExportService struct {
	orderRepo repositories.OrderRepositoryInterface
	logger    *zap.Logger
	now       func() time.Time
}

func NewExportService(orderRepo repositories.OrderRepositoryInterface, logger *zap.Logger) ExportServiceInterface {
	return &ExportService{orderRepo: orderRepo, logger: logger, now: time.Now}
}

func (s *ExportService) ExportOrders(ctx context.Context, days int, status string) (*ExportFile, error) {
	if days < 1 || days > MaxExportDays {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("days должен быть от 1 до %d", MaxExportDays))
	}
	status = strings.TrimSpace(status)
	if status != "" && !constants.IsValidOrderStatus(status) {
		return nil, apperrors.NewBadRequestError("Неверный статус: " + status)
	}

	now := s.now()
	filter := types.Filter{
		Filter: map[string]interface{}{
			repositories.OrderFilterCreatedFrom: now.AddDate(0, 0, -days),
		},
		Sort: map[string]string{"created_at": "desc"},
	}
	if status != "" {
		filter.Filter["status"] = status
	}

	orders, _, err := s.orderRepo.GetOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	data, err := buildOrdersWorkbook(orders)
	if err != nil {
		s.logger.Error("Ошибка формирования Excel", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Экспорт заказов", zap.Int("days", days), zap.String("status", status), zap.Int("rows", len(orders)))
	return &ExportFile{
		FileName:    fmt.Sprintf("felix_orders_%s.xlsx", now.Format("20060102")),
		ContentType: exportContentType,
		Data:        data,
		Rows:        len(orders),
	}, nil
}

func yesNo(v bool) string {
	if v {
		return "Да"
	}
	return "Нет"
}

func orderToRow(o entities.Order) []interface{} {
	return []interface{}{
		o.ID,
		o.CreatedAt.Format("02.01.2006 15:04"),
		o.MechanicName,
		o.Category,
		o.VIN,
		utils.SafeDeref(o.CarNumber),
		strings.Join(o.PartNames(), ", "),
		yesNo(o.IsOriginal),
		o.Status,
		o.WorkStatus,
		yesNo(o.Printed),
	}
}

func buildOrdersWorkbook(orders []entities.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, style); err != nil {
		return nil, err
	}

	for i, order := range orders {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := orderToRow(order)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(exportSheet, "B", "D", 20)
	_ = f.SetColWidth(exportSheet, "E", "F", 18)
	_ = f.SetColWidth(exportSheet, "G", "G", 50)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
