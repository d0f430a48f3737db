package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/services"
	"felix-hub/pkg/utils"
)

type stubOrderWorkService struct {
	services.OrderWorkServiceInterface

	calls      int
	lastStatus string
}

func (s *stubOrderWorkService) UpdateWorkStatus(ctx context.Context, mechanicID, orderID uint64, status string) (*dto.OrderDTO, error) {
	s.calls++
	s.lastStatus = status
	return &dto.OrderDTO{ID: orderID, WorkStatus: status}, nil
}

func newWorkEcho(t *testing.T, svc *stubOrderWorkService) *echo.Echo {
	e := newOrderEcho(t, &stubOrderService{})
	ctrl := NewMechanicWorkController(nil, svc, nil, zap.NewNop())
	withMechanic := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(c.Request().WithContext(utils.WithMechanicID(c.Request().Context(), 7)))
			return next(c)
		}
	}
	e.PATCH("/api/mechanic/orders/:id/status", ctrl.UpdateStatus, withMechanic)
	return e
}

func TestMechanicWorkController_UpdateStatus(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		wantCode   int
		wantStatus string
	}{
		{"поле status от SPA", `{"status": "в работе"}`, http.StatusOK, "в работе"},
		{"синоним work_status", `{"work_status": "на паузе"}`, http.StatusOK, "на паузе"},
		{"status важнее синонима", `{"status": "завершен", "work_status": "на паузе"}`, http.StatusOK, "завершен"},
		{"без статуса", `{}`, http.StatusBadRequest, ""},
		{"статус заказа вместо статуса работ", `{"status": "готов"}`, http.StatusBadRequest, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubOrderWorkService{}
			e := newWorkEcho(t, svc)

			rec := doRequest(e, http.MethodPatch, "/api/mechanic/orders/5/status", tc.body)
			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
			if tc.wantCode != http.StatusOK {
				assert.Zero(t, svc.calls)
				return
			}
			assert.Equal(t, tc.wantStatus, svc.lastStatus)
		})
	}
}
