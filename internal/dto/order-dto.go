package dto

import (
	"encoding/json"
	"time"

	"github.com/aarondl/null/v8"
)

// OrderPartDTO - позиция заказа в современном формате.
type OrderPartDTO struct {
	PartID   *uint64  `json:"partId"`
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Price    *float64 `json:"price"`
	IsCustom bool     `json:"isCustom"`
	Note     *string  `json:"note"`
}

// CreateOrderDTO принимает и современный формат (parts), и старый (selected_parts).
// Поля parts/selected_parts разбираются вручную в сервисе.
type CreateOrderDTO struct {
	MechanicName  string          `json:"mechanic_name"`
	TelegramID    json.RawMessage `json:"telegram_id"`
	Category      string          `json:"category"`
	CategoryID    *uint64         `json:"category_id"`
	VIN           json.RawMessage `json:"vin"`
	CarNumber     *string         `json:"car_number"`
	CarNumberAlt  *string         `json:"carNumber"`
	Parts         json.RawMessage `json:"parts"`
	SelectedParts json.RawMessage `json:"selected_parts"`
	IsOriginal    *bool           `json:"is_original"`
	PartType      *string         `json:"part_type"`
	Language      *string         `json:"language"`
	PhotoURL      *string         `json:"photo_url"`
	Status        *string         `json:"status"`

	AssignedMechanicID *uint64 `json:"-"`
	Source             string  `json:"-"`
}

// CreateMechanicOrderDTO - заказ из мастера в SPA механика (multipart).
type CreateMechanicOrderDTO struct {
	CategoryID uint64   `validate:"required,gt=0"`
	PartIDs    []uint64 `validate:"required,min=1,dive,gt=0"`
	CarNumber  string   `validate:"required"`
	PartType   string   `validate:"required,part_type"`
	Language   string   `validate:"omitempty,lang"`
}

type UpdateOrderDTO struct {
	Status             null.String `json:"status" validate:"omitempty,order_status"`
	WorkStatus         null.String `json:"work_status" validate:"omitempty,work_status"`
	Printed            null.Bool   `json:"printed"`
	MechanicName       null.String `json:"mechanic_name" validate:"omitempty,min=1,max=100"`
	Category           null.String `json:"category" validate:"omitempty,min=1,max=120"`
	VIN                null.String `json:"vin" validate:"omitempty,max=50"`
	CarNumber          null.String `json:"car_number" validate:"omitempty,max=20"`
	PartType           null.String `json:"part_type" validate:"omitempty,part_type"`
	IsOriginal         null.Bool   `json:"is_original"`
	PhotoURL           null.String `json:"photo_url" validate:"omitempty,max=500"`
	AssignedMechanicID null.Uint64 `json:"assigned_mechanic_id"`
	Language           null.String `json:"language" validate:"omitempty,lang"`

	// разбираются отдельно
	Parts         json.RawMessage `json:"parts"`
	SelectedParts json.RawMessage `json:"selected_parts"`
}

type AssignOrderDTO struct {
	MechanicID *uint64 `json:"mechanic_id"`
}

type OrderDTO struct {
	ID                   uint64         `json:"id"`
	MechanicName         string         `json:"mechanic_name"`
	TelegramID           string         `json:"telegram_id"`
	Category             string         `json:"category"`
	CategoryID           *uint64        `json:"category_id"`
	VIN                  string         `json:"vin"`
	CarNumber            *string        `json:"car_number"`
	SelectedParts        []OrderPartDTO `json:"selected_parts"`
	PartType             string         `json:"part_type"`
	IsOriginal           bool           `json:"is_original"`
	PhotoURL             *string        `json:"photo_url"`
	Status               string         `json:"status"`
	Printed              bool           `json:"printed"`
	Language             string         `json:"language"`
	AssignedMechanicID   *uint64        `json:"assigned_mechanic_id"`
	AssignedMechanicName *string        `json:"assigned_mechanic_name"`
	WorkStatus           string         `json:"work_status"`
	CommentsCount        int            `json:"comments_count"`
	TotalTimeMinutes     int            `json:"total_time_minutes"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

type OrderStatsDTO struct {
	Total    uint64            `json:"total"`
	ByStatus map[string]uint64 `json:"by_status"`
	Today    uint64            `json:"today"`
}

type OrderHistoryDTO struct {
	ID        uint64    `json:"id"`
	Event     string    `json:"event"`
	OldValue  *string   `json:"old_value"`
	NewValue  *string   `json:"new_value"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}
