package dto

import "time"

type CommentDTO struct {
	ID           uint64    `json:"id"`
	OrderID      uint64    `json:"order_id"`
	MechanicID   *uint64   `json:"mechanic_id"`
	MechanicName *string   `json:"mechanic_name"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateCommentDTO struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

// UpdateWorkStatusDTO: SPA шлёт {status}, work_status принимается как синоним.
type UpdateWorkStatusDTO struct {
	Status     string `json:"status" validate:"omitempty,work_status"`
	WorkStatus string `json:"work_status" validate:"omitempty,work_status"`
}

type CustomWorkDTO struct {
	ID                   uint64    `json:"id"`
	OrderID              uint64    `json:"order_id"`
	Name                 string    `json:"name"`
	Description          *string   `json:"description"`
	Price                *float64  `json:"price"`
	EstimatedTimeMinutes *int      `json:"estimated_time_minutes"`
	AddedByMechanicID    *uint64   `json:"added_by_mechanic_id"`
	CreatedAt            time.Time `json:"created_at"`
}

type CreateCustomWorkDTO struct {
	Name                 string   `json:"name" validate:"required,max=200"`
	Description          *string  `json:"description" validate:"omitempty,max=2000"`
	Price                *float64 `json:"price" validate:"omitempty,gte=0"`
	EstimatedTimeMinutes *int     `json:"estimated_time_minutes" validate:"omitempty,gte=0"`
}

type CustomPartDTO struct {
	ID                uint64    `json:"id"`
	OrderID           uint64    `json:"order_id"`
	Name              string    `json:"name"`
	PartNumber        *string   `json:"part_number"`
	Price             *float64  `json:"price"`
	Quantity          int       `json:"quantity"`
	AddedByMechanicID *uint64   `json:"added_by_mechanic_id"`
	CreatedAt         time.Time `json:"created_at"`
}

type CreateCustomPartDTO struct {
	Name       string   `json:"name" validate:"required,max=200"`
	PartNumber *string  `json:"part_number" validate:"omitempty,max=100"`
	Price      *float64 `json:"price" validate:"omitempty,gte=0"`
	Quantity   *int     `json:"quantity" validate:"omitempty,min=1,max=1000"`
}

type TimeLogDTO struct {
	ID              uint64     `json:"id"`
	OrderID         uint64     `json:"order_id"`
	MechanicID      uint64     `json:"mechanic_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	Notes           *string    `json:"notes"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

type ManualTimeDTO struct {
	StartedAt       time.Time `json:"started_at" validate:"required"`
	EndedAt         time.Time `json:"ended_at" validate:"required"`
	DurationMinutes *int      `json:"duration_minutes" validate:"omitempty,gte=0"`
	Notes           *string   `json:"notes" validate:"omitempty,max=2000"`
}

type StopTimerDTO struct {
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

type TimeHistoryStatsDTO struct {
	TotalMinutes  int `json:"total_minutes"`
	SessionsCount int `json:"sessions_count"`
	OrdersCount   int `json:"orders_count"`
}

type TimeHistoryDTO struct {
	Sessions []TimeLogDTO        `json:"sessions"`
	Stats    TimeHistoryStatsDTO `json:"stats"`
}

type MechanicStatsDTO struct {
	ActiveOrders     int `json:"active_orders"`
	CompletedToday   int `json:"completed_today"`
	TimeTodayMinutes int `json:"time_today_minutes"`

	TotalMinutes   *int     `json:"total_minutes,omitempty"`
	TotalCompleted *int     `json:"total_completed,omitempty"`
	AvgOrderTime   *float64 `json:"avg_order_time,omitempty"`
}

type OrderDetailsDTO struct {
	OrderDTO
	Comments    []CommentDTO      `json:"comments"`
	TimeLogs    []TimeLogDTO      `json:"time_logs"`
	CustomWorks []CustomWorkDTO   `json:"custom_works"`
	CustomParts []CustomPartDTO   `json:"custom_parts"`
	History     []OrderHistoryDTO `json:"history"`
}
