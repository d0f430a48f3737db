package entities

import "time"

type TimeLog struct {
	ID              uint64
	OrderID         uint64
	MechanicID      uint64
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationMinutes *int
	Notes           *string
	IsActive        bool
	CreatedAt       time.Time
}

type CustomWorkItem struct {
	ID                   uint64
	OrderID              uint64
	Name                 string
	Description          *string
	Price                *float64
	EstimatedTimeMinutes *int
	AddedByMechanicID    *uint64
	CreatedAt            time.Time
}

type CustomPartItem struct {
	ID                uint64
	OrderID           uint64
	Name              string
	PartNumber        *string
	Price             *float64
	Quantity          int
	AddedByMechanicID *uint64
	CreatedAt         time.Time
}
