package entities

import "time"

type OrderHistory struct {
	ID        uint64
	OrderID   uint64
	Event     string
	OldValue  *string
	NewValue  *string
	Actor     string
	CreatedAt time.Time
}

type NotificationLog struct {
	ID           uint64
	OrderID      *uint64
	Type         string
	Recipient    string
	Success      bool
	ErrorMessage *string
	CreatedAt    time.Time
}
