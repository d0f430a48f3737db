package entities

import "time"

type OrderComment struct {
	ID         uint64
	OrderID    uint64
	MechanicID *uint64
	Comment    string
	CreatedAt  time.Time

	MechanicName *string
}
