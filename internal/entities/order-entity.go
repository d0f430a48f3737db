package entities

import (
	"strconv"
	"time"

	"felix-hub/pkg/types"
)

// OrderPart - позиция заказа, хранится в orders.selected_parts (JSONB).
type OrderPart struct {
	PartID   *uint64  `json:"partId"`
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Price    *float64 `json:"price"`
	IsCustom bool     `json:"isCustom"`
	Note     *string  `json:"note"`
}

type Order struct {
	ID                 uint64
	MechanicName       string
	TelegramID         string
	Category           string
	CategoryID         *uint64
	VIN                string
	CarNumber          *string
	SelectedParts      []OrderPart
	PartType           string
	IsOriginal         bool
	PhotoURL           *string
	Status             string
	Printed            bool
	Language           string
	AssignedMechanicID *uint64
	WorkStatus         string
	CommentsCount      int
	TotalTimeMinutes   int
	types.BaseEntity

	// только для чтения, из JOIN с mechanics
	AssignedMechanicName *string
}

// PartNames - названия позиций для уведомлений и выгрузки.
func (o *Order) PartNames() []string {
	names := make([]string, 0, len(o.SelectedParts))
	for _, p := range o.SelectedParts {
		if p.Quantity > 1 {
			names = append(names, p.Name+" x"+strconv.Itoa(p.Quantity))
			continue
		}
		names = append(names, p.Name)
	}
	return names
}

type WorkOrderAssignment struct {
	ID         uint64
	OrderID    uint64
	MechanicID uint64
	Status     string
	AssignedAt time.Time
	UpdatedAt  time.Time
}
