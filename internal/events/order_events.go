package events

import "felix-hub/internal/entities"

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderAssigned      = "order.assigned"
)

// OrderCreatedEvent публикуется после коммита нового заказа.
type OrderCreatedEvent struct {
	Order  entities.Order
	Source string
}

func (e OrderCreatedEvent) Name() string { return OrderCreated }

// OrderStatusChangedEvent - смена админ-статуса заказа.
type OrderStatusChangedEvent struct {
	Order     entities.Order
	OldStatus string
	NewStatus string
	Actor     string
}

func (e OrderStatusChangedEvent) Name() string { return OrderStatusChanged }

type OrderAssignedEvent struct {
	Order    entities.Order
	Mechanic entities.Mechanic
	Actor    string
}

func (e OrderAssignedEvent) Name() string { return OrderAssigned }
