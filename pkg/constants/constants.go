package constants

//============== UPLOAD CONTEXTS ==============

type UploadContext string

const (
	UploadContextOrderPhoto UploadContext = "order_photo"
)

func (uc UploadContext) String() string {
	return string(uc)
}

//============== ORDERS ==============

const (
	PartTypeOriginal = "original"
	PartTypeAnalog   = "analog"
	PartTypeAny      = "any"
)

const (
	LangRU = "ru"
	LangHE = "he"
	LangEN = "en"
)

const (
	HistoryEventStatus     = "status"
	HistoryEventWorkStatus = "work_status"
	HistoryEventAssign     = "assign"
)

const (
	NotificationNewOrder      = "new_order"
	NotificationStatusChanged = "status_changed"
	NotificationOrderReady    = "order_ready"
	NotificationAssigned      = "order_assigned"
)

const DefaultCategoryIcon = "🔧"
