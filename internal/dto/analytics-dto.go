package dto

import "time"

type DailyOrdersDTO struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type StatusChangeDTO struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type NotificationRateDTO struct {
	Type        string  `json:"type"`
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

type NotificationFailureDTO struct {
	ID           uint64    `json:"id"`
	OrderID      *uint64   `json:"order_id"`
	Type         string    `json:"type"`
	Recipient    string    `json:"recipient"`
	ErrorMessage *string   `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}

type NotificationTotalsDTO struct {
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

type DailySummaryDTO struct {
	Date   string `json:"date"`
	Orders struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"by_status"`
	} `json:"orders"`
	Notifications NotificationTotalsDTO `json:"notifications"`
}

type AlertDTO struct {
	Severity string      `json:"severity"`
	Type     string      `json:"type"`
	Message  string      `json:"message"`
	Count    int         `json:"count,omitempty"`
	Details  interface{} `json:"details,omitempty"`
}

type CircuitBreakerDTO struct {
	Name                string     `json:"name"`
	State               string     `json:"state"`
	Requests            uint32     `json:"requests"`
	SuccessCount        uint32     `json:"success_count"`
	FailureCount        uint32     `json:"failure_count"`
	ConsecutiveFailures uint32     `json:"consecutive_failures"`
	LastFailureTime     *time.Time `json:"last_failure_time"`
}

type DashboardAlertsDTO struct {
	Count    int        `json:"count"`
	Critical int        `json:"critical"`
	Warnings int        `json:"warnings"`
	Items    []AlertDTO `json:"items"`
}

// DashboardDTO - всё для главного экрана админки одним запросом.
type DashboardDTO struct {
	HealthStatus            string                `json:"health_status"`
	Timestamp               string                `json:"timestamp"`
	DailySummary            *DailySummaryDTO      `json:"daily_summary"`
	OrdersLast7Days         []DailyOrdersDTO      `json:"orders_last_7_days"`
	StatusChangesLast7Days  []StatusChangeDTO     `json:"status_changes_last_7_days"`
	NotificationSuccessRate []NotificationRateDTO `json:"notification_success_rate_24h"`
	Alerts                  DashboardAlertsDTO    `json:"alerts"`
	CircuitBreakers         []CircuitBreakerDTO   `json:"circuit_breakers"`
}
