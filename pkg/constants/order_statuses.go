package constants

import "slices"

// --- СТАТУСЫ ЗАКАЗОВ (строки совпадают со значениями в БД и на фронте) ---
const (
	StatusNew        = "новый"
	StatusInProgress = "в работе"
	StatusReady      = "готов"
	StatusIssued     = "выдан"
)

// --- СТАТУСЫ РАБОТ МЕХАНИКА ---
const (
	WorkStatusNew        = "новый"
	WorkStatusInProgress = "в работе"
	WorkStatusPaused     = "на паузе"
	WorkStatusCompleted  = "завершен"
)

// --- СТАТУСЫ НАЗНАЧЕНИЯ ---
const (
	AssignmentAssigned   = "assigned"
	AssignmentInProgress = "in_progress"
	AssignmentPaused     = "paused"
	AssignmentCompleted  = "completed"
)

var OrderStatuses = []string{StatusNew, StatusInProgress, StatusReady, StatusIssued}

var WorkStatuses = []string{WorkStatusNew, WorkStatusInProgress, WorkStatusPaused, WorkStatusCompleted}

// Допустимые переходы статуса работ для механика.
var workTransitions = map[string][]string{
	WorkStatusNew:        {WorkStatusInProgress},
	WorkStatusInProgress: {WorkStatusPaused, WorkStatusCompleted},
	WorkStatusPaused:     {WorkStatusInProgress, WorkStatusCompleted},
	WorkStatusCompleted:  {WorkStatusInProgress},
}

func IsValidOrderStatus(s string) bool {
	return slices.Contains(OrderStatuses, s)
}

func IsValidWorkStatus(s string) bool {
	return slices.Contains(WorkStatuses, s)
}

// CanTransitWork: повторная установка того же статуса разрешена.
func CanTransitWork(from, to string) bool {
	if from == to {
		return IsValidWorkStatus(to)
	}
	return slices.Contains(workTransitions[from], to)
}

// AssignmentStatusFor переводит статус работ в статус назначения.
func AssignmentStatusFor(workStatus string) string {
	switch workStatus {
	case WorkStatusInProgress:
		return AssignmentInProgress
	case WorkStatusPaused:
		return AssignmentPaused
	case WorkStatusCompleted:
		return AssignmentCompleted
	default:
		return AssignmentAssigned
	}
}

// Статусы, при смене на которые уведомляем создателя заказа.
func IsNotifiableStatus(s string) bool {
	return s == StatusInProgress || s == StatusReady || s == StatusIssued
}
