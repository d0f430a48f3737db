package utils

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// FormatMinutes переводит минуты в строку вида "2ч 15м".
func FormatMinutes(total int) string {
	if total <= 0 {
		return "0м"
	}
	hours := total / 60
	minutes := total % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dч", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dм", minutes))
	}
	return strings.Join(parts, " ")
}

// StartOfDay - полночь UTC того дня, на который приходится t.
// Календарные сутки везде считаются в UTC, как и даты в БД.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDateRange разбирает YYYY-MM-DD, конец диапазона включается целиком.
// Без дат берётся последняя неделя.
func ParseDateRange(startRaw, endRaw string, now time.Time) (time.Time, time.Time, error) {
	end := StartOfDay(now).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -7)

	if startRaw != "" {
		s, err := time.ParseInLocation(DateLayout, startRaw, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("неверный формат start_date: %w", err)
		}
		start = s
	}
	if endRaw != "" {
		e, err := time.ParseInLocation(DateLayout, endRaw, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("неверный формат end_date: %w", err)
		}
		end = e.AddDate(0, 0, 1)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date должен быть раньше end_date")
	}
	return start, end, nil
}

// WholeMinutes - полные минуты между двумя моментами, не меньше нуля.
func WholeMinutes(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
