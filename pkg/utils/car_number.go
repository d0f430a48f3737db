package utils

import (
	"strings"
	"unicode"
)

const (
	MinCarNumberLength = 4
	MaxCarNumberLength = 10
	MinVINLength       = 4
)

// NormalizeCarNumber: верхний регистр, без пробелов, дефисов и точек.
func NormalizeCarNumber(raw string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// IsValidCarNumber проверяет уже нормализованный номер: 4-10 букв или цифр.
func IsValidCarNumber(number string) bool {
	n := 0
	for _, r := range number {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
		n++
	}
	return n >= MinCarNumberLength && n <= MaxCarNumberLength
}
