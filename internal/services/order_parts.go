package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"felix-hub/internal/entities"
	"felix-hub/internal/repositories"
	apperrors "felix-hub/pkg/errors"
)

type partInput struct {
	PartID   json.RawMessage `json:"partId"`
	Name     json.RawMessage `json:"name"`
	Quantity json.RawMessage `json:"quantity"`
	Price    json.RawMessage `json:"price"`
	IsCustom json.RawMessage `json:"isCustom"`
	Note     json.RawMessage `json:"note"`
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decodeArray: ok == false, если значение не JSON-массив.
func decodeArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	return items, true
}

// parseNumber принимает JSON-число или строку с числом.
func parseNumber(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func parseInteger(raw json.RawMessage) (int64, bool) {
	f, ok := parseNumber(raw)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

// parseText: строка как есть, число или bool - в строковом виде.
func parseText(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] != '{' && trimmed[0] != '[' && trimmed[0] != '"' {
		return string(trimmed), true
	}
	return "", false
}

func parseTruthy(raw json.RawMessage) bool {
	if isAbsent(raw) {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f != 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s != ""
	}
	return true
}

// parseLegacyParts: selected_parts - непустой массив непустых строк.
func parseLegacyParts(raw json.RawMessage) ([]entities.OrderPart, error) {
	items, ok := decodeArray(raw)
	if !ok || len(items) == 0 {
		return nil, apperrors.NewBadRequestError("selected_parts должен быть непустым массивом")
	}

	parts := make([]entities.OrderPart, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err != nil || strings.TrimSpace(name) == "" {
			return nil, apperrors.NewBadRequestError("selected_parts должен содержать строковые значения")
		}
		parts = append(parts, entities.OrderPart{Name: strings.TrimSpace(name), Quantity: 1})
	}
	return parts, nil
}

// parseModernParts разбирает parts и подставляет названия из каталога по partId.
func parseModernParts(ctx context.Context, raw json.RawMessage, partRepo repositories.PartRepositoryInterface) ([]entities.OrderPart, error) {
	items, ok := decodeArray(raw)
	if !ok || len(items) == 0 {
		return nil, apperrors.NewBadRequestError("parts должен быть непустым массивом")
	}

	parts := make([]entities.OrderPart, 0, len(items))
	var catalogIDs []uint64
	for _, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, apperrors.NewBadRequestError("Каждая запись в parts должна быть объектом")
		}
		var in partInput
		if err := json.Unmarshal(trimmed, &in); err != nil {
			return nil, apperrors.NewBadRequestError("Каждая запись в parts должна быть объектом")
		}

		part := entities.OrderPart{Quantity: 1, IsCustom: parseTruthy(in.IsCustom)}

		if !isAbsent(in.PartID) {
			id, ok := parseInteger(in.PartID)
			if !ok || id < 0 {
				return nil, apperrors.NewBadRequestError("partId должен быть числом")
			}
			if id > 0 {
				uid := uint64(id)
				part.PartID = &uid
			}
		}
		if !isAbsent(in.Name) {
			if name, ok := parseText(in.Name); ok {
				part.Name = name
			}
		}
		if !isAbsent(in.Note) {
			if note, ok := parseText(in.Note); ok && note != "" {
				part.Note = &note
			}
		}
		if !isAbsent(in.Quantity) {
			q, ok := parseInteger(in.Quantity)
			if !ok {
				return nil, apperrors.NewBadRequestError("quantity должен быть целым числом")
			}
			if q <= 0 {
				return nil, apperrors.NewBadRequestError("quantity должен быть положительным числом")
			}
			part.Quantity = int(q)
		}
		if !isAbsent(in.Price) {
			price, ok := parseNumber(in.Price)
			if !ok {
				return nil, apperrors.NewBadRequestError("price должен быть числом")
			}
			if price < 0 {
				return nil, apperrors.NewBadRequestError("price не может быть отрицательным")
			}
			part.Price = &price
		}

		switch {
		case part.IsCustom:
			if part.Name == "" {
				return nil, apperrors.NewBadRequestError("name обязателен для кастомной детали")
			}
		case part.PartID != nil:
			catalogIDs = append(catalogIDs, *part.PartID)
		case part.Name == "":
			return nil, apperrors.NewBadRequestError("Для детали необходимо указать name или partId")
		}
		parts = append(parts, part)
	}

	if len(catalogIDs) == 0 {
		return parts, nil
	}
	found, err := partRepo.FindPartsByIDs(ctx, catalogIDs)
	if err != nil {
		return nil, err
	}
	for i := range parts {
		p := &parts[i]
		if p.IsCustom || p.PartID == nil {
			continue
		}
		catalogPart, ok := found[*p.PartID]
		if !ok {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("Деталь с id %d не найдена", *p.PartID))
		}
		if p.Name == "" {
			p.Name = catalogPart.NameRu
		}
	}
	return parts, nil
}

// resolveParts: parts имеет приоритет над selected_parts.
func resolveParts(ctx context.Context, modern, legacy json.RawMessage, partRepo repositories.PartRepositoryInterface) ([]entities.OrderPart, error) {
	if !isAbsent(modern) {
		return parseModernParts(ctx, modern, partRepo)
	}
	if !isAbsent(legacy) {
		return parseLegacyParts(legacy)
	}
	return nil, apperrors.NewBadRequestError("Необходимо указать parts или selected_parts")
}
