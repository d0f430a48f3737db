package utils

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/aarondl/null/v8"
)

// ApplyPatch переносит в entity только поля, которые реально пришли в теле запроса.
// Явный null обнуляет поле-указатель, для полей-значений null игнорируется.
// Возвращает json-имена изменённых полей.
func ApplyPatch(entity interface{}, patchDTO interface{}, rawRequestBody []byte) ([]string, error) {
	var sentFields map[string]interface{}
	if err := json.Unmarshal(rawRequestBody, &sentFields); err != nil {
		return nil, err
	}

	entityValue := reflect.ValueOf(entity).Elem()
	patchDTOValue := reflect.ValueOf(patchDTO)
	if patchDTOValue.Kind() == reflect.Ptr {
		patchDTOValue = patchDTOValue.Elem()
	}

	var changed []string
	for i := 0; i < patchDTOValue.NumField(); i++ {
		patchField := patchDTOValue.Field(i)
		patchFieldType := patchDTOValue.Type().Field(i)
		jsonFieldName := strings.Split(patchFieldType.Tag.Get("json"), ",")[0]

		if _, fieldWasSent := sentFields[jsonFieldName]; !fieldWasSent {
			continue
		}

		target := entityValue.FieldByName(patchFieldType.Name)
		if !target.IsValid() || !target.CanSet() {
			continue
		}

		before := reflect.ValueOf(target.Interface())
		applyNullable(target, patchField.Interface())
		if !reflect.DeepEqual(before.Interface(), target.Interface()) {
			changed = append(changed, jsonFieldName)
		}
	}
	return changed, nil
}

func applyNullable(target reflect.Value, value interface{}) {
	var (
		valid bool
		raw   interface{}
	)

	switch v := value.(type) {
	case null.String:
		valid, raw = v.Valid, v.String
	case null.Int:
		valid, raw = v.Valid, int64(v.Int)
	case null.Int64:
		valid, raw = v.Valid, v.Int64
	case null.Uint64:
		valid, raw = v.Valid, v.Uint64
	case null.Bool:
		valid, raw = v.Valid, v.Bool
	case null.Float64:
		valid, raw = v.Valid, v.Float64
	default:
		return
	}

	isPtr := target.Kind() == reflect.Ptr
	if !valid {
		if isPtr {
			target.Set(reflect.Zero(target.Type()))
		}
		return
	}

	elemType := target.Type()
	if isPtr {
		elemType = elemType.Elem()
	}
	rv := reflect.ValueOf(raw)
	if !rv.Type().ConvertibleTo(elemType) || (elemType.Kind() == reflect.String) != (rv.Kind() == reflect.String) {
		return
	}
	converted := rv.Convert(elemType)

	if isPtr {
		ptr := reflect.New(elemType)
		ptr.Elem().Set(converted)
		target.Set(ptr)
		return
	}
	target.Set(converted)
}
