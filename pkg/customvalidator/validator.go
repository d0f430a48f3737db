package customvalidator

import (
	"reflect"
	"regexp"
	"slices"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"

	"felix-hub/pkg/constants"
	"felix-hub/pkg/utils"
)

var phoneRegexp = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)

// RegisterCustomValidations регистрирует null-типы и доменные правила.
func RegisterCustomValidations(v *validator.Validate) error {
	registerNullTypes(v)

	rules := map[string]validator.Func{
		"order_status": isOrderStatus,
		"work_status":  isWorkStatus,
		"part_type":    isPartType,
		"lang":         isLanguage,
		"car_number":   isCarNumber,
		"phone":        isPhone,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// registerNullTypes учит валидатор смотреть внутрь null.* (невалидное значение = nil, срабатывает omitempty).
func registerNullTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.String); ok && val.Valid {
			return val.String
		}
		return nil
	}, null.String{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Int); ok && val.Valid {
			return val.Int
		}
		return nil
	}, null.Int{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Uint64); ok && val.Valid {
			return val.Uint64
		}
		return nil
	}, null.Uint64{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Float64); ok && val.Valid {
			return val.Float64
		}
		return nil
	}, null.Float64{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Bool); ok && val.Valid {
			return val.Bool
		}
		return nil
	}, null.Bool{})
}

func isOrderStatus(fl validator.FieldLevel) bool {
	return constants.IsValidOrderStatus(fl.Field().String())
}

func isWorkStatus(fl validator.FieldLevel) bool {
	return constants.IsValidWorkStatus(fl.Field().String())
}

func isPartType(fl validator.FieldLevel) bool {
	return slices.Contains([]string{constants.PartTypeOriginal, constants.PartTypeAnalog, constants.PartTypeAny}, fl.Field().String())
}

func isLanguage(fl validator.FieldLevel) bool {
	return slices.Contains([]string{constants.LangRU, constants.LangHE, constants.LangEN}, fl.Field().String())
}

func isCarNumber(fl validator.FieldLevel) bool {
	return utils.IsValidCarNumber(utils.NormalizeCarNumber(fl.Field().String()))
}

func isPhone(fl validator.FieldLevel) bool {
	return phoneRegexp.MatchString(fl.Field().String())
}
