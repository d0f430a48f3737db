package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "felix-hub/pkg/errors"
)

// bindAndValidate читает JSON-тело в dest и прогоняет валидатор.
func bindAndValidate(ctx echo.Context, dest interface{}) error {
	if err := ctx.Bind(dest); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Невалидный JSON", err, nil)
	}
	if err := ctx.Validate(dest); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Ошибка валидации", err, nil)
	}
	return nil
}

// readPatchBody возвращает сырое тело PATCH-запроса: по нему сервис понимает, какие поля пришли.
func readPatchBody(ctx echo.Context, dest interface{}) ([]byte, error) {
	rawBody, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Не удалось прочитать тело запроса", err, nil)
	}
	if len(bytes.TrimSpace(rawBody)) == 0 {
		return nil, apperrors.NewBadRequestError("Пустое тело запроса")
	}
	if err := json.Unmarshal(rawBody, dest); err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверные данные в формате JSON", err, nil)
	}
	ctx.Request().Body = io.NopCloser(bytes.NewBuffer(rawBody))

	if err := ctx.Validate(dest); err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Ошибка валидации", err, nil)
	}
	return rawBody, nil
}
