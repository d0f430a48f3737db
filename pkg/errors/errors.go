package errors

import (
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenIsNotRefresh    = fmt.Errorf("токен не является refresh-токеном")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("Неверный email или пароль")
	ErrAccountLocked      = fmt.Errorf("слишком много попыток входа, попробуйте позже")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")
	ErrWrongPassword      = fmt.Errorf("текущий пароль указан неверно")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")

	// Домен
	ErrOrderNotFound       = fmt.Errorf("Заказ не найден")
	ErrMechanicNotFound    = fmt.Errorf("Механик не найден")
	ErrCategoryNotFound    = fmt.Errorf("Категория не найдена")
	ErrPartNotFound        = fmt.Errorf("Деталь не найдена")
	ErrTimerAlreadyRunning = fmt.Errorf("У вас уже есть активный таймер")
	ErrNoActiveTimer       = fmt.Errorf("Активный таймер не найден")
	ErrInvalidTransition   = fmt.Errorf("недопустимый переход статуса работ")

	// Общие
	ErrNotFound       = fmt.Errorf("запись не найдена")
	ErrBadRequest     = fmt.Errorf("неверный запрос")
	ErrConflict       = fmt.Errorf("запись с такими данными уже существует")
	ErrBadReference   = fmt.Errorf("ссылка на несуществующую запись")
	ErrInternalServer = fmt.Errorf("внутренняя ошибка сервера")
)

// HttpError несёт HTTP-код и сообщение для клиента, исходная ошибка идёт только в лог.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

func NewBadRequestError(message string) *HttpError {
	return &HttpError{Code: http.StatusBadRequest, Message: message}
}

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// StatusCode сопоставляет доменные ошибки с HTTP-кодами.
func StatusCode(err error) int {
	switch {
	case Is(err, ErrNotFound), Is(err, ErrOrderNotFound), Is(err, ErrMechanicNotFound),
		Is(err, ErrCategoryNotFound), Is(err, ErrPartNotFound), Is(err, ErrNoActiveTimer):
		return http.StatusNotFound
	case Is(err, ErrInvalidCredentials), Is(err, ErrUnauthorized), Is(err, ErrInvalidToken),
		Is(err, ErrTokenExpired), Is(err, ErrTokenNotYetValid), Is(err, ErrEmptyAuthHeader),
		Is(err, ErrInvalidAuthHeader), Is(err, ErrInvalidSigningMethod), Is(err, ErrTokenIsNotAccess),
		Is(err, ErrTokenIsNotRefresh):
		return http.StatusUnauthorized
	case Is(err, ErrForbidden):
		return http.StatusForbidden
	case Is(err, ErrAccountLocked):
		return http.StatusTooManyRequests
	case Is(err, ErrConflict), Is(err, ErrTimerAlreadyRunning):
		return http.StatusConflict
	case Is(err, ErrBadRequest), Is(err, ErrBadReference), Is(err, ErrInvalidTransition), Is(err, ErrWrongPassword):
		return http.StatusBadRequest
	}
	var inputErr *InvalidInputError
	if As(err, &inputErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
