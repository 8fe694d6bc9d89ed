package errors

import (
	"errors"
	"fmt"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader   = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader = fmt.Errorf("неверный формат заголовка авторизации")
	ErrUnauthorized      = fmt.Errorf("неавторизован")
	ErrForbidden         = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrUserIDNotFoundInContext   = fmt.Errorf("UserID не найден в контексте запроса")
	ErrTenantIDNotFoundInContext = fmt.Errorf("TenantID не найден в контексте запроса")

	// Общие
	ErrNotFound           = fmt.Errorf("запись не найдена")
	ErrBadRequest         = fmt.Errorf("неверный запрос")
	ErrInvalidState       = fmt.Errorf("операция недопустима в текущем состоянии")
	ErrConcurrentConflict = fmt.Errorf("запись изменена параллельной операцией")
	ErrDuplicate          = fmt.Errorf("значение уже используется")
)

// HttpError - ошибка уровня контроллера с готовым HTTP-кодом.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

// ValidationError - некорректные входные данные, привязанные к конкретному полю.
// Cause уточняет причину (например ErrDuplicate) для errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("поле '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NewDuplicateError - нарушение уникальности поля. Это ValidationError, и errors.Is(err, ErrDuplicate) истинно.
func NewDuplicateError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Cause: ErrDuplicate}
}

// InvalidStateError - переход запрещён текущим состоянием сущности.
type InvalidStateError struct {
	Entity    string
	ID        uint64
	Current   string
	Attempted string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s #%d: нельзя выполнить '%s' в состоянии '%s'", e.Entity, e.ID, e.Attempted, e.Current)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

func NewInvalidStateError(entity string, id uint64, current, attempted string) error {
	return &InvalidStateError{Entity: entity, ID: id, Current: current, Attempted: attempted}
}

// NotFoundError оборачивает ErrNotFound с указанием сущности.
type NotFoundError struct {
	Entity string
	ID     uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s #%d: %s", e.Entity, e.ID, ErrNotFound.Error())
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NewNotFoundError(entity string, id uint64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConcurrencyConflictError - оптимистичная проверка не прошла, операцию можно повторить.
type ConcurrencyConflictError struct {
	Entity string
	ID     uint64
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s #%d: %s", e.Entity, e.ID, ErrConcurrentConflict.Error())
}

func (e *ConcurrencyConflictError) Is(target error) bool { return target == ErrConcurrentConflict }

func NewConcurrencyConflictError(entity string, id uint64) error {
	return &ConcurrencyConflictError{Entity: entity, ID: id}
}

// IsValidation - короткий хелпер для сервисов и тестов.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
