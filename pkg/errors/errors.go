package errors

import (
	"errors"
	"fmt"
)

const (
	InternalServerError = "internal server error"
	BadRequest          = "bad request"
	NotFound            = "not_found"

	InternalServerErrorCode = 500
	NotFoundErrorCode       = 404
)

// AppError представляет собой стандартизированную структуру ошибки для API.
type AppError struct {
	Code         int    `json:"code"`    // HTTP статус код
	Message      string `json:"message"` // Сообщение для клиента
	Err          error  `json:"-"`       // Внутренняя ошибка, не для клиента
	IsUserFacing bool   `json:"-"`       // Флаг, указывающий, можно ли показывать `Err`
}

func (a *AppError) Error() string {
	if a == nil {
		return ""
	}
	if a.Err != nil {
		return fmt.Sprintf("%s (code: %d): %v", a.Message, a.Code, a.Err)
	}
	return fmt.Sprintf("%s (code: %d)", a.Message, a.Code)
}

func (a *AppError) Unwrap() error {
	if a == nil {
		return nil
	}
	return a.Err
}

// NewAppError создает новый экземпляр AppError.
func NewAppError(httpCode int, message string, err error, isUserFacing bool) *AppError {
	return &AppError{
		Code:         httpCode,
		Message:      message,
		Err:          err,
		IsUserFacing: isUserFacing,
	}
}

// Ошибки протокола Modbus. Все производные ошибки оборачивают ErrProtocol,
// поэтому проверка errors.Is(err, ErrProtocol) покрывает весь класс.
var (
	ErrProtocol            = errors.New("ошибка протокола modbus")
	ErrFrameTooShort       = fmt.Errorf("%w: слишком короткий кадр", ErrProtocol)
	ErrFunctionMismatch    = fmt.Errorf("%w: несовпадение кода функции", ErrProtocol)
	ErrTransactionMismatch = fmt.Errorf("%w: несовпадение идентификатора транзакции", ErrProtocol)
	ErrUnsupportedFunction = errors.New("неподдерживаемый код функции")
)

// Ошибки преобразования и конфигурации.
var (
	ErrInvalidScale  = errors.New("недопустимый коэффициент масштаба")
	ErrInvalidValue  = errors.New("недопустимое значение в инженерных единицах")
	ErrConfiguration = errors.New("ошибка конфигурации")
	ErrPointNotFound = errors.New("точка не найдена")
)

// Ошибки транспорта. ErrTimeout является частным случаем ErrTransport.
var (
	ErrTransport = errors.New("ошибка транспорта")
	ErrTimeout   = fmt.Errorf("%w: превышено время ожидания", ErrTransport)
)

// ExceptionError - ответ устройства с установленным битом исключения (fc | 0x80).
type ExceptionError struct {
	FunctionCode  byte
	ExceptionCode byte
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("исключение modbus %d для функции 0x%02X", e.ExceptionCode, e.FunctionCode)
}

func (e *ExceptionError) Unwrap() error { return ErrProtocol }
