package domain

import "errors"

var (
	// ErrValidationFailed — входные данные не прошли проверку (нет обязательных полей, неверный тип, смена идентификатора).
	ErrValidationFailed = errors.New("validation failed")
	// ErrMissingRequired уточняет ErrValidationFailed: не переданы обязательные поля.
	ErrMissingRequired = errors.New("missing required fields")
	// ErrDuplicateIdentity возвращается, если запись с переданным идентификатором уже есть в коллекции.
	ErrDuplicateIdentity = errors.New("record with this identity already exists")
	// ErrNotFound возвращается, если запись с указанным идентификатором не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrStorageUnavailable — таблицу не удалось прочитать или разобрать.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStorageWriteFailed — таблицу не удалось записать целиком.
	ErrStorageWriteFailed = errors.New("storage write failed")
	// ErrInvalidOperand — неизвестное поле, оператор, направление сортировки или некорректная пагинация.
	ErrInvalidOperand = errors.New("invalid query operand")
	// ErrUnknownField — поле отсутствует в схеме записи и среди дополнительных колонок.
	ErrUnknownField = errors.New("unknown field")
)

// IsClientError сообщает, вызвана ли ошибка некорректным запросом клиента.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrDuplicateIdentity) ||
		errors.Is(err, ErrInvalidOperand)
}

// IsStorageError сообщает, относится ли ошибка к слою хранения.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrStorageWriteFailed)
}
