package errors

import "errors"

const (
	StatusNoContent           = 204
	StatusBadRequest          = 400
	StatusNotFound            = 404
	StatusMethodNotAllowed    = 405
	StatusRequestTimeout      = 408
	StatusConflict            = 409
	StatusInternalServerError = 500
)

const genericMessage = "An unexpected error occurred"

var statusByKind = map[Kind]int{
	KindInvalidRequest: StatusBadRequest,
	KindConflict:       StatusConflict,
	KindStore:          StatusInternalServerError,
}

func HTTPStatusCode(err error) int {
	if status, ok := statusByKind[KindOf(err)]; ok {
		return status
	}
	return StatusInternalServerError
}

// GetHumanReadableMessage returns the AppError message. Other errors get a
// generic message so raw driver text is never leaked by accident.
func GetHumanReadableMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return genericMessage
}
