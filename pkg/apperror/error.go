package apperror

import "net/http"

// Public messages. Nothing else is ever written to a response body.
const (
	MsgInvalidInput    = "Invalid input"
	MsgMailSendFailed  = "Mail send failed"
	MsgPayloadTooLarge = "Payload too large"
	MsgTooManyRequests = "Too many requests"
	MsgNotFound        = "Not found"
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func InvalidInput(err error) *AppError {
	return New(http.StatusBadRequest, MsgInvalidInput, err)
}

func PayloadTooLarge(err error) *AppError {
	return New(http.StatusRequestEntityTooLarge, MsgPayloadTooLarge, err)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, MsgMailSendFailed, err)
}
