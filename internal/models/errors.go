package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the messaging core.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInvalidSender     = "INVALID_SENDER"
	CodeInvalidRecipient  = "INVALID_RECIPIENT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeContentTooLong    = "CONTENT_TOO_LONG"
	CodeInternal          = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

// NewInvalidSenderError rejects a message whose authorship breaks the
// exactly-one-sender rule.
func NewInvalidSenderError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidSender,
		Message: message,
	}
}

// NewInvalidRecipientError rejects a notification whose recipient is not
// exactly one of user or employer.
func NewInvalidRecipientError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidRecipient,
		Message: message,
	}
}

// NewInvalidTransitionError rejects a state change a notification's lifecycle
// does not permit.
func NewInvalidTransitionError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidTransition,
		Message: message,
	}
}

func NewContentTooLongError(message string) *AppError {
	return &AppError{
		Code:    CodeContentTooLong,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// statusByCode maps error codes to HTTP statuses for RespondWithError.
var statusByCode = map[string]int{
	CodeNotFound:          fiber.StatusNotFound,
	CodeValidation:        fiber.StatusBadRequest,
	CodeUnauthorized:      fiber.StatusUnauthorized,
	CodeForbidden:         fiber.StatusForbidden,
	CodeInvalidSender:     fiber.StatusBadRequest,
	CodeInvalidRecipient:  fiber.StatusBadRequest,
	CodeInvalidTransition: fiber.StatusConflict,
	CodeContentTooLong:    fiber.StatusBadRequest,
	CodeInternal:          fiber.StatusInternalServerError,
}

// RespondWithError creates a standardized error response. The status argument
// is used as-is for plain errors; AppErrors map their code to a status.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		if mapped, known := statusByCode[appErr.Code]; known {
			status = mapped
		}
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
