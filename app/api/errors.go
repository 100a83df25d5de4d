package api

import (
	"errors"
	"fmt"
	"log/slog"

	"contractrag/types"

	"github.com/gofiber/fiber/v2"
)

func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		apiErr   Error
		valErr   ValidationError
		fiberErr *fiber.Error
	)
	switch {
	case errors.As(err, &valErr):
		return c.Status(valErr.Status).JSON(valErr)
	case errors.As(err, &apiErr):
	case errors.As(err, &fiberErr):
		apiErr = NewError(fiberErr.Code, fiberErr.Message)
	default:
		apiErr = NewError(statusOf(err), err.Error())
	}

	logger := slog.Default().With("component", "api")
	if apiErr.Code >= fiber.StatusInternalServerError {
		logger.Error("request failed", "method", c.Method(), "path", c.Path(), "code", apiErr.Code, "error", err)
	} else {
		logger.Info("request rejected", "method", c.Method(), "path", c.Path(), "code", apiErr.Code, "error", apiErr.Message)
	}
	return c.Status(apiErr.Code).JSON(apiErr)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, types.ErrNoContractLoaded),
		errors.Is(err, types.ErrMissingQuestion),
		errors.Is(err, types.ErrEmptySelection),
		errors.Is(err, types.ErrEmptyHistory):
		return fiber.StatusBadRequest
	case errors.Is(err, types.ErrUnreadablePdf):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, types.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, types.ErrTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, types.ErrOcrFailed),
		errors.Is(err, types.ErrEmbeddingFailed),
		errors.Is(err, types.ErrGenerationFailed):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errors,
	}
}

// Error implements the Error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

func ErrMissingFile(field string) Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: fmt.Sprintf("multipart field %q with a file is required", field),
	}
}
