package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ZertGraf/user-directory/internal/domain"
	"github.com/ZertGraf/user-directory/internal/pkg/logger"
	validation "github.com/go-ozzo/ozzo-validation"
)

type ErrorCode string

const (
	CodeFetchFailed      ErrorCode = "FETCH_FAILED"
	CodeLoading          ErrorCode = "LOADING"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeInvalidID        ErrorCode = "INVALID_ID"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// userFacing replaces the message of err with a fixed string shown to users.
type userFacing struct {
	err error
	msg string
}

func (e *userFacing) Error() string { return e.msg }
func (e *userFacing) Unwrap() error { return e.err }

func withMessage(err error, msg string) error {
	return &userFacing{err: err, msg: msg}
}

func WriteError(w http.ResponseWriter, err error, logger *logger.Logger) {
	status, response := mapError(err)

	if status < http.StatusInternalServerError {
		logger.Warn("request error",
			"error", err.Error(),
			"code", response.Error.Code,
		)
	} else {
		logger.Error("request failed",
			"error", err.Error(),
			"code", response.Error.Code,
		)
	}

	if response.Error.Code == CodeLoading {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, status, response, logger)
}

func mapError(err error) (int, ErrorResponse) {
	var verrs validation.Errors

	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, errorResponse(CodeValidationFailed, verrs.Error())

	case errors.Is(err, domain.ErrInvalidUserID):
		return http.StatusBadRequest, errorResponse(CodeInvalidID, err.Error())

	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse(CodeNotFound, err.Error())

	case errors.Is(err, domain.ErrNotLoaded):
		return http.StatusServiceUnavailable, errorResponse(CodeLoading, err.Error())

	case errors.Is(err, domain.ErrFetchFailed):
		return http.StatusBadGateway, errorResponse(CodeFetchFailed, err.Error())

	default:
		return http.StatusInternalServerError, errorResponse(CodeInternal, "internal server error")
	}
}

func errorResponse(code ErrorCode, msg string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: msg}}
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
