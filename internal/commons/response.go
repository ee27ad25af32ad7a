package commons

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

const internalErrorMessage = "an unexpected error occurred"

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func WriteJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func WriteValidationError(w http.ResponseWriter, logger *zap.Logger, message string, details ...apperrors.ValidationDetail) {
	if details == nil {
		details = []apperrors.ValidationDetail{}
	}
	WriteJSON(w, logger, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func WriteError(w http.ResponseWriter, logger *zap.Logger, traceID string, status int, code, message string) {
	WriteJSON(w, logger, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Message:   message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	})
}

// WriteUseCaseError maps the typed errors returned by use cases onto
// status codes. Anything unrecognised is logged and answered with a
// generic 500 so internals do not leak.
func WriteUseCaseError(w http.ResponseWriter, logger *zap.Logger, traceID string, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		WriteValidationError(w, logger, ve.Message, ve.Details...)
		return
	}

	if ae, ok := apperrors.IsAuthenticationError(err); ok {
		logger.Warn("authentication failed", zap.Error(err))
		WriteError(w, logger, traceID, http.StatusBadRequest, "AUTHENTICATION_FAILED", ae.Message)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		WriteError(w, logger, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		WriteError(w, logger, traceID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	if ue, ok := apperrors.IsUpstreamError(err); ok {
		logger.Error("payment provider request failed", zap.String("provider", ue.Provider), zap.Error(err))
		WriteError(w, logger, traceID, http.StatusBadGateway, "UPSTREAM_ERROR", "payment provider request failed")
		return
	}

	if ie, ok := apperrors.IsInternalError(err); ok {
		logger.Error("internal error", zap.Error(err))
		WriteError(w, logger, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", ie.Message)
		return
	}

	if _, ok := apperrors.IsPersistenceError(err); ok {
		logger.Error("persistence error", zap.Error(err))
		WriteError(w, logger, traceID, http.StatusInternalServerError, "PERSISTENCE_ERROR", internalErrorMessage)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	WriteError(w, logger, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", internalErrorMessage)
}

// DecodeJSON decodes the request body into v, answering 400 itself when the
// body is not valid JSON.
func DecodeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		WriteValidationError(w, logger, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return false
	}
	return true
}
