package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	domainErrors "github.com/MrGreenNV/bank-rest-test/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// requestError marks a malformed request body or a schema-level validation
// failure. It maps to 422, unlike domain validation which maps to 400.
type requestError struct {
	field   string
	message string
}

func (e *requestError) Error() string {
	return e.field + ": " + e.message
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domainErrors.ErrAccountNotFound, http.StatusNotFound, "not_found"},
	{domainErrors.ErrAccessDenied, http.StatusForbidden, "access_denied"},
	{domainErrors.ErrDuplicateName, http.StatusBadRequest, "duplicate_name"},
	{domainErrors.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{domainErrors.ErrInsufficientFunds, http.StatusBadRequest, "insufficient_funds"},
	{domainErrors.ErrOptimisticLockFailed, http.StatusConflict, "conflict"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var reqErr *requestError
	if errors.As(err, &reqErr) {
		resp.Code = "invalid_request"
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		resp.Code = "validation_error"
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			resp.Code = m.code
			if m.err == domainErrors.ErrOptimisticLockFailed {
				resp.Error = "concurrent modification, please retry"
			}
			writeJSON(w, m.status, resp)
			return
		}
	}

	var domainErr *domainErrors.DomainError
	if errors.As(err, &domainErr) {
		resp.Code = domainErr.Code
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	// Anything uncaught surfaces as a bad request with the message intact.
	resp.Code = "error"
	writeJSON(w, http.StatusBadRequest, resp)
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &requestError{field: "body", message: "invalid JSON: " + err.Error()}
	}
	if err := validate.Struct(dst); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return &requestError{field: ve[0].Field(), message: ve[0].Tag() + " validation failed"}
		}
		return &requestError{field: "body", message: err.Error()}
	}
	return nil
}
