package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// writeValidationError reports schema violations with a field-level
// breakdown so clients can highlight the offending inputs.
func writeValidationError(w http.ResponseWriter, err error) {
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	fields := make([]fieldError, 0, len(violations))
	for _, violation := range violations {
		fields = append(fields, fieldError{
			Field: violation.Field(),
			Rule:  violation.Tag(),
		})
	}

	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{
		Code:    "validation_failed",
		Message: "request validation failed",
		Fields:  fields,
	}})
}

// writeFieldViolation reports a violation detected past the schema
// validator, in the same envelope writeValidationError produces.
func writeFieldViolation(w http.ResponseWriter, field, rule string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{
		Code:    "validation_failed",
		Message: "request validation failed",
		Fields:  []fieldError{{Field: field, Rule: rule}},
	}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
