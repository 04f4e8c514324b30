package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	svcErr "github.com/oggyb/yourcode/internal/errors"
	"github.com/oggyb/yourcode/internal/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct tag validation and turns the first failure into a
// validation error.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return svcErr.Validation(describe(verrs[0]))
	}
	return svcErr.Validation("invalid request")
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "gt":
		return field + " must be greater than " + fe.Param()
	default:
		return field + " is invalid"
	}
}

// DecodeJSON reads a JSON body into dst and validates it.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return svcErr.Validation("request body is required")
		}
		return svcErr.Validation("invalid request body")
	}
	return Validate(dst)
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response failed", "err", err)
	}
}

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// WriteError maps err onto a status and writes the error body. Internal
// failures are logged with the request's logger and never leak details.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	err = svcErr.Map(err)
	status := svcErr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "err", err)
	}
	WriteJSON(w, status, ErrorBody{
		Message: svcErr.Message(err),
		Error:   string(svcErr.KindOf(err)),
	})
}

// Message writes a {"message": ...} body.
func Message(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"message": msg})
}

// IDParam parses a positive numeric URL parameter.
func IDParam(r *http.Request, name string) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.Validation(name + " must be a positive integer")
	}
	return id, nil
}

// IntQuery parses an optional integer query parameter.
func IntQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, svcErr.Validation(name + " must be an integer")
	}
	return n, nil
}
