package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"pennypal/internal/core"
	"pennypal/internal/log"
)

// envelope is the JSON body of every /api response except the summary
// endpoints, which return bare objects.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ResponseBuilder assembles a JSON response.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{statusCode: http.StatusOK, headers: make(map[string]string)}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Data wraps v in a success envelope.
func (b *ResponseBuilder) Data(v any) *ResponseBuilder {
	b.body = envelope{Success: true, Data: v}
	return b
}

// List wraps v in a success envelope carrying count.
func (b *ResponseBuilder) List(v any, count int) *ResponseBuilder {
	b.body = envelope{Success: true, Data: v, Count: &count}
	return b
}

// Bare writes v without an envelope.
func (b *ResponseBuilder) Bare(v any) *ResponseBuilder {
	b.body = v
	return b
}

func (b *ResponseBuilder) Error(message string) *ResponseBuilder {
	b.body = envelope{Success: false, Error: message}
	return b
}

func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_ = json.NewEncoder(w).Encode(b.body)
	}
}

// ErrorResponse builds a failure envelope.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).Error(message)
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func UnauthorizedError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message)
}

// StatusFor maps an Outcome to its HTTP status.
func StatusFor(o core.Outcome) int {
	switch o {
	case core.OutcomeOK:
		return http.StatusOK
	case core.OutcomeValidationFailed:
		return http.StatusBadRequest
	case core.OutcomeNotFound:
		return http.StatusNotFound
	case core.OutcomeConflict:
		return http.StatusConflict
	case core.OutcomeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

var notFoundMessages = []struct {
	err error
	msg string
}{
	{core.ErrExpenseNotFound, "Expense not found"},
	{core.ErrIncomeNotFound, "Income not found"},
	{core.ErrCategoryNotFound, "Category not found"},
	{core.ErrUserNotFound, "User not found"},
}

// errorMessage is the client-facing text for err. Server errors never leak
// their cause.
func errorMessage(err error) string {
	var verr *core.ValidationError
	switch core.OutcomeOf(err) {
	case core.OutcomeValidationFailed:
		switch {
		case errors.As(err, &verr):
			return verr.Error()
		case errors.Is(err, core.ErrInvalidReference):
			return "Invalid user_id or category_id"
		case errors.Is(err, core.ErrInvalidWindow):
			return core.ErrInvalidWindow.Error()
		case errors.Is(err, core.ErrTooManyOccurrences):
			return core.ErrTooManyOccurrences.Error()
		case errors.Is(err, core.ErrInvalidMonth):
			return core.ErrInvalidMonth.Error()
		case errors.Is(err, core.ErrInvalidAmount):
			return core.ErrInvalidAmount.Error()
		}
		return "Invalid request"
	case core.OutcomeNotFound:
		for _, nf := range notFoundMessages {
			if errors.Is(err, nf.err) {
				return nf.msg
			}
		}
		return "Not found"
	case core.OutcomeConflict:
		return "Resource already exists"
	case core.OutcomeUnauthorized:
		return "Unauthorized"
	default:
		return "Internal server error"
	}
}

// writeError maps err to a status and envelope, logging server errors.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	outcome := core.OutcomeOf(err)
	if outcome == core.OutcomeServerError {
		logger := log.FromContext(r.Context())
		log.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, nil)
	}
	ErrorResponse(StatusFor(outcome), errorMessage(err)).Write(w)
}
