package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindwell-backend/internal/shared/telemetry"
)

// ErrorBody is the payload under the "error" key of every failed response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Problem is an error that carries its own HTTP status and envelope.
type Problem struct {
	Status  int
	Body    ErrorBody
	Wrapped error
}

func NewProblem(status int, code, message string) *Problem {
	return &Problem{Status: status, Body: ErrorBody{Code: code, Message: message}}
}

func (p *Problem) Error() string {
	if p.Wrapped != nil {
		return p.Body.Code + ": " + p.Wrapped.Error()
	}
	return p.Body.Code + ": " + p.Body.Message
}

func (p *Problem) Unwrap() error { return p.Wrapped }

// Internal wraps err in a 500 Problem whose body shows only code and message.
func Internal(code, message string, err error) *Problem {
	return &Problem{Status: http.StatusInternalServerError, Body: ErrorBody{Code: code, Message: message}, Wrapped: err}
}

// WithDetails returns a copy of p carrying details.
func (p *Problem) WithDetails(details any) *Problem {
	cp := *p
	cp.Body.Details = details
	return &cp
}

var (
	ErrLoginRequired = NewProblem(http.StatusUnauthorized, "unauthorized", "login required")
	ErrInternal      = NewProblem(http.StatusInternalServerError, "internal", "Unexpected server error")
)

// Error writes the error envelope and aborts the chain.
func Error(c *gin.Context, status int, code, message string, details any) {
	write(c, &Problem{Status: status, Body: ErrorBody{Code: code, Message: message, Details: details}})
}

// Fail writes err as a Problem. Errors that are not Problems become a generic 500.
func Fail(c *gin.Context, err error) {
	var p *Problem
	if !errors.As(err, &p) {
		p = &Problem{Status: ErrInternal.Status, Body: ErrInternal.Body, Wrapped: err}
	}
	write(c, p)
}

func write(c *gin.Context, p *Problem) {
	fields := map[string]any{
		"status":     p.Status,
		"code":       p.Body.Code,
		"message":    p.Body.Message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if p.Wrapped != nil {
		fields["error"] = p.Wrapped.Error()
	}
	if p.Status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}
	c.AbortWithStatusJSON(p.Status, ErrorResponse{Error: p.Body})
}
