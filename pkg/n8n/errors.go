package n8n

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/moogar0880/problems"
)

var (
	// ErrUnreachable indicates the instance could not be contacted at all.
	ErrUnreachable = errors.New("n8n instance unreachable")

	// ErrUnexpectedResponse indicates a 2xx response whose body could not be decoded.
	ErrUnexpectedResponse = errors.New("unexpected response from n8n")
)

// APIError is a non-2xx answer of the n8n API, carried as an RFC 7807 problem.
type APIError struct {
	Method  string
	Problem *problems.Problem
}

func (e *APIError) Error() string {
	if e.Problem.Detail == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Problem.Instance, e.Problem.Status, e.Problem.Title)
	}

	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Problem.Instance, e.Problem.Status, e.Problem.Title, e.Problem.Detail)
}

// StatusCode returns the HTTP status of the failed call.
func (e *APIError) StatusCode() int {
	return e.Problem.Status
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && apiErr.StatusCode() == status
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	return &APIError{
		Method: method,
		Problem: problems.NewStatusProblem(status).
			WithInstance(path).
			WithType(problemType(status)).
			WithDetail(errorMessage(body)),
	}
}

func problemType(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "authorization_error"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "conflict"
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		return "validation_error"
	default:
		return "server_error"
	}
}

// errorMessage extracts n8n's {"message": ...} body, falling back to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}

	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}

	return strings.TrimSpace(string(body))
}
