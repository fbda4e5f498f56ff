// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ProblemDetail represents RFC7807 problem details. Instance carries a unique
// id so an error response can be correlated with server logs.
type ProblemDetail struct {
	Type     string            `json:"type,omitempty"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	JSON(w, status, ProblemDetail{
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: "urn:uuid:" + uuid.NewString(),
	})
}

// ValidationProblem sends a 422 with per-field messages from validator errors.
func ValidationProblem(w http.ResponseWriter, err error) {
	fields := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range verrs {
			fields[fieldErr.Field()] = fieldErr.Tag()
		}
	}
	JSON(w, http.StatusUnprocessableEntity, ProblemDetail{
		Title:    "validation failed",
		Status:   http.StatusUnprocessableEntity,
		Detail:   "one or more fields are invalid",
		Instance: "urn:uuid:" + uuid.NewString(),
		Fields:   fields,
	})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
