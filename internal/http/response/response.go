package response

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
	Meta    Meta       `json:"meta"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Meta struct {
	RequestID  string      `json:"request_id,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data, Meta: Meta{RequestID: requestID(r)}})
}

// Paginated writes a list with its page position in meta.pagination.
func Paginated(w http.ResponseWriter, r *http.Request, status int, data any, page Pagination) {
	write(w, status, Envelope{Success: true, Data: data, Meta: Meta{RequestID: requestID(r), Pagination: &page}})
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	write(w, status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
		Meta:    Meta{RequestID: requestID(r)},
	})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func requestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	return chimiddleware.GetReqID(r.Context())
}
