package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/minwonhaeso/esc-server/internal/http/response"
	"github.com/minwonhaeso/esc-server/internal/repository"
	"github.com/minwonhaeso/esc-server/internal/service"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var serviceErrorMappings = []errorMapping{
	{service.ErrVerificationMissing, http.StatusBadRequest, "VERIFICATION_MISSING"},
	{service.ErrVerificationExpired, http.StatusBadRequest, "VERIFICATION_EXPIRED"},
	{service.ErrKeyMismatch, http.StatusBadRequest, "KEY_MISMATCH"},
	{service.ErrEmailAlreadyRegistered, http.StatusConflict, "EMAIL_ALREADY_REGISTERED"},
	{service.ErrMemberNotFound, http.StatusNotFound, "MEMBER_NOT_FOUND"},
	{service.ErrPasswordMismatch, http.StatusBadRequest, "PASSWORD_MISMATCH"},
	{service.ErrSessionExpired, http.StatusUnauthorized, "SESSION_EXPIRED"},
	{service.ErrTokenMismatch, http.StatusUnauthorized, "TOKEN_MISMATCH"},
	{service.ErrNotAuthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},
	{service.ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST"},
	{service.ErrInvalidLikeType, http.StatusBadRequest, "BAD_REQUEST"},
	{service.ErrFileTooBig, http.StatusBadRequest, "BAD_REQUEST"},
	{service.ErrInvalidFileType, http.StatusBadRequest, "BAD_REQUEST"},
	{service.ErrStadiumNotFound, http.StatusNotFound, "NOT_FOUND"},
	{service.ErrGoogleAuthDisabled, http.StatusNotFound, "NOT_FOUND"},
	{service.ErrStorageDisabled, http.StatusServiceUnavailable, "STORAGE_DISABLED"},
}

// writeServiceError renders err with the status and code of the first
// matching sentinel. Anything unknown is logged and reported as INTERNAL.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range serviceErrorMappings {
		if errors.Is(err, m.err) {
			response.Error(w, r, m.status, m.code, err.Error(), nil)
			return
		}
	}
	slog.ErrorContext(r.Context(), "unhandled service error", "error", err, "path", r.URL.Path)
	response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return false
	}
	return true
}

func parsePathID(v string) (uint, error) {
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func parsePageRequest(r *http.Request) repository.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return repository.PageRequest{Page: page, PageSize: size}
}

func paginationMeta[T any](p repository.PageResult[T]) response.Pagination {
	return response.Pagination{Page: p.Page, PageSize: p.PageSize, Total: p.Total, TotalPages: p.TotalPages}
}
