package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minwonhaeso/esc-server/internal/http/middleware"
	"github.com/minwonhaeso/esc-server/internal/http/response"
	"github.com/minwonhaeso/esc-server/internal/service"
)

type StadiumHandler struct {
	likes  service.StadiumLikeServiceInterface
	search service.StadiumSearchServiceInterface
}

func NewStadiumHandler(likes service.StadiumLikeServiceInterface, search service.StadiumSearchServiceInterface) *StadiumHandler {
	return &StadiumHandler{likes: likes, search: search}
}

func (h *StadiumHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, err := h.search.Search(r.Context(), r.URL.Query().Get("searchValue"), parsePageRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Paginated(w, r, http.StatusOK, page.Items, paginationMeta(page))
}

func (h *StadiumHandler) LikeList(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.MemberEmailFromContext(r.Context())
	page, err := h.likes.LikeList(r.Context(), email, parsePageRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Paginated(w, r, http.StatusOK, page.Items, paginationMeta(page))
}

func (h *StadiumHandler) Likes(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.MemberEmailFromContext(r.Context())
	stadiumID, err := parsePathID(chi.URLParam(r, "stadiumId"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid stadium id", nil)
		return
	}
	res, err := h.likes.Likes(r.Context(), email, stadiumID, chi.URLParam(r, "type"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, res)
}
