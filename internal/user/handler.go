package user

import (
	"encoding/json"
	"net/http"

	"simple-chat/internal/apperr"
	"simple-chat/internal/middleware"
	"simple-chat/internal/render"
)

type Handler struct {
	Service  *Service
	renderer *render.Renderer
}

func NewHandler(s *Service, renderer *render.Renderer) *Handler {
	return &Handler{Service: s, renderer: renderer}
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.Me(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	h.renderer.JSON(w, http.StatusOK, toResponse(u))
}

func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.renderer.Error(w, r, apperr.Invalid("malformed JSON body"))
		return
	}

	u, err := h.Service.Rename(r.Context(), middleware.UserID(r.Context()), req.Nickname)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	h.renderer.JSON(w, http.StatusOK, toResponse(u))
}

func toResponse(u *User) MeResponse {
	return MeResponse{
		ID:       u.ID,
		Nickname: u.Nickname,
		Rooms:    u.Rooms,
	}
}
