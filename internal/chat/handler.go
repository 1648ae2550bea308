package chat

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"simple-chat/internal/apperr"
	"simple-chat/internal/middleware"
	"simple-chat/internal/render"
)

type Handler struct {
	service  *Service
	renderer *render.Renderer
}

func NewHandler(service *Service, renderer *render.Renderer) *Handler {
	return &Handler{
		service:  service,
		renderer: renderer,
	}
}

// Home lists the rooms and how many people are in them.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	greeting, err := h.service.Greeting(r.Context(), userID)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}
	rooms := h.service.ListRooms(r.Context())

	if render.WantsJSON(r) {
		h.renderer.JSON(w, http.StatusOK, HomeResponse{Greeting: greeting, Rooms: rooms})
		return
	}

	h.renderer.Page(w, http.StatusOK, "index", indexPage{
		Title:    "Rooms",
		Greeting: greeting,
		Rooms:    rooms,
	})
}

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	h.renderer.JSON(w, http.StatusOK, h.service.ListRooms(r.Context()))
}

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	input, err := readInput(r)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	roomID, err := h.service.CreateRoom(r.Context(), middleware.UserID(r.Context()), input["roomname"])
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	if render.WantsJSON(r) {
		h.renderer.JSON(w, http.StatusCreated, CreateRoomResponse{ID: roomID})
		return
	}
	http.Redirect(w, r, roomPath(roomID), http.StatusSeeOther)
}

func (h *Handler) ShowRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	view, err := h.service.Room(r.Context(), roomID)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	if render.WantsJSON(r) {
		h.renderer.JSON(w, http.StatusOK, view)
		return
	}

	var userID int
	if sess := middleware.SessionFromContext(r.Context()); sess != nil {
		userID = sess.UserID
	}
	h.renderer.Page(w, http.StatusOK, "chat", roomPage{
		Title:  view.Name,
		Room:   view,
		UserID: userID,
	})
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	input, err := readInput(r)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	resp, err := h.service.PostMessage(r.Context(), middleware.UserID(r.Context()), roomID, input["message"])
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	if render.WantsJSON(r) {
		h.renderer.JSON(w, http.StatusOK, resp)
		return
	}
	http.Redirect(w, r, roomPath(roomID), http.StatusSeeOther)
}

func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	if err := h.service.JoinRoom(r.Context(), middleware.UserID(r.Context()), roomID); err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	h.done(w, r, roomPath(roomID))
}

func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	if err := h.service.LeaveRoom(r.Context(), middleware.UserID(r.Context()), roomID); err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	h.done(w, r, "/")
}

func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	if err := h.service.DeleteRoom(r.Context(), middleware.UserID(r.Context()), roomID); err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	h.done(w, r, "/")
}

// done answers a successful mutation without a body: 204 for scripts, a
// redirect for browsers.
func (h *Handler) done(w http.ResponseWriter, r *http.Request, next string) {
	if render.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func roomPath(id int) string {
	return "/room/" + strconv.Itoa(id)
}

func roomIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("invalid room id " + strconv.Quote(raw))
	}
	return id, nil
}

// readInput accepts both form posts and JSON bodies. JSON values of any
// type are coerced to their text form.
func readInput(r *http.Request) (map[string]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var raw map[string]any
		dec := json.NewDecoder(r.Body)
		// numbers keep their literal text instead of going through float64
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, apperr.Invalid("malformed JSON body")
		}
		out := make(map[string]string, len(raw))
		for k, v := range raw {
			switch v := v.(type) {
			case nil:
			case string:
				out[k] = v
			case json.Number:
				out[k] = v.String()
			case bool:
				out[k] = strconv.FormatBool(v)
			default:
				encoded, err := json.Marshal(v)
				if err != nil {
					return nil, apperr.Invalid("malformed JSON body")
				}
				out[k] = string(encoded)
			}
		}
		return out, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, apperr.Invalid("malformed form body")
	}
	out := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		out[k] = r.PostForm.Get(k)
	}
	return out, nil
}
