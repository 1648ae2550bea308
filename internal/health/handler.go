package health

import (
	"context"
	"net/http"
	"time"

	"simple-chat/internal/render"
)

// Check tests one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

type Handler struct {
	renderer *render.Renderer
	checks   map[string]Check
	started  time.Time
}

func NewHandler(renderer *render.Renderer, checks map[string]Check) *Handler {
	return &Handler{
		renderer: renderer,
		checks:   checks,
		started:  time.Now(),
	}
}

type response struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := response{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}
	status := http.StatusOK

	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	h.renderer.JSON(w, status, resp)
}
