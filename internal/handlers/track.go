package handlers

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/ingveliz02ia/Club-del-cafe/internal/middleware"
	"github.com/ingveliz02ia/Club-del-cafe/internal/platform/httpx"
	"github.com/ingveliz02ia/Club-del-cafe/internal/tracking"
)

const maxClickBody = 4 << 10

type clickRequest struct {
	Href  string `json:"href"`
	Title string `json:"title"`
	Page  string `json:"page"`
}

type clickResponse struct {
	Result  tracking.Result `json:"result"`
	EventID string          `json:"eventId,omitempty"`
}

// TrackCheckout receives link clicks from the page and runs them through the
// checkout tracker. The page navigates regardless of the answer.
func (h *Handlers) TrackCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body clickRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxClickBody))
	if err := dec.Decode(&body); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_click", "request body must be a JSON click", http.StatusBadRequest))
		return
	}

	page := strings.TrimSpace(body.Page)
	if page == "" {
		page = r.Referer()
	}
	result, ev := h.tracker.HandleClick(ctx, tracking.Click{
		Href:      strings.TrimSpace(body.Href),
		Title:     body.Title,
		PageURL:   page,
		Scope:     middleware.VisitorID(ctx),
		ClientIP:  clientIP(r),
		UserAgent: r.UserAgent(),
	})
	httpx.WriteJSON(w, http.StatusOK, clickResponse{Result: result, EventID: ev.ID})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
