package handlers

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"github.com/ingveliz02ia/Club-del-cafe/internal/platform/observability"
)

// Page renders the landing page. The page is rendered in full before anything
// is written, so a failure never leaves a partial document.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)

	page, err := h.service.Build(ctx, h.stores(w, r))
	if err != nil {
		logger.Error("page: build failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := page.Node.Render(&buf); err != nil {
		logger.Error("page: render failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(buf.Bytes())
	}
}
