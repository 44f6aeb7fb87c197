package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/All-About-AI-YouTube/fps-game/internal/hub"
	"github.com/All-About-AI-YouTube/fps-game/internal/ws"
)

// SetupRoutes builds the router with the hub injected. staticDir is the
// client bundle; everything not matched below falls through to it.
func SetupRoutes(h *hub.Hub, staticDir string, log *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))
	r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	return r
}
