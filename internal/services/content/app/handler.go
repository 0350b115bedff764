package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/dragon.arena/internal/platform/errors"
	"github.com/louisbranch/dragon.arena/internal/services/content/catalog"
	"github.com/louisbranch/dragon.arena/internal/services/shared/route"
)

const notReadyMessage = "content is not ready"

type handler struct {
	store *catalog.Store
}

// NewHandler returns the content HTTP surface: the dragon catalog under
// /api/dragons, a liveness probe, and static files from publicDir.
func NewHandler(store *catalog.Store, publicDir string) http.Handler {
	h := &handler{store: store}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/dragons", h.listDragons)
	mux.HandleFunc("GET /api/dragons/{id}", h.getDragon)
	mux.HandleFunc("GET /healthz", h.healthz)
	if dir := strings.TrimSpace(publicDir); dir != "" {
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	}
	return withRequestLog(route.CanonicalUnder("/api/", mux))
}

func (h *handler) listDragons(w http.ResponseWriter, r *http.Request) {
	if !h.store.Ready() {
		writeError(w, apperrors.New(apperrors.CodeNotReady, notReadyMessage))
		return
	}
	writeJSON(w, http.StatusOK, h.store.GetAll())
}

func (h *handler) getDragon(w http.ResponseWriter, r *http.Request) {
	if !h.store.Ready() {
		writeError(w, apperrors.New(apperrors.CodeNotReady, notReadyMessage))
		return
	}
	id := r.PathValue("id")
	doc, ok := h.store.GetByID(id)
	if !ok {
		writeError(w, apperrors.WithMetadata(apperrors.CodeNotFound, "dragon not found", map[string]string{"id": id}))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	if !h.store.Ready() {
		writeError(w, apperrors.New(apperrors.CodeNotReady, notReadyMessage))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "documents": h.store.Len()})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Printf("write json response: %v", err)
	}
}

// writeError answers with the error message as plain text so arena clients
// can surface it verbatim.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(apperrors.GetCode(err).HTTPStatus())
	_, _ = w.Write([]byte(err.Error()))
}
