package httpapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	traceability "github.com/goliatone/go-traceability/components/traceability"
)

// NewRouter mounts the handlers on a gorilla/mux router below basePath.
func NewRouter(h *Handlers, basePath string) *mux.Router {
	r := mux.NewRouter()
	Mount(r, h, basePath)
	return r
}

// Mount registers every route on an existing router.
func Mount(r *mux.Router, h *Handlers, basePath string) {
	base := "/" + strings.Trim(basePath, "/")
	if base == "/" {
		base = ""
	}
	r.PathPrefix(traceability.DefaultAssetsPath).Handler(traceability.AssetsHandler(traceability.DefaultAssetsPath))

	sub := r.PathPrefix(base).Subrouter()
	if h.Controller != nil {
		page := base
		if page == "" {
			page = "/"
		}
		r.HandleFunc(page, h.HandlePage).Methods(http.MethodGet)
		sub.HandleFunc("/admin/preview", h.HandlePreviewPage).Methods(http.MethodGet)
	}
	sub.HandleFunc("/_state", h.HandleState).Methods(http.MethodGet)
	sub.HandleFunc("/layouts", h.HandleLayouts).Methods(http.MethodGet)
	sub.HandleFunc("/scan", h.HandleScan).Methods(http.MethodPost)
	sub.HandleFunc("/scan/simulate", h.HandleSimulateScan).Methods(http.MethodPost)
	sub.HandleFunc("/back", h.HandleBack).Methods(http.MethodPost)
	sub.HandleFunc("/session", h.HandleEndSession).Methods(http.MethodDelete)
	sub.HandleFunc("/certifications/{index}", func(w http.ResponseWriter, req *http.Request) {
		h.HandleCertification(w, req, mux.Vars(req)["index"])
	}).Methods(http.MethodGet)

	sub.HandleFunc("/admin/field", h.HandleSetField).Methods(http.MethodPost)
	sub.HandleFunc("/admin/draft", h.HandleStageDraft).Methods(http.MethodPost)
	sub.HandleFunc("/admin/certifications", h.HandleAddCertification).Methods(http.MethodPost)
	sub.HandleFunc("/admin/certifications/{index}", func(w http.ResponseWriter, req *http.Request) {
		h.HandleRemoveCertification(w, req, mux.Vars(req)["index"])
	}).Methods(http.MethodDelete)
	sub.HandleFunc("/admin/image", h.HandleSelectImage).Methods(http.MethodPost)
	sub.HandleFunc("/admin/layout", h.HandleSelectLayout).Methods(http.MethodPost)
	sub.HandleFunc("/admin/reset", h.HandleReset).Methods(http.MethodPost)
	sub.HandleFunc("/admin/preview.json", h.HandlePreview).Methods(http.MethodGet)

	if h.Broadcast != nil {
		sub.HandleFunc("/events", h.Broadcast.ServeSSE).Methods(http.MethodGet)
		sub.HandleFunc("/ws", h.Broadcast.ServeWebSocket).Methods(http.MethodGet)
	}
}
