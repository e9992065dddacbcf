package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/portfolio/internal/model"
	"github.com/dukerupert/portfolio/internal/store"
)

type ContentHandler struct {
	store  store.Store
	logger *slog.Logger
}

func NewContentHandler(s store.Store, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{store: s, logger: logger}
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListContent(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch content")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListByTier returns the items readable at the tier named in the path.
// Unknown tiers are rejected here rather than degraded to basic.
func (h *ContentHandler) ListByTier(w http.ResponseWriter, r *http.Request) {
	level := r.PathValue("level")
	if _, ok := model.ParseTier(level); !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid subscription level")
		return
	}

	items, err := h.store.ListContentByTier(r.Context(), level)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch content")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ContentHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListContentByCategory(r.Context(), r.PathValue("category"))
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch content")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err, "Invalid id")
		return
	}

	item, err := h.store.GetContent(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch content")
		return
	}
	if item == nil {
		writeMessage(w, http.StatusNotFound, "Content not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}
