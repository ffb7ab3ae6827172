package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dom/creek-dictionary/internal/api/middleware"
	"github.com/dom/creek-dictionary/internal/service"
	"github.com/go-chi/chi/v5"
)

type EntryHandler struct {
	entryService *service.EntryService
	log          *slog.Logger
}

func NewEntryHandler(entryService *service.EntryService, log *slog.Logger) *EntryHandler {
	return &EntryHandler{entryService: entryService, log: log}
}

type EntryRequest struct {
	Creek   string  `json:"creek"`
	English string  `json:"english"`
	Tags    *string `json:"tags"`
}

func (req *EntryRequest) bindForm(form url.Values) {
	req.Creek = form.Get("creek")
	req.English = form.Get("english")
	if tags, ok := form["tags"]; ok && len(tags) > 0 {
		req.Tags = &tags[0]
	}
}

func (req EntryRequest) input() service.EntryInput {
	return service.EntryInput{
		Creek:   req.Creek,
		English: req.English,
		Tags:    req.Tags,
	}
}

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.EntryHandler.List"

	entries, err := h.entryService.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, op, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.EntryHandler.Get"

	id, ok := entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.entryService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, op, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.EntryHandler.Create"

	var req EntryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	entry, err := h.entryService.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, h.log, op, err)
		return
	}

	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		h.log.InfoContext(r.Context(), "entry created",
			slog.String("op", op),
			slog.Int("entry_id", entry.ID),
			slog.String("by", claims.Subject),
		)
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.EntryHandler.Update"

	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var req EntryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	entry, err := h.entryService.Update(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, h.log, op, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.EntryHandler.Delete"

	id, ok := entryID(w, r)
	if !ok {
		return
	}

	if err := h.entryService.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, op, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func entryID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid entry id"})
		return 0, false
	}
	return id, true
}
