package main

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/askupi/insights/pkg/common"
	"github.com/askupi/insights/pkg/processor"
	"github.com/askupi/insights/pkg/storage"
)

const statusClientClosedRequest = 499

// multipart bodies are bounded by intake anyway; this only caps buffering.
const maxMultipartMemory = 4 << 20

type Handler struct {
	processor AnalysisProcessor
	store     storage.Store
}

func NewHandler(
	processor AnalysisProcessor,
	store storage.Store,
) *Handler {
	return &Handler{
		processor: processor,
		store:     store,
	}
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.writeError(w, r, common.NewValidationError("file_missing", "no file provided"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, common.NewValidationError("file_missing", "no file provided"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	payload, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.processor.AnalyzeStatement(r.Context(), processor.Upload{
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Payload:  payload,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, result)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.processor.History(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, entries)
}

func (h *Handler) HistoryEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.processor.HistoryEntry(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, entry)
}

func (h *Handler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.processor.DeleteHistory(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Conversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.processor.Conversations(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, conversations)
}

func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	conversation, err := h.processor.Conversation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, conversation)
}

func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.processor.DeleteConversation(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var request messageRequest

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, r, common.NewValidationError("message", "invalid request body"))
		return
	}

	if request.Message == "" {
		h.writeError(w, r, common.NewValidationError("message", "message must not be empty"))
		return
	}

	reply, err := h.processor.Ask(r.Context(), mux.Vars(r)["id"], request.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, reply)
}

func (h *Handler) StorageInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.store.Usage(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, info)
}

func (h *Handler) writeJSON(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	body interface{},
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write response")
	}
}

func (h *Handler) writeError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	status := http.StatusInternalServerError

	var validationErr *common.ValidationError
	var requestErr *common.RequestError

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrAnalysisInFlight):
		status = http.StatusConflict
	case errors.Is(err, common.ErrCancelled):
		status = statusClientClosedRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrMalformedResponse),
		errors.Is(err, common.ErrEmptyAnalysis),
		errors.Is(err, common.ErrIncompleteAnalysis):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &requestErr):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}

	h.writeJSON(w, r, status, errorResponse{
		Error: err.Error(),
	})
}
