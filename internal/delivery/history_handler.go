package delivery

import (
	"net/http"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/pdf_tools/internal/ports"
)

type HistoryHandler struct {
	history ports.HistoryService
	log     *logger.ZapLogger
}

func NewHistoryHandler(history ports.HistoryService, log *logger.ZapLogger) *HistoryHandler {
	return &HistoryHandler{history: history, log: log}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	ops, err := h.history.ListRecent(r.Context(), limit)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "db error", Error: err})
		writeError(w, http.StatusInternalServerError, "db error")
		return
	}
	if ops == nil {
		ops = []ports.Operation{}
	}

	writeJSON(w, http.StatusOK, ops)
}
