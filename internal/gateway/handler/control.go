package handler

import (
	"log"
	"net/http"
	"time"

	"echoserver/internal/echo/counter"
)

// ControlHandler implements the two operator-facing control routes:
// resetting round-robin state and dumping it for inspection.
type ControlHandler struct {
	Store *counter.Store
}

func NewControlHandler(store *counter.Store) *ControlHandler {
	return &ControlHandler{Store: store}
}

// HandleReset clears every round-robin counter and stamps the reset time,
// so subsequent "after" gating and sequenced variants start fresh.
func (h *ControlHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.Store.Reset(time.Now().UnixMilli())
	writeOK(w)
}

// HandleListRules dumps the current counter table to the log, keyed by
// rule identity, for operator inspection.
func (h *ControlHandler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	snapshot := h.Store.Snapshot()
	log.Printf("echo: rule counters (%d entries)", len(snapshot))
	for key, n := range snapshot {
		log.Printf("echo: rule=%q count=%d", key, n)
	}
	writeOK(w)
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
