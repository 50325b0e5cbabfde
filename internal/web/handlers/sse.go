package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/ngocvo/rollcall/internal/batch"
)

// isTaskTerminal returns true if the task status is a terminal state.
func isTaskTerminal(status batch.Status) bool {
	return status == batch.StatusCompleted || status == batch.StatusFailed
}

// streamTaskEvents streams events from a task until the task completes, the
// client disconnects, or the event channel closes. The current snapshot is
// sent first so late subscribers see where the task stands.
func streamTaskEvents(w http.ResponseWriter, r *http.Request, task *batch.Task) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventCh := task.AddListener()
	defer task.RemoveListener(eventCh)

	snap := task.Snapshot()
	snap.Results = nil
	sendSSEEvent(w, flusher, "status", snap)
	if isTaskTerminal(snap.Status) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			sendSSEEvent(w, flusher, event.Type, event)
			if isTaskTerminal(task.GetStatus()) {
				return
			}
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	_, _ = io.WriteString(w, "event: "+eventType+"\n")
	_, _ = io.WriteString(w, "data: ")
	_, _ = io.Copy(w, bytes.NewReader(jsonData))
	_, _ = io.WriteString(w, "\n\n")
	flusher.Flush()
}
