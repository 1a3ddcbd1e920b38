package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/hperssn/coachbook/internal/notify"
)

// StreamReminders pushes every fired reminder to the client as a server-sent
// event until the request is cancelled.
func StreamReminders(b *notify.Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		events, cancel := b.Subscribe()
		defer cancel()

		for {
			select {
			case reminder, ok := <-events:
				if !ok {
					return
				}

				data, err := json.Marshal(reminder)
				if err != nil {
					continue
				}
				w.Write([]byte("event: reminder\ndata: "))
				w.Write(data)
				w.Write([]byte("\n\n"))

				flusher.Flush()

			case <-r.Context().Done():
				return
			}
		}
	}
}
