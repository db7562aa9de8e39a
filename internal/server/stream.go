package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// DefaultStreamInterval is the polling interval of the MJPEG stream (~15 FPS).
const DefaultStreamInterval = 66 * time.Millisecond

// FrameSource provides the most recent encoded JPEG frame and a sequence
// number that changes whenever a new frame is stored.
type FrameSource interface {
	Latest() (jpeg []byte, seq uint64)
}

// FrameBuffer holds the latest annotated JPEG produced by the pipeline.
type FrameBuffer struct {
	mu   sync.RWMutex
	jpeg []byte
	seq  uint64
}

// Set replaces the stored frame. The buffer takes ownership of jpeg.
func (b *FrameBuffer) Set(jpeg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jpeg = jpeg
	b.seq++
}

// Latest returns the stored frame and its sequence number; seq is 0 until
// the first Set.
func (b *FrameBuffer) Latest() ([]byte, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.jpeg, b.seq
}

// StreamHandler serves MJPEG frames from a FrameSource.
type StreamHandler struct {
	source   FrameSource
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler polling source at the default interval.
func NewStreamHandler(source FrameSource) *StreamHandler {
	return &StreamHandler{source: source, interval: DefaultStreamInterval}
}

// ServeHTTP streams MJPEG frames to connected clients. A frame is written
// only when the source has a newer one than the last sent.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var sent uint64
	for {
		if buf, seq := h.source.Latest(); seq != sent && len(buf) > 0 {
			if err := writePart(w, buf); err != nil {
				return
			}
			sent = seq
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}
