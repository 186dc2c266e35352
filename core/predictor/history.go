package predictor

import (
	"sync"
	"time"
)

// historyCapacity bounds the in-memory outcome history. The ring is FIFO:
// once full, every append evicts the oldest entry. It is never persisted.
const historyCapacity = 1000

// evaluationWindow is how many recent entries per model feed an evaluation.
const evaluationWindow = 100

// HistoryEntry records the outcome of a single prediction, successful or not.
type HistoryEntry struct {
	Model      string
	Timestamp  time.Time
	Confidence float64
	Success    bool
}

// history is a fixed-capacity FIFO ring of prediction outcomes with a single
// writer lock.
type history struct {
	mu   sync.Mutex
	buf  []HistoryEntry
	head int // oldest entry once the ring is full
}

func newHistory(capacity int) *history {
	return &history{buf: make([]HistoryEntry, 0, capacity)}
}

func (h *history) Append(e HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.buf) < cap(h.buf) {
		h.buf = append(h.buf, e)
		return
	}
	h.buf[h.head] = e
	h.head = (h.head + 1) % len(h.buf)
}

// Recent returns up to n entries for the model, oldest first. An empty model
// name matches everything.
func (h *history) Recent(model string, n int) []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	total := len(h.buf)
	out := make([]HistoryEntry, 0, n)
	for i := 0; i < total && len(out) < n; i++ {
		e := h.buf[(h.head+total-1-i)%total]
		if model == "" || e.Model == model {
			out = append(out, e)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Depth reports how many entries for the model are currently retained.
func (h *history) Depth(model string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if model == "" {
		return len(h.buf)
	}
	n := 0
	for i := range h.buf {
		if h.buf[i].Model == model {
			n++
		}
	}
	return n
}
