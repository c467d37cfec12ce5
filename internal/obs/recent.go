package obs

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry is a snapshot of a logged line
type Entry struct {
	Time    time.Time              `json:"time"`
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// RecentLogHook is a logrus hook keeping the last entries in a circular buffer
type RecentLogHook struct {
	entries  []Entry
	writeIdx int
	count    int
	minLevel logrus.Level
	mu       sync.RWMutex
}

// NewRecentLogHook keeps up to size entries at or above minLevel in severity
func NewRecentLogHook(size int, minLevel logrus.Level) *RecentLogHook {
	if size <= 0 {
		size = 1
	}
	return &RecentLogHook{
		entries:  make([]Entry, size),
		minLevel: minLevel,
	}
}

// Levels returns the log levels this hook processes.
func (h *RecentLogHook) Levels() []logrus.Level {
	var levels []logrus.Level
	for _, l := range logrus.AllLevels {
		if l <= h.minLevel {
			levels = append(levels, l)
		}
	}
	return levels
}

// Fire stores a copy of entry
func (h *RecentLogHook) Fire(entry *logrus.Entry) error {
	fields := make(map[string]interface{}, len(entry.Data))
	for k, v := range entry.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		fields[k] = v
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.writeIdx] = Entry{
		Time:    entry.Time,
		Level:   entry.Level.String(),
		Message: entry.Message,
		Fields:  fields,
	}
	h.writeIdx = (h.writeIdx + 1) % len(h.entries)
	if h.count < len(h.entries) {
		h.count++
	}
	return nil
}

// Latest returns up to n entries, oldest first. n <= 0 returns everything kept.
func (h *RecentLogHook) Latest(n int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ordered := h.ordered()
	if n > 0 && n < len(ordered) {
		ordered = ordered[len(ordered)-n:]
	}
	return ordered
}

// Since returns entries logged after t, oldest first
func (h *RecentLogHook) Since(t time.Time) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]Entry, 0)
	for _, e := range h.ordered() {
		if e.Time.After(t) {
			result = append(result, e)
		}
	}
	return result
}

// Size returns how many entries are kept
func (h *RecentLogHook) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Clear drops every entry
func (h *RecentLogHook) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = make([]Entry, len(h.entries))
	h.writeIdx = 0
	h.count = 0
}

func (h *RecentLogHook) ordered() []Entry {
	result := make([]Entry, 0, h.count)
	start := 0
	if h.count == len(h.entries) {
		start = h.writeIdx
	}
	for i := 0; i < h.count; i++ {
		result = append(result, h.entries[(start+i)%len(h.entries)])
	}
	return result
}
