package scheduler

import (
	"sort"
	"sync"
	"time"
)

// TriggerStatus is the last known outcome of a trigger.
type TriggerStatus struct {
	Healthy     bool
	LastRun     time.Time
	LastSuccess time.Time
	LastError   error
	Message     string
	Runs        int
	Failures    int
}

// Health tracks the outcome of each trigger.
type Health struct {
	mu       sync.RWMutex
	triggers map[string]*TriggerStatus
}

// NewHealth creates a new health tracker.
func NewHealth() *Health {
	return &Health{
		triggers: make(map[string]*TriggerStatus),
	}
}

func (h *Health) status(name string) *TriggerStatus {
	st, ok := h.triggers[name]
	if !ok {
		st = &TriggerStatus{}
		h.triggers[name] = st
	}
	return st
}

// SetHealthy records a successful run.
func (h *Health) SetHealthy(name, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	st := h.status(name)
	st.Healthy = true
	st.LastRun = now
	st.LastSuccess = now
	st.LastError = nil
	st.Message = message
	st.Runs++
}

// SetUnhealthy records a failed run.
func (h *Health) SetUnhealthy(name string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := h.status(name)
	st.Healthy = false
	st.LastRun = time.Now()
	st.LastError = err
	st.Message = err.Error()
	st.Runs++
	st.Failures++
}

// GetStatus returns a copy of the status of a trigger, or nil if it never ran.
func (h *Health) GetStatus(name string) *TriggerStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st, ok := h.triggers[name]
	if !ok {
		return nil
	}
	cp := *st
	return &cp
}

// Names returns the names of all triggers that have run, sorted.
func (h *Health) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.triggers))
	for name := range h.triggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsOverallHealthy returns true if every trigger's last run succeeded.
func (h *Health) IsOverallHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, st := range h.triggers {
		if !st.Healthy {
			return false
		}
	}
	return true
}
