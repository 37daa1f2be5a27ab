// Package events records and logs domain events emitted by the analysis modules.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	AnalysisCompleted  EventType = "ANALYSIS_COMPLETED"
	RiskAssessed       EventType = "RISK_ASSESSED"
	PortfolioOptimized EventType = "PORTFOLIO_OPTIMIZED"
	CacheCleaned       EventType = "CACHE_CLEANED"
	ErrorOccurred      EventType = "ERROR_OCCURRED"
)

// defaultHistorySize bounds the in-memory event history
const defaultHistorySize = 100

// Event represents a system event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data"`
}

// Manager handles event emission and logging, keeping a bounded history
// for the status endpoint.
type Manager struct {
	log     zerolog.Logger
	mu      sync.RWMutex
	history []Event
	limit   int
	now     func() time.Time
}

// NewManager creates a new event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log:   log.With().Str("service", "events").Logger(),
		limit: defaultHistorySize,
		now:   time.Now,
	}
}

// Emit records and logs an event
func (m *Manager) Emit(module string, data EventData) {
	event := Event{
		Type:      data.EventType(),
		Timestamp: m.now(),
		Module:    module,
		Data:      data,
	}

	m.mu.Lock()
	m.history = append(m.history, event)
	if len(m.history) > m.limit {
		m.history = m.history[len(m.history)-m.limit:]
	}
	m.mu.Unlock()

	eventJSON, err := json.Marshal(event)
	if err != nil {
		m.log.Warn().Err(err).Str("event_type", string(event.Type)).Msg("Failed to encode event")
		return
	}
	m.log.Info().
		Str("event_type", string(event.Type)).
		Str("module", module).
		RawJSON("event", eventJSON).
		Msg("Event emitted")
}

// EmitError emits an error event
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	m.Emit(module, &ErrorEventData{Error: err.Error(), Context: context})
}

// Recent returns up to n most recent events, newest first
func (m *Manager) Recent(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 || n > len(m.history) {
		n = len(m.history)
	}
	out := make([]Event, 0, n)
	for i := len(m.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.history[i])
	}
	return out
}
