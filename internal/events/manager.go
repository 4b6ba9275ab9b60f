package events

import (
	"encoding/json"

	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/rs/zerolog"
)

// Manager handles event emission and logging
type Manager struct {
	bus *Bus
	log zerolog.Logger
}

// NewManager creates a new event manager
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("service", "events").Logger(),
	}
}

// Bus returns the underlying bus for subscribers
func (m *Manager) Bus() *Bus {
	return m.bus
}

// EmitTyped emits an event with typed data to the bus and logs it
func (m *Manager) EmitTyped(module string, data EventData) {
	if m == nil {
		return
	}
	eventType := data.EventType()
	m.bus.Emit(eventType, module, convertEventDataToMap(data))

	// State transitions and ticks are high volume
	level := zerolog.InfoLevel
	if eventType == StateChanged || eventType == PriceTicked {
		level = zerolog.DebugLevel
	}
	m.log.WithLevel(level).
		Str("event_type", string(eventType)).
		Str("module", module).
		Msg("Event emitted")
}

// EmitError emits an error event
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	m.EmitTyped(module, &ErrorEventData{
		Error:   err.Error(),
		Context: context,
	})
}

// convertEventDataToMap converts typed EventData to the map carried on the bus
func convertEventDataToMap(data EventData) map[string]interface{} {
	if data == nil {
		return nil
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return nil
	}

	return result
}

// TransitionHook adapts controller transitions into STATE_CHANGED events so
// a connected browser re-reads the view it is showing
func (m *Manager) TransitionHook(module string) func(fetchstate.Transition) {
	if m == nil {
		return nil
	}
	return func(t fetchstate.Transition) {
		data := &StateChangedData{
			Controller: t.Name,
			Status:     string(t.Status),
			Seq:        t.Seq,
		}
		if t.Err != nil {
			data.Message = t.Err.Error()
		}
		m.EmitTyped(module, data)
	}
}
