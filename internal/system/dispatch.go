package system

import (
	"time"

	"github.com/dogwalk/server/internal/core/event"
	coresys "github.com/dogwalk/server/internal/core/system"
)

// EventDispatchSystem delivers last tick's events before anything else runs.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.Dispatch()
}
