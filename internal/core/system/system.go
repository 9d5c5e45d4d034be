package system

import "time"

// Phase defines execution ordering within a single tick. The simulation
// pipeline is move → retire → spawn → collide; events emitted during tick
// N are dispatched at the start of tick N+1.
type Phase int

const (
	PhaseEvents  Phase = iota // 0: swap + dispatch last tick's events
	PhaseMove                 // 1: movement and road clamping
	PhaseRetire               // 2: play/stop time, retirement
	PhaseSpawn                // 3: loot generation
	PhaseCollide              // 4: pickups and deposits
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
