package system

import (
	"math"
	"time"

	coresys "github.com/dogwalk/server/internal/core/system"
	"github.com/dogwalk/server/internal/data"
	"github.com/dogwalk/server/internal/geom"
	"github.com/dogwalk/server/internal/world"
)

const (
	// roadWidth inflates every road rectangle on all sides; a dog may
	// stand up to this far from the segment's axis.
	roadWidth = 0.4
	// dogWidth is the collision half-width of a moving dog.
	dogWidth = 0.3
)

// MovementSystem advances every dog along its velocity, clamped to the
// road network, and records the motion segments the pickup phase collides
// against. A dog that could not move at all stops.
type MovementSystem struct {
	game *world.Game
}

func NewMovementSystem(g *world.Game) *MovementSystem {
	return &MovementSystem{game: g}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMove }

func (s *MovementSystem) Update(dt time.Duration) {
	seconds := dt.Seconds()
	for _, sess := range s.game.Sessions() {
		// Snapshot the dogs present at tick start; gatherer indices stay
		// aligned with this snapshot even if retirement shrinks the session.
		sess.Movers = sess.Movers[:0]
		sess.Gatherers = sess.Gatherers[:0]
		for _, dog := range sess.Dogs {
			start := dog.Pos
			end := clampToRoads(start, dog.Speed, sess.Map.Roads, seconds)
			if end == start {
				dog.Speed = geom.Vec2D{}
			}
			dog.Pos = end
			sess.Movers = append(sess.Movers, dog)
			sess.Gatherers = append(sess.Gatherers, geom.Gatherer{
				Start: start,
				End:   end,
				Width: dogWidth,
			})
		}
	}
}

// clampToRoads computes the farthest position the dog reaches this tick.
// Every road whose inflated rectangle contains the current position offers
// a bound in the direction of motion; the best reach across them wins. The
// orthogonal coordinate is held constant for the tick.
func clampToRoads(pos geom.Point2D, vel geom.Vec2D, roads []data.Road, dt float64) geom.Point2D {
	nx := pos.X + vel.X*dt
	ny := pos.Y + vel.Y*dt

	next := pos
	for _, road := range roads {
		if !road.Contains(pos.X, pos.Y, roadWidth) {
			continue
		}
		switch {
		case vel.X > 0:
			next.X = math.Max(next.X, math.Min(nx, road.MaxX+roadWidth))
		case vel.X < 0:
			next.X = math.Min(next.X, math.Max(nx, road.MinX-roadWidth))
		case vel.Y > 0:
			next.Y = math.Max(next.Y, math.Min(ny, road.MaxY+roadWidth))
		case vel.Y < 0:
			next.Y = math.Min(next.Y, math.Max(ny, road.MinY-roadWidth))
		}
	}
	return next
}
