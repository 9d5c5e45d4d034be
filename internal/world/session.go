package world

import (
	"math"
	"math/rand"
	"time"

	"github.com/dogwalk/server/internal/data"
	"github.com/dogwalk/server/internal/geom"
)

// LostObject is a loot item lying on a road.
type LostObject struct {
	ID   int64
	Pos  geom.Point2D
	Type int
}

// Session is the live game state for one map. It exclusively owns its dogs
// and lost objects; only the simulator mutates them, on the game strand.
type Session struct {
	ID   int64
	Map  *data.Map
	Dogs []*Dog
	Loot []*LostObject

	nextLootID int64
	rng        *rand.Rand

	// Per-tick scratch owned by the simulator: the dog snapshot taken at
	// movement time and the motion segments recorded for it, index-aligned.
	Movers    []*Dog
	Gatherers []geom.Gatherer
}

// NewSession creates an empty session for the map with its own PRNG.
func NewSession(m *data.Map) *Session {
	return &Session{
		ID:  NextSessionID(),
		Map: m,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AddDog places the dog on a road and registers it. With randomize the
// spawn is a random point of a random road; otherwise the start of the
// first road.
func (s *Session) AddDog(dog *Dog, randomize bool) {
	if randomize {
		dog.Pos = s.RandomRoadPoint()
	} else {
		first := s.Map.Roads[0]
		dog.Pos = geom.Point2D{X: first.MinX, Y: first.MinY}
	}
	s.Dogs = append(s.Dogs, dog)
}

// DeleteDog removes the dog with the given id. Reports whether it was here.
func (s *Session) DeleteDog(id int64) bool {
	for i, d := range s.Dogs {
		if d.ID == id {
			s.Dogs = append(s.Dogs[:i], s.Dogs[i+1:]...)
			return true
		}
	}
	return false
}

// AddLoot drops a random-typed loot item at a random road point. Loot ids
// are monotonic per session and never reused.
func (s *Session) AddLoot() *LostObject {
	obj := &LostObject{
		ID:   s.nextLootID,
		Pos:  s.RandomRoadPoint(),
		Type: s.rng.Intn(s.Map.LootTypeCount()),
	}
	s.nextLootID++
	s.Loot = append(s.Loot, obj)
	return obj
}

// RemoveLoot deletes the lost object with the given id.
func (s *Session) RemoveLoot(id int64) {
	for i, obj := range s.Loot {
		if obj.ID == id {
			s.Loot = append(s.Loot[:i], s.Loot[i+1:]...)
			return
		}
	}
}

// DogsCount returns the number of dogs in the session.
func (s *Session) DogsCount() int {
	return len(s.Dogs)
}

// LootCount returns the number of lost objects on the map.
func (s *Session) LootCount() int {
	return len(s.Loot)
}

// RandomRoadPoint picks a uniform point on a uniformly chosen road,
// rounded to one decimal on the free axis.
func (s *Session) RandomRoadPoint() geom.Point2D {
	road := s.Map.Roads[s.rng.Intn(len(s.Map.Roads))]
	if road.Horizontal {
		return geom.Point2D{X: s.randomCoord(road.MinX, road.MaxX), Y: road.MinY}
	}
	return geom.Point2D{X: road.MinX, Y: s.randomCoord(road.MinY, road.MaxY)}
}

func (s *Session) randomCoord(lo, hi float64) float64 {
	v := lo + s.rng.Float64()*(hi-lo)
	return math.Round(v*10) / 10
}
