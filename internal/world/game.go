package world

import (
	"time"

	"github.com/dogwalk/server/internal/data"
)

// Game holds the map catalog and all live sessions. Sessions are created on
// first join for a map and never destroyed. Mutated only on the game strand.
type Game struct {
	maps           *data.MapTable
	lootGen        *LootGenerator
	retirementTime float64 // seconds of stop time before a dog retires

	sessions []*Session
	byMap    map[string]*Session
}

// NewGame builds the game state from parsed config data.
func NewGame(gd *data.GameData) *Game {
	return &Game{
		maps:           gd.Maps,
		lootGen:        NewLootGenerator(gd.LootPeriod, gd.LootProbability),
		retirementTime: gd.DogRetirementTime,
		byMap:          make(map[string]*Session),
	}
}

// Maps returns the immutable map catalog.
func (g *Game) Maps() *data.MapTable {
	return g.maps
}

// Sessions returns all live sessions in creation order.
func (g *Game) Sessions() []*Session {
	return g.sessions
}

// RetirementTime returns the idle threshold in seconds.
func (g *Game) RetirementTime() float64 {
	return g.retirementTime
}

// GenerateLoot asks the loot generator how many items to spawn.
func (g *Game) GenerateLoot(dt time.Duration, lootCount, looterCount int) int {
	return g.lootGen.Generate(dt, lootCount, looterCount)
}

// ConnectToSession places the dog into the map's session, creating the
// session on first join. The caller has already resolved the map.
func (g *Game) ConnectToSession(m *data.Map, dog *Dog, randomize bool) *Session {
	sess, ok := g.byMap[m.ID]
	if !ok {
		sess = NewSession(m)
		g.sessions = append(g.sessions, sess)
		g.byMap[m.ID] = sess
	}
	sess.AddDog(dog, randomize)
	return sess
}
