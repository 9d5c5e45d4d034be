package system

import (
	"time"

	coresys "github.com/dogwalk/server/internal/core/system"
	"github.com/dogwalk/server/internal/world"
)

// LootSpawnSystem drops new loot so that every looter can eventually find
// something. How many to drop is the loot generator's call.
type LootSpawnSystem struct {
	game *world.Game
}

func NewLootSpawnSystem(g *world.Game) *LootSpawnSystem {
	return &LootSpawnSystem{game: g}
}

func (s *LootSpawnSystem) Phase() coresys.Phase { return coresys.PhaseSpawn }

func (s *LootSpawnSystem) Update(dt time.Duration) {
	for _, sess := range s.game.Sessions() {
		n := s.game.GenerateLoot(dt, sess.LootCount(), sess.DogsCount())
		for i := 0; i < n; i++ {
			sess.AddLoot()
		}
	}
}
