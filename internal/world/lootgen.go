package world

import (
	"math"
	"time"
)

// LootGenerator decides how many loot items to spawn during a time slice.
// Stateless apart from its configuration; the simulator carries no
// fractional residue between ticks.
type LootGenerator struct {
	period      time.Duration
	probability float64 // per-period spawn probability, in [0,1]
}

func NewLootGenerator(period time.Duration, probability float64) *LootGenerator {
	return &LootGenerator{period: period, probability: probability}
}

// Generate returns the number of items to spawn over dt so that every
// looter can eventually find loot. The per-period probability p compounds
// over dt/period: 1 - (1-p)^(dt/period).
func (g *LootGenerator) Generate(dt time.Duration, lootCount, looterCount int) int {
	needed := looterCount - lootCount
	if needed <= 0 {
		return 0
	}
	ratio := float64(dt) / float64(g.period)
	chance := 1 - math.Pow(1-g.probability, ratio)
	return int(float64(needed) * chance)
}
