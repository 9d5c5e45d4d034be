package world

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLootGeneratorFullPeriodCertainty(t *testing.T) {
	g := NewLootGenerator(time.Second, 1.0)
	// Certain spawn: one item per looter short.
	assert.Equal(t, 3, g.Generate(time.Second, 0, 3))
	assert.Equal(t, 1, g.Generate(time.Second, 2, 3))
}

func TestLootGeneratorNoDeficitNoSpawn(t *testing.T) {
	g := NewLootGenerator(time.Second, 1.0)
	assert.Equal(t, 0, g.Generate(time.Second, 3, 3))
	assert.Equal(t, 0, g.Generate(time.Second, 5, 3))
	assert.Equal(t, 0, g.Generate(time.Second, 0, 0))
}

func TestLootGeneratorCompoundsOverTime(t *testing.T) {
	g := NewLootGenerator(time.Second, 0.5)
	// Two periods at p=0.5 compound to 0.75; floor(4 * 0.75) = 3.
	assert.Equal(t, 3, g.Generate(2*time.Second, 0, 4))
	// Half a period: 1 - sqrt(0.5) ≈ 0.2929; floor(4 * 0.2929) = 1.
	assert.Equal(t, 1, g.Generate(500*time.Millisecond, 0, 4))
}

func TestLootGeneratorZeroProbability(t *testing.T) {
	g := NewLootGenerator(time.Second, 0)
	assert.Equal(t, 0, g.Generate(time.Hour, 0, 10))
}
