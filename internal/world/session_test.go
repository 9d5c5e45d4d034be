package world

import (
	"math"
	"testing"
	"time"

	"github.com/dogwalk/server/internal/data"
	"github.com/dogwalk/server/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGameData(t *testing.T) *data.GameData {
	t.Helper()
	gd, err := data.ParseGameData([]byte(`{
	  "lootGeneratorConfig": {"period": 5.0, "probability": 0.5},
	  "maps": [{
	    "id": "m",
	    "name": "M",
	    "roads": [
	      {"x0": 0, "y0": 0, "x1": 40},
	      {"x0": 0, "y0": 0, "y1": 30}
	    ],
	    "lootTypes": [{"value": 5}, {"value": 30}]
	  }]
	}`))
	require.NoError(t, err)
	return gd
}

func testMap(t *testing.T) *data.Map {
	t.Helper()
	return testGameData(t).Maps.Find("m")
}

func TestAddDogFixedSpawn(t *testing.T) {
	sess := NewSession(testMap(t))
	dog := NewDog("x")
	sess.AddDog(dog, false)
	// First road in sorted order starts at the origin.
	assert.Equal(t, geom.Point2D{X: 0, Y: 0}, dog.Pos)
	assert.Equal(t, 1, sess.DogsCount())
}

func TestAddDogRandomSpawnOnRoad(t *testing.T) {
	m := testMap(t)
	sess := NewSession(m)
	for i := 0; i < 50; i++ {
		dog := NewDog("x")
		sess.AddDog(dog, true)
		onRoad := false
		for _, r := range m.Roads {
			if r.Contains(dog.Pos.X, dog.Pos.Y, 0) {
				onRoad = true
			}
		}
		assert.True(t, onRoad, "spawn %v off road", dog.Pos)
		// The free axis is rounded to one decimal.
		assert.InDelta(t, dog.Pos.X, math.Round(dog.Pos.X*10)/10, 1e-12)
		assert.InDelta(t, dog.Pos.Y, math.Round(dog.Pos.Y*10)/10, 1e-12)
	}
}

func TestDeleteDog(t *testing.T) {
	sess := NewSession(testMap(t))
	a, b := NewDog("a"), NewDog("b")
	sess.AddDog(a, false)
	sess.AddDog(b, false)

	assert.True(t, sess.DeleteDog(a.ID))
	assert.False(t, sess.DeleteDog(a.ID))
	assert.Equal(t, 1, sess.DogsCount())
	assert.Equal(t, b.ID, sess.Dogs[0].ID)
}

func TestLootIDsMonotonic(t *testing.T) {
	sess := NewSession(testMap(t))
	first := sess.AddLoot()
	second := sess.AddLoot()
	assert.Equal(t, first.ID+1, second.ID)

	sess.RemoveLoot(first.ID)
	third := sess.AddLoot()
	// Removed ids are never reused.
	assert.Equal(t, second.ID+1, third.ID)
	assert.Equal(t, 2, sess.LootCount())
}

func TestLootTypeInRange(t *testing.T) {
	m := testMap(t)
	sess := NewSession(m)
	for i := 0; i < 50; i++ {
		obj := sess.AddLoot()
		assert.GreaterOrEqual(t, obj.Type, 0)
		assert.Less(t, obj.Type, m.LootTypeCount())
	}
}

func TestConnectToSessionReuse(t *testing.T) {
	gd := testGameData(t)
	g := NewGame(gd)
	m := gd.Maps.Find("m")

	s1 := g.ConnectToSession(m, NewDog("a"), false)
	s2 := g.ConnectToSession(m, NewDog("b"), false)
	assert.Same(t, s1, s2)
	assert.Equal(t, 2, s1.DogsCount())
	assert.Len(t, g.Sessions(), 1)
}

func TestGameLootGeneration(t *testing.T) {
	g := NewGame(testGameData(t))
	// Full certainty needs many periods; a single period at p=0.5 yields
	// half the deficit.
	assert.Equal(t, 1, g.GenerateLoot(5*time.Second, 0, 2))
	assert.Equal(t, 0, g.GenerateLoot(5*time.Second, 2, 2))
}
