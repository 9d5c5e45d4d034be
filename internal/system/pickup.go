package system

import (
	"time"

	"github.com/dogwalk/server/internal/core/event"
	coresys "github.com/dogwalk/server/internal/core/system"
	"github.com/dogwalk/server/internal/geom"
	"github.com/dogwalk/server/internal/world"
)

// officeWidth is the collision half-width of a deposit point.
const officeWidth = 0.25

// PickupSystem resolves this tick's motion segments against loot and
// offices. Events apply strictly in contact-time order: loot goes into the
// bag while capacity lasts, each item at most once; an office empties the
// bag. Dogs retired earlier in the tick take no part.
type PickupSystem struct {
	game *world.Game
	bus  *event.Bus
}

func NewPickupSystem(g *world.Game, bus *event.Bus) *PickupSystem {
	return &PickupSystem{game: g, bus: bus}
}

func (s *PickupSystem) Phase() coresys.Phase { return coresys.PhaseCollide }

func (s *PickupSystem) Update(_ time.Duration) {
	for _, sess := range s.game.Sessions() {
		s.resolve(sess)
	}
}

func (s *PickupSystem) resolve(sess *world.Session) {
	if len(sess.Gatherers) == 0 {
		return
	}

	// Loot items form the prefix of the item list; an event's item index
	// below len(loot) means loot, at or above means office.
	loot := make([]*world.LostObject, len(sess.Loot))
	copy(loot, sess.Loot)

	items := make([]geom.Item, 0, len(loot)+len(sess.Map.Offices))
	for _, obj := range loot {
		items = append(items, geom.Item{Pos: obj.Pos, Width: 0})
	}
	for _, office := range sess.Map.Offices {
		items = append(items, geom.Item{
			Pos:   geom.Point2D{X: office.X, Y: office.Y},
			Width: officeWidth,
		})
	}

	consumed := make(map[int]bool)
	for _, ev := range geom.FindGatherEvents(sess.Gatherers, items) {
		dog := sess.Movers[ev.Gatherer]
		if dog.Retired {
			continue
		}

		if ev.Item < len(loot) {
			if consumed[ev.Item] || dog.ItemsCount() >= sess.Map.BagCapacity {
				continue
			}
			obj := loot[ev.Item]
			score := sess.Map.ScoreOf(obj.Type)
			dog.AddItem(obj.ID, obj.Type, score)
			consumed[ev.Item] = true
			sess.RemoveLoot(obj.ID)

			event.Emit(s.bus, event.LootPickedUp{
				SessionID: sess.ID,
				DogID:     dog.ID,
				LootID:    obj.ID,
				LootType:  obj.Type,
				Score:     score,
			})
			continue
		}

		if n := dog.ItemsCount(); n > 0 {
			dog.EmptyBag()
			event.Emit(s.bus, event.BagDeposited{
				SessionID: sess.ID,
				DogID:     dog.ID,
				Items:     n,
			})
		}
	}
}
