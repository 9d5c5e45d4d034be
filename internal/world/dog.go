package world

import "github.com/dogwalk/server/internal/geom"

// Movement directions as sent by clients. The empty string stops the dog.
const (
	DirLeft  = "L"
	DirRight = "R"
	DirUp    = "U"
	DirDown  = "D"
	DirNone  = ""
)

// BagItem is one carried loot item.
type BagItem struct {
	ID   int64
	Type int
}

// Dog is a player's avatar. Accessed only on the game strand, so no locks.
type Dog struct {
	ID    int64
	Name  string
	Pos   geom.Point2D
	Speed geom.Vec2D
	Dir   string
	Bag   []BagItem
	Score int

	PlayTime float64 // seconds in game
	StopTime float64 // seconds standing still with no new command

	Moved   bool // a direction command arrived since the last tick
	Retired bool
}

// NewDog creates a dog with a fresh process-wide id. A new dog faces up
// and stands still.
func NewDog(name string) *Dog {
	return &Dog{
		ID:   NextDogID(),
		Name: name,
		Dir:  DirUp,
	}
}

// SetDir applies a movement command: the direction string plus the map's
// dog speed on exactly one axis. The empty direction stops the dog.
func (d *Dog) SetDir(dir string, speed float64) {
	d.Dir = dir
	switch dir {
	case DirLeft:
		d.Speed = geom.Vec2D{X: -speed}
	case DirRight:
		d.Speed = geom.Vec2D{X: speed}
	case DirUp:
		d.Speed = geom.Vec2D{Y: -speed}
	case DirDown:
		d.Speed = geom.Vec2D{Y: speed}
	case DirNone:
		d.Speed = geom.Vec2D{}
	}
	if dir != DirNone {
		d.Moved = true
	}
}

// AddItem puts loot into the bag and accrues its score immediately.
// Capacity is the caller's concern.
func (d *Dog) AddItem(id int64, lootType, score int) {
	d.Bag = append(d.Bag, BagItem{ID: id, Type: lootType})
	d.Score += score
}

// EmptyBag drops all carried items. Score stays as accrued on pickup.
func (d *Dog) EmptyBag() {
	d.Bag = d.Bag[:0]
}

// ItemsCount returns how many items the dog carries.
func (d *Dog) ItemsCount() int {
	return len(d.Bag)
}

// AddPlayTime advances the dog's clocks by dt seconds. Stop time grows only
// when the dog neither received a command this tick nor has velocity;
// otherwise it resets. Clears the per-tick command flag.
func (d *Dog) AddPlayTime(dt float64) {
	d.PlayTime += dt
	if !d.Moved && d.Speed.IsZero() {
		d.StopTime += dt
	} else {
		d.StopTime = 0
	}
	d.Moved = false
}
