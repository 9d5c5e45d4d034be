package game

import (
	"context"
	"time"

	"github.com/dogwalk/server/internal/core/event"
	coresys "github.com/dogwalk/server/internal/core/system"
	"github.com/dogwalk/server/internal/geom"
	"github.com/dogwalk/server/internal/persist"
	"github.com/dogwalk/server/internal/system"
	"github.com/dogwalk/server/internal/world"
	"go.uber.org/zap"
)

// RetiredStore is the leaderboard persistence the command API consumes.
// *persist.RetiredRepo implements it; tests use fakes.
type RetiredStore interface {
	Save(ctx context.Context, p persist.RetiredPlayer) error
	Load(ctx context.Context, start, maxItems int) ([]persist.RetiredPlayer, error)
}

// Options select startup behavior fixed by the CLI.
type Options struct {
	RandomizeSpawns bool
	AutoTick        bool // true disables the HTTP tick endpoint
}

// App is the command API: the verb surface the HTTP layer talks to. All
// mutations run on the strand; reads of live state do too, so every client
// observes a consistent snapshot.
type App struct {
	game     *world.Game
	registry *Registry
	retired  RetiredStore
	strand   *Strand
	runner   *coresys.Runner
	bus      *event.Bus
	opts     Options
	log      *zap.Logger
}

func NewApp(g *world.Game, retired RetiredStore, opts Options, log *zap.Logger) *App {
	a := &App{
		game:     g,
		registry: NewRegistry(),
		retired:  retired,
		strand:   NewStrand(),
		runner:   coresys.NewRunner(),
		bus:      event.NewBus(),
		opts:     opts,
		log:      log,
	}

	a.runner.Register(system.NewEventDispatchSystem(a.bus))
	a.runner.Register(system.NewMovementSystem(g))
	a.runner.Register(system.NewRetirementSystem(g, a.registry, retired, a.bus, log))
	a.runner.Register(system.NewLootSpawnSystem(g))
	a.runner.Register(system.NewPickupSystem(g, a.bus))

	event.Subscribe(a.bus, func(ev event.LootPickedUp) {
		log.Debug("loot picked up",
			zap.Int64("session", ev.SessionID),
			zap.Int64("dog", ev.DogID),
			zap.Int64("loot", ev.LootID),
			zap.Int("score", ev.Score))
	})
	event.Subscribe(a.bus, func(ev event.BagDeposited) {
		log.Debug("bag deposited",
			zap.Int64("session", ev.SessionID),
			zap.Int64("dog", ev.DogID),
			zap.Int("items", ev.Items))
	})
	event.Subscribe(a.bus, func(ev event.DogRetired) {
		log.Info("dog retired",
			zap.Int64("dog", ev.DogID),
			zap.String("name", ev.Name),
			zap.Int("score", ev.Score),
			zap.Float64("play_time", ev.PlayTime))
	})

	return a
}

// Strand exposes the serial executor so the process can run it.
func (a *App) Strand() *Strand {
	return a.strand
}

// AutoTick reports whether the automatic scheduler owns time.
func (a *App) AutoTick() bool {
	return a.opts.AutoTick
}

// Maps returns the immutable catalog for the maps endpoints.
func (a *App) Maps() []MapEntry {
	maps := a.game.Maps().All()
	out := make([]MapEntry, 0, len(maps))
	for _, m := range maps {
		out = append(out, MapEntry{ID: m.ID, Name: m.Name})
	}
	return out
}

// MapConfig returns the raw config JSON of one map, or nil when unknown.
func (a *App) MapConfig(id string) []byte {
	m := a.game.Maps().Find(id)
	if m == nil {
		return nil
	}
	return m.Raw
}

// MapEntry is one row of the map list.
type MapEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JoinResult is the answer to a successful join.
type JoinResult struct {
	Token    string
	PlayerID int64
}

// Join creates a dog on the map, joining or creating the map's session,
// and mints a bearer token for it.
func (a *App) Join(ctx context.Context, userName, mapID string) (JoinResult, error) {
	if userName == "" {
		return JoinResult{}, ErrInvalidName
	}
	m := a.game.Maps().Find(mapID)
	if m == nil {
		return JoinResult{}, ErrMapNotFound
	}

	var (
		res    JoinResult
		addErr error
	)
	err := a.strand.Do(ctx, func() {
		dog := world.NewDog(userName)
		sess := a.game.ConnectToSession(m, dog, a.opts.RandomizeSpawns)
		token, err := a.registry.Add(&Player{Session: sess, Dog: dog})
		if err != nil {
			sess.DeleteDog(dog.ID)
			addErr = err
			return
		}
		res = JoinResult{Token: token, PlayerID: dog.ID}
	})
	if err != nil {
		return JoinResult{}, err
	}
	if addErr != nil {
		return JoinResult{}, addErr
	}
	return res, nil
}

// PlayerEntry is one row of the player list.
type PlayerEntry struct {
	ID   int64
	Name string
}

// ListPlayers returns every dog in the token owner's session.
func (a *App) ListPlayers(ctx context.Context, token string) ([]PlayerEntry, error) {
	var (
		out     []PlayerEntry
		lookErr error
	)
	err := a.strand.Do(ctx, func() {
		p := a.registry.Find(token)
		if p == nil {
			lookErr = ErrUnknownToken
			return
		}
		for _, dog := range p.Session.Dogs {
			out = append(out, PlayerEntry{ID: dog.ID, Name: dog.Name})
		}
	})
	if err != nil {
		return nil, err
	}
	return out, lookErr
}

// DogState is a dog snapshot for the state endpoint.
type DogState struct {
	ID    int64
	Pos   geom.Point2D
	Speed geom.Vec2D
	Dir   string
	Bag   []world.BagItem
	Score int
}

// LootState is a lost-object snapshot for the state endpoint.
type LootState struct {
	ID   int64
	Type int
	Pos  geom.Point2D
}

// State is the full world snapshot of one session.
type State struct {
	Players []DogState
	Loot    []LootState
}

// GetState snapshots the token owner's session: all dogs and lost objects.
func (a *App) GetState(ctx context.Context, token string) (State, error) {
	var (
		st      State
		lookErr error
	)
	err := a.strand.Do(ctx, func() {
		p := a.registry.Find(token)
		if p == nil {
			lookErr = ErrUnknownToken
			return
		}
		for _, dog := range p.Session.Dogs {
			bag := make([]world.BagItem, len(dog.Bag))
			copy(bag, dog.Bag)
			st.Players = append(st.Players, DogState{
				ID:    dog.ID,
				Pos:   dog.Pos,
				Speed: dog.Speed,
				Dir:   dog.Dir,
				Bag:   bag,
				Score: dog.Score,
			})
		}
		for _, obj := range p.Session.Loot {
			st.Loot = append(st.Loot, LootState{ID: obj.ID, Type: obj.Type, Pos: obj.Pos})
		}
	})
	if err != nil {
		return State{}, err
	}
	return st, lookErr
}

// Move sets the dog's direction; the empty string stops it.
func (a *App) Move(ctx context.Context, token, dir string) error {
	switch dir {
	case world.DirLeft, world.DirRight, world.DirUp, world.DirDown, world.DirNone:
	default:
		return ErrInvalidDirection
	}
	var lookErr error
	err := a.strand.Do(ctx, func() {
		p := a.registry.Find(token)
		if p == nil {
			lookErr = ErrUnknownToken
			return
		}
		p.Dog.SetDir(dir, p.Session.Map.DogSpeed)
	})
	if err != nil {
		return err
	}
	return lookErr
}

// Tick advances the simulation by deltaMs milliseconds. Only available in
// manual mode; the automatic scheduler owns time otherwise.
func (a *App) Tick(ctx context.Context, deltaMs int64) error {
	if a.opts.AutoTick {
		return ErrTickDisabled
	}
	if deltaMs <= 0 {
		return ErrInvalidDelta
	}
	return a.strand.Do(ctx, func() {
		a.runner.Tick(time.Duration(deltaMs) * time.Millisecond)
	})
}

// Advance is the automatic scheduler's tick entry point.
func (a *App) Advance(dt time.Duration) {
	err := a.strand.Do(context.Background(), func() {
		a.runner.Tick(dt)
	})
	if err != nil {
		a.log.Warn("auto tick skipped", zap.Error(err))
	}
}

// Record is one leaderboard row.
type Record struct {
	Name     string
	Score    int
	PlayTime float64
}

// Records reads a leaderboard page: score descending, play time ascending.
// Read-only against the store, so it bypasses the strand.
func (a *App) Records(ctx context.Context, start, maxItems int) ([]Record, error) {
	rows, err := a.retired.Load(ctx, start, maxItems)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, Record{
			Name:     row.Name,
			Score:    int(row.Score),
			PlayTime: row.PlayTime,
		})
	}
	return out, nil
}
