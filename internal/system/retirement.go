package system

import (
	"context"
	"time"

	"github.com/dogwalk/server/internal/core/event"
	coresys "github.com/dogwalk/server/internal/core/system"
	"github.com/dogwalk/server/internal/persist"
	"github.com/dogwalk/server/internal/world"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenRevoker drops a player's bearer token. The game registry implements
// it.
type TokenRevoker interface {
	RevokeByDog(dogID int64) bool
}

// RetiredSaver persists one retired player durably.
type RetiredSaver interface {
	Save(ctx context.Context, p persist.RetiredPlayer) error
}

// RetirementSystem advances play/stop clocks and retires dogs idle past
// the threshold: persist first, then remove from every session and revoke
// the token. If persistence fails the dog stays and retirement retries on
// a later tick.
type RetirementSystem struct {
	game   *world.Game
	tokens TokenRevoker
	store  RetiredSaver
	bus    *event.Bus
	log    *zap.Logger
}

func NewRetirementSystem(g *world.Game, tokens TokenRevoker, store RetiredSaver, bus *event.Bus, log *zap.Logger) *RetirementSystem {
	return &RetirementSystem{game: g, tokens: tokens, store: store, bus: bus, log: log}
}

func (s *RetirementSystem) Phase() coresys.Phase { return coresys.PhaseRetire }

func (s *RetirementSystem) Update(dt time.Duration) {
	seconds := dt.Seconds()
	threshold := s.game.RetirementTime()
	for _, sess := range s.game.Sessions() {
		for _, dog := range sess.Movers {
			dog.AddPlayTime(seconds)
			if dog.StopTime >= threshold {
				s.retire(dog)
			}
		}
	}
}

func (s *RetirementSystem) retire(dog *world.Dog) {
	rec := persist.RetiredPlayer{
		ID:       uuid.New(),
		Name:     dog.Name,
		Score:    float64(dog.Score),
		PlayTime: dog.PlayTime,
	}
	if err := s.store.Save(context.Background(), rec); err != nil {
		s.log.Error("persist retired player",
			zap.Int64("dog", dog.ID),
			zap.String("name", dog.Name),
			zap.Error(err))
		return
	}

	dog.Retired = true
	for _, sess := range s.game.Sessions() {
		sess.DeleteDog(dog.ID)
	}
	s.tokens.RevokeByDog(dog.ID)

	event.Emit(s.bus, event.DogRetired{
		DogID:    dog.ID,
		Name:     dog.Name,
		Score:    dog.Score,
		PlayTime: dog.PlayTime,
	})
}
