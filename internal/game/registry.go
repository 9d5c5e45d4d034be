package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/dogwalk/server/internal/world"
)

// Player ties a dog to the session it plays in. The registry holds
// non-owning references; the session owns the dog.
type Player struct {
	Session *world.Session
	Dog     *world.Dog
}

// Registry maps bearer tokens to players. Mutated only on the game strand.
// A secondary dog-id index makes revocation O(1).
type Registry struct {
	byToken    map[string]*Player
	tokenByDog map[int64]string

	// Two independent generators feed token minting, 64 bits each.
	gen1 *rand.Rand
	gen2 *rand.Rand
}

func NewRegistry() *Registry {
	return &Registry{
		byToken:    make(map[string]*Player),
		tokenByDog: make(map[int64]string),
		gen1:       rand.New(rand.NewSource(time.Now().UnixNano())),
		gen2:       rand.New(rand.NewSource(time.Now().UnixNano() ^ 0x5deece66d)),
	}
}

// Add mints a token for the player and indexes it. Registering the same
// dog twice violates the registry invariant and fails.
func (r *Registry) Add(p *Player) (string, error) {
	if _, exists := r.tokenByDog[p.Dog.ID]; exists {
		return "", fmt.Errorf("dog %d: %w", p.Dog.ID, ErrDuplicatePlayer)
	}
	token := r.mintToken()
	for _, taken := r.byToken[token]; taken; _, taken = r.byToken[token] {
		token = r.mintToken()
	}
	r.byToken[token] = p
	r.tokenByDog[p.Dog.ID] = token
	return token, nil
}

// Find returns the player for a token, or nil.
func (r *Registry) Find(token string) *Player {
	return r.byToken[token]
}

// RevokeByDog removes the player owning the dog from both indices.
// Reports whether a token was revoked.
func (r *Registry) RevokeByDog(dogID int64) bool {
	token, ok := r.tokenByDog[dogID]
	if !ok {
		return false
	}
	delete(r.byToken, token)
	delete(r.tokenByDog, dogID)
	return true
}

// Count returns the number of live tokens.
func (r *Registry) Count() int {
	return len(r.byToken)
}

// mintToken builds a 32-hex-digit token from two 64-bit draws.
func (r *Registry) mintToken() string {
	return fmt.Sprintf("%016x%016x", r.gen1.Uint64(), r.gen2.Uint64())
}
