package persist

import (
	"context"

	"github.com/google/uuid"
)

// RetiredPlayer is one leaderboard row. Persisted once, never mutated.
type RetiredPlayer struct {
	ID       uuid.UUID
	Name     string
	Score    float64
	PlayTime float64 // seconds
}

// RetiredRepo stores retired players in PostgreSQL.
type RetiredRepo struct {
	db *DB
}

func NewRetiredRepo(db *DB) *RetiredRepo {
	return &RetiredRepo{db: db}
}

// Save appends a retired player inside its own transaction. The caller may
// drop the dog from memory only after Save returns nil.
func (r *RetiredRepo) Save(ctx context.Context, p RetiredPlayer) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO retired_players (id, name, score, play_time)
		 VALUES ($1, $2, $3, $4)`,
		p.ID, p.Name, p.Score, p.PlayTime)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Load returns up to maxItems rows ordered by score descending, then play
// time ascending, skipping the first start rows.
func (r *RetiredRepo) Load(ctx context.Context, start, maxItems int) ([]RetiredPlayer, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, score, play_time FROM retired_players
		 ORDER BY score DESC, play_time ASC
		 OFFSET $1 LIMIT $2`, start, maxItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []RetiredPlayer
	for rows.Next() {
		var p RetiredPlayer
		if err := rows.Scan(&p.ID, &p.Name, &p.Score, &p.PlayTime); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return players, nil
}
