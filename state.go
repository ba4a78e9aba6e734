package main

import (
	"database/sql"
	"time"
)

// PlayerState is the authoritative gameplay balance for one user. Reads and
// writes are whole-row with no locking or transaction: concurrent
// read-modify-write on the same user races and the last writer wins.
type PlayerState struct {
	Username  string
	Coins     int64
	Autoclick int64
}

// loadPlayerState returns a zero-valued state when no row exists: a user
// who never played has 0 coins and 0 autoclicks.
func loadPlayerState(db *sql.DB, username string) (*PlayerState, error) {
	s := PlayerState{Username: username}
	err := db.QueryRow(`
		SELECT coins, autoclick
		FROM player_states
		WHERE username = $1
	`, username).Scan(&s.Coins, &s.Autoclick)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return &s, nil
}

// savePlayerState overwrites the whole row.
func savePlayerState(db *sql.DB, s *PlayerState) error {
	_, err := db.Exec(`
		INSERT INTO player_states (username, coins, autoclick, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE
		SET coins = EXCLUDED.coins,
			autoclick = EXCLUDED.autoclick,
			updated_at = EXCLUDED.updated_at
	`, s.Username, s.Coins, s.Autoclick, time.Now().UTC())
	return err
}
