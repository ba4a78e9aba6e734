package main

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPlayerStateMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT coins, autoclick FROM player_states").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"coins", "autoclick"}))

	state, err := loadPlayerState(db, "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", state.Username)
	assert.Zero(t, state.Coins)
	assert.Zero(t, state.Autoclick)
}

func TestLoadPlayerState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT coins, autoclick FROM player_states").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"coins", "autoclick"}).AddRow(250, 10))

	state, err := loadPlayerState(db, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(250), state.Coins)
	assert.Equal(t, int64(10), state.Autoclick)
}

func TestSavePlayerState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO player_states").
		WithArgs("alice", int64(250), int64(10), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = savePlayerState(db, &PlayerState{Username: "alice", Coins: 250, Autoclick: 10})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
