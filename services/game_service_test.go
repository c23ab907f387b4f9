package services

import (
	"testing"

	"scoresync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameService_CreateGame(t *testing.T) {
	db := newTestDB(t)
	svc := NewGameService(db)

	game, err := svc.CreateGame(3, &CreateGameRequest{
		GameID: "device-abc-42",
		Name:   "Wednesday whist",
		Players: []models.StatePlayer{
			{ID: "p1", Name: "Alice"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "device-abc-42", game.GameID)
	assert.Equal(t, uint(3), game.OwnerID)
	assert.Equal(t, int64(0), game.ServerVersion)
	assert.Len(t, game.State.Players, 1)

	_, err = svc.CreateGame(3, &CreateGameRequest{GameID: "device-abc-42", Name: "Dup"})
	assert.ErrorIs(t, err, ErrGameIDInUse)
}

func TestGameService_CreateGame_GeneratesLogicalID(t *testing.T) {
	db := newTestDB(t)
	svc := NewGameService(db)

	game, err := svc.CreateGame(0, &CreateGameRequest{Name: "Anonymous rummy"})
	require.NoError(t, err)
	assert.NotEmpty(t, game.GameID)
	assert.Equal(t, uint(0), game.OwnerID)
}

func TestGameService_GetUserGames(t *testing.T) {
	db := newTestDB(t)
	svc := NewGameService(db)

	_, err := svc.CreateGame(3, &CreateGameRequest{GameID: "g1", Name: "One"})
	require.NoError(t, err)
	_, err = svc.CreateGame(4, &CreateGameRequest{GameID: "g2", Name: "Two"})
	require.NoError(t, err)

	games, err := svc.GetUserGames(3)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "g1", games[0].GameID)

	_, err = svc.GetGameByID("missing")
	assert.ErrorIs(t, err, ErrGameNotFound)
}
