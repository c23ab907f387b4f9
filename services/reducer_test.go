package services

import (
	"testing"

	"scoresync/models"

	"github.com/stretchr/testify/assert"
)

func foldEvent(action models.ActionType, payload models.JSONMap) *models.GameEvent {
	return &models.GameEvent{
		EventID:    "evt-test",
		GameID:     "game-test",
		ActionType: action,
		Payload:    payload,
	}
}

func twoPlayerRound() models.GameState {
	return models.GameState{
		Players: []models.StatePlayer{{ID: "p1", Name: "Alice"}, {ID: "p2", Name: "Bob"}},
		Rounds: []models.StateRound{
			{Scores: []models.ScoreEntry{{PlayerID: "p1", Score: 10}, {PlayerID: "p2", Score: 20}}},
		},
	}
}

func TestApplyEvent_ScoreUpdate(t *testing.T) {
	state := ApplyEvent(twoPlayerRound(), foldEvent(models.ActionScoreUpdate, models.JSONMap{
		"playerId": "p2", "roundIndex": 0, "score": 35,
	}))

	assert.Equal(t, 35, state.Rounds[0].Scores[1].Score)
	assert.Equal(t, 10, state.Rounds[0].Scores[0].Score)
}

func TestApplyEvent_ScoreUpdate_MissingRoundIsNoop(t *testing.T) {
	base := twoPlayerRound()
	state := ApplyEvent(base, foldEvent(models.ActionScoreUpdate, models.JSONMap{
		"playerId": "p1", "roundIndex": 5, "score": 99,
	}))

	assert.Equal(t, base, state)
	assert.Len(t, state.Rounds, 1)
}

func TestApplyEvent_ScoreUpdate_MissingPlayerIsNoop(t *testing.T) {
	state := ApplyEvent(twoPlayerRound(), foldEvent(models.ActionScoreUpdate, models.JSONMap{
		"playerId": "p9", "roundIndex": 0, "score": 99,
	}))

	assert.Equal(t, 10, state.Rounds[0].Scores[0].Score)
	assert.Equal(t, 20, state.Rounds[0].Scores[1].Score)
}

func TestApplyEvent_BatchScoreUpdate_ReplacesScores(t *testing.T) {
	state := ApplyEvent(twoPlayerRound(), foldEvent(models.ActionBatchScoreUpdate, models.JSONMap{
		"roundIndex": 0,
		"scores": []interface{}{
			map[string]interface{}{"playerId": "p1", "score": 7},
		},
	}))

	assert.Equal(t, []models.ScoreEntry{{PlayerID: "p1", Score: 7}}, state.Rounds[0].Scores)
}

func TestApplyEvent_BatchScoreUpdate_GrowsRounds(t *testing.T) {
	state := ApplyEvent(models.GameState{}, foldEvent(models.ActionBatchScoreUpdate, models.JSONMap{
		"roundIndex": 2,
		"scores": []interface{}{
			map[string]interface{}{"playerId": "p1", "score": 3},
		},
	}))

	assert.Len(t, state.Rounds, 3)
	assert.Equal(t, 3, state.Rounds[2].Scores[0].Score)
}

func TestApplyEvent_RoundComplete(t *testing.T) {
	state := ApplyEvent(twoPlayerRound(), foldEvent(models.ActionRoundComplete, models.JSONMap{
		"roundIndex": 0,
		"finalScores": []interface{}{
			map[string]interface{}{"playerId": "p1", "score": 10},
			map[string]interface{}{"playerId": "p2", "score": 20},
		},
	}))

	assert.True(t, state.Rounds[0].Completed)
	assert.Len(t, state.Rounds[0].FinalScores, 2)
}

func TestApplyEvent_BidPlaced_InsertsAndUpdates(t *testing.T) {
	state := ApplyEvent(twoPlayerRound(), foldEvent(models.ActionBidPlaced, models.JSONMap{
		"playerId": "p1", "roundIndex": 0, "bid": 3,
	}))
	assert.Equal(t, []models.BidEntry{{PlayerID: "p1", Bid: 3}}, state.Rounds[0].Bids)

	state = ApplyEvent(state, foldEvent(models.ActionBidUpdated, models.JSONMap{
		"playerId": "p1", "roundIndex": 0, "bid": 5,
	}))
	assert.Equal(t, []models.BidEntry{{PlayerID: "p1", Bid: 5}}, state.Rounds[0].Bids)
}

func TestApplyEvent_TrickRecorded(t *testing.T) {
	state := ApplyEvent(twoPlayerRound(), foldEvent(models.ActionTrickRecorded, models.JSONMap{
		"playerId": "p2", "roundIndex": 0, "tricks": 4,
	}))

	assert.Equal(t, []models.TrickEntry{{PlayerID: "p2", Tricks: 4}}, state.Rounds[0].Tricks)
}

func TestApplyEvent_PlayerAdd_DedupsByID(t *testing.T) {
	state := ApplyEvent(twoPlayerRound(), foldEvent(models.ActionPlayerAdd, models.JSONMap{
		"player": map[string]interface{}{"id": "p3", "name": "Cara"},
	}))
	assert.Len(t, state.Players, 3)

	state = ApplyEvent(state, foldEvent(models.ActionPlayerAdd, models.JSONMap{
		"player": map[string]interface{}{"id": "p3", "name": "Cara again"},
	}))
	assert.Len(t, state.Players, 3)
	assert.Equal(t, "Cara", state.Players[2].Name)
}

func TestApplyEvent_LifecycleStatus(t *testing.T) {
	state := ApplyEvent(models.GameState{Status: "active"}, foldEvent(models.ActionGamePause, nil))
	assert.Equal(t, "paused", state.Status)

	state = ApplyEvent(state, foldEvent(models.ActionGameResume, nil))
	assert.Equal(t, "active", state.Status)

	state = ApplyEvent(state, foldEvent(models.ActionGameEnd, nil))
	assert.Equal(t, "finished", state.Status)
}

func TestApplyEvent_StateRestore_ReplacesEverything(t *testing.T) {
	state := ApplyEvent(twoPlayerRound(), foldEvent(models.ActionStateRestore, models.JSONMap{
		"state": map[string]interface{}{
			"players": []interface{}{map[string]interface{}{"id": "x", "name": "Xan"}},
			"rounds":  []interface{}{},
			"status":  "active",
		},
	}))

	assert.Equal(t, []models.StatePlayer{{ID: "x", Name: "Xan"}}, state.Players)
	assert.Empty(t, state.Rounds)
}

func TestApplyEvent_UnhandledKindsAreInert(t *testing.T) {
	base := twoPlayerRound()

	state := ApplyEvent(base, foldEvent(models.ActionStateMerge, models.JSONMap{"anything": true}))
	assert.Equal(t, base, state)

	state = ApplyEvent(base, foldEvent(models.ActionType("SOMETHING_NEW"), nil))
	assert.Equal(t, base, state)
}

func TestApplyEvent_MalformedPayloadIsNoop(t *testing.T) {
	base := twoPlayerRound()
	state := ApplyEvent(base, foldEvent(models.ActionScoreUpdate, models.JSONMap{
		"playerId": "p1", "roundIndex": "not-a-number", "score": 1,
	}))

	assert.Equal(t, base, state)
}

func TestReplayEvents_AppliesInOrder(t *testing.T) {
	events := []models.GameEvent{
		*foldEvent(models.ActionPlayerAdd, models.JSONMap{"player": map[string]interface{}{"id": "p1", "name": "Alice"}}),
		*foldEvent(models.ActionBatchScoreUpdate, models.JSONMap{
			"roundIndex": 0,
			"scores":     []interface{}{map[string]interface{}{"playerId": "p1", "score": 5}},
		}),
		*foldEvent(models.ActionScoreUpdate, models.JSONMap{"playerId": "p1", "roundIndex": 0, "score": 8}),
	}

	state := ReplayEvents(models.GameState{}, events)

	assert.Len(t, state.Players, 1)
	assert.Equal(t, 8, state.Rounds[0].Scores[0].Score)
}
