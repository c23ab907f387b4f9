package services

import (
	"encoding/json"
	"log"

	"scoresync/models"
)

// Action payloads. Clients serialize these as the event payload object.

type scoreUpdatePayload struct {
	PlayerID   string `json:"playerId"`
	RoundIndex int    `json:"roundIndex"`
	Score      int    `json:"score"`
}

type batchScoreUpdatePayload struct {
	RoundIndex int                 `json:"roundIndex"`
	Scores     []models.ScoreEntry `json:"scores"`
}

type roundCompletePayload struct {
	RoundIndex  int                 `json:"roundIndex"`
	FinalScores []models.ScoreEntry `json:"finalScores"`
}

type bidPayload struct {
	PlayerID   string `json:"playerId"`
	RoundIndex int    `json:"roundIndex"`
	Bid        int    `json:"bid"`
}

type trickPayload struct {
	PlayerID   string `json:"playerId"`
	RoundIndex int    `json:"roundIndex"`
	Tricks     int    `json:"tricks"`
}

type playerAddPayload struct {
	Player models.StatePlayer `json:"player"`
}

type stateRestorePayload struct {
	State models.GameState `json:"state"`
}

func decodePayload(payload models.JSONMap, v interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// ReplayEvents folds an ordered event sequence onto a base state. Events must
// already be sorted by ascending server version.
func ReplayEvents(base models.GameState, events []models.GameEvent) models.GameState {
	state := base
	for i := range events {
		state = ApplyEvent(state, &events[i])
	}
	return state
}

// ApplyEvent is the pure state transition for a single event. Malformed
// payloads and action types without fold logic leave the state unchanged;
// they stay in the log but are inert on replay.
func ApplyEvent(state models.GameState, event *models.GameEvent) models.GameState {
	switch event.ActionType {
	case models.ActionScoreUpdate:
		var p scoreUpdatePayload
		if err := decodePayload(event.Payload, &p); err != nil {
			log.Printf("Skipping malformed %s payload for event %s: %v", event.ActionType, event.EventID, err)
			return state
		}
		if p.RoundIndex < 0 || p.RoundIndex >= len(state.Rounds) {
			return state
		}
		round := &state.Rounds[p.RoundIndex]
		for i := range round.Scores {
			if round.Scores[i].PlayerID == p.PlayerID {
				round.Scores[i].Score = p.Score
				break
			}
		}
		return state

	case models.ActionBatchScoreUpdate:
		var p batchScoreUpdatePayload
		if err := decodePayload(event.Payload, &p); err != nil {
			log.Printf("Skipping malformed %s payload for event %s: %v", event.ActionType, event.EventID, err)
			return state
		}
		if p.RoundIndex < 0 {
			return state
		}
		ensureRounds(&state, p.RoundIndex)
		state.Rounds[p.RoundIndex].Scores = p.Scores
		return state

	case models.ActionRoundComplete:
		var p roundCompletePayload
		if err := decodePayload(event.Payload, &p); err != nil {
			log.Printf("Skipping malformed %s payload for event %s: %v", event.ActionType, event.EventID, err)
			return state
		}
		if p.RoundIndex < 0 {
			return state
		}
		ensureRounds(&state, p.RoundIndex)
		round := &state.Rounds[p.RoundIndex]
		round.Completed = true
		round.FinalScores = p.FinalScores
		return state

	case models.ActionBidPlaced, models.ActionBidUpdated:
		var p bidPayload
		if err := decodePayload(event.Payload, &p); err != nil {
			log.Printf("Skipping malformed %s payload for event %s: %v", event.ActionType, event.EventID, err)
			return state
		}
		if p.RoundIndex < 0 {
			return state
		}
		ensureRounds(&state, p.RoundIndex)
		round := &state.Rounds[p.RoundIndex]
		for i := range round.Bids {
			if round.Bids[i].PlayerID == p.PlayerID {
				round.Bids[i].Bid = p.Bid
				return state
			}
		}
		round.Bids = append(round.Bids, models.BidEntry{PlayerID: p.PlayerID, Bid: p.Bid})
		return state

	case models.ActionTrickRecorded:
		var p trickPayload
		if err := decodePayload(event.Payload, &p); err != nil {
			log.Printf("Skipping malformed %s payload for event %s: %v", event.ActionType, event.EventID, err)
			return state
		}
		if p.RoundIndex < 0 {
			return state
		}
		ensureRounds(&state, p.RoundIndex)
		round := &state.Rounds[p.RoundIndex]
		for i := range round.Tricks {
			if round.Tricks[i].PlayerID == p.PlayerID {
				round.Tricks[i].Tricks = p.Tricks
				return state
			}
		}
		round.Tricks = append(round.Tricks, models.TrickEntry{PlayerID: p.PlayerID, Tricks: p.Tricks})
		return state

	case models.ActionPlayerAdd:
		var p playerAddPayload
		if err := decodePayload(event.Payload, &p); err != nil {
			log.Printf("Skipping malformed %s payload for event %s: %v", event.ActionType, event.EventID, err)
			return state
		}
		for _, player := range state.Players {
			if player.ID == p.Player.ID {
				return state
			}
		}
		state.Players = append(state.Players, p.Player)
		return state

	case models.ActionGamePause:
		state.Status = "paused"
		return state

	case models.ActionGameResume:
		state.Status = "active"
		return state

	case models.ActionGameEnd:
		state.Status = "finished"
		return state

	case models.ActionStateRestore:
		var p stateRestorePayload
		if err := decodePayload(event.Payload, &p); err != nil {
			log.Printf("Skipping malformed %s payload for event %s: %v", event.ActionType, event.EventID, err)
			return state
		}
		return p.State

	default:
		// STATE_MERGE and unknown kinds are loggable but inert
		return state
	}
}

func ensureRounds(state *models.GameState, index int) {
	for len(state.Rounds) <= index {
		state.Rounds = append(state.Rounds, models.StateRound{})
	}
}
