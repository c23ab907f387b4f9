package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// GameState is the materialized state of a game: the result of folding the
// event log onto an empty state. It is a derived cache — replaying the log
// from version 0 must always reproduce it.
type GameState struct {
	Players []StatePlayer `json:"players"`
	Rounds  []StateRound  `json:"rounds"`
	Status  string        `json:"status,omitempty"`
}

type StatePlayer struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type StateRound struct {
	Scores      []ScoreEntry `json:"scores"`
	Bids        []BidEntry   `json:"bids,omitempty"`
	Tricks      []TrickEntry `json:"tricks,omitempty"`
	Completed   bool         `json:"completed"`
	FinalScores []ScoreEntry `json:"finalScores,omitempty"`
}

type ScoreEntry struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}

type BidEntry struct {
	PlayerID string `json:"playerId"`
	Bid      int    `json:"bid"`
}

type TrickEntry struct {
	PlayerID string `json:"playerId"`
	Tricks   int    `json:"tricks"`
}

func (s GameState) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *GameState) Scan(value interface{}) error {
	if value == nil {
		*s = GameState{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for GameState")
	}
}

// JSONMap stores an event payload as a JSON object column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(JSONMap{})
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for JSONMap")
	}
}
