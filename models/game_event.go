package models

import (
	"time"
)

// ActionType is the closed vocabulary of event kinds clients may log.
type ActionType string

const (
	ActionScoreUpdate      ActionType = "SCORE_UPDATE"
	ActionBatchScoreUpdate ActionType = "BATCH_SCORE_UPDATE"
	ActionRoundComplete    ActionType = "ROUND_COMPLETE"
	ActionBidPlaced        ActionType = "BID_PLACED"
	ActionBidUpdated       ActionType = "BID_UPDATED"
	ActionTrickRecorded    ActionType = "TRICK_RECORDED"
	ActionPlayerAdd        ActionType = "PLAYER_ADD"
	ActionGamePause        ActionType = "GAME_PAUSE"
	ActionGameResume       ActionType = "GAME_RESUME"
	ActionGameEnd          ActionType = "GAME_END"
	ActionStateRestore     ActionType = "STATE_RESTORE"
	ActionStateMerge       ActionType = "STATE_MERGE"
)

// GameEvent is an immutable fact in a game's append-only log. Rows are never
// updated or deleted; (game_id, event_id) dedups client retries and
// (game_id, server_version) guards version assignment at the storage layer.
type GameEvent struct {
	ID              uint       `json:"-" gorm:"primaryKey"`
	EventID         string     `json:"id" gorm:"not null;uniqueIndex:idx_game_event_id"` // client-generated dedup key
	GameID          string     `json:"game_id" gorm:"not null;uniqueIndex:idx_game_event_id;uniqueIndex:idx_game_event_version"`
	ActionType      ActionType `json:"action_type" gorm:"not null"`
	Payload         JSONMap    `json:"payload" gorm:"type:jsonb"`
	ClientTimestamp int64      `json:"client_timestamp"` // epoch millis on the client clock
	ClientSequence  int64      `json:"client_sequence_number"`
	AuthorID        string     `json:"author_id"`
	OriginClientID  string     `json:"origin_client_id"`
	ServerVersion   int64      `json:"server_version" gorm:"not null;uniqueIndex:idx_game_event_version"`
	CreatedAt       time.Time  `json:"created_at"`
}
