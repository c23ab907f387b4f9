package models

import (
	"time"
)

// GameSnapshot is a checkpoint of materialized state at a server version.
// Snapshots only speed up replay; deleting one never loses data.
type GameSnapshot struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	GameID        string    `json:"game_id" gorm:"not null;uniqueIndex:idx_game_snapshot_version"`
	ServerVersion int64     `json:"server_version" gorm:"not null;uniqueIndex:idx_game_snapshot_version"`
	State         GameState `json:"state" gorm:"type:jsonb"`
	EventCount    int64     `json:"event_count"`
	Checksum      string    `json:"checksum"` // sha256 of the state JSON
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
}
