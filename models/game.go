package models

import (
	"time"

	"gorm.io/gorm"
)

type Game struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	GameID        string         `json:"game_id" gorm:"uniqueIndex;not null"` // client-assigned logical id
	OwnerID       uint           `json:"owner_id" gorm:"index"`               // 0 means anonymous
	Name          string         `json:"name"`
	Status        string         `json:"status" gorm:"not null;default:'active'"` // active, paused, finished
	ServerVersion int64          `json:"server_version" gorm:"not null;default:0"`
	State         GameState      `json:"state" gorm:"type:jsonb"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Events    []GameEvent    `json:"events,omitempty" gorm:"foreignKey:GameID;references:GameID"`
	Snapshots []GameSnapshot `json:"snapshots,omitempty" gorm:"foreignKey:GameID;references:GameID"`
}
