package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"scoresync/models"

	"github.com/redis/go-redis/v9"
)

// MirrorPublisher mirrors the freshly materialized state of a game into a
// secondary store after every accepted write. The mirror is strictly
// best-effort: failures are logged and never reach the sync path.
type MirrorPublisher struct {
	redis *redis.Client
}

func NewMirrorPublisher(client *redis.Client) *MirrorPublisher {
	if client == nil {
		return nil
	}
	return &MirrorPublisher{redis: client}
}

type mirrorDocument struct {
	GameID        string           `json:"game_id"`
	ServerVersion int64            `json:"server_version"`
	State         models.GameState `json:"state"`
	MirroredAt    time.Time        `json:"mirrored_at"`
}

func (m *MirrorPublisher) Publish(gameID string, serverVersion int64, state models.GameState) {
	doc := mirrorDocument{
		GameID:        gameID,
		ServerVersion: serverVersion,
		State:         state,
		MirroredAt:    time.Now(),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		log.Printf("Failed to marshal mirror document for game %s: %v", gameID, err)
		return
	}

	if err := m.redis.Set(context.Background(), "mirror:game:"+gameID, data, snapshotRetention).Err(); err != nil {
		log.Printf("Mirror write failed for game %s at version %d: %v", gameID, serverVersion, err)
	}
}
