package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"scoresync/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// A snapshot is cut after every snapshotEventInterval-th applied event.
	snapshotEventInterval = 50
	// Snapshots are disposable; anything older than this is deleted.
	snapshotRetention = 30 * 24 * time.Hour
	// Cap on events returned by a single pull.
	pullEventLimit = 1000
)

// SyncService reconciles client event batches against the server-held,
// versioned history of a game. Writes to the same game are serialized behind
// a per-game mutex so version assignment is single-writer; the unique index
// on (game_id, server_version) is the storage-level backstop.
type SyncService struct {
	db     *gorm.DB
	mirror *MirrorPublisher
	locks  sync.Map // game id -> *sync.Mutex
}

func NewSyncService(db *gorm.DB, mirror *MirrorPublisher) *SyncService {
	return &SyncService{
		db:     db,
		mirror: mirror,
	}
}

type IncomingEvent struct {
	ID              string            `json:"id" binding:"required"`
	ActionType      models.ActionType `json:"actionType" binding:"required"`
	Payload         models.JSONMap    `json:"payload"`
	ClientTimestamp int64             `json:"clientTimestamp"`
	ClientSequence  int64             `json:"clientSequenceNumber"`
	AuthorID        string            `json:"authorId"`
}

type PushEventsRequest struct {
	ClientID    string          `json:"clientId"`
	BaseVersion *int64          `json:"baseVersion" binding:"required"`
	Events      []IncomingEvent `json:"events" binding:"required,min=1,dive"`
}

type ForcePushRequest struct {
	Snapshot     *models.GameState `json:"snapshot" binding:"required"`
	LocalVersion int64             `json:"localVersion"`
	Force        bool              `json:"force"`
	UserID       uint              `json:"userId"`
}

type AppliedEvent struct {
	ID            string `json:"id"`
	ServerVersion int64  `json:"serverVersion"`
	Duplicate     bool   `json:"duplicate"`
}

type PushEventsResult struct {
	ServerVersion   int64          `json:"serverVersion"`
	AppliedEvents   []AppliedEvent `json:"appliedEvents"`
	EventsProcessed int            `json:"eventsProcessed"`
	NewEvents       int            `json:"newEvents"`
}

// PushEvents applies a client batch against the game's authoritative version.
// The whole batch is accepted or rejected at the version check; within an
// accepted batch, duplicates are reported as no-ops and individual persist
// failures are skipped without aborting the rest.
func (s *SyncService) PushEvents(gameID string, req *PushEventsRequest) (*PushEventsResult, error) {
	game, err := s.findGame(gameID)
	if err != nil {
		return nil, err
	}

	mu := s.lockGame(gameID)
	defer mu.Unlock()

	current, err := s.currentVersion(gameID)
	if err != nil {
		return nil, err
	}

	if *req.BaseVersion != current {
		return nil, &VersionConflictError{
			CurrentVersion: current,
			BaseVersion:    *req.BaseVersion,
			Snapshot:       s.latestKnownState(game),
		}
	}

	applied := make([]AppliedEvent, 0, len(req.Events))
	newEvents := 0

	for _, in := range req.Events {
		var existing models.GameEvent
		if err := s.db.Where("game_id = ? AND event_id = ?", gameID, in.ID).First(&existing).Error; err == nil {
			// Retry of an already-accepted event; report the version it got
			applied = append(applied, AppliedEvent{ID: in.ID, ServerVersion: existing.ServerVersion, Duplicate: true})
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to check event %s for game %s: %v", in.ID, gameID, err)
			continue
		}

		event := models.GameEvent{
			EventID:         in.ID,
			GameID:          gameID,
			ActionType:      in.ActionType,
			Payload:         in.Payload,
			ClientTimestamp: in.ClientTimestamp,
			ClientSequence:  in.ClientSequence,
			AuthorID:        in.AuthorID,
			OriginClientID:  req.ClientID,
			ServerVersion:   current + 1,
		}

		if err := s.db.Create(&event).Error; err != nil {
			// Skip and keep going; the version counter only advances on success
			log.Printf("Failed to persist event %s for game %s: %v", in.ID, gameID, err)
			continue
		}

		current++
		newEvents++
		applied = append(applied, AppliedEvent{ID: in.ID, ServerVersion: current, Duplicate: false})
	}

	if newEvents > 0 {
		s.rematerialize(game, current)
	}

	return &PushEventsResult{
		ServerVersion:   current,
		AppliedEvents:   applied,
		EventsProcessed: len(req.Events),
		NewEvents:       newEvents,
	}, nil
}

// ForcePush overwrites a game's state unconditionally. The override is
// recorded as a synthetic STATE_RESTORE event so the log still explains the
// state, and a snapshot is cut immediately at the new version.
func (s *SyncService) ForcePush(gameID string, userID uint, req *ForcePushRequest) (int64, error) {
	game, err := s.findGame(gameID)
	if err != nil {
		return 0, err
	}

	// Anonymous games (owner 0) have no owner to protect
	if game.OwnerID != 0 && game.OwnerID != userID {
		return 0, ErrNotGameOwner
	}

	mu := s.lockGame(gameID)
	defer mu.Unlock()

	current, err := s.currentVersion(gameID)
	if err != nil {
		return 0, err
	}
	next := current + 1

	statePayload, err := toJSONMap(req.Snapshot)
	if err != nil {
		return 0, err
	}

	authorID := ""
	if userID != 0 {
		authorID = strconv.FormatUint(uint64(userID), 10)
	}

	event := models.GameEvent{
		EventID:        uuid.NewString(),
		GameID:         gameID,
		ActionType:     models.ActionStateRestore,
		Payload:        models.JSONMap{"state": statePayload},
		AuthorID:       authorID,
		OriginClientID: "force-push",
		ServerVersion:  next,
	}

	if err := s.db.Create(&event).Error; err != nil {
		return 0, err
	}

	game.State = *req.Snapshot
	game.ServerVersion = next
	if err := s.db.Save(game).Error; err != nil {
		log.Printf("Failed to update materialized state for game %s after force-push: %v", gameID, err)
	}

	var count int64
	if err := s.db.Model(&models.GameEvent{}).Where("game_id = ?", gameID).Count(&count).Error; err != nil {
		log.Printf("Failed to count events for game %s: %v", gameID, err)
	}
	s.writeSnapshot(gameID, next, *req.Snapshot, count)

	if s.mirror != nil {
		go s.mirror.Publish(gameID, next, *req.Snapshot)
	}

	return next, nil
}

// EventsSince returns events with a server version strictly greater than
// since, ascending, capped at pullEventLimit per call.
func (s *SyncService) EventsSince(gameID string, since int64) ([]models.GameEvent, error) {
	if _, err := s.findGame(gameID); err != nil {
		return nil, err
	}

	var events []models.GameEvent
	err := s.db.Where("game_id = ? AND server_version > ?", gameID, since).
		Order("server_version ASC").
		Limit(pullEventLimit).
		Find(&events).Error
	return events, err
}

// LatestState returns the game's materialized state and its version.
func (s *SyncService) LatestState(gameID string) (*models.Game, error) {
	return s.findGame(gameID)
}

// Reconstruct materializes the game state at a target version: latest
// snapshot at or below the target, plus a fold of the events after it. With
// no snapshot it replays the full log from version 0, so snapshots are never
// required for correctness.
func (s *SyncService) Reconstruct(gameID string, target int64) (models.GameState, error) {
	state := models.GameState{}
	baseVersion := int64(0)

	var snap models.GameSnapshot
	err := s.db.Where("game_id = ? AND server_version <= ?", gameID, target).
		Order("server_version DESC").
		First(&snap).Error
	if err == nil {
		state = snap.State
		baseVersion = snap.ServerVersion
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return state, err
	}

	var events []models.GameEvent
	if err := s.db.Where("game_id = ? AND server_version > ? AND server_version <= ?", gameID, baseVersion, target).
		Order("server_version ASC").
		Find(&events).Error; err != nil {
		return state, err
	}

	return ReplayEvents(state, events), nil
}

// CleanupExpiredSnapshots deletes snapshots past the retention horizon and
// returns how many were removed.
func (s *SyncService) CleanupExpiredSnapshots() (int64, error) {
	cutoff := time.Now().Add(-snapshotRetention)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.GameSnapshot{})
	return result.RowsAffected, result.Error
}

// RunSnapshotJanitor periodically enforces snapshot retention. Intended to
// run as a goroutine for the life of the process.
func (s *SyncService) RunSnapshotJanitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		deleted, err := s.CleanupExpiredSnapshots()
		if err != nil {
			log.Printf("Snapshot cleanup failed: %v", err)
			continue
		}
		if deleted > 0 {
			log.Printf("Snapshot cleanup removed %d expired snapshots", deleted)
		}
	}
}

func (s *SyncService) findGame(gameID string) (*models.Game, error) {
	var game models.Game
	if err := s.db.Where("game_id = ?", gameID).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (s *SyncService) lockGame(gameID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(gameID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu
}

// currentVersion is the server version of the game's most recent event, or 0
// if none exist. The event log is authoritative; the Game row only caches it.
func (s *SyncService) currentVersion(gameID string) (int64, error) {
	var version int64
	err := s.db.Model(&models.GameEvent{}).
		Where("game_id = ?", gameID).
		Select("COALESCE(MAX(server_version), 0)").
		Scan(&version).Error
	return version, err
}

// latestKnownState is what a conflicting client rebases onto: the most recent
// snapshot's state, or the materialized state when no snapshot exists.
func (s *SyncService) latestKnownState(game *models.Game) models.GameState {
	var snap models.GameSnapshot
	err := s.db.Where("game_id = ?", game.GameID).
		Order("server_version DESC").
		First(&snap).Error
	if err == nil {
		return snap.State
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to load latest snapshot for game %s: %v", game.GameID, err)
	}
	return game.State
}

// rematerialize recomputes and caches the game state after an accepted batch,
// then lets the snapshot manager and mirror run. All three writes are derived
// and re-computable, so their failures are logged and never fail the push.
func (s *SyncService) rematerialize(game *models.Game, version int64) {
	state, err := s.Reconstruct(game.GameID, version)
	if err != nil {
		log.Printf("Failed to rebuild state for game %s at version %d: %v", game.GameID, version, err)
		return
	}

	game.State = state
	game.ServerVersion = version
	if err := s.db.Save(game).Error; err != nil {
		log.Printf("Failed to update materialized state for game %s: %v", game.GameID, err)
	}

	s.maybeSnapshot(game.GameID, version, state)

	if s.mirror != nil {
		go s.mirror.Publish(game.GameID, version, state)
	}
}

// maybeSnapshot cuts a checkpoint after every 50th persisted event.
func (s *SyncService) maybeSnapshot(gameID string, version int64, state models.GameState) {
	var count int64
	if err := s.db.Model(&models.GameEvent{}).Where("game_id = ?", gameID).Count(&count).Error; err != nil {
		log.Printf("Failed to count events for game %s: %v", gameID, err)
		return
	}

	if count == 0 || count%snapshotEventInterval != 0 {
		return
	}

	s.writeSnapshot(gameID, version, state, count)
}

func (s *SyncService) writeSnapshot(gameID string, version int64, state models.GameState, eventCount int64) {
	snapshot := models.GameSnapshot{
		GameID:        gameID,
		ServerVersion: version,
		State:         state,
		EventCount:    eventCount,
		Checksum:      stateChecksum(state),
	}

	// A missing snapshot only costs replay time, never correctness
	if err := s.db.Create(&snapshot).Error; err != nil {
		log.Printf("Failed to create snapshot for game %s at version %d: %v", gameID, version, err)
	}
}

func stateChecksum(state models.GameState) string {
	data, err := json.Marshal(state)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func toJSONMap(v interface{}) (models.JSONMap, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m models.JSONMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
