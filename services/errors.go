package services

import (
	"errors"
	"fmt"

	"scoresync/models"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNotGameOwner = errors.New("not authorized to overwrite this game")
	ErrGameIDInUse  = errors.New("game id already in use")
)

// VersionConflictError is the expected outcome of concurrent edits, not a
// fault. It carries everything the client needs to rebase and retry.
type VersionConflictError struct {
	CurrentVersion int64
	BaseVersion    int64
	Snapshot       models.GameState
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict: submitted base version %d, server is at %d", e.BaseVersion, e.CurrentVersion)
}
