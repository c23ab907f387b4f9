package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"scoresync/services"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncService *services.SyncService
}

func NewSyncHandler(syncService *services.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// PushEvents handles POST /api/games/:gameId/sync/events
func (h *SyncHandler) PushEvents(c *gin.Context) {
	gameID := c.Param("gameId")

	var req services.PushEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.syncService.PushEvents(gameID, &req)
	if err != nil {
		h.handleSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"serverVersion":   result.ServerVersion,
		"appliedEvents":   result.AppliedEvents,
		"eventsProcessed": result.EventsProcessed,
		"newEvents":       result.NewEvents,
	})
}

// ForcePush handles POST /api/games/:gameId/sync/snapshot
func (h *SyncHandler) ForcePush(c *gin.Context) {
	gameID := c.Param("gameId")

	var req services.ForcePushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Prefer the authenticated identity; fall back to the client-declared
	// user id for sessions that synced before logging in
	userID := req.UserID
	if v, exists := c.Get("user_id"); exists {
		userID = v.(uint)
	}

	serverVersion, err := h.syncService.ForcePush(gameID, userID, &req)
	if err != nil {
		h.handleSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"serverVersion": serverVersion,
		"message":       "Snapshot force-pushed",
	})
}

// PullEvents handles GET /api/games/:gameId/sync/events?since=N
func (h *SyncHandler) PullEvents(c *gin.Context) {
	gameID := c.Param("gameId")

	since, err := strconv.ParseInt(c.DefaultQuery("since", "0"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid since parameter"})
		return
	}

	events, err := h.syncService.EventsSince(gameID, since)
	if err != nil {
		h.handleSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

// PullSnapshot handles GET /api/games/:gameId/sync/snapshot
func (h *SyncHandler) PullSnapshot(c *gin.Context) {
	gameID := c.Param("gameId")

	game, err := h.syncService.LatestState(gameID)
	if err != nil {
		h.handleSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot":      game.State,
		"serverVersion": game.ServerVersion,
		"gameId":        game.GameID,
	})
}

func (h *SyncHandler) handleSyncError(c *gin.Context, err error) {
	var conflict *services.VersionConflictError

	switch {
	case errors.Is(err, services.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
	case errors.As(err, &conflict):
		// The client is expected to rebase onto the returned snapshot and retry
		c.JSON(http.StatusConflict, gin.H{
			"error":          "Version conflict",
			"currentVersion": conflict.CurrentVersion,
			"baseVersion":    conflict.BaseVersion,
			"snapshot":       conflict.Snapshot,
			"serverVersion":  conflict.CurrentVersion,
		})
	case errors.Is(err, services.ErrNotGameOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the game owner can force-push"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": err.Error()})
	}
}
