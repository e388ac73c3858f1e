package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/whisperspace/server/internal/auth"
	"github.com/whisperspace/server/internal/store"
	"github.com/whisperspace/server/internal/utils"
)

// RoomHandlers provides HTTP handlers for room management. These handlers
// own the persistent member set and the empty_at bookkeeping; the realtime
// gateway only subscribes sessions to multicast groups.
type RoomHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(st store.Store, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		store: st,
		log:   logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
	PIN  string `json:"pin" binding:"required,min=4,max=32"`
}

// JoinRoomRequest carries the PIN for a join attempt.
type JoinRoomRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	CreatorID int64  `json:"creatorId"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

// CreateRoom handles room creation.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	pinHash, err := auth.HashSecret(req.PIN)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to hash room pin")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	room := &store.Room{
		Code:      utils.NewRoomCode(),
		Name:      req.Name,
		PINHash:   pinHash,
		CreatorID: userID,
	}
	if err := h.store.CreateRoom(c.Request.Context(), room); err != nil {
		h.log.Error().Err(err).Str("room_name", req.Name).Msg("failed to create room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("room", room.Code).Int64("creator", userID).Msg("room created")
	c.JSON(http.StatusCreated, roomResponse(room))
}

// JoinRoom adds the user to the room's persistent member set.
// POST /api/rooms/:code/join
func (h *RoomHandlers) JoinRoom(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid join room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	code := strings.ToUpper(c.Param("code"))
	room, err := h.store.GetRoomByCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room", code).Msg("failed to look up room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if err := auth.CompareSecret(room.PINHash, req.PIN); err != nil {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "wrong pin"})
		return
	}

	if err := h.store.AddMember(c.Request.Context(), code, userID); err != nil {
		h.log.Error().Err(err).Str("room", code).Int64("user", userID).Msg("failed to add member")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	room.IsActive = true
	room.EmptyAt = nil
	c.JSON(http.StatusOK, roomResponse(room))
}

// LeaveRoom removes the user from the member set; the last member out marks
// the room empty for the reaper.
// POST /api/rooms/:code/leave
func (h *RoomHandlers) LeaveRoom(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	code := strings.ToUpper(c.Param("code"))
	if _, err := h.store.GetRoomByCode(c.Request.Context(), code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room", code).Msg("failed to look up room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	remaining, err := h.store.RemoveMember(c.Request.Context(), code, userID)
	if err != nil {
		h.log.Error().Err(err).Str("room", code).Int64("user", userID).Msg("failed to remove member")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if remaining == 0 {
		h.log.Info().Str("room", code).Msg("room is now empty")
	}
	c.Status(http.StatusNoContent)
}

func roomResponse(room *store.Room) RoomResponse {
	return RoomResponse{
		Code:      room.Code,
		Name:      room.Name,
		CreatorID: room.CreatorID,
		IsActive:  room.IsActive,
		CreatedAt: room.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
