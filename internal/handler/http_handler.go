package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/audit"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/auth"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/chat"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/moderation"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/presence"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/response"
)

// HTTPHandler owns the REST surface: rooms and history for trading
// parties, the moderation endpoints for staff, and health.
type HTTPHandler struct {
	chat       chat.Service
	moderation moderation.Service
	tracker    *presence.Tracker
	store      presence.Store
	gate       *auth.Gate
	emitter    *audit.Emitter
}

func NewHTTPHandler(chatSvc chat.Service, mod moderation.Service, tracker *presence.Tracker, store presence.Store, gate *auth.Gate, emitter *audit.Emitter) *HTTPHandler {
	return &HTTPHandler{
		chat:       chatSvc,
		moderation: mod,
		tracker:    tracker,
		store:      store,
		gate:       gate,
		emitter:    emitter,
	}
}

// RegisterRoutes wires all REST routes with their descriptors.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine, ws *WSHandler) {
	r.GET("/health", h.Health)
	r.GET("/ws", ws.Handle)

	api := r.Group("/api/v1")

	mw := func(desc auth.RouteDescriptor) gin.HandlerFunc {
		return h.gate.Middleware(h.emitter, desc)
	}

	api.POST("/rooms",
		mw(auth.Authenticated(audit.ActionCreateRoom, audit.EntityRoom)), h.CreateRoom)
	api.GET("/rooms/:id/messages",
		mw(auth.Authenticated("", "")), h.RoomMessages)
	api.POST("/reports",
		mw(auth.Authenticated(audit.ActionFileReport, audit.EntityAlert)), h.FileReport)

	api.GET("/alerts",
		mw(auth.StaffOnly(audit.ActionListAlerts, audit.EntityAlert)), h.ListAlerts)
	api.PATCH("/alerts/:id/status",
		mw(auth.StaffOnly(audit.ActionUpdateStatus, audit.EntityAlert)), h.UpdateAlertStatus)
	api.PATCH("/alerts/:id/assign",
		mw(auth.StaffOnly(audit.ActionAssign, audit.EntityAlert)), h.AssignAlert)
	api.GET("/staff/presence",
		mw(auth.StaffOnly("", "")), h.StaffPresence)
	api.GET("/staff/presence/:id",
		mw(auth.StaffOnly("", "")), h.SubjectPresence)
}

func (h *HTTPHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

func (h *HTTPHandler) CreateRoom(c *gin.Context) {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "missing identity")
		return
	}

	var req domain.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	room, err := h.chat.CreateRoom(c.Request.Context(), identity, req)
	if err != nil {
		if errors.Is(err, chat.ErrInvalidRoom) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "failed to create room")
		return
	}
	response.Created(c, room)
}

func (h *HTTPHandler) RoomMessages(c *gin.Context) {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "missing identity")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	var before time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "invalid before timestamp")
			return
		}
		before = t
	}

	messages, err := h.chat.RoomHistory(c.Request.Context(), identity, c.Param("id"), limit, before)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrRoomNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, chat.ErrNotAMember):
			response.Forbidden(c, err.Error())
		default:
			response.InternalError(c, "failed to load history")
		}
		return
	}
	response.Success(c, messages)
}

func (h *HTTPHandler) FileReport(c *gin.Context) {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "missing identity")
		return
	}

	var req domain.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	alert, err := h.moderation.CreateReport(c.Request.Context(), identity, req)
	if err != nil {
		response.InternalError(c, "failed to file report")
		return
	}
	response.Created(c, alert)
}

func (h *HTTPHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.moderation.ListAlerts(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list alerts")
		return
	}
	response.Success(c, alerts)
}

func (h *HTTPHandler) UpdateAlertStatus(c *gin.Context) {
	var req domain.UpdateAlertStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	alert, err := h.moderation.UpdateStatus(c.Request.Context(), c.Param("id"), domain.AlertStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, moderation.ErrAlertNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, moderation.ErrInvalidStatus):
			response.BadRequest(c, err.Error())
		case errors.Is(err, moderation.ErrInvalidTransition), errors.Is(err, moderation.ErrStatusConflict):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, "failed to update alert")
		}
		return
	}
	response.Success(c, alert)
}

func (h *HTTPHandler) AssignAlert(c *gin.Context) {
	var req domain.AssignResponsibleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	alert, err := h.moderation.AssignResponsible(c.Request.Context(), c.Param("id"), req.ResponsibleID)
	if err != nil {
		if errors.Is(err, moderation.ErrAlertNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "failed to assign alert")
		return
	}
	response.Success(c, alert)
}

// StaffPresence returns the live presence snapshot for dashboards.
func (h *HTTPHandler) StaffPresence(c *gin.Context) {
	response.Success(c, h.tracker.Snapshot())
}

// SubjectPresence answers for one subject from the presence store, so a
// multi-instance deployment sees sessions held by other instances.
func (h *HTTPHandler) SubjectPresence(c *gin.Context) {
	subjectID := c.Param("id")
	online, err := h.store.IsOnline(c.Request.Context(), subjectID)
	if err != nil {
		response.ServiceUnavailable(c, "presence store unavailable")
		return
	}
	response.Success(c, gin.H{"subject_id": subjectID, "online": online})
}
