package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/audit"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/auth"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/chat"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/config"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/hub"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/presence"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/log"
)

// WSHandler owns the websocket surface: upgrade, the auth-first-frame
// handshake, and frame dispatch into the chat pipeline.
type WSHandler struct {
	hub      *hub.Hub
	gate     *auth.Gate
	tracker  *presence.Tracker
	chat     chat.Service
	emitter  *audit.Emitter
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
}

func NewWSHandler(h *hub.Hub, gate *auth.Gate, tracker *presence.Tracker, chatSvc chat.Service, emitter *audit.Emitter, cfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:     h,
		gate:    gate,
		tracker: tracker,
		chat:    chatSvc,
		emitter: emitter,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle upgrades the connection and runs the read/write pumps. The
// first frame must be an auth frame carrying the bearer credential in
// its body; the connection is dropped if none arrives within the auth
// window.
func (h *WSHandler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.cfg)
	h.hub.Register(client)

	authWait := h.cfg.AuthWait
	if authWait <= 0 {
		authWait = 10 * time.Second
	}
	authTimer := time.AfterFunc(authWait, func() {
		if client.UserID() == "" {
			client.SendMessage(domain.NewErrorFrame(domain.ErrCodeUnauthenticated, "authentication timeout"))
			conn.Close()
		}
	})

	go client.WritePump()
	go func() {
		defer authTimer.Stop()
		client.ReadPump(h.handleFrame)
	}()
}

func (h *WSHandler) handleFrame(client *hub.Client, raw []byte) {
	var base domain.BaseFrame
	if err := json.Unmarshal(raw, &base); err != nil {
		client.SendMessage(domain.NewErrorFrame(domain.ErrCodeBadRequest, "malformed frame"))
		return
	}

	if client.UserID() == "" {
		if base.Type != domain.MsgTypeAuth {
			client.SendMessage(domain.NewErrorFrame(domain.ErrCodeUnauthenticated, "first frame must be auth"))
			client.Conn.Close()
			return
		}
		h.handleAuth(client, raw)
		return
	}

	// Any frame from an authenticated client is proof of liveness.
	h.tracker.Heartbeat(client.SessionID)

	switch base.Type {
	case domain.MsgTypeAuth:
		client.SendMessage(domain.NewErrorFrame(domain.ErrCodeBadRequest, "already authenticated"))
	case domain.MsgTypeHeartbeat:
		// Handled above.
	case domain.MsgTypePostMessage:
		h.handlePostMessage(client, raw)
	case domain.MsgTypeEditMessage:
		h.handleEditMessage(client, raw)
	case domain.MsgTypeDeleteMessage:
		h.handleDeleteMessage(client, raw)
	default:
		client.SendMessage(domain.NewErrorFrame(domain.ErrCodeBadRequest, "unknown frame type"))
	}
}

func (h *WSHandler) handleAuth(client *hub.Client, raw []byte) {
	var frame domain.AuthFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		client.SendMessage(domain.NewErrorFrame(domain.ErrCodeBadRequest, "malformed auth frame"))
		return
	}

	identity, err := h.gate.Authenticate(frame.Token)
	if err != nil {
		client.SendMessage(&domain.AuthResultFrame{
			Type:    domain.MsgTypeAuthResult,
			Success: false,
			Message: err.Error(),
		})
		h.emitter.Emit(audit.Event{
			Action:     audit.ActionAuthFailed,
			EntityType: audit.EntitySession,
			Message:    err.Error(),
		})
		client.Conn.Close()
		return
	}

	ctx := context.Background()
	session := h.tracker.RegisterSession(ctx, identity)
	client.Authenticate(identity, session.ID)
	client.OnClose(func() {
		h.tracker.UnregisterSession(context.Background(), session.ID)
		h.emitter.Emit(audit.Event{
			Action:     audit.ActionDisconnect,
			ActorID:    identity.UserID,
			ActorRole:  identity.Role,
			EntityType: audit.EntitySession,
			EntityID:   session.ID,
		})
	})
	client.OnPong(func() {
		h.tracker.Heartbeat(session.ID)
	})
	h.hub.Bind(client)

	client.SendMessage(&domain.AuthResultFrame{
		Type:      domain.MsgTypeAuthResult,
		Success:   true,
		SessionID: session.ID,
		UserID:    identity.UserID,
	})
	h.emitter.Emit(audit.Event{
		Action:     audit.ActionAuth,
		ActorID:    identity.UserID,
		ActorRole:  identity.Role,
		EntityType: audit.EntitySession,
		EntityID:   session.ID,
	})

	l := log.L()
	l.Info().
		Str(log.FieldUserID, identity.UserID).
		Str(log.FieldSessionID, session.ID).
		Msg("websocket session authenticated")
}

func (h *WSHandler) handlePostMessage(client *hub.Client, raw []byte) {
	var frame domain.PostMessageFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		client.SendMessage(domain.NewErrorFrame(domain.ErrCodeBadRequest, "malformed frame"))
		return
	}

	ctx := auth.WithIdentity(context.Background(), *client.Identity)
	if _, err := h.chat.PostMessage(ctx, *client.Identity, frame.RoomID, frame.Content); err != nil {
		client.SendMessage(chatErrorFrame(err))
	}
}

func (h *WSHandler) handleEditMessage(client *hub.Client, raw []byte) {
	var frame domain.EditMessageFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		client.SendMessage(domain.NewErrorFrame(domain.ErrCodeBadRequest, "malformed frame"))
		return
	}

	ctx := auth.WithIdentity(context.Background(), *client.Identity)
	if _, err := h.chat.EditMessage(ctx, *client.Identity, frame.RoomID, frame.MessageID); err != nil {
		client.SendMessage(chatErrorFrame(err))
	}
}

func (h *WSHandler) handleDeleteMessage(client *hub.Client, raw []byte) {
	var frame domain.DeleteMessageFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		client.SendMessage(domain.NewErrorFrame(domain.ErrCodeBadRequest, "malformed frame"))
		return
	}

	ctx := auth.WithIdentity(context.Background(), *client.Identity)
	if _, err := h.chat.DeleteMessage(ctx, *client.Identity, frame.RoomID, frame.MessageID); err != nil {
		client.SendMessage(chatErrorFrame(err))
	}
}

// chatErrorFrame maps pipeline errors to client-facing error frames.
func chatErrorFrame(err error) *domain.ErrorFrame {
	switch {
	case errors.Is(err, chat.ErrRoomNotFound):
		return domain.NewErrorFrame(domain.ErrCodeRoomNotFound, err.Error())
	case errors.Is(err, chat.ErrNotAMember), errors.Is(err, chat.ErrNotSender):
		return domain.NewErrorFrame(domain.ErrCodeNotAMember, err.Error())
	case errors.Is(err, chat.ErrEmptyContent), errors.Is(err, chat.ErrContentTooLong), errors.Is(err, chat.ErrMessageNotFound):
		return domain.NewErrorFrame(domain.ErrCodeBadRequest, err.Error())
	default:
		return domain.NewErrorFrame(domain.ErrCodeInternalError, "internal error")
	}
}
