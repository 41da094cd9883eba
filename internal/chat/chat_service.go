package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/audit"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/moderation"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/repository"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/screening"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/log"
)

type chatService struct {
	roomRepo   repository.RoomRepository
	msgRepo    repository.MessageRepository
	screener   screening.Screener
	moderation moderation.Service
	notifier   Notifier
	emitter    *audit.Emitter

	// roomLocks serializes the persist-then-fan-out section per room so
	// delivery order matches persisted order.
	mu        sync.Mutex
	roomLocks map[string]*sync.Mutex
}

// NewService creates the chat pipeline.
func NewService(
	roomRepo repository.RoomRepository,
	msgRepo repository.MessageRepository,
	screener screening.Screener,
	mod moderation.Service,
	notifier Notifier,
	emitter *audit.Emitter,
) Service {
	return &chatService{
		roomRepo:   roomRepo,
		msgRepo:    msgRepo,
		screener:   screener,
		moderation: mod,
		notifier:   notifier,
		emitter:    emitter,
		roomLocks:  make(map[string]*sync.Mutex),
	}
}

func (s *chatService) roomLock(roomID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.roomLocks[roomID]
	if !ok {
		l = &sync.Mutex{}
		s.roomLocks[roomID] = l
	}
	return l
}

func (s *chatService) CreateRoom(ctx context.Context, buyer domain.Identity, req domain.CreateRoomRequest) (*domain.ChatRoom, error) {
	if req.SellerID == "" || req.SellerID == buyer.UserID {
		return nil, ErrInvalidRoom
	}

	room := &domain.ChatRoom{
		ID:        uuid.New().String(),
		BuyerID:   buyer.UserID,
		SellerID:  req.SellerID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}

	l := log.Ctx(ctx)
	l.Info().Str(log.FieldRoomID, room.ID).Str(log.FieldUserID, buyer.UserID).Msg("room created")
	return room, nil
}

func (s *chatService) GetRoom(ctx context.Context, id string) (*domain.ChatRoom, error) {
	room, err := s.roomRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

func (s *chatService) PostMessage(ctx context.Context, sender domain.Identity, roomID, content string) (*domain.Message, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsMember(sender.UserID) {
		return nil, ErrNotAMember
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > MaxContentLength {
		return nil, ErrContentTooLong
	}

	msg := &domain.Message{
		ID:         uuid.New().String(),
		RoomID:     room.ID,
		SenderID:   sender.UserID,
		SenderRole: sender.Role,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}

	term, flagged := s.screener.Match(content)
	msg.Flagged = flagged

	lock := s.roomLock(room.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if flagged {
		// A failed alert write must not take the message down with it;
		// the flag on the message itself still stands.
		if _, err := s.moderation.CreateAlertFromMessage(ctx, room, msg, term); err != nil {
			l := log.Ctx(ctx)
			l.Error().Err(err).Str(log.FieldMessageID, msg.ID).Msg("failed to raise alert for flagged message")
		}
		s.emitter.Emit(audit.Event{
			Action:     audit.ActionMessageFlag,
			ActorID:    domain.ReporterSystem,
			EntityType: audit.EntityMessage,
			EntityID:   msg.ID,
			Message:    "content matched denylist",
		})
	}

	if err := s.notifier.NotifyUsers(room.ParticipantIDs(), domain.NewMessageFrame(msg)); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldMessageID, msg.ID).Msg("fan-out failed")
	}

	s.emitter.Emit(audit.Event{
		Action:     audit.ActionPostMessage,
		ActorID:    sender.UserID,
		ActorRole:  sender.Role,
		EntityType: audit.EntityMessage,
		EntityID:   msg.ID,
	})

	return msg, nil
}

// loadOwnMessage fetches a message and checks it belongs to the room and
// the caller sent it.
func (s *chatService) loadOwnMessage(ctx context.Context, sender domain.Identity, roomID, messageID string) (*domain.Message, error) {
	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}

	msg, err := s.msgRepo.GetByID(ctx, messageID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	if msg.RoomID != roomID {
		return nil, ErrMessageNotFound
	}
	if msg.SenderID != sender.UserID {
		return nil, ErrNotSender
	}
	return msg, nil
}

func (s *chatService) EditMessage(ctx context.Context, sender domain.Identity, roomID, messageID string) (*domain.Message, error) {
	msg, err := s.loadOwnMessage(ctx, sender, roomID, messageID)
	if err != nil {
		return nil, err
	}

	if err := s.msgRepo.SetEdited(ctx, messageID); err != nil {
		return nil, err
	}
	msg.Edited = true

	s.notifyEvent(ctx, roomID, domain.MsgTypeMessageEdited, messageID, sender.UserID)
	s.emitter.Emit(audit.Event{
		Action:     audit.ActionEditMessage,
		ActorID:    sender.UserID,
		ActorRole:  sender.Role,
		EntityType: audit.EntityMessage,
		EntityID:   messageID,
	})
	return msg, nil
}

func (s *chatService) DeleteMessage(ctx context.Context, sender domain.Identity, roomID, messageID string) (*domain.Message, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	msg, err := s.msgRepo.GetByID(ctx, messageID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	if msg.RoomID != roomID {
		return nil, ErrMessageNotFound
	}

	// The sender may delete their own message; the room's assigned
	// moderator may delete anyone's.
	isRoomModerator := room.ModeratorID != nil && *room.ModeratorID == sender.UserID
	if msg.SenderID != sender.UserID && !isRoomModerator {
		return nil, ErrNotSender
	}

	if err := s.msgRepo.SetDeleted(ctx, messageID); err != nil {
		return nil, err
	}
	msg.Deleted = true

	s.notifyEvent(ctx, roomID, domain.MsgTypeMessageDeleted, messageID, sender.UserID)
	s.emitter.Emit(audit.Event{
		Action:     audit.ActionDeleteMessage,
		ActorID:    sender.UserID,
		ActorRole:  sender.Role,
		EntityType: audit.EntityMessage,
		EntityID:   messageID,
	})
	return msg, nil
}

func (s *chatService) notifyEvent(ctx context.Context, roomID, frameType, messageID, actorID string) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return
	}
	frame := &domain.MessageEventFrame{
		Type:      frameType,
		MessageID: messageID,
		RoomID:    roomID,
		ActorID:   actorID,
	}
	if err := s.notifier.NotifyUsers(room.ParticipantIDs(), frame); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldMessageID, messageID).Msg("fan-out failed")
	}
}

func (s *chatService) RoomHistory(ctx context.Context, requester domain.Identity, roomID string, limit int, before time.Time) ([]domain.Message, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsMember(requester.UserID) && !requester.IsStaff() {
		return nil, ErrNotAMember
	}

	return s.msgRepo.ListByRoom(ctx, roomID, limit, before)
}
