package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/log"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create persists a new message.
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	l := log.Ctx(ctx)

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	model := domain.MessageToModel(msg)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoomID, msg.RoomID).Msg("failed to create message in db")
		return result.Error
	}

	msg.CreatedAt = model.CreatedAt
	return nil
}

// GetByID retrieves a message by ID.
func (r *GormMessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var model domain.MessageModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// ListByRoom returns room messages in persisted order, oldest first.
func (r *GormMessageRepository) ListByRoom(ctx context.Context, roomID string, limit int, before time.Time) ([]domain.Message, error) {
	l := log.Ctx(ctx)

	if limit < 1 || limit > 500 {
		limit = 100
	}

	query := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("room_id = ?", roomID)
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}

	var models []domain.MessageModel
	if err := query.Order("created_at ASC").Limit(limit).Find(&models).Error; err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to list room messages")
		return nil, err
	}

	messages := make([]domain.Message, len(models))
	for i, model := range models {
		messages[i] = *model.ToDomain()
	}
	return messages, nil
}

// SetEdited marks a message as edited.
func (r *GormMessageRepository) SetEdited(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "edited")
}

// SetDeleted soft-deletes a message. Content is retained for the
// moderation audit trail.
func (r *GormMessageRepository) SetDeleted(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "deleted")
}

func (r *GormMessageRepository) setFlag(ctx context.Context, id, column string) error {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("id = ?", id).
		Update(column, true)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldMessageID, id).Str("flag", column).Msg("failed to set message flag")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
