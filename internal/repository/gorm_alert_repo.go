package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/log"
)

// GormAlertRepository implements AlertRepository using GORM.
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GORM-based alert repository.
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// Create persists a new monitoring alert.
func (r *GormAlertRepository) Create(ctx context.Context, alert *domain.MonitoringAlert) error {
	l := log.Ctx(ctx)

	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.Status == "" {
		alert.Status = domain.AlertStatusOpen
	}

	model := domain.AlertToModel(alert)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to create alert in db")
		return result.Error
	}

	alert.CreatedAt = model.CreatedAt
	alert.UpdatedAt = model.UpdatedAt
	l.Debug().Str(log.FieldAlertID, alert.ID).Msg("alert created in db")
	return nil
}

// GetByID retrieves an alert by ID.
func (r *GormAlertRepository) GetByID(ctx context.Context, id string) (*domain.MonitoringAlert, error) {
	var model domain.AlertModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// List returns all alerts, newest first.
func (r *GormAlertRepository) List(ctx context.Context) ([]domain.MonitoringAlert, error) {
	l := log.Ctx(ctx)

	var models []domain.AlertModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		l.Error().Err(err).Msg("failed to list alerts from db")
		return nil, err
	}

	alerts := make([]domain.MonitoringAlert, len(models))
	for i, model := range models {
		alerts[i] = *model.ToDomain()
	}
	return alerts, nil
}

// AssignResponsible sets the responsible moderator and mirrors it onto
// the alert's room inside one transaction. The alert UPDATE runs first
// and takes the row lock, so concurrent assignments serialize on the
// alert and the pair commits with a single winner. A non-nil
// responsible landing on an open alert advances it to in_review in the
// same statement; a nil responsible leaves status untouched.
func (r *GormAlertRepository) AssignResponsible(ctx context.Context, id string, responsibleID *string) (*domain.MonitoringAlert, error) {
	l := log.Ctx(ctx)

	var alert *domain.MonitoringAlert
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"responsible_id": responsibleID,
		}
		if responsibleID != nil {
			updates["status"] = gorm.Expr(
				"CASE WHEN status = ? THEN ? ELSE status END",
				string(domain.AlertStatusOpen), string(domain.AlertStatusInReview),
			)
		}

		result := tx.Model(&domain.AlertModel{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		var model domain.AlertModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			return err
		}
		alert = model.ToDomain()

		if alert.RoomID != nil {
			if err := tx.Model(&domain.RoomModel{}).
				Where("id = ?", *alert.RoomID).
				Update("moderator_id", responsibleID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.Error().Err(err).Str(log.FieldAlertID, id).Msg("failed to assign alert responsible")
		}
		return nil, err
	}
	return alert, nil
}

// UpdateStatusFrom transitions the alert status guarded by the expected
// current status so a concurrent transition cannot be silently overwritten.
func (r *GormAlertRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.AlertStatus) error {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Model(&domain.AlertModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldAlertID, id).Msg("failed to update alert status")
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing alert from a lost guard.
		if _, err := r.GetByID(ctx, id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrStatusConflict
	}
	return nil
}
