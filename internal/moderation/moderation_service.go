package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/repository"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/log"
)

type moderationService struct {
	alertRepo repository.AlertRepository
}

// NewService creates the moderation coordinator.
func NewService(alertRepo repository.AlertRepository) Service {
	return &moderationService{
		alertRepo: alertRepo,
	}
}

// counterpartOf picks the reporter for a screened message: the other
// trading party when the sender is the buyer or seller, otherwise the
// system reporter.
func counterpartOf(room *domain.ChatRoom, senderID string) string {
	switch senderID {
	case room.BuyerID:
		return room.SellerID
	case room.SellerID:
		return room.BuyerID
	}
	return domain.ReporterSystem
}

func (s *moderationService) CreateAlertFromMessage(ctx context.Context, room *domain.ChatRoom, msg *domain.Message, matchedTerm string) (*domain.MonitoringAlert, error) {
	now := time.Now().UTC()
	alert := &domain.MonitoringAlert{
		ID:                uuid.New().String(),
		RoomID:            &room.ID,
		MessageID:         &msg.ID,
		ReporterID:        counterpartOf(room, msg.SenderID),
		ProblematicUserID: msg.SenderID,
		Reason:            fmt.Sprintf("message matched prohibited term %q", matchedTerm),
		Status:            domain.AlertStatusOpen,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.alertRepo.Create(ctx, alert); err != nil {
		return nil, err
	}

	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldAlertID, alert.ID).
		Str(log.FieldRoomID, room.ID).
		Str(log.FieldMessageID, msg.ID).
		Msg("alert raised from flagged message")
	return alert, nil
}

func (s *moderationService) CreateReport(ctx context.Context, reporter domain.Identity, req domain.ReportRequest) (*domain.MonitoringAlert, error) {
	now := time.Now().UTC()
	alert := &domain.MonitoringAlert{
		ID:                uuid.New().String(),
		ReporterID:        reporter.UserID,
		ProblematicUserID: req.ProblematicUserID,
		Reason:            req.Reason,
		Status:            domain.AlertStatusOpen,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.alertRepo.Create(ctx, alert); err != nil {
		return nil, err
	}

	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldAlertID, alert.ID).
		Str(log.FieldUserID, reporter.UserID).
		Msg("report filed")
	return alert, nil
}

func (s *moderationService) ListAlerts(ctx context.Context) ([]domain.MonitoringAlert, error) {
	return s.alertRepo.List(ctx)
}

func (s *moderationService) GetAlert(ctx context.Context, id string) (*domain.MonitoringAlert, error) {
	alert, err := s.alertRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAlertNotFound
	}
	return alert, err
}

func (s *moderationService) AssignResponsible(ctx context.Context, alertID string, responsibleID *string) (*domain.MonitoringAlert, error) {
	// The repository commits the alert write and the room mirror in one
	// transaction; two racing assigns serialize there, so the pair
	// always names a single winner.
	alert, err := s.alertRepo.AssignResponsible(ctx, alertID, responsibleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}

	l := log.Ctx(ctx)
	ev := l.Info().Str(log.FieldAlertID, alertID)
	if responsibleID != nil {
		ev = ev.Str("responsible_id", *responsibleID)
	}
	ev.Msg("alert assignment updated")
	return alert, nil
}

func (s *moderationService) UpdateStatus(ctx context.Context, alertID string, next domain.AlertStatus) (*domain.MonitoringAlert, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	alert, err := s.alertRepo.GetByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}

	if !alert.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, alert.Status, next)
	}

	if err := s.alertRepo.UpdateStatusFrom(ctx, alertID, alert.Status, next); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrStatusConflict
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}

	alert.Status = next
	alert.UpdatedAt = time.Now().UTC()

	l := log.Ctx(ctx)
	l.Info().Str(log.FieldAlertID, alertID).Str("status", string(next)).Msg("alert status updated")
	return alert, nil
}
