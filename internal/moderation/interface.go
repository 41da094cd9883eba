package moderation

import (
	"context"
	"errors"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
)

var (
	// ErrAlertNotFound is returned when the alert does not exist.
	ErrAlertNotFound = errors.New("alert not found")
	// ErrInvalidStatus is returned when the requested status is unknown.
	ErrInvalidStatus = errors.New("invalid alert status")
	// ErrInvalidTransition is returned when the requested status change
	// is not allowed from the alert's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrStatusConflict is returned when a transition loses against a
	// concurrent update; the caller should re-read and retry.
	ErrStatusConflict = errors.New("alert changed concurrently")
)

// Service coordinates the moderation workflow: alerts raised by the
// content screen or by user reports, assignment of a responsible
// moderator, and the alert status lifecycle.
type Service interface {
	// CreateAlertFromMessage raises an alert for a screened message. The
	// reporter is the sender's trading counterpart, or "system" when the
	// sender has no counterpart in the room.
	CreateAlertFromMessage(ctx context.Context, room *domain.ChatRoom, msg *domain.Message, matchedTerm string) (*domain.MonitoringAlert, error)
	// CreateReport files a user-initiated report as an open alert.
	CreateReport(ctx context.Context, reporter domain.Identity, req domain.ReportRequest) (*domain.MonitoringAlert, error)
	// ListAlerts returns all alerts, newest first.
	ListAlerts(ctx context.Context) ([]domain.MonitoringAlert, error)
	// GetAlert returns one alert by id.
	GetAlert(ctx context.Context, id string) (*domain.MonitoringAlert, error)
	// AssignResponsible sets or clears the alert's responsible moderator
	// and mirrors the assignment onto the alert's room, if any.
	// Concurrent assignments are last-writer-wins.
	AssignResponsible(ctx context.Context, alertID string, responsibleID *string) (*domain.MonitoringAlert, error)
	// UpdateStatus transitions the alert through its lifecycle.
	UpdateStatus(ctx context.Context, alertID string, next domain.AlertStatus) (*domain.MonitoringAlert, error)
}
