package domain

import "time"

// AlertStatus is the lifecycle state of a monitoring alert.
type AlertStatus string

const (
	AlertStatusOpen      AlertStatus = "open"
	AlertStatusInReview  AlertStatus = "in_review"
	AlertStatusResolved  AlertStatus = "resolved"
	AlertStatusDismissed AlertStatus = "dismissed"
)

// Valid reports whether s is a known alert status.
func (s AlertStatus) Valid() bool {
	switch s {
	case AlertStatusOpen, AlertStatusInReview, AlertStatusResolved, AlertStatusDismissed:
		return true
	}
	return false
}

// CanTransitionTo enforces the alert state machine:
// open -> in_review | dismissed, in_review -> open | resolved | dismissed.
// Resolved and dismissed are terminal so the audit trail stays coherent.
func (s AlertStatus) CanTransitionTo(next AlertStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case AlertStatusOpen:
		return next == AlertStatusInReview || next == AlertStatusDismissed
	case AlertStatusInReview:
		return next == AlertStatusOpen || next == AlertStatusResolved || next == AlertStatusDismissed
	}
	return false
}

// ReporterSystem is used as the reporter when an alert is raised by the
// content screen rather than a user.
const ReporterSystem = "system"

// MonitoringAlert is a moderation ticket created from a flagged message or
// a user report. Alerts are never hard-deleted.
type MonitoringAlert struct {
	ID                string      `json:"id"`
	RoomID            *string     `json:"room_id,omitempty"`
	MessageID         *string     `json:"message_id,omitempty"`
	ReporterID        string      `json:"reporter_id"`
	ProblematicUserID string      `json:"problematic_user_id"`
	Reason            string      `json:"reason,omitempty"`
	Status            AlertStatus `json:"status"`
	ResponsibleID     *string     `json:"responsible_id,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// UpdateAlertStatusRequest is the PATCH body for a status change.
type UpdateAlertStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignResponsibleRequest is the PATCH body for an assignment. A null
// responsible id clears the assignment.
type AssignResponsibleRequest struct {
	ResponsibleID *string `json:"responsible_id"`
}

// ReportRequest is filed by a user against another subject.
type ReportRequest struct {
	ProblematicUserID string `json:"problematic_user_id" binding:"required"`
	Reason            string `json:"reason" binding:"required"`
}
