package domain

import (
	"time"
)

// RoomModel is the GORM model for the chat_rooms table.
type RoomModel struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	BuyerID     string    `gorm:"type:varchar(36);index;not null"`
	SellerID    string    `gorm:"type:varchar(36);index;not null"`
	ModeratorID *string   `gorm:"type:varchar(36);index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for RoomModel.
func (RoomModel) TableName() string {
	return "chat_rooms"
}

// ToDomain converts RoomModel to a domain ChatRoom.
func (m *RoomModel) ToDomain() *ChatRoom {
	return &ChatRoom{
		ID:          m.ID,
		BuyerID:     m.BuyerID,
		SellerID:    m.SellerID,
		ModeratorID: m.ModeratorID,
		CreatedAt:   m.CreatedAt,
	}
}

// RoomToModel converts a domain ChatRoom to RoomModel.
func RoomToModel(r *ChatRoom) *RoomModel {
	return &RoomModel{
		ID:          r.ID,
		BuyerID:     r.BuyerID,
		SellerID:    r.SellerID,
		ModeratorID: r.ModeratorID,
		CreatedAt:   r.CreatedAt,
	}
}

// MessageModel is the GORM model for the messages table.
type MessageModel struct {
	ID         string    `gorm:"type:varchar(36);primaryKey"`
	RoomID     string    `gorm:"type:varchar(36);index;not null"`
	SenderID   string    `gorm:"type:varchar(36);index;not null"`
	SenderRole string    `gorm:"type:varchar(20);not null"`
	Content    string    `gorm:"type:text;not null"`
	Edited     bool      `gorm:"default:false"`
	Deleted    bool      `gorm:"default:false"`
	Flagged    bool      `gorm:"index;default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for MessageModel.
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts MessageModel to a domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:         m.ID,
		RoomID:     m.RoomID,
		SenderID:   m.SenderID,
		SenderRole: m.SenderRole,
		Content:    m.Content,
		Edited:     m.Edited,
		Deleted:    m.Deleted,
		Flagged:    m.Flagged,
		CreatedAt:  m.CreatedAt,
	}
}

// MessageToModel converts a domain Message to MessageModel.
func MessageToModel(msg *Message) *MessageModel {
	return &MessageModel{
		ID:         msg.ID,
		RoomID:     msg.RoomID,
		SenderID:   msg.SenderID,
		SenderRole: msg.SenderRole,
		Content:    msg.Content,
		Edited:     msg.Edited,
		Deleted:    msg.Deleted,
		Flagged:    msg.Flagged,
		CreatedAt:  msg.CreatedAt,
	}
}

// AlertModel is the GORM model for the monitoring_alerts table.
// Alerts carry no gorm.DeletedAt: they are never deleted.
type AlertModel struct {
	ID                string    `gorm:"type:varchar(36);primaryKey"`
	RoomID            *string   `gorm:"type:varchar(36);index"`
	MessageID         *string   `gorm:"type:varchar(36);index"`
	ReporterID        string    `gorm:"type:varchar(36);not null"`
	ProblematicUserID string    `gorm:"type:varchar(36);index;not null"`
	Reason            string    `gorm:"type:text"`
	Status            string    `gorm:"type:varchar(20);index;not null;default:'open'"`
	ResponsibleID     *string   `gorm:"type:varchar(36);index"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for AlertModel.
func (AlertModel) TableName() string {
	return "monitoring_alerts"
}

// ToDomain converts AlertModel to a domain MonitoringAlert.
func (m *AlertModel) ToDomain() *MonitoringAlert {
	return &MonitoringAlert{
		ID:                m.ID,
		RoomID:            m.RoomID,
		MessageID:         m.MessageID,
		ReporterID:        m.ReporterID,
		ProblematicUserID: m.ProblematicUserID,
		Reason:            m.Reason,
		Status:            AlertStatus(m.Status),
		ResponsibleID:     m.ResponsibleID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// AlertToModel converts a domain MonitoringAlert to AlertModel.
func AlertToModel(a *MonitoringAlert) *AlertModel {
	return &AlertModel{
		ID:                a.ID,
		RoomID:            a.RoomID,
		MessageID:         a.MessageID,
		ReporterID:        a.ReporterID,
		ProblematicUserID: a.ProblematicUserID,
		Reason:            a.Reason,
		Status:            string(a.Status),
		ResponsibleID:     a.ResponsibleID,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}
