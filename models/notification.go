package models

import "time"

const (
	NotificationEmail = "email"
	NotificationSMS   = "sms"
	NotificationPush  = "push"
)

// Notification records every message the system attempted to send,
// whether or not the channel accepted it.
type Notification struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Type    string `gorm:"size:20;not null" json:"type"` // "email" | "sms" | "push"
	Subject string `gorm:"size:200" json:"subject"`
	Message string `gorm:"type:text" json:"message"`

	IsSent bool       `gorm:"default:false" json:"is_sent"`
	SentAt *time.Time `json:"sent_at,omitempty"`
	IsRead bool       `gorm:"default:false" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	RelatedMealID  *uint `gorm:"index" json:"related_meal_id,omitempty"`
	RelatedClaimID *uint `gorm:"index" json:"related_claim_id,omitempty"`

	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
