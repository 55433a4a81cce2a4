package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertType string

const (
	AlertMultipleFailedLogins AlertType = "MULTIPLE_FAILED_LOGINS"
	AlertUnauthorizedAccess   AlertType = "UNAUTHORIZED_ACCESS_ATTEMPT"
	AlertBulkInvalidData      AlertType = "BULK_INVALID_DATA_DETECTED"
	AlertConcurrentWrite      AlertType = "CONCURRENT_WRITE_DETECTED"
)

// NotificationChannel tags where an alert is expected to be pushed.
type NotificationChannel string

const (
	ChannelLog    NotificationChannel = "LOG"
	ChannelSocket NotificationChannel = "SOCKET"
	ChannelEmail  NotificationChannel = "EMAIL"
)

// CriticalAlert is a detected anomaly requiring human attention. Alerts are
// never deleted; Notified and Resolved only ever move from false to true,
// and the two flags are independent of each other.
type CriticalAlert struct {
	ID                  uint                `json:"id" gorm:"primaryKey"`
	UUID                string              `json:"uuid" gorm:"uniqueIndex"`
	Timestamp           time.Time           `json:"timestamp" gorm:"index"`
	AlertType           AlertType           `json:"alert_type" gorm:"size:50;not null;index"`
	Severity            Severity            `json:"severity" gorm:"size:20;not null"`
	Description         string              `json:"description" gorm:"type:text;not null"`
	AffectedUserID      *uint               `json:"affected_user_id,omitempty"`
	IPAddress           string              `json:"ip_address,omitempty" gorm:"size:45"`
	Details             JSONMap             `json:"details,omitempty" gorm:"type:text"`
	Notified            bool                `json:"notified" gorm:"default:false;index"`
	NotificationChannel NotificationChannel `json:"notification_channel" gorm:"size:50"`
	Resolved            bool                `json:"resolved" gorm:"default:false;index"`
	ResolvedAt          *time.Time          `json:"resolved_at,omitempty"`
	ResolvedBy          *uint               `json:"resolved_by,omitempty"`
}

func (a *CriticalAlert) BeforeCreate(tx *gorm.DB) (err error) {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return
}
