package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventType tags the kind of action an audit event records. The set below
// covers the application's known actions, but the column is an open string
// tag so collaborators can record new kinds without a schema change.
type EventType string

const (
	EventLoginSuccess            EventType = "LOGIN_SUCCESS"
	EventLoginFailed             EventType = "LOGIN_FAILED"
	EventRegister                EventType = "REGISTER"
	EventReviewCreate            EventType = "REVIEW_CREATE"
	EventReviewUpdate            EventType = "REVIEW_UPDATE"
	EventReviewDelete            EventType = "REVIEW_DELETE"
	EventListAdd                 EventType = "LIST_ADD"
	EventListRemove              EventType = "LIST_REMOVE"
	EventMovieAdd                EventType = "MOVIE_ADD"
	EventMovieUpdate             EventType = "MOVIE_UPDATE"
	EventMovieDelete             EventType = "MOVIE_DELETE"
	EventUnauthorizedAccess      EventType = "UNAUTHORIZED_ACCESS"
	EventConfigChange            EventType = "CONFIG_CHANGE"
	EventDataValidationError     EventType = "DATA_VALIDATION_ERROR"
	EventConcurrentWriteConflict EventType = "CONCURRENT_WRITE_CONFLICT"
	EventBulkInvalidData         EventType = "BULK_INVALID_DATA"
)

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// Valid reports whether s is one of the known severity levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

type Result string

const (
	ResultSuccess Result = "SUCCESS"
	ResultFailed  Result = "FAILED"
	ResultPartial Result = "PARTIAL"
)

// Valid reports whether r is one of the known action results.
func (r Result) Valid() bool {
	switch r {
	case ResultSuccess, ResultFailed, ResultPartial:
		return true
	}
	return false
}

// AuditEvent is one immutable record of a state-changing or security-relevant
// action. Rows are append-only; nothing in the engine ever updates or deletes
// them.
type AuditEvent struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UUID              string    `json:"uuid" gorm:"uniqueIndex"`
	Timestamp         time.Time `json:"timestamp" gorm:"index"`
	EventType         EventType `json:"event_type" gorm:"size:50;not null;index"`
	Severity          Severity  `json:"severity" gorm:"size:20;not null;index"`
	UserID            *uint     `json:"user_id,omitempty" gorm:"index"`
	UserEmail         string    `json:"user_email,omitempty" gorm:"size:150"`
	IPAddress         string    `json:"ip_address,omitempty" gorm:"size:45"`
	ActionDescription string    `json:"action_description" gorm:"type:text;not null"`
	EntityType        string    `json:"entity_type,omitempty" gorm:"size:50"`
	EntityID          *uint     `json:"entity_id,omitempty"`
	OldValue          JSONMap   `json:"old_value,omitempty" gorm:"type:text"`
	NewValue          JSONMap   `json:"new_value,omitempty" gorm:"type:text"`
	Result            Result    `json:"result" gorm:"size:20;not null;index"`
	ErrorMessage      string    `json:"error_message,omitempty" gorm:"type:text"`
	Metadata          JSONMap   `json:"metadata,omitempty" gorm:"type:text"`
}

// BeforeCreate assigns the identifier and the write-time timestamp. The
// timestamp is deliberately not taken from callers so a skewed or hostile
// client clock cannot forge event ordering.
func (e *AuditEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.UUID == "" {
		e.UUID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return
}
