package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/filmlog/auditor/internal/logger"
	"github.com/filmlog/auditor/internal/metrics"
	"github.com/filmlog/auditor/internal/models"
)

// EventInput carries the caller-supplied fields of one audit event. The id
// and timestamp are assigned by the store on append and cannot be supplied.
type EventInput struct {
	EventType         models.EventType
	ActionDescription string
	Severity          models.Severity
	Result            models.Result
	UserID            *uint
	UserEmail         string
	IPAddress         string
	EntityType        string
	EntityID          *uint
	OldValue          models.JSONMap
	NewValue          models.JSONMap
	ErrorMessage      string
	Metadata          models.JSONMap
}

// AuditService is the write path for audit events and the read path over the
// audit log. Recording a CRITICAL event hands it to the detector synchronously
// so the detection decision always sees the event that triggered it.
type AuditService struct {
	DB       *gorm.DB
	Detector *Detector
	Alerts   *AlertService
}

// NewAuditService returns an AuditService using the provided DB, detector
// and alert manager.
func NewAuditService(db *gorm.DB, detector *Detector, alerts *AlertService) *AuditService {
	return &AuditService{DB: db, Detector: detector, Alerts: alerts}
}

// Record validates and durably appends one audit event, returning the
// assigned id. Severity defaults to INFO and result to SUCCESS. A failed
// append is returned as a PersistenceError and never retried. Detection and
// alerting failures after a successful append are logged, not propagated:
// auditability of the event survives degraded alerting infrastructure.
func (s *AuditService) Record(in EventInput) (uint, error) {
	if in.EventType == "" {
		return 0, ErrEventTypeRequired
	}
	if in.ActionDescription == "" {
		return 0, ErrActionDescriptionRequired
	}
	severity := in.Severity
	if severity == "" {
		severity = models.SeverityInfo
	}
	if !severity.Valid() {
		return 0, ErrInvalidSeverity
	}
	result := in.Result
	if result == "" {
		result = models.ResultSuccess
	}
	if !result.Valid() {
		return 0, ErrInvalidResult
	}

	event := models.AuditEvent{
		EventType:         in.EventType,
		Severity:          severity,
		UserID:            in.UserID,
		UserEmail:         in.UserEmail,
		IPAddress:         in.IPAddress,
		ActionDescription: in.ActionDescription,
		EntityType:        in.EntityType,
		EntityID:          in.EntityID,
		OldValue:          in.OldValue,
		NewValue:          in.NewValue,
		Result:            result,
		ErrorMessage:      in.ErrorMessage,
		Metadata:          in.Metadata,
	}
	if err := s.DB.Create(&event).Error; err != nil {
		return 0, &PersistenceError{Op: "append audit event", Err: err}
	}
	metrics.IncEventRecorded(string(event.Severity))

	if event.Severity == models.SeverityCritical {
		s.evaluateCritical(&event)
	}
	return event.ID, nil
}

func (s *AuditService) evaluateCritical(event *models.AuditEvent) {
	if s.Detector == nil || s.Alerts == nil {
		return
	}
	draft := s.Detector.Evaluate(event)
	if draft == nil {
		return
	}
	if _, err := s.Alerts.Create(draft); err != nil {
		logger.WithFields(logrus.Fields{
			"alert_type": string(draft.Type),
			"event_id":   event.ID,
		}).WithError(err).Error("Failed to create critical alert")
	}
}

// EventFilter narrows ListEvents. Zero-valued fields match everything.
type EventFilter struct {
	UserID    *uint
	EventType models.EventType
	Severity  models.Severity
	Start     *time.Time
	End       *time.Time
}

// ListEvents returns audit events newest-first plus the total number of rows
// matching the filter. A non-positive limit falls back to 100.
func (s *AuditService) ListEvents(f EventFilter, limit, offset int) ([]models.AuditEvent, int64, error) {
	q := s.DB.Model(&models.AuditEvent{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.EventType != "" {
		q = q.Where("event_type = ?", f.EventType)
	}
	if f.Severity != "" {
		q = q.Where("severity = ?", f.Severity)
	}
	if f.Start != nil {
		q = q.Where("timestamp >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("timestamp <= ?", *f.End)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, &PersistenceError{Op: "count audit events", Err: err}
	}

	if limit <= 0 {
		limit = 100
	}
	var events []models.AuditEvent
	err := q.Order("timestamp desc, id desc").Limit(limit).Offset(offset).Find(&events).Error
	if err != nil {
		return nil, 0, &PersistenceError{Op: "list audit events", Err: err}
	}
	return events, total, nil
}

// Statistics aggregates exact event tallies over a trailing window.
type Statistics struct {
	TotalEvents    int64 `json:"total_events"`
	UniqueUsers    int64 `json:"unique_users"`
	CriticalEvents int64 `json:"critical_events"`
	ErrorEvents    int64 `json:"error_events"`
	WarningEvents  int64 `json:"warning_events"`
	FailedActions  int64 `json:"failed_actions"`
	FailedLogins   int64 `json:"failed_logins"`
}

// Statistics tallies events over the last `days` days. days <= 0 matches no
// rows and returns a zero-valued result rather than an error.
func (s *AuditService) Statistics(days int) (*Statistics, error) {
	stats := &Statistics{}
	if days <= 0 {
		return stats, nil
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	base := func() *gorm.DB {
		return s.DB.Model(&models.AuditEvent{}).Where("timestamp >= ?", since)
	}

	counts := []struct {
		dest *int64
		q    *gorm.DB
	}{
		{&stats.TotalEvents, base()},
		{&stats.UniqueUsers, base().Where("user_id IS NOT NULL").Distinct("user_id")},
		{&stats.CriticalEvents, base().Where("severity = ?", models.SeverityCritical)},
		{&stats.ErrorEvents, base().Where("severity = ?", models.SeverityError)},
		{&stats.WarningEvents, base().Where("severity = ?", models.SeverityWarning)},
		{&stats.FailedActions, base().Where("result = ?", models.ResultFailed)},
		{&stats.FailedLogins, base().Where("event_type = ?", models.EventLoginFailed)},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dest).Error; err != nil {
			return nil, &PersistenceError{Op: "aggregate audit statistics", Err: err}
		}
	}
	return stats, nil
}
