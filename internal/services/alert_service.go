package services

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/filmlog/auditor/internal/logger"
	"github.com/filmlog/auditor/internal/metrics"
	"github.com/filmlog/auditor/internal/models"
)

// AlertService owns the lifecycle of critical alerts: creation, the
// crash-durable side trail, and the monotonic notified/resolved flags.
type AlertService struct {
	DB    *gorm.DB
	trail *lumberjack.Logger
}

// NewAlertService returns an AlertService. When trailPath is non-empty every
// created alert is also appended, best-effort, to a rotated text file at that
// path so alerts survive even if the primary store is later unreadable.
func NewAlertService(db *gorm.DB, trailPath string) *AlertService {
	s := &AlertService{DB: db}
	if trailPath != "" {
		s.trail = &lumberjack.Logger{
			Filename:   trailPath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     90, // days
		}
	}
	return s
}

// Create persists a new alert with notified=false, resolved=false and returns
// its id. The side-trail append happens after the insert and its failure is
// logged, never returned: a degraded trail must not block alerting.
func (s *AlertService) Create(d *AlertDraft) (uint, error) {
	if d == nil {
		return 0, nil
	}
	severity := d.Severity
	if severity == "" {
		severity = models.SeverityCritical
	}
	channel := d.Channel
	if channel == "" {
		channel = models.ChannelLog
	}

	alert := models.CriticalAlert{
		AlertType:           d.Type,
		Severity:            severity,
		Description:         d.Description,
		AffectedUserID:      d.AffectedUserID,
		IPAddress:           d.IPAddress,
		Details:             d.Details,
		NotificationChannel: channel,
	}
	if err := s.DB.Create(&alert).Error; err != nil {
		return 0, &PersistenceError{Op: "create critical alert", Err: err}
	}
	metrics.IncAlertCreated(string(alert.AlertType))

	s.appendTrail(&alert)
	return alert.ID, nil
}

// appendTrail writes one line per alert to the side file.
func (s *AlertService) appendTrail(alert *models.CriticalAlert) {
	if s.trail == nil {
		return
	}
	line := fmt.Sprintf("[%s] [%s] %s", alert.Timestamp.Format(time.RFC3339), alert.AlertType, alert.Description)
	if len(alert.Details) > 0 {
		if b, err := json.Marshal(alert.Details); err == nil {
			line += " | details: " + string(b)
		}
	}
	if _, err := s.trail.Write([]byte(line + "\n")); err != nil {
		logger.Log().WithError(err).Warn("Failed to append critical alert trail")
	}
}

// MarkNotified flags an alert as pushed to the notification gateway. Marking
// an already-notified alert again is a no-op, so redelivery is harmless.
func (s *AlertService) MarkNotified(id uint) error {
	if err := s.DB.Model(&models.CriticalAlert{}).Where("id = ?", id).Update("notified", true).Error; err != nil {
		return &PersistenceError{Op: "mark alert notified", Err: err}
	}
	return nil
}

// Resolve flags an alert as handled, stamping the resolution time and actor.
// Resolving an already-resolved alert is a no-op returning success; the
// original resolution is never re-attributed.
func (s *AlertService) Resolve(id uint, resolvedBy *uint) error {
	now := time.Now().UTC()
	err := s.DB.Model(&models.CriticalAlert{}).
		Where("id = ? AND resolved = ?", id, false).
		Updates(map[string]interface{}{
			"resolved":    true,
			"resolved_at": now,
			"resolved_by": resolvedBy,
		}).Error
	if err != nil {
		return &PersistenceError{Op: "resolve alert", Err: err}
	}
	return nil
}

// ListAlertsOptions filters and paginates alert listings.
type ListAlertsOptions struct {
	UnresolvedOnly bool
	UnnotifiedOnly bool
	Limit          int
	Offset         int
}

// List returns alerts newest-first together with the total number matching
// the filters. Callers draining unnotified alerts are expected to push each
// one and then MarkNotified; a crash in between means a duplicate push at
// worst, never a lost alert.
func (s *AlertService) List(opts ListAlertsOptions) ([]models.CriticalAlert, int64, error) {
	q := s.DB.Model(&models.CriticalAlert{})
	if opts.UnresolvedOnly {
		q = q.Where("resolved = ?", false)
	}
	if opts.UnnotifiedOnly {
		q = q.Where("notified = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, &PersistenceError{Op: "count critical alerts", Err: err}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	var alerts []models.CriticalAlert
	err := q.Order("timestamp desc, id desc").Limit(limit).Offset(opts.Offset).Find(&alerts).Error
	if err != nil {
		return nil, 0, &PersistenceError{Op: "list critical alerts", Err: err}
	}
	return alerts, total, nil
}
