package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/filmlog/auditor/internal/models"
)

const (
	// DefaultFailureWindow is the rolling horizon for failed-login counting.
	DefaultFailureWindow = 15 * time.Minute
	// DefaultFailureThreshold is the failed-login count that trips an alert.
	DefaultFailureThreshold = 5
)

// AlertDraft is what the detector hands to the alert manager when an event
// stream crosses a detection rule.
type AlertDraft struct {
	Type           models.AlertType
	Severity       models.Severity
	Description    string
	AffectedUserID *uint
	IPAddress      string
	Details        models.JSONMap
	Channel        models.NotificationChannel
}

// directAlerts maps event types that always produce an alert, one per event,
// with no windowing. Adding an event type here is a compile-checked change,
// not a string match.
var directAlerts = map[models.EventType]struct {
	alertType models.AlertType
	label     string
}{
	models.EventUnauthorizedAccess:      {models.AlertUnauthorizedAccess, "unauthorized access attempt"},
	models.EventBulkInvalidData:         {models.AlertBulkInvalidData, "bulk insertion of invalid data"},
	models.EventConcurrentWriteConflict: {models.AlertConcurrentWrite, "concurrent write conflict"},
}

// Detector keeps per-key sliding windows of failed-login timestamps and
// decides when an event warrants a critical alert. Each Detector owns its
// windows outright, so separate instances never share state.
type Detector struct {
	mu        sync.Mutex
	failures  map[string][]time.Time
	window    time.Duration
	threshold int
	now       func() time.Time
}

// NewDetector returns a Detector with the given failed-login window and
// threshold. Non-positive arguments fall back to the defaults.
func NewDetector(window time.Duration, threshold int) *Detector {
	if window <= 0 {
		window = DefaultFailureWindow
	}
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	return &Detector{
		failures:  make(map[string][]time.Time),
		window:    window,
		threshold: threshold,
		now:       time.Now,
	}
}

// Evaluate inspects one recorded event and returns a draft alert when the
// event, alone or combined with recent history, constitutes an anomaly.
// It returns nil for event types with no detection rule.
func (d *Detector) Evaluate(ev *models.AuditEvent) *AlertDraft {
	if ev == nil {
		return nil
	}
	if ev.EventType == models.EventLoginFailed {
		return d.evaluateFailedLogin(ev)
	}
	if rule, ok := directAlerts[ev.EventType]; ok {
		return &AlertDraft{
			Type:           rule.alertType,
			Severity:       models.SeverityCritical,
			Description:    fmt.Sprintf("%s: %s", rule.label, ev.ActionDescription),
			AffectedUserID: ev.UserID,
			IPAddress:      ev.IPAddress,
			Details:        ev.Metadata,
			Channel:        models.ChannelLog,
		}
	}
	return nil
}

// evaluateFailedLogin appends the event to its key's window, prunes entries
// older than the horizon and fires once the threshold is reached. The window
// for that key is cleared the moment an alert fires so a burst of failures
// produces one alert, not a storm.
func (d *Detector) evaluateFailedLogin(ev *models.AuditEvent) *AlertDraft {
	key := detectionKey(ev)
	now := d.now()
	cutoff := now.Add(-d.window)

	d.mu.Lock()
	attempts := append(d.failures[key], now)
	kept := attempts[:0]
	for _, at := range attempts {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	count := len(kept)
	if count >= d.threshold {
		delete(d.failures, key)
	} else {
		d.failures[key] = kept
	}
	d.mu.Unlock()

	if count < d.threshold {
		return nil
	}

	return &AlertDraft{
		Type:           models.AlertMultipleFailedLogins,
		Severity:       models.SeverityCritical,
		Description:    fmt.Sprintf("multiple failed login attempts detected for %s", key),
		AffectedUserID: ev.UserID,
		IPAddress:      ev.IPAddress,
		Details: models.JSONMap{
			"user_email":    ev.UserEmail,
			"attempt_count": count,
			"time_window":   d.window.String(),
			"metadata":      ev.Metadata,
		},
		Channel: models.ChannelLog,
	}
}

// detectionKey groups failed logins by user email, falling back to the
// source address. Events carrying neither land in a shared "unknown" bucket,
// which conflates unrelated anonymous failures on purpose: anonymous bursts
// are still counted rather than ignored.
func detectionKey(ev *models.AuditEvent) string {
	if ev.UserEmail != "" {
		return ev.UserEmail
	}
	if ev.IPAddress != "" {
		return ev.IPAddress
	}
	return "unknown"
}
