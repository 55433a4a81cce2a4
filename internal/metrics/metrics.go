package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	eventsRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auditor_events_recorded_total",
		Help: "Total number of audit events appended to the log",
	}, []string{"severity"})
	alertsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auditor_alerts_created_total",
		Help: "Total number of critical alerts created",
	}, []string{"alert_type"})
	notificationsSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auditor_notifications_sent_total",
		Help: "Total number of alert notifications delivered",
	})
	notificationsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auditor_notifications_failed_total",
		Help: "Total number of alert notification deliveries that failed",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(eventsRecordedTotal, alertsCreatedTotal, notificationsSentTotal, notificationsFailedTotal)
}

// IncEventRecorded increments the recorded-events counter for a severity.
func IncEventRecorded(severity string) { eventsRecordedTotal.WithLabelValues(severity).Inc() }

// IncAlertCreated increments the created-alerts counter for an alert type.
func IncAlertCreated(alertType string) { alertsCreatedTotal.WithLabelValues(alertType).Inc() }

// IncNotificationSent increments the delivered-notifications counter.
func IncNotificationSent() { notificationsSentTotal.Inc() }

// IncNotificationFailed increments the failed-notifications counter.
func IncNotificationFailed() { notificationsFailedTotal.Inc() }
