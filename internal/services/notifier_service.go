package services

import (
	"fmt"
	"time"

	"github.com/containrrr/shoutrrr"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/filmlog/auditor/internal/logger"
	"github.com/filmlog/auditor/internal/metrics"
	"github.com/filmlog/auditor/internal/models"
)

// NotifierService periodically drains unnotified alerts and pushes them to
// the configured destinations. Delivery is at-least-once: an alert is only
// marked notified after a successful push, so a crash or a failed delivery
// leaves it queued for the next sweep. Duplicate delivery is acceptable,
// loss is not.
type NotifierService struct {
	Alerts *AlertService
	Cron   *cron.Cron

	urls  []string
	batch int
}

// NewNotifierService returns a NotifierService sweeping at the given
// interval. urls are shoutrrr destinations (discord://, smtp://, ...); with
// none configured, alerts are pushed to the engine log instead.
func NewNotifierService(alerts *AlertService, urls []string, interval time.Duration) *NotifierService {
	if interval <= 0 {
		interval = time.Minute
	}
	n := &NotifierService{
		Alerts: alerts,
		Cron:   cron.New(),
		urls:   urls,
		batch:  50,
	}
	n.Cron.Schedule(cron.Every(interval), cron.FuncJob(n.DispatchPending))
	return n
}

// Start begins the periodic sweep.
func (n *NotifierService) Start() {
	n.Cron.Start()
}

// Stop halts the periodic sweep. In-flight dispatches finish.
func (n *NotifierService) Stop() {
	n.Cron.Stop()
}

// DispatchPending pushes every unnotified alert and marks each one notified
// after its push succeeds. Failures are logged and the alert stays queued.
func (n *NotifierService) DispatchPending() {
	alerts, _, err := n.Alerts.List(ListAlertsOptions{UnnotifiedOnly: true, Limit: n.batch})
	if err != nil {
		logger.Log().WithError(err).Error("Failed to list unnotified alerts")
		return
	}

	for _, alert := range alerts {
		if err := n.push(alert); err != nil {
			metrics.IncNotificationFailed()
			logger.WithFields(logrus.Fields{
				"alert_id":   alert.ID,
				"alert_type": string(alert.AlertType),
			}).WithError(err).Warn("Failed to deliver alert notification")
			continue
		}
		metrics.IncNotificationSent()
		if err := n.Alerts.MarkNotified(alert.ID); err != nil {
			// The push went out but the flag did not stick; the alert will be
			// redelivered on the next sweep.
			logger.WithFields(logrus.Fields{"alert_id": alert.ID}).WithError(err).Warn("Failed to mark alert notified")
		}
	}
}

// push delivers one alert. With no external destinations the alert is
// written to the engine log, which satisfies the LOG channel.
func (n *NotifierService) push(alert models.CriticalAlert) error {
	if len(n.urls) == 0 {
		logger.WithFields(logrus.Fields{
			"alert_id":   alert.ID,
			"alert_type": string(alert.AlertType),
			"ip_address": alert.IPAddress,
		}).Warn(alert.Description)
		return nil
	}

	msg := fmt.Sprintf("[%s] %s\n\n%s", alert.Severity, alert.AlertType, alert.Description)
	var firstErr error
	for _, url := range n.urls {
		if err := shoutrrr.Send(url, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
