package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmlog/auditor/internal/models"
)

func TestNotifierService_CronScheduled(t *testing.T) {
	db := setupAlertTestDB(t)
	alerts := NewAlertService(db, "")

	notifier := NewNotifierService(alerts, nil, 30*time.Second)
	entries := notifier.Cron.Entries()
	assert.Len(t, entries, 1)
}

func TestNotifierService_DispatchPending_MarksNotified(t *testing.T) {
	db := setupAlertTestDB(t)
	alerts := NewAlertService(db, "")

	id1, err := alerts.Create(&AlertDraft{Type: models.AlertMultipleFailedLogins, Description: "burst one"})
	require.NoError(t, err)
	id2, err := alerts.Create(&AlertDraft{Type: models.AlertUnauthorizedAccess, Description: "probe"})
	require.NoError(t, err)

	// No external destinations: the LOG channel push always succeeds.
	notifier := NewNotifierService(alerts, nil, time.Minute)
	notifier.DispatchPending()

	pending, total, err := alerts.List(ListAlertsOptions{UnnotifiedOnly: true})
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.EqualValues(t, 0, total)

	for _, id := range []uint{id1, id2} {
		var alert models.CriticalAlert
		require.NoError(t, db.First(&alert, id).Error)
		assert.True(t, alert.Notified)
	}
}

func TestNotifierService_DispatchPending_FailedDeliveryStaysQueued(t *testing.T) {
	db := setupAlertTestDB(t)
	alerts := NewAlertService(db, "")

	_, err := alerts.Create(&AlertDraft{Type: models.AlertConcurrentWrite, Description: "conflict"})
	require.NoError(t, err)

	// An unroutable destination makes every push fail; the alert must stay
	// queued for the next sweep rather than being marked notified.
	notifier := NewNotifierService(alerts, []string{"bogus://nowhere"}, time.Minute)
	notifier.DispatchPending()

	pending, total, err := alerts.List(ListAlertsOptions{UnnotifiedOnly: true})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.EqualValues(t, 1, total)
}

func TestNotifierService_DispatchPending_RedeliveryIsHarmless(t *testing.T) {
	db := setupAlertTestDB(t)
	alerts := NewAlertService(db, "")

	_, err := alerts.Create(&AlertDraft{Type: models.AlertBulkInvalidData, Description: "bulk"})
	require.NoError(t, err)

	notifier := NewNotifierService(alerts, nil, time.Minute)
	notifier.DispatchPending()
	notifier.DispatchPending()

	_, total, err := alerts.List(ListAlertsOptions{UnnotifiedOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}
