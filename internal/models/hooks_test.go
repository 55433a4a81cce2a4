package models

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&AuditEvent{}, &CriticalAlert{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func TestAuditEvent_BeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	ev := &AuditEvent{
		EventType:         EventRegister,
		Severity:          SeverityInfo,
		ActionDescription: "new user registered",
		Result:            ResultSuccess,
	}
	if err := db.Create(ev).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if ev.UUID == "" {
		t.Fatalf("expected UUID to be populated by BeforeCreate")
	}
	if ev.Timestamp.IsZero() {
		t.Fatalf("expected Timestamp to be populated by BeforeCreate")
	}
}

func TestAuditEvent_BeforeCreate_PreservesPresetTimestamp(t *testing.T) {
	db := setupTestDB(t)
	preset := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := &AuditEvent{
		EventType:         EventMovieAdd,
		Severity:          SeverityInfo,
		ActionDescription: "backfilled event",
		Result:            ResultSuccess,
		Timestamp:         preset,
	}
	if err := db.Create(ev).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !ev.Timestamp.Equal(preset) {
		t.Fatalf("expected preset timestamp to survive, got %v", ev.Timestamp)
	}
}

func TestCriticalAlert_BeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	a := &CriticalAlert{
		AlertType:   AlertUnauthorizedAccess,
		Severity:    SeverityCritical,
		Description: "unauthorized access attempt",
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if a.UUID == "" {
		t.Fatalf("expected UUID to be populated by BeforeCreate")
	}
	if a.Notified || a.Resolved {
		t.Fatalf("expected new alert to be unnotified and unresolved")
	}
}

func TestJSONMap_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ev := &AuditEvent{
		EventType:         EventReviewUpdate,
		Severity:          SeverityInfo,
		ActionDescription: "review updated",
		Result:            ResultSuccess,
		OldValue:          JSONMap{"rating": 6.5, "titulo": "ok"},
		NewValue:          JSONMap{"rating": 8.5, "titulo": "great"},
		Metadata:          JSONMap{"nested": map[string]interface{}{"k": "v"}},
	}
	if err := db.Create(ev).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var got AuditEvent
	if err := db.First(&got, ev.ID).Error; err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got.OldValue["rating"] != 6.5 || got.NewValue["titulo"] != "great" {
		t.Fatalf("JSON payload did not round-trip: old=%v new=%v", got.OldValue, got.NewValue)
	}
	nested, ok := got.Metadata["nested"].(map[string]interface{})
	if !ok || nested["k"] != "v" {
		t.Fatalf("nested metadata did not round-trip: %v", got.Metadata)
	}
}

func TestJSONMap_NilStaysNil(t *testing.T) {
	db := setupTestDB(t)
	ev := &AuditEvent{
		EventType:         EventLoginSuccess,
		Severity:          SeverityInfo,
		ActionDescription: "user logged in",
		Result:            ResultSuccess,
	}
	if err := db.Create(ev).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var got AuditEvent
	if err := db.First(&got, ev.ID).Error; err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got.Metadata != nil {
		t.Fatalf("expected nil metadata, got %v", got.Metadata)
	}
}
