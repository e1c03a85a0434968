package service

import (
	"context"
	"testing"
)

func TestSchedulerInvalidSpec(t *testing.T) {
	db, _ := setupTestDB(t)
	s := NewScheduler(NewSyncService(db, factoryFor(newFakeSource()), nil, discardLogger()), discardLogger())

	if err := s.Start("every now and then"); err == nil {
		s.Stop()
		t.Error("expected error for invalid schedule")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	db, _ := setupTestDB(t)
	s := NewScheduler(NewSyncService(db, factoryFor(newFakeSource()), nil, discardLogger()), discardLogger())

	if err := s.Start("@every 6h"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Stop()
}

func TestSchedulerRunOnce(t *testing.T) {
	db, _ := setupTestDB(t)
	s := NewScheduler(NewSyncService(db, factoryFor(newFakeSource()), nil, discardLogger()), discardLogger())

	if !s.RunOnce(context.Background()) {
		t.Error("RunOnce should run when idle")
	}

	s.running.Store(true)
	if s.RunOnce(context.Background()) {
		t.Error("RunOnce should skip while a run is active")
	}
}
