package ingest

import (
	"errors"
	"testing"
	"time"

	"healthdeck/internal/platform/models"
	"healthdeck/internal/platform/repositories"
)

// failingAudit rejects every entry except dead-letter classifications, so
// post-processing can never complete.
type failingAudit struct {
	failures []string
}

func (f *failingAudit) Record(action, resourceType, resourceID, code string, metadata map[string]interface{}) error {
	if code != "" {
		f.failures = append(f.failures, resourceID)
		return nil
	}
	return errors.New("audit store unavailable")
}

func TestQueue_DeadLettersAfterRetries(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewEventRepository(db, 50, 500)

	auditStub := &failingAudit{}
	cfg := testIngestConfig()
	cfg.SettleDelay = 0
	queue := NewQueue(repo, auditStub, cfg)
	queue.Start()

	event := &models.WebhookEvent{Source: "stripe", EventType: "ping", Payload: []byte(`{}`)}
	if err := repo.Append(event); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	queue.Enqueue(event.ID)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		stored, _ := repo.GetByID(event.ID)
		if stored.Dead {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	queue.Close()

	stored, err := repo.GetByID(event.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !stored.Dead {
		t.Fatal("event not dead-lettered after exhausting retries")
	}
	if stored.Processed {
		t.Error("dead-lettered event must not be marked processed")
	}
	if stored.Attempts != cfg.MaxAttempts {
		t.Errorf("attempts = %d, want %d", stored.Attempts, cfg.MaxAttempts)
	}
	if len(auditStub.failures) != 1 || auditStub.failures[0] != event.ID {
		t.Errorf("expected one failure audit entry for %s, got %v", event.ID, auditStub.failures)
	}
}

func TestQueue_ReclaimsPendingOnStart(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewEventRepository(db, 50, 500)

	// Simulate an event left behind by a crashed process.
	event := &models.WebhookEvent{Source: "stripe", EventType: "ping", Payload: []byte(`{"n":1}`)}
	if err := repo.Append(event); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	cfg := testIngestConfig()
	queue := NewQueue(repo, &okAudit{}, cfg)
	queue.Start()
	defer queue.Close()

	waitProcessed(t, repo, event.ID)
}

func TestQueue_EnqueueAfterCloseIsSafe(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewEventRepository(db, 50, 500)

	queue := NewQueue(repo, &okAudit{}, testIngestConfig())
	queue.Start()
	queue.Close()

	// Must not panic.
	queue.Enqueue("evt_after_close")
	queue.Close()
}

type okAudit struct{}

func (okAudit) Record(action, resourceType, resourceID, code string, metadata map[string]interface{}) error {
	return nil
}
