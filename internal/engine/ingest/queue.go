package ingest

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"healthdeck/internal/pkg/errors"
	"healthdeck/internal/platform/config"
)

// AuditRecorder receives one entry per completed or failed post-processing
// run.
type AuditRecorder interface {
	Record(action, resourceType, resourceID, code string, metadata map[string]interface{}) error
}

// Queue drives asynchronous post-processing of appended webhook events
// with at-least-once delivery. Each job applies the configured settle
// delay (modeling downstream work), writes an audit entry with the
// payload size, and marks the event processed. Failed jobs are retried
// with linear backoff up to MaxAttempts, then dead-lettered with a
// WEBHOOK_PROCESSING_ERROR audit entry.
//
// A periodic reclaim scan re-enqueues events that are neither processed
// nor dead, so work survives a crash or a full job buffer. Because
// MarkProcessed is idempotent, a job delivered twice is harmless.
type Queue struct {
	store EventStore
	audit AuditRecorder
	cfg   config.IngestConfig

	jobs chan string
	quit chan struct{}
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewQueue(store EventStore, audit AuditRecorder, cfg config.IngestConfig) *Queue {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Queue{
		store: store,
		audit: audit,
		cfg:   cfg,
		jobs:  make(chan string, 256),
		quit:  make(chan struct{}),
	}
}

// Start launches the worker pool and the reclaim loop, then re-enqueues
// any events a previous process left unprocessed.
func (q *Queue) Start() {
	for i := 0; i < q.cfg.WorkerCount; i++ {
		q.wg.Add(1)
		go q.worker()
	}

	if q.cfg.ReclaimEvery > 0 {
		q.wg.Add(1)
		go q.reclaimLoop()
	}

	q.reclaim()
}

// Enqueue hands an event id to the workers. When the buffer is full the
// id is dropped here and picked up by the next reclaim scan instead.
func (q *Queue) Enqueue(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}

	select {
	case q.jobs <- id:
	default:
		log.Warn().Str("event_id", id).Msg("ingest queue full, deferring to reclaim scan")
	}
}

// Close stops accepting work and waits for in-flight jobs to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.quit)
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for id := range q.jobs {
		q.process(id)
	}
}

func (q *Queue) reclaimLoop() {
	defer q.wg.Done()
	ticker := time.NewTicker(q.cfg.ReclaimEvery)
	defer ticker.Stop()

	for {
		select {
		case <-q.quit:
			return
		case <-ticker.C:
			q.reclaim()
		}
	}
}

func (q *Queue) reclaim() {
	ids, err := q.store.ClaimUnprocessed(100)
	if err != nil {
		log.Error().Err(err).Msg("reclaim scan failed")
		return
	}
	for _, id := range ids {
		q.Enqueue(id)
	}
}

func (q *Queue) process(id string) {
	event, err := q.store.GetByID(id)
	if err != nil {
		log.Error().Err(err).Str("event_id", id).Msg("failed to load event for post-processing")
		return
	}
	if event == nil || event.Processed || event.Dead {
		return
	}

	for attempt := 1; attempt <= q.cfg.MaxAttempts; attempt++ {
		if err = q.complete(id, len(event.Payload)); err == nil {
			log.Info().Str("event_id", id).Int("attempt", attempt).Msg("webhook event processed")
			return
		}

		log.Warn().Err(err).Str("event_id", id).Int("attempt", attempt).Msg("post-processing attempt failed")
		if recErr := q.store.RecordAttempt(id); recErr != nil {
			log.Error().Err(recErr).Str("event_id", id).Msg("failed to record attempt")
		}

		if attempt < q.cfg.MaxAttempts {
			time.Sleep(q.cfg.RetryBackoff * time.Duration(attempt))
		}
	}

	// Retries exhausted: dead-letter the event so the reclaim scan stops
	// picking it up, and leave a classified audit entry behind.
	if deadErr := q.store.MarkDead(id); deadErr != nil {
		log.Error().Err(deadErr).Str("event_id", id).Msg("failed to dead-letter event")
		return
	}
	q.audit.Record("webhook.processing_failed", "webhook_event", id, errors.ErrCodeWebhookProcessing, map[string]interface{}{
		"error":    err.Error(),
		"attempts": q.cfg.MaxAttempts,
	})
	log.Error().Str("event_id", id).Msg("webhook event dead-lettered")
}

func (q *Queue) complete(id string, payloadSize int) error {
	if q.cfg.SettleDelay > 0 {
		time.Sleep(q.cfg.SettleDelay)
	}

	if err := q.audit.Record("webhook.processed", "webhook_event", id, "", map[string]interface{}{
		"payload_size": payloadSize,
	}); err != nil {
		return err
	}

	return q.store.MarkProcessed(id, time.Now().UTC().Unix())
}
