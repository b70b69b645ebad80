package notify

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gatherhub/moderation-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const outboxBatchSize = 50

// Outbox is a Notifier that batches emitted events into the
// moderation_events table for audit and downstream consumers.
type Outbox struct {
	db     *gorm.DB
	mu     sync.Mutex
	buffer []models.ModerationEvent
	ticker *time.Ticker
	done   chan struct{}
}

func NewOutbox(db *gorm.DB) *Outbox {
	o := &Outbox{
		db:     db,
		buffer: make([]models.ModerationEvent, 0, outboxBatchSize),
		ticker: time.NewTicker(5 * time.Second),
		done:   make(chan struct{}),
	}
	go o.flushLoop()
	return o
}

func (o *Outbox) flushLoop() {
	for {
		select {
		case <-o.ticker.C:
			o.flush()
		case <-o.done:
			o.flush()
			return
		}
	}
}

func (o *Outbox) flush() {
	o.mu.Lock()
	if len(o.buffer) == 0 {
		o.mu.Unlock()
		return
	}
	batch := o.buffer
	o.buffer = make([]models.ModerationEvent, 0, outboxBatchSize)
	o.mu.Unlock()

	if err := o.db.CreateInBatches(batch, outboxBatchSize).Error; err != nil {
		slog.Error("failed to flush moderation events to DB", "error", err, "count", len(batch))
	}
}

// Stop drains the buffer and stops the flush loop.
func (o *Outbox) Stop() {
	o.ticker.Stop()
	close(o.done)
}

func (o *Outbox) Publish(evt Event) {
	entry := models.ModerationEvent{
		ID:        uuid.New(),
		Name:      string(evt.Name),
		ReportID:  evt.Report.ID,
		CreatedAt: time.Now().UTC(),
	}

	payload := map[string]interface{}{
		"report": evt.Report,
	}
	for k, v := range evt.Context {
		payload[k] = v
	}
	if b, err := json.Marshal(payload); err == nil {
		entry.Payload = datatypes.JSON(b)
	}

	o.mu.Lock()
	o.buffer = append(o.buffer, entry)
	needFlush := len(o.buffer) >= outboxBatchSize
	o.mu.Unlock()

	if needFlush {
		go o.flush()
	}
}
