package record

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vantage3d/vantage/internal/event"
)

// Frame is one buffered sensor capture awaiting flush.
type Frame struct {
	EntityID    uint32
	CameraIndex int
	Tick        uint64
	Width       uint32
	Height      uint32
	Pixels      []byte
	CapturedAt  time.Time
}

// Recorder buffers FrameCaptured events and writes them to Postgres in
// batches. Single-goroutine access (the frame loop); Flush is called on an
// interval counter and once at shutdown.
type Recorder struct {
	db      *DB
	pending []Frame
	log     *zap.Logger
}

func NewRecorder(db *DB, log *zap.Logger) *Recorder {
	return &Recorder{
		db:      db,
		pending: make([]Frame, 0, 256),
		log:     log,
	}
}

// Attach subscribes the recorder to frame-capture events on the bus.
func (r *Recorder) Attach(bus *event.Bus) {
	event.Subscribe(bus, func(ev event.FrameCaptured) {
		r.pending = append(r.pending, Frame{
			EntityID:    ev.EntityID,
			CameraIndex: ev.CameraIndex,
			Tick:        ev.Tick,
			Width:       ev.Image.Width,
			Height:      ev.Image.Height,
			Pixels:      ev.Image.Pixels,
			CapturedAt:  time.Now(),
		})
	})
}

// Pending returns the number of buffered frames.
func (r *Recorder) Pending() int { return len(r.pending) }

// Flush writes all buffered frames in a single transaction. The buffer is
// kept on failure so a later flush can retry.
func (r *Recorder) Flush(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("recorder begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, f := range r.pending {
		if _, err := tx.Exec(ctx,
			`INSERT INTO sensor_frames (entity_id, camera_index, tick, width, height, pixels, captured_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			int64(f.EntityID), f.CameraIndex, int64(f.Tick), int32(f.Width), int32(f.Height), f.Pixels, f.CapturedAt,
		); err != nil {
			return fmt.Errorf("recorder insert: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("recorder commit: %w", err)
	}

	r.log.Debug("frames flushed", zap.Int("count", len(r.pending)))
	r.pending = r.pending[:0]
	return nil
}
