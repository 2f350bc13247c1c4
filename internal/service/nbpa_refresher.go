package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/socialflow-api/pkg/jobs"
)

// JobTypeNbpaRefresh identifies participant count refresh jobs.
const JobTypeNbpaRefresh = "nbpa_refresh"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type rankedInvalidator interface {
	InvalidateRanked(ctx context.Context) error
}

type participantRefresher interface {
	Refresh(ctx context.Context, courseID int64) error
	StoredCourses(ctx context.Context) ([]int64, error)
}

// NbpaRefresher periodically enqueues a recomputation of every stored participant count.
type NbpaRefresher struct {
	participants participantRefresher
	queue        jobDispatcher
	ranked       rankedInvalidator
	interval     time.Duration
	logger       *zap.Logger
}

// NewNbpaRefresher constructs a refresher. The queue is expected to run Handle.
func NewNbpaRefresher(participants participantRefresher, queue jobDispatcher, interval time.Duration, logger *zap.Logger) *NbpaRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &NbpaRefresher{participants: participants, queue: queue, interval: interval, logger: logger}
}

// SetQueue attaches the dispatcher once the queue wrapping Handle exists.
func (r *NbpaRefresher) SetQueue(queue jobDispatcher) {
	r.queue = queue
}

// SetRankedCache attaches the flow rankings to drop after each recomputed count.
func (r *NbpaRefresher) SetRankedCache(ranked rankedInvalidator) {
	r.ranked = ranked
}

// Start boots a goroutine enqueueing a refresh round every interval until ctx is done.
func (r *NbpaRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := r.EnqueueAll(ctx); err != nil {
					r.logger.Sugar().Warnw("nbpa refresh round failed", "error", err)
				}
			}
		}
	}()
}

// EnqueueAll queues one refresh job per stored course and returns how many were queued.
// Courses whose previous job is still pending are skipped.
func (r *NbpaRefresher) EnqueueAll(ctx context.Context) (int, error) {
	if r.queue == nil {
		return 0, fmt.Errorf("nbpa refresher has no queue")
	}
	ids, err := r.participants.StoredCourses(ctx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, id := range ids {
		job := jobs.Job{ID: "nbpa:" + strconv.FormatInt(id, 10), Type: JobTypeNbpaRefresh, Payload: id}
		if err := r.queue.Enqueue(job); err != nil {
			if errors.Is(err, jobs.ErrAlreadyQueued) {
				continue
			}
			return queued, err
		}
		queued++
	}
	r.logger.Sugar().Infow("nbpa refresh round queued", "courses", len(ids), "queued", queued)
	return queued, nil
}

// Handle processes a refresh job.
func (r *NbpaRefresher) Handle(ctx context.Context, job jobs.Job) error {
	courseID, ok := job.Payload.(int64)
	if !ok {
		return fmt.Errorf("nbpa refresh job %s: unexpected payload %T", job.ID, job.Payload)
	}
	if err := r.participants.Refresh(ctx, courseID); err != nil {
		return err
	}
	if r.ranked != nil {
		if err := r.ranked.InvalidateRanked(ctx); err != nil {
			r.logger.Warn("failed to invalidate flow rankings", zap.Int64("course_id", courseID), zap.Error(err))
		}
	}
	return nil
}
