package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/dvloznov/finsight/internal/jobs"
	"github.com/dvloznov/finsight/internal/logger"
	"github.com/google/uuid"
)

// DefaultWorkers is used when NewQueue is given no positive worker count.
const DefaultWorkers = 5

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
// Jobs run once; a failed job is not re-enqueued.
type Queue struct {
	jobChan   chan *jobs.AnalyzeStatementJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	workers   int
	closed    bool
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before PublishAnalyzeStatement blocks.
func NewQueue(bufferSize, workers int, store jobs.JobStore) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		jobChan:   make(chan *jobs.AnalyzeStatementJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		workers:   workers,
	}
}

// PublishAnalyzeStatement enqueues a job for asynchronous processing.
func (q *Queue) PublishAnalyzeStatement(ctx context.Context, job *jobs.AnalyzeStatementJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return jobs.ErrQueueClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return err
		}
	}

	// Workers own their copy; the caller's job is not touched after this point.
	queued := *job
	select {
	case q.jobChan <- &queued:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return jobs.ErrQueueClosed
	}
}

// Start launches the worker pool. The handler is called concurrently, up to
// the configured number of workers.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return jobs.ErrQueueClosed
	}
	q.mu.RUnlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}

	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}

			q.processJob(ctx, job, handler)
		}
	}
}

// processJob executes a single job and records its final status.
func (q *Queue) processJob(ctx context.Context, job *jobs.AnalyzeStatementJob, handler jobs.JobHandler) {
	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	err := handler(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err != nil {
		job.Status = jobs.JobStatusFailed
		job.Error = err.Error()
	} else {
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("job_id", job.JobID).
		Str("status", string(job.Status)).
		Dur("elapsed", completedAt.Sub(now)).
		Msg("Job finished")

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}
}

// Stop stops the queue and waits for all in-flight jobs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the queue and releases resources.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
