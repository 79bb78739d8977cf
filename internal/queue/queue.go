package queue

import (
	"sync"
	"time"

	"github.com/imyashkale/mcpdashboard/internal/logger"
)

// WorkflowKind names the dashboard workflow a job runs
type WorkflowKind string

const (
	WorkflowConnect     WorkflowKind = "connect"
	WorkflowDisconnect  WorkflowKind = "disconnect"
	WorkflowRemove      WorkflowKind = "remove"
	WorkflowSendMessage WorkflowKind = "send_message"
)

// WorkflowJob is one queued workflow invocation
type WorkflowJob struct {
	Kind       WorkflowKind
	ServerID   string // connect, disconnect, remove
	Text       string // send_message
	EnqueuedAt time.Time
}

func (j *WorkflowJob) fields() map[string]interface{} {
	fields := map[string]interface{}{
		"workflow": string(j.Kind),
	}
	if j.ServerID != "" {
		fields["server_id"] = j.ServerID
	}
	return fields
}

// JobQueue is a bounded channel of workflow jobs
type JobQueue struct {
	jobs   chan *WorkflowJob
	mu     sync.Mutex
	closed bool
}

// NewJobQueue creates a new job queue with the specified buffer size
func NewJobQueue(bufferSize int) *JobQueue {
	return &JobQueue{
		jobs: make(chan *WorkflowJob, bufferSize),
	}
}

// Enqueue adds a job without blocking. It fails with ErrQueueFull when the
// buffer is exhausted and ErrQueueClosed after Close.
func (jq *JobQueue) Enqueue(job *WorkflowJob) error {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	if jq.closed {
		logger.WithFields(job.fields()).Warnf("Failed to enqueue workflow: queue is closed")
		return ErrQueueClosed
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}

	select {
	case jq.jobs <- job:
		logger.WithFields(job.fields()).Debugf("Workflow enqueued")
		return nil
	default:
		logger.WithFields(job.fields()).Warnf("Failed to enqueue workflow: queue is full")
		return ErrQueueFull
	}
}

// Len returns the number of jobs waiting
func (jq *JobQueue) Len() int {
	return len(jq.jobs)
}

// Close stops accepting jobs. Jobs already queued are still delivered.
func (jq *JobQueue) Close() {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	if jq.closed {
		return
	}
	jq.closed = true
	close(jq.jobs)
}

// WorkerPool runs queued jobs on a fixed number of goroutines
type WorkerPool struct {
	queue   *JobQueue
	workers int
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(queue *JobQueue, numWorkers int) *WorkerPool {
	return &WorkerPool{
		queue:   queue,
		workers: numWorkers,
	}
}

// Start starts all workers
func (wp *WorkerPool) Start(handler func(*WorkflowJob) error) {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(handler)
	}
}

// worker processes jobs until the queue is closed and drained
func (wp *WorkerPool) worker(handler func(*WorkflowJob) error) {
	defer wp.wg.Done()

	for job := range wp.queue.jobs {
		entry := logger.WithFields(job.fields())
		entry.WithField("waited_ms", time.Since(job.EnqueuedAt).Milliseconds()).Debugf("Worker picked up workflow")

		if err := handler(job); err != nil {
			entry.WithField("error", err.Error()).Warnf("Workflow did not run")
			continue
		}
		entry.Debugf("Workflow finished")
	}
	logger.Debugf("Worker exiting: jobs channel closed")
}

// Wait waits for all workers to finish
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}
