// Package queue implements the bounded worker pool described in spec.md §5:
// a fixed-size pool of goroutines pulling job IDs off a channel, dispatching
// each to a JobProcessor, never spawning one goroutine per job.
package queue

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/internal/repository"
	"github.com/indra622/world-of-asr/pkg/logger"
)

// RunningJob tracks both context cancellation and the OS process backing a
// job, so KillJob can tear down a subprocess-based recognizer adapter.
type RunningJob struct {
	Cancel  context.CancelFunc
	Process *exec.Cmd
}

// JobProcessor runs one job to completion. Implemented by internal/pipeline.
type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID string) error
	ProcessJobWithProcess(ctx context.Context, jobID string, registerProcess func(*exec.Cmd)) error
}

// TaskQueue dispatches enqueued job IDs to a bounded set of worker
// goroutines, per spec.md §5's "task/channel abstraction, not callbacks".
type TaskQueue struct {
	minWorkers     int
	maxWorkers     int
	currentWorkers int64
	jobChannel     chan string
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	processor      JobProcessor
	jobs           repository.JobRepository
	runningJobs    map[string]*RunningJob
	jobsMutex      sync.RWMutex
	autoScale      bool
	lastScaleTime  time.Time
}

// NewTaskQueue builds a queue with maxConcurrent workers (spec.md §5 default
// of 3, from Config.MaxConcurrentJobs). autoScale, when true, allows the pool
// to grow up to 2x maxConcurrent under sustained backlog and shrink back
// down; it never reduces below maxConcurrent.
func NewTaskQueue(maxConcurrent int, autoScale bool, processor JobProcessor, jobs repository.JobRepository) *TaskQueue {
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	ctx, cancel := context.WithCancel(context.Background())

	max := maxConcurrent
	if autoScale {
		max = maxConcurrent * 2
	}

	return &TaskQueue{
		minWorkers:     maxConcurrent,
		maxWorkers:     max,
		currentWorkers: int64(maxConcurrent),
		jobChannel:     make(chan string, 200),
		ctx:            ctx,
		cancel:         cancel,
		processor:      processor,
		jobs:           jobs,
		runningJobs:    make(map[string]*RunningJob),
		autoScale:      autoScale,
		lastScaleTime:  time.Now(),
	}
}

// Start launches the initial worker goroutines, the pending-job scanner and,
// if enabled, the auto-scaler.
func (tq *TaskQueue) Start() {
	workers := int(atomic.LoadInt64(&tq.currentWorkers))
	logger.Info("Starting task queue",
		"workers", workers,
		"min_workers", tq.minWorkers,
		"max_workers", tq.maxWorkers,
		"auto_scale", tq.autoScale)

	for i := 0; i < workers; i++ {
		tq.wg.Add(1)
		go tq.worker(i)
	}

	tq.wg.Add(1)
	go tq.jobScanner()

	if tq.autoScale {
		tq.wg.Add(1)
		go tq.autoScaler()
	}
}

// Stop drains running workers and blocks until they exit.
func (tq *TaskQueue) Stop() {
	log.Println("Stopping task queue...")
	tq.cancel()
	close(tq.jobChannel)
	tq.wg.Wait()
	log.Println("Task queue stopped")
}

// EnqueueJob adds a job id to the channel, per C6's create_job -> run_job
// hand-off. Non-blocking: a full queue is reported back to the caller rather
// than blocking the HTTP request that created the job.
func (tq *TaskQueue) EnqueueJob(jobID string) error {
	select {
	case tq.jobChannel <- jobID:
		return nil
	case <-tq.ctx.Done():
		return fmt.Errorf("queue is shutting down")
	default:
		return fmt.Errorf("queue is full")
	}
}

func (tq *TaskQueue) worker(id int) {
	defer tq.wg.Done()

	logger.Info("Worker started", "worker_id", id)

	for {
		select {
		case jobID, ok := <-tq.jobChannel:
			if !ok {
				logger.Info("Worker stopped", "worker_id", id)
				return
			}
			tq.runOne(id, jobID)

		case <-tq.ctx.Done():
			log.Printf("Worker %d stopped due to context cancellation", id)
			return
		}
	}
}

func (tq *TaskQueue) runOne(workerID int, jobID string) {
	ctx := context.Background()
	logger.WorkerOperation(workerID, jobID, "start")

	if err := tq.jobs.MarkStarted(ctx, jobID); err != nil {
		logger.Error("Failed to mark job started", "worker_id", workerID, "job_id", jobID, "error", err)
		return
	}

	jobCtx, jobCancel := context.WithCancel(tq.ctx)
	runningJob := &RunningJob{Cancel: jobCancel}

	tq.jobsMutex.Lock()
	tq.runningJobs[jobID] = runningJob
	tq.jobsMutex.Unlock()

	registerProcess := func(cmd *exec.Cmd) {
		tq.jobsMutex.Lock()
		if job, exists := tq.runningJobs[jobID]; exists {
			job.Process = cmd
		}
		tq.jobsMutex.Unlock()
	}

	err := tq.processor.ProcessJobWithProcess(jobCtx, jobID, registerProcess)

	tq.jobsMutex.Lock()
	delete(tq.runningJobs, jobID)
	tq.jobsMutex.Unlock()

	if err != nil {
		if jobCtx.Err() == context.Canceled {
			logger.WorkerOperation(workerID, jobID, "cancelled")
			_ = tq.jobs.MarkTerminal(ctx, jobID, models.StatusCancelled, strPtr("job was cancelled"))
		} else {
			logger.WorkerOperation(workerID, jobID, "failed", "error", err)
			msg := err.Error()
			_ = tq.jobs.MarkTerminal(ctx, jobID, models.StatusFailed, &msg)
		}
		return
	}

	logger.WorkerOperation(workerID, jobID, "completed")
	_ = tq.jobs.MarkTerminal(ctx, jobID, models.StatusCompleted, nil)
}

func strPtr(s string) *string { return &s }

// jobScanner periodically re-enqueues jobs stuck in StatusPending, covering
// server restarts between create_job and run_job.
func (tq *TaskQueue) jobScanner() {
	defer tq.wg.Done()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	log.Println("Job scanner started")

	for {
		select {
		case <-ticker.C:
			tq.scanPendingJobs()
		case <-tq.ctx.Done():
			log.Println("Job scanner stopped")
			return
		}
	}
}

func (tq *TaskQueue) scanPendingJobs() {
	jobs, _, err := tq.jobs.List(tq.ctx, 0, 200)
	if err != nil {
		log.Printf("Failed to scan pending jobs: %v", err)
		return
	}

	for _, job := range jobs {
		if job.Status != models.StatusPending {
			continue
		}
		select {
		case tq.jobChannel <- job.ID:
			log.Printf("Enqueued pending job %s", job.ID)
		default:
			log.Printf("Queue is full, skipping job %s", job.ID)
		}
	}
}

// KillJob terminates a running job's OS process tree (if any) and cancels
// its context, then marks it cancelled. Per spec.md's cancellation
// semantics: a job past its last file-write is not interrupted mid-write,
// only between files.
func (tq *TaskQueue) KillJob(jobID string) error {
	tq.jobsMutex.Lock()
	defer tq.jobsMutex.Unlock()

	runningJob, exists := tq.runningJobs[jobID]
	if !exists {
		return fmt.Errorf("job %s is not currently running", jobID)
	}

	log.Printf("Cancelling job %s", jobID)

	if runningJob.Process != nil && runningJob.Process.Process != nil {
		log.Printf("Terminating process tree for PID %d (job %s)", runningJob.Process.Process.Pid, jobID)
		if err := killProcessTree(runningJob.Process.Process); err != nil {
			log.Printf("Failed to terminate process tree for job %s: %v, trying direct kill", jobID, err)
			_ = runningJob.Process.Process.Kill()
		}
	}

	runningJob.Cancel()

	go func() {
		_ = tq.jobs.MarkTerminal(context.Background(), jobID, models.StatusCancelled, strPtr("job was cancelled by user"))
	}()

	return nil
}

// IsJobRunning reports whether jobID currently occupies a worker slot.
func (tq *TaskQueue) IsJobRunning(jobID string) bool {
	tq.jobsMutex.RLock()
	defer tq.jobsMutex.RUnlock()

	_, exists := tq.runningJobs[jobID]
	return exists
}

func (tq *TaskQueue) autoScaler() {
	defer tq.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	log.Println("Auto-scaler started")

	for {
		select {
		case <-ticker.C:
			tq.checkAndScale()
		case <-tq.ctx.Done():
			log.Println("Auto-scaler stopped")
			return
		}
	}
}

func (tq *TaskQueue) checkAndScale() {
	if time.Since(tq.lastScaleTime) < 1*time.Minute {
		return
	}

	queueSize := len(tq.jobChannel)
	currentWorkers := int(atomic.LoadInt64(&tq.currentWorkers))

	tq.jobsMutex.RLock()
	runningJobsCount := len(tq.runningJobs)
	tq.jobsMutex.RUnlock()

	if queueSize > 10 && currentWorkers < tq.maxWorkers {
		newWorkerCount := currentWorkers + 1
		log.Printf("Scaling up workers: %d -> %d (queue size: %d)", currentWorkers, newWorkerCount, queueSize)

		atomic.StoreInt64(&tq.currentWorkers, int64(newWorkerCount))
		tq.wg.Add(1)
		go tq.worker(newWorkerCount - 1)
		tq.lastScaleTime = time.Now()

	} else if queueSize == 0 && runningJobsCount <= 1 && currentWorkers > tq.minWorkers {
		newWorkerCount := currentWorkers - 1
		log.Printf("Scaling down workers: %d -> %d (queue size: %d, running: %d)",
			currentWorkers, newWorkerCount, queueSize, runningJobsCount)

		atomic.StoreInt64(&tq.currentWorkers, int64(newWorkerCount))
		tq.lastScaleTime = time.Now()
		// Workers exit naturally when the channel drains; we don't signal them directly.
	}
}

// Stats reports queue depth and worker counts.
func (tq *TaskQueue) Stats() map[string]interface{} {
	tq.jobsMutex.RLock()
	runningJobsCount := len(tq.runningJobs)
	tq.jobsMutex.RUnlock()

	return map[string]interface{}{
		"queue_size":      len(tq.jobChannel),
		"queue_capacity":  cap(tq.jobChannel),
		"current_workers": int(atomic.LoadInt64(&tq.currentWorkers)),
		"min_workers":     tq.minWorkers,
		"max_workers":     tq.maxWorkers,
		"auto_scale":      tq.autoScale,
		"running_jobs":    runningJobsCount,
	}
}
