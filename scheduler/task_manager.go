package scheduler

import (
	"log"
	"sync"
	"time"

	"costcurve/models"

	"github.com/robfig/cron/v3"
)

// SearchFunc runs a product search for a queued task.
type SearchFunc func(query string, filters models.SearchFilters) ([]models.Product, error)

// taskRetention is how long finished tasks stay queryable before cleanup.
const taskRetention = 1 * time.Hour

// TaskManager manages async search tasks
type TaskManager struct {
	tasks      map[string]*models.SearchTask
	taskQueue  chan *models.SearchTask
	workers    int
	maxWorkers int
	searchFunc SearchFunc
	cron       *cron.Cron
	mutex      sync.RWMutex
	stopChan   chan bool
}

// NewTaskManager creates a new task manager and starts its dispatch loop
// plus the periodic cleanup job.
func NewTaskManager(searchFunc SearchFunc, maxWorkers int) *TaskManager {
	tm := &TaskManager{
		tasks:      make(map[string]*models.SearchTask),
		taskQueue:  make(chan *models.SearchTask, 100), // Buffer for 100 tasks
		workers:    0,
		maxWorkers: maxWorkers,
		searchFunc: searchFunc,
		cron:       cron.New(),
		stopChan:   make(chan bool),
	}

	// Drop finished tasks once they are older than the retention window.
	tm.cron.AddFunc("@every 5m", func() {
		tm.CleanupOldTasks(taskRetention)
	})
	tm.cron.Start()

	go tm.processTasks()
	log.Printf("🚀 Task manager started with %d max workers", maxWorkers)
	return tm
}

// SubmitTask submits a new search task
func (tm *TaskManager) SubmitTask(query string, filters models.SearchFilters) *models.SearchTask {
	task := models.NewSearchTask(query, filters)

	tm.mutex.Lock()
	tm.tasks[task.ID] = task
	tm.mutex.Unlock()

	// Submit to queue
	select {
	case tm.taskQueue <- task:
		log.Printf("📝 Task %s submitted for query %q", task.ID, query)
	default:
		tm.failTask(task, "Task queue is full")
		log.Printf("❌ Failed to submit task %s - queue full", task.ID)
	}

	return task
}

// GetTask returns a snapshot of a task by ID. Callers get a copy, never the
// live record a worker may still be mutating.
func (tm *TaskManager) GetTask(taskID string) (*models.SearchTask, bool) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	task, exists := tm.tasks[taskID]
	if !exists {
		return nil, false
	}
	snapshot := *task
	return &snapshot, true
}

// GetActiveTasks returns snapshots of all active tasks
func (tm *TaskManager) GetActiveTasks() []*models.SearchTask {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	var activeTasks []*models.SearchTask
	for _, task := range tm.tasks {
		if task.IsActive() {
			snapshot := *task
			activeTasks = append(activeTasks, &snapshot)
		}
	}

	return activeTasks
}

// failTask transitions a task to failed under the manager's lock.
func (tm *TaskManager) failTask(task *models.SearchTask, reason string) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	task.Fail(reason)
}

// CleanupOldTasks removes completed tasks older than specified duration
func (tm *TaskManager) CleanupOldTasks(maxAge time.Duration) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for taskID, task := range tm.tasks {
		if task.IsCompleted() && task.CreatedAt.Before(cutoff) {
			delete(tm.tasks, taskID)
			log.Printf("🧹 Cleaned up old task: %s", taskID)
		}
	}
}

// processTasks processes tasks from the queue
func (tm *TaskManager) processTasks() {
	for {
		select {
		case task := <-tm.taskQueue:
			// Start a new worker if we haven't reached max
			tm.mutex.Lock()
			canStart := tm.workers < tm.maxWorkers
			if canStart {
				tm.workers++
			}
			tm.mutex.Unlock()

			if canStart {
				go tm.worker(task)
			} else {
				// Re-queue the task if we're at max workers
				go func() {
					time.Sleep(1 * time.Second) // Wait a bit before re-queuing
					select {
					case tm.taskQueue <- task:
						log.Printf("🔄 Re-queued task %s (max workers reached)", task.ID)
					default:
						tm.failTask(task, "System overloaded, unable to process task")
						log.Printf("❌ Failed to re-queue task %s", task.ID)
					}
				}()
			}

		case <-tm.stopChan:
			log.Println("🛑 Task manager stopped")
			return
		}
	}
}

// worker processes a single task. Every task state transition happens under
// tm.mutex so status reads see a consistent record.
func (tm *TaskManager) worker(task *models.SearchTask) {
	defer func() {
		tm.mutex.Lock()
		tm.workers--
		active := tm.workers
		tm.mutex.Unlock()
		log.Printf("👷 Worker finished, active workers: %d", active)
	}()

	log.Printf("👷 Worker started processing task %s for query %q", task.ID, task.Query)

	tm.mutex.Lock()
	task.Start()
	tm.mutex.Unlock()

	products, err := tm.searchFunc(task.Query, task.Filters)
	if err != nil {
		tm.failTask(task, "Search failed: "+err.Error())
		return
	}

	tm.mutex.Lock()
	task.Complete(products)
	duration := task.Duration()
	tm.mutex.Unlock()

	log.Printf("✅ Task %s completed with %d products in %v", task.ID, len(products), duration)
}

// Stop stops the task manager
func (tm *TaskManager) Stop() {
	tm.cron.Stop()
	close(tm.stopChan)
	log.Println("🛑 Task manager stopping...")
}

// GetStats returns task manager statistics
func (tm *TaskManager) GetStats() map[string]interface{} {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	stats := map[string]interface{}{
		"total_tasks":    len(tm.tasks),
		"active_workers": tm.workers,
		"max_workers":    tm.maxWorkers,
		"queue_size":     len(tm.taskQueue),
	}

	// Count tasks by status
	statusCounts := make(map[string]int)
	for _, task := range tm.tasks {
		status := string(task.Status)
		statusCounts[status]++
	}
	stats["tasks_by_status"] = statusCounts

	return stats
}
