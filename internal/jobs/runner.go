package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// Task is a named unit of background work.
type Task interface {
	Name() string
	Run()
}

// CronTask is a task with its own cron schedule.
type CronTask interface {
	Schedule() string
	Task
}

// TaskExecutor runs tasks on their schedules and skips a tick when the
// previous run of the same task is still in flight.
type TaskExecutor struct {
	cron    *cron.Cron
	tasks   []CronTask
	running mapset.Set[string]
	mu      sync.Mutex
}

func NewTaskExecutor(tasks []CronTask) *TaskExecutor {
	return &TaskExecutor{
		cron:    cron.New(),
		tasks:   tasks,
		running: mapset.NewSet[string](),
	}
}

// Run schedules every task. Each run executes in its own goroutine inside
// the cron.
func (t *TaskExecutor) Run() {
	for _, task := range t.tasks {
		err := t.cron.AddFunc(task.Schedule(), func() {
			t.mu.Lock()
			if t.running.Contains(task.Name()) {
				t.mu.Unlock()
				logrus.Warnf("task %s is still running, skipping tick", task.Name())
				return
			}
			t.running.Add(task.Name())
			t.mu.Unlock()

			defer func() {
				t.mu.Lock()
				defer t.mu.Unlock()
				t.running.Remove(task.Name())
			}()

			task.Run()
		})

		if err != nil {
			logrus.Errorf("failed to schedule task %s: %v", task.Name(), err)
			panic(err)
		}
	}

	t.cron.Start()
}

func (t *TaskExecutor) Stop() {
	logrus.Infof("stopping all tasks")
	t.cron.Stop()
}
