// Пакет для управления фоновыми задачами по расписанию cron.
//
// Основные возможности:
//   - Регистрация задач по имени.
//   - Перезагрузка расписания из реестра.
//   - Восстановление после паники в задаче.
package cronmanager

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type Job struct {
	Func     func()
	Schedule string
}

type JobRegistry map[string]Job

type CronManager struct {
	dispatcher  *cron.Cron
	jobs        map[string]cron.EntryID
	mu          sync.Mutex
	jobRegistry JobRegistry
}

func NewCronManager(jobRegistry JobRegistry) *CronManager {
	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))
	return &CronManager{
		dispatcher:  cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		jobs:        make(map[string]cron.EntryID),
		jobRegistry: jobRegistry,
	}
}

// LoadJobs заменяет расписание задачами из реестра. Задачи с неверным расписанием пропускаются и попадают в ошибку.
func (cm *CronManager) LoadJobs() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for name, entryID := range cm.jobs {
		cm.dispatcher.Remove(entryID)
		delete(cm.jobs, name)
	}

	var errs []error
	for name, job := range cm.jobRegistry {
		id, err := cm.dispatcher.AddFunc(job.Schedule, job.Func)
		if err != nil {
			slog.Error("Failed to add job", "name", name, "schedule", job.Schedule, "err", err)
			errs = append(errs, fmt.Errorf("job %q: %w", name, err))
			continue
		}
		cm.jobs[name] = id
	}
	return errors.Join(errs...)
}

func (cm *CronManager) RemoveJob(name string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if entryID, exists := cm.jobs[name]; exists {
		cm.dispatcher.Remove(entryID)
		delete(cm.jobs, name)
	}
}

// Next время следующего запуска задачи. Нулевое время, если задача не запланирована или диспетчер не запущен.
func (cm *CronManager) Next(name string) time.Time {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	id, ok := cm.jobs[name]
	if !ok {
		return time.Time{}
	}
	return cm.dispatcher.Entry(id).Next
}

func (cm *CronManager) Jobs() []string {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	names := make([]string, 0, len(cm.jobs))
	for name := range cm.jobs {
		names = append(names, name)
	}
	return names
}

func (cm *CronManager) Start() {
	cm.dispatcher.Start()
}

// Stop ждет завершения уже запущенных задач.
func (cm *CronManager) Stop() {
	ctx := cm.dispatcher.Stop()
	<-ctx.Done()
}
