package task

import (
	"github.com/blues/nftsender/internal/config"
	"github.com/blues/nftsender/internal/logger"
	"github.com/blues/nftsender/internal/validation"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Job 定时任务
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	watcher   *validation.Watcher
	config    *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(db *gorm.DB, watcher *validation.Watcher, cfg *config.Config) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Manager{
		scheduler: s,
		db:        db,
		watcher:   watcher,
		config:    cfg,
	}, nil
}

// Start 注册所有任务并启动调度器
func (m *Manager) Start() {
	m.RegisterJobs()
	m.scheduler.Start()
	logger.Info("Task manager started successfully")
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	if m.config.Task.ValidationInterval <= 0 {
		logger.Info("project validation job disabled")
		return
	}
	m.Register(NewProjectValidationJob(m.db, m.watcher, m.config))
}

// Register 注册一个任务；上一次未结束时本次顺延
func (m *Manager) Register(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Jobs 已注册的任务
func (m *Manager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
