package task

import (
	"context"
	"time"

	"github.com/blues/nftsender/internal/config"
	"github.com/blues/nftsender/internal/logger"
	"github.com/blues/nftsender/internal/logic"
	"github.com/blues/nftsender/internal/validation"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// ProjectValidationJob 定期重新校验所有项目的配置
type ProjectValidationJob struct {
	projectLogic *logic.ProjectLogic
	watcher      *validation.Watcher
	config       *config.Config
}

// NewProjectValidationJob 创建项目校验任务
func NewProjectValidationJob(db *gorm.DB, watcher *validation.Watcher, cfg *config.Config) *ProjectValidationJob {
	return &ProjectValidationJob{
		projectLogic: logic.NewProjectLogic(db),
		watcher:      watcher,
		config:       cfg,
	}
}

// GetName 获取任务名称
func (j *ProjectValidationJob) GetName() string {
	return "project_validation"
}

// GetSchedule 获取调度配置
func (j *ProjectValidationJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.ValidationInterval) * time.Second)
}

// Execute 执行任务
func (j *ProjectValidationJob) Execute() {
	logger.Info("Starting project validation task")
	ctx := context.Background()

	projects, err := j.projectLogic.GetProjects(ctx)
	if err != nil {
		logger.Error("Failed to fetch projects for validation: %v", err)
		return
	}

	invalid := 0
	for _, project := range projects {
		status := j.watcher.Check(ctx, project)
		if status.State == validation.StateInvalid {
			invalid++
			logger.Warn("project %s (%s) invalid: %s", project.Id, project.Name, status.Reason)
		}
	}

	logger.Info("Project validation task completed: %d checked, %d invalid", len(projects), invalid)
}
