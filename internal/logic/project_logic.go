package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/blues/nftsender/internal/model"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound = errors.New("项目不存在")
	ErrInvalidProject  = errors.New("项目参数不合法")
)

// ProjectLogic 项目业务逻辑
type ProjectLogic struct {
	db *gorm.DB
}

// NewProjectLogic 创建项目业务逻辑
func NewProjectLogic(db *gorm.DB) *ProjectLogic {
	return &ProjectLogic{db: db}
}

// CreateProject 创建项目
func (p *ProjectLogic) CreateProject(ctx context.Context, project *model.ProjectModel) error {
	project.Normalize()
	if err := p.validateProject(project); err != nil {
		return err
	}

	if err := p.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("创建项目失败: %w", err)
	}
	return nil
}

// GetProjects 获取项目列表，最近创建的在前
func (p *ProjectLogic) GetProjects(ctx context.Context) ([]model.ProjectModel, error) {
	var projects []model.ProjectModel
	if err := p.db.WithContext(ctx).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("获取项目列表失败: %w", err)
	}
	return projects, nil
}

// GetProject 获取项目详情
func (p *ProjectLogic) GetProject(ctx context.Context, id string) (*model.ProjectModel, error) {
	var project model.ProjectModel
	if err := p.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("获取项目详情失败: %w", err)
	}
	return &project, nil
}

// GetLatestProject 获取最近创建的项目，用于仪表盘默认选中
func (p *ProjectLogic) GetLatestProject(ctx context.Context) (*model.ProjectModel, error) {
	var project model.ProjectModel
	if err := p.db.WithContext(ctx).Order("created_at DESC").First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("获取最新项目失败: %w", err)
	}
	return &project, nil
}

// UpdateProject 更新项目配置
func (p *ProjectLogic) UpdateProject(ctx context.Context, id string, changes *model.ProjectModel) (*model.ProjectModel, error) {
	project, err := p.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if changes.Name != "" {
		project.Name = changes.Name
	}
	if changes.ApiKey != "" {
		project.ApiKey = changes.ApiKey
	}
	if changes.TemplateId != "" {
		project.TemplateId = changes.TemplateId
	}
	if changes.CollectionId != "" {
		project.CollectionId = changes.CollectionId
	}
	if changes.Blockchain != "" {
		project.Blockchain = changes.Blockchain
	}
	project.Normalize()
	if err := p.validateProject(project); err != nil {
		return nil, err
	}

	if err := p.db.WithContext(ctx).Save(project).Error; err != nil {
		return nil, fmt.Errorf("更新项目失败: %w", err)
	}
	return project, nil
}

// DeleteProject 删除项目，铸造记录保留
func (p *ProjectLogic) DeleteProject(ctx context.Context, id string) error {
	result := p.db.WithContext(ctx).Delete(&model.ProjectModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("删除项目失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// validateProject 验证项目数据
func (p *ProjectLogic) validateProject(project *model.ProjectModel) error {
	if project.Name == "" {
		return fmt.Errorf("%w: 项目名称不能为空", ErrInvalidProject)
	}
	if project.ApiKey == "" {
		return fmt.Errorf("%w: API key 不能为空", ErrInvalidProject)
	}
	if project.TemplateId == "" {
		return fmt.Errorf("%w: 模板ID不能为空", ErrInvalidProject)
	}
	if !project.Blockchain.IsValid() {
		return fmt.Errorf("%w: 不支持的链 %s", ErrInvalidProject, project.Blockchain)
	}
	return nil
}
