package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/blues/nftsender/internal/logger"
	"github.com/blues/nftsender/internal/model"
	"gorm.io/gorm"
)

// MintRecordLogic 铸造记录存储
type MintRecordLogic struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMintRecordLogic 创建铸造记录存储
func NewMintRecordLogic(db *gorm.DB) *MintRecordLogic {
	return &MintRecordLogic{db: db, now: time.Now}
}

// CreatePending 为每个接收者写入一条 pending 记录
// 写入失败的接收者会得到一条临时记录，仅保留在内存中
func (m *MintRecordLogic) CreatePending(ctx context.Context, project *model.ProjectModel, recipients []string) ([]model.MintRecordModel, int) {
	records := make([]model.MintRecordModel, 0, len(recipients))
	failed := 0
	for _, recipient := range recipients {
		projectID := project.Id
		record := model.MintRecordModel{
			Recipient:  recipient,
			Status:     model.MintStatusPending,
			ProjectId:  &projectID,
			TemplateId: project.TemplateId,
		}
		if err := m.db.WithContext(ctx).Create(&record).Error; err != nil {
			logger.Warn("写入铸造记录失败 recipient=%s: %v", recipient, err)
			now := m.now()
			record.Id = model.NewTempID()
			record.CreatedAt = now
			record.UpdatedAt = now
			failed++
		}
		records = append(records, record)
	}
	return records, failed
}

// Get 获取单条记录
func (m *MintRecordLogic) Get(ctx context.Context, id string) (*model.MintRecordModel, error) {
	var record model.MintRecordModel
	result := m.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&record)
	if result.Error != nil {
		return nil, fmt.Errorf("获取铸造记录失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, model.ErrRecordNotFound
	}
	return &record, nil
}

// ListByProject 获取项目下所有记录，最新的在前
func (m *MintRecordLogic) ListByProject(ctx context.Context, projectID string) ([]model.MintRecordModel, error) {
	var records []model.MintRecordModel
	if err := m.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("获取铸造记录失败: %w", err)
	}
	return records, nil
}

// UpdateStatus 写入状态，后写覆盖先写；临时记录直接跳过
func (m *MintRecordLogic) UpdateStatus(ctx context.Context, id string, status model.MintStatus, errorMessage string) error {
	if model.IsTempID(id) {
		return nil
	}

	updates := map[string]interface{}{
		"status":        status,
		"error_message": nil,
		"updated_at":    m.now(),
	}
	if status == model.MintStatusFailed {
		updates["error_message"] = errorMessage
	}

	result := m.db.WithContext(ctx).Model(&model.MintRecordModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("更新铸造记录状态失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrRecordNotFound
	}
	return nil
}

// Delete 删除记录；临时ID不会发给数据库，不存在的记录不报错
func (m *MintRecordLogic) Delete(ctx context.Context, ids []string) error {
	persisted := make([]string, 0, len(ids))
	for _, id := range ids {
		if !model.IsTempID(id) {
			persisted = append(persisted, id)
		}
	}
	if len(persisted) == 0 {
		return nil
	}

	if err := m.db.WithContext(ctx).Where("id IN ?", persisted).Delete(&model.MintRecordModel{}).Error; err != nil {
		return fmt.Errorf("删除铸造记录失败: %w", err)
	}
	return nil
}
