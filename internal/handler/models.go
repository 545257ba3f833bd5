package handler

import (
	"time"

	"github.com/blues/nftsender/internal/dispatcher"
	"github.com/blues/nftsender/internal/model"
	"github.com/blues/nftsender/internal/validation"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 项目相关请求/响应模型

// ProjectRequest 创建/更新项目请求
type ProjectRequest struct {
	Name         string           `json:"name"`
	ApiKey       string           `json:"apiKey"`
	TemplateId   string           `json:"templateId"`
	CollectionId string           `json:"collectionId"`
	Blockchain   model.Blockchain `json:"blockchain"`
}

// ToModel 转换为数据库模型
func (r *ProjectRequest) ToModel() *model.ProjectModel {
	return &model.ProjectModel{
		Name:         r.Name,
		ApiKey:       r.ApiKey,
		TemplateId:   r.TemplateId,
		CollectionId: r.CollectionId,
		Blockchain:   r.Blockchain,
	}
}

// ProjectResponse 项目响应模型，不返回 API key
type ProjectResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	HasApiKey    bool             `json:"hasApiKey"`
	TemplateId   string           `json:"templateId"`
	CollectionId string           `json:"collectionId"`
	Blockchain   model.Blockchain `json:"blockchain"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// ValidationResponse 项目校验状态
type ValidationResponse struct {
	ProjectID string            `json:"projectId"`
	Status    validation.Status `json:"status"`
}

// 铸造记录相关请求/响应模型

// RecipientsRequest 粘贴的接收者文本
type RecipientsRequest struct {
	Text string `json:"text"`
}

// RecordIDsRequest 选中的记录
type RecordIDsRequest struct {
	RecordIds []string `json:"recordIds"`
}

// MintRecordResponse 铸造记录响应模型
type MintRecordResponse struct {
	ID           string           `json:"id"`
	Recipient    string           `json:"recipient"`
	Status       model.MintStatus `json:"status"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
	ProjectID    string           `json:"projectId,omitempty"`
	TemplateID   string           `json:"templateId"`
	Temporary    bool             `json:"temporary"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// RecipientsResponse 接收者处理结果
type RecipientsResponse struct {
	Count   int                  `json:"count"`
	Unsaved int                  `json:"unsaved"`
	Records []MintRecordResponse `json:"records"`
}

// DispatchResponse 调度结果；异步时 Summary 为空
type DispatchResponse struct {
	Dispatched int                 `json:"dispatched"`
	Generation uint64              `json:"generation"`
	Summary    *dispatcher.Summary `json:"summary,omitempty"`
}

// 转换函数

// ToProjectResponse 将数据库模型转换为响应模型
func ToProjectResponse(project *model.ProjectModel) ProjectResponse {
	return ProjectResponse{
		ID:           project.Id,
		Name:         project.Name,
		HasApiKey:    project.ApiKey != "",
		TemplateId:   project.TemplateId,
		CollectionId: project.EffectiveCollectionID(),
		Blockchain:   project.Blockchain,
		CreatedAt:    project.CreatedAt,
		UpdatedAt:    project.UpdatedAt,
	}
}

// ToProjectResponseList 将数据库模型列表转换为响应模型列表
func ToProjectResponseList(projects []model.ProjectModel) []ProjectResponse {
	result := make([]ProjectResponse, len(projects))
	for i := range projects {
		result[i] = ToProjectResponse(&projects[i])
	}
	return result
}

// ToMintRecordResponse 将铸造记录转换为响应模型
func ToMintRecordResponse(record *model.MintRecordModel) MintRecordResponse {
	resp := MintRecordResponse{
		ID:           record.Id,
		Recipient:    record.Recipient,
		Status:       record.Status,
		ErrorMessage: record.ErrorText(),
		TemplateID:   record.TemplateId,
		Temporary:    record.IsTemp(),
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
	if record.ProjectId != nil {
		resp.ProjectID = *record.ProjectId
	}
	return resp
}

// ToMintRecordResponseList 将铸造记录列表转换为响应模型列表
func ToMintRecordResponseList(records []model.MintRecordModel) []MintRecordResponse {
	result := make([]MintRecordResponse, len(records))
	for i := range records {
		result[i] = ToMintRecordResponse(&records[i])
	}
	return result
}
