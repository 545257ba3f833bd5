package edge

import (
	"errors"
	"strings"

	"github.com/blues/nftsender/internal/model"
)

var ErrMissingParameters = errors.New("Missing required parameters")

// Request 单次铸造请求，recordId 用于回写铸造记录
type Request struct {
	RecordId     string           `json:"recordId,omitempty"`
	Recipient    string           `json:"recipient"`
	ApiKey       string           `json:"apiKey"`
	TemplateId   string           `json:"templateId"`
	CollectionId string           `json:"collectionId,omitempty"`
	Blockchain   model.Blockchain `json:"blockchain"`
}

// NewRequest 根据记录与项目构造请求
func NewRequest(record model.MintRecordModel, project model.ProjectModel) Request {
	return Request{
		RecordId:     record.Id,
		Recipient:    record.Recipient,
		ApiKey:       project.ApiKey,
		TemplateId:   project.TemplateId,
		CollectionId: project.CollectionId,
		Blockchain:   project.Blockchain,
	}
}

// Normalize 去掉首尾空白并补全默认链
func (r *Request) Normalize() {
	r.RecordId = strings.TrimSpace(r.RecordId)
	r.Recipient = strings.TrimSpace(r.Recipient)
	r.ApiKey = strings.TrimSpace(r.ApiKey)
	r.TemplateId = strings.TrimSpace(r.TemplateId)
	r.CollectionId = strings.TrimSpace(r.CollectionId)
	if r.Blockchain == "" {
		r.Blockchain = model.DefaultBlockchain
	}
}

// Validate 检查必填参数，返回缺失的字段
func (r *Request) Validate() []string {
	var missing []string
	if r.Recipient == "" {
		missing = append(missing, "recipient")
	}
	if r.ApiKey == "" {
		missing = append(missing, "apiKey")
	}
	if r.TemplateId == "" && r.CollectionId == "" {
		missing = append(missing, "templateId")
	}
	return missing
}

// EffectiveCollectionID collectionId 为空时使用 templateId
func (r *Request) EffectiveCollectionID() string {
	if r.CollectionId != "" {
		return r.CollectionId
	}
	return r.TemplateId
}

// ProviderTemplateID 仅当 templateId 与集合ID不同才需要在请求体中携带
func (r *Request) ProviderTemplateID() string {
	if r.TemplateId == "" || r.TemplateId == r.EffectiveCollectionID() {
		return ""
	}
	return r.TemplateId
}
