package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MintStatus 铸造状态
type MintStatus string

const (
	MintStatusPending MintStatus = "pending" // 待铸造
	MintStatusMinted  MintStatus = "minted"  // 已铸造
	MintStatusFailed  MintStatus = "failed"  // 失败
)

// TempIDPrefix 未持久化记录的临时ID前缀
const TempIDPrefix = "temp-"

var (
	ErrInvalidTransition = errors.New("mint record: invalid status transition")
	ErrRecordNotFound    = errors.New("mint record: not found")
)

// MintRecordModel 单个接收者的铸造记录
type MintRecordModel struct {
	Id        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Recipient    string     `json:"recipient" gorm:"not null"`
	Status       MintStatus `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	ErrorMessage *string    `json:"error_message,omitempty" gorm:"type:text"`

	// 创建时所属项目及模板（模板为创建时快照）
	ProjectId  *string `json:"project_id,omitempty" gorm:"type:varchar(64);index"`
	TemplateId string  `json:"template_id"`
}

// TableName 自定义表名
func (MintRecordModel) TableName() string {
	return "mints"
}

// BeforeCreate 分配 uuid
func (m *MintRecordModel) BeforeCreate(tx *gorm.DB) error {
	if m.Id == "" || IsTempID(m.Id) {
		m.Id = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = MintStatusPending
	}
	return nil
}

// IsTempID 是否为未持久化的临时ID
func IsTempID(id string) bool {
	return id == "" || strings.HasPrefix(id, TempIDPrefix)
}

// NewTempID 生成临时ID
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTemp 记录是否从未持久化
func (m *MintRecordModel) IsTemp() bool {
	return IsTempID(m.Id)
}

// ErrorText 返回错误信息，没有时为空串
func (m *MintRecordModel) ErrorText() string {
	if m.ErrorMessage == nil {
		return ""
	}
	return *m.ErrorMessage
}

// CanTransition pending→{minted,failed,pending}, failed→pending; minted 为终态
func CanTransition(from, to MintStatus) bool {
	switch from {
	case MintStatusPending:
		return to == MintStatusPending || to == MintStatusMinted || to == MintStatusFailed
	case MintStatusFailed:
		return to == MintStatusPending
	default:
		return false
	}
}

// Apply 执行状态迁移并刷新 updated_at；pending→pending 不做任何修改
func (m *MintRecordModel) Apply(to MintStatus, errorMessage string, at time.Time) error {
	if !CanTransition(m.Status, to) {
		return ErrInvalidTransition
	}
	if m.Status == MintStatusPending && to == MintStatusPending {
		return nil
	}

	m.Status = to
	if to == MintStatusFailed {
		msg := errorMessage
		m.ErrorMessage = &msg
	} else {
		m.ErrorMessage = nil
	}
	m.UpdatedAt = at
	return nil
}

// MarkMinted 标记为已铸造
func (m *MintRecordModel) MarkMinted(at time.Time) error {
	return m.Apply(MintStatusMinted, "", at)
}

// MarkFailed 标记为失败
func (m *MintRecordModel) MarkFailed(errorMessage string, at time.Time) error {
	return m.Apply(MintStatusFailed, errorMessage, at)
}

// MarkPending 重试前回到待铸造，清除错误信息
func (m *MintRecordModel) MarkPending(at time.Time) error {
	return m.Apply(MintStatusPending, "", at)
}

// MintStats 各状态数量
type MintStats struct {
	Total   int `json:"total"`
	Minted  int `json:"minted"`
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
}

// CountByStatus 统计记录状态
func CountByStatus(records []MintRecordModel) MintStats {
	stats := MintStats{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case MintStatusMinted:
			stats.Minted++
		case MintStatusPending:
			stats.Pending++
		case MintStatusFailed:
			stats.Failed++
		}
	}
	return stats
}
