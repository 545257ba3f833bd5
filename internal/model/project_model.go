package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Blockchain 支持的链
type Blockchain string

const (
	BlockchainSolana          Blockchain = "solana"
	BlockchainPolygonAmoy     Blockchain = "polygon-amoy"
	BlockchainEthereumSepolia Blockchain = "ethereum-sepolia"
	BlockchainChiliz          Blockchain = "chiliz"
)

// DefaultBlockchain 未指定链时使用
const DefaultBlockchain = BlockchainChiliz

// Blockchains 返回所有支持的链
func Blockchains() []Blockchain {
	return []Blockchain{BlockchainSolana, BlockchainPolygonAmoy, BlockchainEthereumSepolia, BlockchainChiliz}
}

// IsValid 是否为支持的链
func (b Blockchain) IsValid() bool {
	for _, c := range Blockchains() {
		if b == c {
			return true
		}
	}
	return false
}

// IsEVM 是否为 EVM 链
func (b Blockchain) IsEVM() bool {
	return b != BlockchainSolana && b.IsValid()
}

// ProjectModel 铸造项目
type ProjectModel struct {
	Id        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name   string `json:"name" gorm:"not null"`
	ApiKey string `json:"api_key" gorm:"not null"`

	// 外部服务标识
	TemplateId   string     `json:"template_id" gorm:"not null"`
	CollectionId string     `json:"collection_id"`
	Blockchain   Blockchain `json:"blockchain" gorm:"type:varchar(32);default:'chiliz'"`
}

// TableName 自定义表名
func (ProjectModel) TableName() string {
	return "projects"
}

// BeforeCreate 分配 uuid
func (p *ProjectModel) BeforeCreate(tx *gorm.DB) error {
	if p.Id == "" {
		p.Id = uuid.NewString()
	}
	return nil
}

// EffectiveCollectionID collection_id 为空时回退到 template_id
func (p *ProjectModel) EffectiveCollectionID() string {
	if id := strings.TrimSpace(p.CollectionId); id != "" {
		return id
	}
	return strings.TrimSpace(p.TemplateId)
}

// Normalize 清理输入并补全默认值
func (p *ProjectModel) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.ApiKey = strings.TrimSpace(p.ApiKey)
	p.TemplateId = strings.TrimSpace(p.TemplateId)
	p.CollectionId = strings.TrimSpace(p.CollectionId)
	if p.CollectionId == "" {
		p.CollectionId = p.TemplateId
	}
	if p.Blockchain == "" {
		p.Blockchain = DefaultBlockchain
	}
}
