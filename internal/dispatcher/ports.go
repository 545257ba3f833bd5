package dispatcher

import (
	"context"
	"time"

	"github.com/blues/nftsender/internal/edge"
	"github.com/blues/nftsender/internal/model"
	"github.com/blues/nftsender/internal/provider"
)

// Minter 一次铸造调用，结果已归一化
type Minter interface {
	Mint(ctx context.Context, req edge.Request) provider.Result
}

// RecordStore 铸造记录存储
type RecordStore interface {
	UpdateStatus(ctx context.Context, id string, status model.MintStatus, errorMessage string) error
	Delete(ctx context.Context, ids []string) error
	ListByProject(ctx context.Context, projectID string) ([]model.MintRecordModel, error)
}

// StatusUpdate 一次状态变化
type StatusUpdate struct {
	RecordID     string
	Status       model.MintStatus
	ErrorMessage string
	At           time.Time
}

// StatusSink 接收状态变化（内存状态）
type StatusSink interface {
	Report(update StatusUpdate) bool
}

// SinkFunc 函数适配
type SinkFunc func(update StatusUpdate) bool

// Report 调用函数本身
func (f SinkFunc) Report(update StatusUpdate) bool {
	return f(update)
}

// discard 调用方不关心内存状态时使用
var discard = SinkFunc(func(StatusUpdate) bool { return true })
