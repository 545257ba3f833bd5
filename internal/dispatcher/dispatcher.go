package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blues/nftsender/internal/edge"
	"github.com/blues/nftsender/internal/logger"
	"github.com/blues/nftsender/internal/model"
	"github.com/panjf2000/ants/v2"
)

// DefaultBatchSize 每批并发的铸造调用数
const DefaultBatchSize = 5

// MissingConfigMessage 项目缺少 API key 或集合ID
const MissingConfigMessage = "Missing API key or collection ID"

var ErrNoPendingRecords = errors.New("no pending records selected")

// MintResult 单条铸造结果
type MintResult struct {
	RecordID  string `json:"recordId"`
	Recipient string `json:"recipient"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Summary 批量铸造汇总
type Summary struct {
	SuccessCount int `json:"successCount"`
	FailureCount int `json:"failureCount"`
}

// Dispatcher 铸造调度：分批处理，批内并发，批间串行
type Dispatcher struct {
	minter    Minter
	store     RecordStore
	batchSize int
	now       func() time.Time
}

// New 创建调度器
func New(minter Minter, store RecordStore, batchSize int) *Dispatcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Dispatcher{
		minter:    minter,
		store:     store,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// BatchSize 每批大小
func (d *Dispatcher) BatchSize() int {
	return d.batchSize
}

// ProcessMultipleMints 只处理 pending 记录；第 N+1 批在第 N 批全部结束后才开始
func (d *Dispatcher) ProcessMultipleMints(ctx context.Context, records []model.MintRecordModel, project model.ProjectModel, sink StatusSink) (Summary, error) {
	pending := make([]model.MintRecordModel, 0, len(records))
	for _, r := range records {
		if r.Status == model.MintStatusPending {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		return Summary{}, ErrNoPendingRecords
	}

	logger.Info("minting started: project=%s records=%d batch=%d", project.Id, len(pending), d.batchSize)

	pool, err := ants.NewPool(d.batchSize)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to create pool of size %d: %w", d.batchSize, err)
	}
	defer pool.Release()

	var summary Summary
	for start := 0; start < len(pending); start += d.batchSize {
		end := start + d.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]
		logger.Debug("processing batch %d-%d of %d", start+1, end, len(pending))

		results := make([]MintResult, len(batch))
		var wg sync.WaitGroup
		for i := range batch {
			i, record := i, batch[i]
			wg.Add(1)
			task := func() {
				defer wg.Done()
				results[i] = d.MintNFT(ctx, record, project, sink)
			}
			if err := pool.Submit(task); err != nil {
				logger.Error("Failed to submit mint task to pool: %v", err)
				task()
			}
		}
		wg.Wait()

		for _, r := range results {
			if r.Success {
				summary.SuccessCount++
			} else {
				summary.FailureCount++
			}
		}
	}

	logger.Info("minting completed: project=%s minted=%d failed=%d", project.Id, summary.SuccessCount, summary.FailureCount)
	return summary, nil
}

// MintNFT 对一条记录发起一次铸造调用
func (d *Dispatcher) MintNFT(ctx context.Context, record model.MintRecordModel, project model.ProjectModel, sink StatusSink) MintResult {
	if sink == nil {
		sink = discard
	}
	result := MintResult{RecordID: record.Id, Recipient: record.Recipient}

	if project.ApiKey == "" || project.EffectiveCollectionID() == "" {
		logger.Error("mint %s: %s", record.Recipient, MissingConfigMessage)
		result.Error = MissingConfigMessage
		d.transition(ctx, record.Id, model.MintStatusFailed, MissingConfigMessage, sink)
		return result
	}

	logger.Debug("minting for recipient=%s template=%s collection=%s chain=%s",
		record.Recipient, project.TemplateId, project.EffectiveCollectionID(), project.Blockchain)

	res := d.minter.Mint(ctx, edge.NewRequest(record, project))
	if res.OK {
		logger.Info("minted NFT for %s on %s", record.Recipient, project.Blockchain)
		result.Success = true
		d.transition(ctx, record.Id, model.MintStatusMinted, "", sink)
		return result
	}

	msg := mismatchHint(res.ErrorMessage(), record.Recipient, project.Blockchain)
	if msg == "" {
		msg = "Unknown error"
	}
	logger.Error("failed to mint NFT for %s on %s: %s", record.Recipient, project.Blockchain, msg)
	result.Error = msg
	d.transition(ctx, record.Id, model.MintStatusFailed, msg, sink)
	return result
}

// RetryMint 仅对 failed 记录生效：先回到 pending 再铸造
func (d *Dispatcher) RetryMint(ctx context.Context, record model.MintRecordModel, project model.ProjectModel, sink StatusSink) (MintResult, bool) {
	if record.Status != model.MintStatusFailed {
		return MintResult{}, false
	}
	if sink == nil {
		sink = discard
	}

	logger.Info("retrying mint for %s on %s", record.Recipient, project.Blockchain)
	d.transition(ctx, record.Id, model.MintStatusPending, "", sink)

	record.Status = model.MintStatusPending
	record.ErrorMessage = nil
	return d.MintNFT(ctx, record, project, sink), true
}

// RetryFailed 把所有 failed 记录重置为 pending 后批量铸造
func (d *Dispatcher) RetryFailed(ctx context.Context, records []model.MintRecordModel, project model.ProjectModel, sink StatusSink) (Summary, error) {
	if sink == nil {
		sink = discard
	}
	retry := make([]model.MintRecordModel, 0, len(records))
	for _, r := range records {
		if r.Status != model.MintStatusFailed {
			continue
		}
		d.transition(ctx, r.Id, model.MintStatusPending, "", sink)
		r.Status = model.MintStatusPending
		r.ErrorMessage = nil
		retry = append(retry, r)
	}
	return d.ProcessMultipleMints(ctx, retry, project, sink)
}

// DeleteRecord 删除单条记录；临时记录不访问存储
func (d *Dispatcher) DeleteRecord(ctx context.Context, record model.MintRecordModel) bool {
	return d.DeleteMultipleRecords(ctx, []string{record.Id})
}

// DeleteMultipleRecords 批量删除，临时ID被跳过
func (d *Dispatcher) DeleteMultipleRecords(ctx context.Context, ids []string) bool {
	persisted := make([]string, 0, len(ids))
	for _, id := range ids {
		if !model.IsTempID(id) {
			persisted = append(persisted, id)
		}
	}
	if len(persisted) == 0 {
		return true
	}
	if err := d.store.Delete(ctx, persisted); err != nil {
		logger.Error("Error deleting records: %v", err)
		return false
	}
	logger.Info("deleted %d records", len(persisted))
	return true
}

// LoadMintingRecordsForProject 最新的在前；存储出错时返回空
func (d *Dispatcher) LoadMintingRecordsForProject(ctx context.Context, projectID string) []model.MintRecordModel {
	records, err := d.store.ListByProject(ctx, projectID)
	if err != nil {
		logger.Error("Error fetching minting records: %v", err)
		return []model.MintRecordModel{}
	}
	return records
}

// transition 先尽力写存储（失败只记日志），再同步通知内存状态
func (d *Dispatcher) transition(ctx context.Context, id string, status model.MintStatus, errorMessage string, sink StatusSink) {
	if !model.IsTempID(id) {
		if err := d.store.UpdateStatus(ctx, id, status, errorMessage); err != nil {
			logger.Error("Error updating record %s to %s: %v", id, status, err)
		}
	}
	if !sink.Report(StatusUpdate{RecordID: id, Status: status, ErrorMessage: errorMessage, At: d.now()}) {
		logger.Debug("status update %s -> %s not applied", id, status)
	}
}
