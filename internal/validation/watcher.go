package validation

import (
	"context"
	"sync"
	"time"

	"github.com/blues/nftsender/internal/logger"
	"github.com/blues/nftsender/internal/model"
)

// State 校验状态
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateValid      State = "valid"
	StateInvalid    State = "invalid"
)

// Status 项目当前的校验状态
type Status struct {
	State     State     `json:"state"`
	Reason    string    `json:"reason,omitempty"`
	Template  *Template `json:"template,omitempty"`
	CheckedAt time.Time `json:"checkedAt,omitempty"`
}

type entry struct {
	status Status
	seq    uint64
}

// Watcher 记录每个项目的校验状态，表单修改经防抖后触发校验
type Watcher struct {
	validator *Validator
	debouncer *Debouncer

	mu      sync.RWMutex
	entries map[string]*entry
}

// NewWatcher 创建
func NewWatcher(validator *Validator, wait time.Duration) *Watcher {
	return &Watcher{
		validator: validator,
		debouncer: NewDebouncer(wait),
		entries:   make(map[string]*entry),
	}
}

// Trigger 防抖后在后台校验项目
func (w *Watcher) Trigger(project model.ProjectModel) {
	w.debouncer.Trigger(project.Id, func() {
		w.Check(context.Background(), project)
	})
}

// Check 立即校验并记录结果；期间若有更新的校验开始，旧结果被丢弃
func (w *Watcher) Check(ctx context.Context, project model.ProjectModel) Status {
	seq := w.begin(project.Id)

	tpl, err := w.validator.Validate(ctx, project.TemplateId, project.CollectionId, project.ApiKey)
	status := Status{State: StateValid, Template: tpl, CheckedAt: time.Now()}
	if err != nil {
		logger.Warn("project %s validation failed: %v", project.Id, err)
		status = Status{State: StateInvalid, Reason: err.Error(), CheckedAt: status.CheckedAt}
	}

	w.finish(project.Id, seq, status)
	return status
}

// Get 查询状态，未校验过的项目为 idle
func (w *Watcher) Get(projectID string) Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if e, ok := w.entries[projectID]; ok {
		return e.status
	}
	return Status{State: StateIdle}
}

// Forget 删除项目时清理状态
func (w *Watcher) Forget(projectID string) {
	w.debouncer.Cancel(projectID)
	w.mu.Lock()
	delete(w.entries, projectID)
	w.mu.Unlock()
}

// Stop 取消所有未执行的校验
func (w *Watcher) Stop() {
	w.debouncer.Stop()
}

func (w *Watcher) begin(projectID string) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entries[projectID]
	if !ok {
		e = &entry{}
		w.entries[projectID] = e
	}
	e.seq++
	e.status = Status{State: StateValidating}
	return e.seq
}

func (w *Watcher) finish(projectID string, seq uint64, status Status) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entries[projectID]
	if !ok || e.seq != seq {
		return
	}
	e.status = status
}
