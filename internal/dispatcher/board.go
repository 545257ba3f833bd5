package dispatcher

import (
	"sync"

	"github.com/blues/nftsender/internal/logger"
	"github.com/blues/nftsender/internal/model"
)

// Board 一个项目在内存中的记录视图
// 所有修改都经过同一个 goroutine 顺序执行
type Board struct {
	projectID string
	cmds      chan func(*boardState)
	done      chan struct{}
	closeOnce sync.Once
}

type boardState struct {
	order      []string
	records    map[string]*model.MintRecordModel
	claims     map[string]uint64
	generation uint64
	loaded     bool
}

// NewBoard 创建并启动
func NewBoard(projectID string) *Board {
	b := &Board{
		projectID: projectID,
		cmds:      make(chan func(*boardState)),
		done:      make(chan struct{}),
	}
	go b.loop(&boardState{
		records: make(map[string]*model.MintRecordModel),
		claims:  make(map[string]uint64),
	})
	return b
}

func (b *Board) loop(s *boardState) {
	for {
		select {
		case cmd := <-b.cmds:
			cmd(s)
		case <-b.done:
			return
		}
	}
}

// exec 在 board goroutine 上执行 fn 并等待完成
func (b *Board) exec(fn func(*boardState)) bool {
	select {
	case <-b.done:
		return false
	default:
	}

	finished := make(chan struct{})
	select {
	case b.cmds <- func(s *boardState) {
		fn(s)
		close(finished)
	}:
	case <-b.done:
		return false
	}
	<-finished
	return true
}

// Close 停止 board goroutine
func (b *Board) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// ProjectID 所属项目
func (b *Board) ProjectID() string {
	return b.projectID
}

// Loaded 是否已从存储加载过
func (b *Board) Loaded() bool {
	var loaded bool
	b.exec(func(s *boardState) { loaded = s.loaded })
	return loaded
}

// Load 用存储中的记录替换视图，内存中的临时记录保留在最前
func (b *Board) Load(records []model.MintRecordModel) {
	b.exec(func(s *boardState) {
		var temps []string
		for _, id := range s.order {
			if model.IsTempID(id) {
				temps = append(temps, id)
			}
		}
		nextRecords := make(map[string]*model.MintRecordModel, len(records)+len(temps))
		order := make([]string, 0, len(records)+len(temps))
		for _, id := range temps {
			nextRecords[id] = s.records[id]
			order = append(order, id)
		}
		for i := range records {
			r := records[i]
			if _, dup := nextRecords[r.Id]; dup {
				continue
			}
			nextRecords[r.Id] = &r
			order = append(order, r.Id)
		}
		s.records = nextRecords
		s.order = order
		s.loaded = true
	})
}

// Add 新记录放在最前
func (b *Board) Add(records ...model.MintRecordModel) {
	b.exec(func(s *boardState) {
		added := make([]string, 0, len(records))
		for i := range records {
			r := records[i]
			if _, ok := s.records[r.Id]; ok {
				continue
			}
			s.records[r.Id] = &r
			added = append(added, r.Id)
		}
		s.order = append(added, s.order...)
	})
}

// Remove 从视图中移除（包括临时记录）
func (b *Board) Remove(ids ...string) {
	b.exec(func(s *boardState) {
		drop := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			drop[id] = struct{}{}
			delete(s.records, id)
			delete(s.claims, id)
		}
		kept := s.order[:0]
		for _, id := range s.order {
			if _, ok := drop[id]; !ok {
				kept = append(kept, id)
			}
		}
		s.order = kept
	})
}

// Snapshot 当前视图的副本
func (b *Board) Snapshot() []model.MintRecordModel {
	var out []model.MintRecordModel
	b.exec(func(s *boardState) {
		out = make([]model.MintRecordModel, 0, len(s.order))
		for _, id := range s.order {
			out = append(out, copyRecord(s.records[id]))
		}
	})
	return out
}

// Get 单条记录
func (b *Board) Get(id string) (model.MintRecordModel, bool) {
	var (
		out model.MintRecordModel
		ok  bool
	)
	b.exec(func(s *boardState) {
		if r, found := s.records[id]; found {
			out, ok = copyRecord(r), true
		}
	})
	return out, ok
}

// Select 按给定ID取记录，保持视图顺序
func (b *Board) Select(ids []string) []model.MintRecordModel {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []model.MintRecordModel
	b.exec(func(s *boardState) {
		for _, id := range s.order {
			if _, ok := want[id]; ok {
				out = append(out, copyRecord(s.records[id]))
			}
		}
	})
	return out
}

// Stats 各状态数量
func (b *Board) Stats() model.MintStats {
	return model.CountByStatus(b.Snapshot())
}

// Begin 开始一次调度：分配新的代数并认领这些记录
// 之前的调度对这些记录上报的状态将被拒绝
func (b *Board) Begin(ids ...string) *Dispatch {
	var gen uint64
	b.exec(func(s *boardState) {
		s.generation++
		gen = s.generation
		for _, id := range ids {
			s.claims[id] = gen
		}
	})
	return &Dispatch{board: b, generation: gen}
}

// Generation 最近一次调度的代数
func (b *Board) Generation() uint64 {
	var gen uint64
	b.exec(func(s *boardState) { gen = s.generation })
	return gen
}

func (b *Board) apply(gen uint64, u StatusUpdate) bool {
	var applied bool
	b.exec(func(s *boardState) {
		if claim := s.claims[u.RecordID]; claim > gen {
			logger.Debug("board %s: stale update for %s (generation %d < %d)", b.projectID, u.RecordID, gen, claim)
			return
		}
		r, ok := s.records[u.RecordID]
		if !ok {
			return
		}
		if err := r.Apply(u.Status, u.ErrorMessage, u.At); err != nil {
			logger.Debug("board %s: %s -> %s rejected: %v", b.projectID, r.Status, u.Status, err)
			return
		}
		applied = true
	})
	return applied
}

// Dispatch 绑定到某一代调度的状态接收器
type Dispatch struct {
	board      *Board
	generation uint64
}

// Generation 该调度的代数
func (d *Dispatch) Generation() uint64 {
	return d.generation
}

// Report 实现 StatusSink
func (d *Dispatch) Report(u StatusUpdate) bool {
	return d.board.apply(d.generation, u)
}

func copyRecord(r *model.MintRecordModel) model.MintRecordModel {
	out := *r
	if r.ErrorMessage != nil {
		msg := *r.ErrorMessage
		out.ErrorMessage = &msg
	}
	return out
}
