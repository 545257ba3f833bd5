package dispatcher

import "sync"

// Boards 按项目管理 Board
type Boards struct {
	mu     sync.Mutex
	boards map[string]*Board
}

// NewBoards 创建
func NewBoards() *Boards {
	return &Boards{boards: make(map[string]*Board)}
}

// Get 获取项目的 Board，不存在时创建
func (r *Boards) Get(projectID string) *Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boards[projectID]
	if !ok {
		b = NewBoard(projectID)
		r.boards[projectID] = b
	}
	return b
}

// Drop 关闭并移除项目的 Board
func (r *Boards) Drop(projectID string) {
	r.mu.Lock()
	b, ok := r.boards[projectID]
	delete(r.boards, projectID)
	r.mu.Unlock()
	if ok {
		b.Close()
	}
}

// Close 关闭全部
func (r *Boards) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.boards {
		b.Close()
		delete(r.boards, id)
	}
}
