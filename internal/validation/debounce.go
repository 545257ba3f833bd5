package validation

import (
	"sync"
	"time"
)

// Debouncer 按 key 合并触发，窗口内只执行最后一次
type Debouncer struct {
	wait   time.Duration
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewDebouncer 创建
func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait, timers: make(map[string]*time.Timer)}
}

// Trigger 重置 key 的计时器，到期后执行 fn
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		if d.timers[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
	d.timers[key] = timer
}

// Cancel 取消 key 上未执行的触发
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
}

// Stop 取消全部
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
