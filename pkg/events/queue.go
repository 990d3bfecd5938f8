package events

import (
	"log"
	"sync"
)

// Queue 缓存一帧内的通知
// Flush 交给订阅者和 sink；Drain 让调用方直接取走
type Queue struct {
	mu          sync.Mutex
	pending     []AnimEvent
	subscribers []func(AnimEvent)
	sinks       []Sink
	logger      *log.Logger
}

// NewQueue 创建空队列
func NewQueue() *Queue {
	return &Queue{logger: log.Default()}
}

// SetLogger 设置记录 sink 失败的日志输出
func (q *Queue) SetLogger(l *log.Logger) {
	if l != nil {
		q.logger = l
	}
}

// Send 缓存事件直到下一次 Flush 或 Drain
func (q *Queue) Send(ev AnimEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, ev)
}

// Subscribe 注册回调，每个 Flush 出的事件都会调用 fn
func (q *Queue) Subscribe(fn func(AnimEvent)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.subscribers = append(q.subscribers, fn)
}

// AddSink 注册接收所有 Flush 事件的 sink
func (q *Queue) AddSink(s Sink) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sinks = append(q.sinks, s)
}

// Len 缓存的事件数量
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain 取出并清空缓存的事件，不通知任何人
func (q *Queue) Drain() []AnimEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.pending
	q.pending = nil
	return out
}

// Flush 按发送顺序投递缓存的事件并清空缓存
// sink 出错只记录日志，不中断投递
func (q *Queue) Flush() {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	subscribers := append([]func(AnimEvent){}, q.subscribers...)
	sinks := append([]Sink{}, q.sinks...)
	q.mu.Unlock()

	for _, ev := range pending {
		for _, fn := range subscribers {
			fn(ev)
		}
		for _, sink := range sinks {
			if err := sink.Publish(ev); err != nil {
				q.logger.Printf("[AnimEvents] sink publish failed: kind=%s anim=%d skeleton=%d err=%v",
					ev.Kind, ev.Anim, ev.Skeleton, err)
			}
		}
	}
}
