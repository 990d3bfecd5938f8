package asset

import (
	"fmt"
	"sync"
)

// Handle Store 中模型的名称
type Handle string

// Store 按句柄保存模型
// 模型可以异步加载；解析完成前 Get 返回 ok=false，调用方在之后的帧重试
type Store struct {
	mu      sync.RWMutex
	models  map[Handle]*Model
	pending map[Handle]bool
	errs    map[Handle]error
}

// NewStore 创建空的 Store
func NewStore() *Store {
	return &Store{
		models:  make(map[Handle]*Model),
		pending: make(map[Handle]bool),
		errs:    make(map[Handle]error),
	}
}

// Insert 保存已解析的模型
func (s *Store) Insert(h Handle, m *Model) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.models[h] = m
	delete(s.pending, h)
	delete(s.errs, h)
}

// Get 模型解析完成后返回 h 对应的模型
func (s *Store) Get(h Handle) (*Model, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.models[h]
	return m, ok
}

// Err 异步加载失败时返回 h 的加载错误
func (s *Store) Err(h Handle) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errs[h]
}

// LoadAsync 在 goroutine 中执行 load 并把结果存到 h 下，加载结束时关闭返回的 channel
// 对正在加载或已加载的句柄再次调用不做任何事，返回已关闭的 channel
func (s *Store) LoadAsync(h Handle, load func() (*Model, error)) <-chan struct{} {
	done := make(chan struct{})

	s.mu.Lock()
	if s.pending[h] || s.models[h] != nil {
		s.mu.Unlock()
		close(done)
		return done
	}
	s.pending[h] = true
	delete(s.errs, h)
	s.mu.Unlock()

	go func() {
		defer close(done)

		m, err := load()
		if err == nil && m == nil {
			err = fmt.Errorf("asset %s: loader returned no model", h)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.pending, h)
		if err != nil {
			s.errs[h] = err
			return
		}
		s.models[h] = m
	}()

	return done
}
