package animgraph

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound 节点索引不在图中
	ErrNodeNotFound = errors.New("animgraph: node not found")
	// ErrNotAClip 节点或配置索引不指向 clip（例如 root）
	ErrNotAClip = errors.New("animgraph: node is not a clip")
	// ErrAnimIndexOutOfRange 配置索引不在 [0, N] 内
	ErrAnimIndexOutOfRange = errors.New("animgraph: animation index out of range")
	// ErrMaskGroupOutOfRange mask group >= MaxMaskGroups
	ErrMaskGroupOutOfRange = errors.New("animgraph: mask group out of range")
	// ErrUnknownTarget 骨骼路径解析不到任何目标
	ErrUnknownTarget = errors.New("animgraph: bone path matches no target")
)

// IndexError 被拒绝的配置索引
type IndexError struct {
	Index int
	Max   int
	Err   error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("animation index %d (valid clips 1..%d): %v", e.Index, e.Max, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}
