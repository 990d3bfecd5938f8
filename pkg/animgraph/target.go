package animgraph

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultPathSeparator 拼接骨骼名称的默认分隔符
const DefaultPathSeparator = "/"

var targetNamespace = uuid.MustParse("6f1c3d8e-2b0a-5e7f-9a41-3c5d2e8b7f10")

// TargetID 用从骨骼根到该骨骼的名称路径标识被驱动的骨骼
// 相同路径总是得到相同 ID
type TargetID uuid.UUID

// TargetIDFromNames 由逐段名称计算目标 ID
func TargetIDFromNames(names ...string) TargetID {
	return TargetID(uuid.NewSHA1(targetNamespace, []byte(strings.Join(names, "\x00"))))
}

// TargetIDFromPath 由以 sep 拼接的路径计算目标 ID
// sep 为空时使用 DefaultPathSeparator
func TargetIDFromPath(path, sep string) TargetID {
	if sep == "" {
		sep = DefaultPathSeparator
	}
	return TargetIDFromNames(strings.Split(path, sep)...)
}

func (t TargetID) String() string {
	return uuid.UUID(t).String()
}
