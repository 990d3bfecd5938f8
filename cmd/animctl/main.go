// animctl 检查和模拟骨骼动画配置
//
// 用法:
//
//	animctl validate              # 对照模型校验插件配置，有问题时非零退出
//	animctl inspect               # 打印配置索引表和骨骼 mask 分组
//	animctl simulate --anim 2     # 无界面运行若干帧并打印通知
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
