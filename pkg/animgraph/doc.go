// Package animgraph 构建驱动骨骼播放的带索引动画图
//
// Definition 持有 Graph 和索引表。索引 0 永远是图的 root；
// 索引 k（k >= 1）对应第 k-1 个加载的 clip。
// 引擎中的所有配置索引（默认动画、事件列表、运行时 Directive）都使用这个偏移后的索引空间。
package animgraph
