package systems

import (
	"errors"
	"fmt"
	"math"

	"github.com/decker502/pganims/pkg/animgraph"
	"github.com/decker502/pganims/pkg/components"
	"github.com/decker502/pganims/pkg/ecs"
)

var (
	// ErrNoDirective 所有者没有 Directive（尚未绑定或不是所有者）
	ErrNoDirective = errors.New("owner has no directive")
	// ErrGraphNotReady 动画图尚未构建或挂载
	ErrGraphNotReady = errors.New("animation graph not ready")
	// ErrInvalidSpeed 播放速度不是有限值（NaN 或 ±Inf）
	ErrInvalidSpeed = errors.New("invalid playback speed")
)

// ==================================================================
// 校验 API (Checked APIs)
//
// 与 Directive 上的同名方法语义相同，但先校验：
//   - 索引必须指向 clip（1..N），否则返回 *animgraph.IndexError
//     （包装 ErrAnimIndexOutOfRange 或 ErrNotAClip）
//   - mask group 必须 < 64，否则返回 ErrMaskGroupOutOfRange
//   - 速度必须是有限值，否则返回 ErrInvalidSpeed
//
// 校验失败时 Directive 不会被修改。
// ==================================================================

// Directive 返回所有者的 Directive
func (p *AnimsPlugin) Directive(owner ecs.EntityID) (*components.Directive, error) {
	d, ok := ecs.GetComponent[*components.Directive](p.entityManager, owner)
	if !ok {
		return nil, fmt.Errorf("owner %d: %w", owner, ErrNoDirective)
	}
	return d, nil
}

// Set 替换条目和循环标志
func (p *AnimsPlugin) Set(owner ecs.EntityID, entries []components.Entry, repeat bool) error {
	d, def, err := p.target(owner)
	if err != nil {
		return err
	}
	if err := validateEntries(def, entries); err != nil {
		return fmt.Errorf("owner %d: %w", owner, err)
	}
	d.Set(entries, repeat)
	return nil
}

// SetLoop 循环播放单个动画
func (p *AnimsPlugin) SetLoop(owner ecs.EntityID, index int) error {
	d, def, err := p.target(owner)
	if err != nil {
		return err
	}
	if err := validateEntry(def, components.NewEntry(index)); err != nil {
		return fmt.Errorf("owner %d: %w", owner, err)
	}
	d.SetLoop(index)
	return nil
}

// SetOnce 播放单个动画一次
func (p *AnimsPlugin) SetOnce(owner ecs.EntityID, index int) error {
	d, def, err := p.target(owner)
	if err != nil {
		return err
	}
	if err := validateEntry(def, components.NewEntry(index)); err != nil {
		return fmt.Errorf("owner %d: %w", owner, err)
	}
	d.SetOnce(index)
	return nil
}

// SetNext 安装后续播放队列（最后一组最先播放）
func (p *AnimsPlugin) SetNext(owner ecs.EntityID, queue [][]components.Entry) error {
	d, def, err := p.target(owner)
	if err != nil {
		return err
	}
	for i, set := range queue {
		if err := validateEntries(def, set); err != nil {
			return fmt.Errorf("owner %d: queue #%d: %w", owner, i, err)
		}
	}
	d.SetNext(queue)
	return nil
}

// StopAll 停止所有者的全部动画
// 停止不需要动画图，因此只检查 Directive
func (p *AnimsPlugin) StopAll(owner ecs.EntityID) error {
	d, err := p.Directive(owner)
	if err != nil {
		return err
	}
	d.StopAll()
	return nil
}

// target 返回所有者的 Directive 以及用于校验的动画图
// 优先使用所有者骨骼上的动画图，骨骼未挂载时使用全局资源
func (p *AnimsPlugin) target(owner ecs.EntityID) (*components.Directive, *animgraph.Definition, error) {
	d, err := p.Directive(owner)
	if err != nil {
		return nil, nil, err
	}

	var def *animgraph.Definition
	if a, ok := ecs.GetComponent[*components.Animatable](p.entityManager, owner); ok && a.IsBound() {
		if h, ok := ecs.GetComponent[*components.AnimGraphHandle](p.entityManager, a.Skeleton); ok {
			def = h.Definition
		}
	}
	if def == nil {
		def, _ = p.resource.Get()
	}
	if def == nil || !def.Initialized() {
		return nil, nil, fmt.Errorf("owner %d: %w", owner, ErrGraphNotReady)
	}
	return d, def, nil
}

func validateEntries(def *animgraph.Definition, entries []components.Entry) error {
	var errs []error
	for _, e := range entries {
		if err := validateEntry(def, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func validateEntry(def *animgraph.Definition, e components.Entry) error {
	if _, _, err := def.Clip(e.Index); err != nil {
		return err
	}
	if e.Mask != nil && *e.Mask >= animgraph.MaxMaskGroups {
		return fmt.Errorf("index %d: mask group %d: %w", e.Index, *e.Mask, animgraph.ErrMaskGroupOutOfRange)
	}
	if !validSpeed(e) {
		return fmt.Errorf("index %d: speed %v: %w", e.Index, *e.Speed, ErrInvalidSpeed)
	}
	return nil
}

func validSpeed(e components.Entry) bool {
	speed := e.SpeedOrDefault()
	return !math.IsNaN(speed) && !math.IsInf(speed, 0)
}
