package ecs

import (
	"reflect"
	"slices"
)

// EntityID 是实体的唯一标识符
type EntityID uint64

// PlaceholderEntity 是保留的无效实体 ID（0）
// 用作"没有实体"的哨兵值，例如找不到动画所有者时的降级绑定
const PlaceholderEntity EntityID = 0

// DefaultMaxAncestorDepth 祖先遍历的默认深度上限
const DefaultMaxAncestorDepth = 64

// EntityManager 管理所有实体、组件以及父子层级
type EntityManager struct {
	nextID uint64
	// 实体-组件映射: EntityID -> ComponentType -> Component实例
	components map[EntityID]map[reflect.Type]interface{}
	// 父子关系: child -> parent
	parents map[EntityID]EntityID
	// 待删除的实体ID列表
	entitiesToDestroy []EntityID
}

// NewEntityManager 创建一个新的 EntityManager 实例
func NewEntityManager() *EntityManager {
	return &EntityManager{
		nextID:            1, // ID从1开始,0保留为无效ID
		components:        make(map[EntityID]map[reflect.Type]interface{}),
		parents:           make(map[EntityID]EntityID),
		entitiesToDestroy: make([]EntityID, 0),
	}
}

// CreateEntity 创建新实体并返回唯一ID
func (em *EntityManager) CreateEntity() EntityID {
	id := EntityID(em.nextID)
	em.nextID++
	em.components[id] = make(map[reflect.Type]interface{})
	return id
}

// Exists 检查实体是否存在（尚未被清理）
func (em *EntityManager) Exists(id EntityID) bool {
	_, ok := em.components[id]
	return ok
}

// DestroyEntity 标记实体待删除(不立即删除)
func (em *EntityManager) DestroyEntity(id EntityID) {
	em.entitiesToDestroy = append(em.entitiesToDestroy, id)
}

// AddComponent 为实体添加组件
// 同类型组件会被覆盖
func (em *EntityManager) AddComponent(id EntityID, component interface{}) {
	em.addComponent(id, reflect.TypeOf(component), component)
}

func (em *EntityManager) addComponent(id EntityID, componentType reflect.Type, component interface{}) {
	if compMap, exists := em.components[id]; exists {
		compMap[componentType] = component
	}
}

// RemoveComponent 从实体移除指定类型的组件
func (em *EntityManager) RemoveComponent(id EntityID, componentType reflect.Type) {
	if compMap, exists := em.components[id]; exists {
		delete(compMap, componentType)
	}
}

// GetComponent 获取实体的特定类型组件
func (em *EntityManager) GetComponent(id EntityID, componentType reflect.Type) (interface{}, bool) {
	if compMap, exists := em.components[id]; exists {
		if comp, found := compMap[componentType]; found {
			return comp, true
		}
	}
	return nil, false
}

// HasComponent 检查实体是否拥有特定类型组件
func (em *EntityManager) HasComponent(id EntityID, componentType reflect.Type) bool {
	if compMap, exists := em.components[id]; exists {
		_, found := compMap[componentType]
		return found
	}
	return false
}

// SetParent 设置实体的父实体
// parent 为 PlaceholderEntity 时解除父子关系
func (em *EntityManager) SetParent(child, parent EntityID) {
	if parent == PlaceholderEntity {
		delete(em.parents, child)
		return
	}
	em.parents[child] = parent
}

// Parent 返回实体的父实体
func (em *EntityManager) Parent(id EntityID) (EntityID, bool) {
	parent, ok := em.parents[id]
	return parent, ok
}

// Ancestors 从直接父实体开始向上返回祖先列表（由近到远）
//
// 遍历最多 maxDepth 层（<= 0 时使用 DefaultMaxAncestorDepth），
// 遇到环时停止，因此畸形的层级也不会导致无限遍历。
func (em *EntityManager) Ancestors(id EntityID, maxDepth int) []EntityID {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxAncestorDepth
	}

	result := make([]EntityID, 0, 4)
	visited := map[EntityID]bool{id: true}
	current := id
	for len(result) < maxDepth {
		parent, ok := em.parents[current]
		if !ok || visited[parent] {
			break
		}
		visited[parent] = true
		result = append(result, parent)
		current = parent
	}
	return result
}

// RemoveMarkedEntities 清理所有标记删除的实体
func (em *EntityManager) RemoveMarkedEntities() {
	for _, id := range em.entitiesToDestroy {
		delete(em.components, id)
		delete(em.parents, id)
	}
	em.entitiesToDestroy = em.entitiesToDestroy[:0] // 清空切片
}

// GetEntitiesWith 查询拥有指定组件类型组合的所有实体
// 参数: componentTypes ...reflect.Type - 需要的组件类型列表
// 返回: []EntityID - 满足条件的实体ID列表（按 ID 升序）
func (em *EntityManager) GetEntitiesWith(componentTypes ...reflect.Type) []EntityID {
	result := make([]EntityID, 0)

	for id, compMap := range em.components {
		hasAll := true
		for _, ct := range componentTypes {
			if _, found := compMap[ct]; !found {
				hasAll = false
				break
			}
		}
		if hasAll {
			result = append(result, id)
		}
	}

	slices.Sort(result)
	return result
}
