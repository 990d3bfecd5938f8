package ecs

import (
	"reflect"
	"testing"
)

// 测试组件类型定义
type testOwnerComponent struct {
	DefaultAnim int
}

type testPlayerComponent struct {
	Playing []int
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()

	if id1 == id2 {
		t.Error("Entity IDs should be unique")
	}

	// ID 从 1 开始，0 是 PlaceholderEntity
	if id1 != 1 {
		t.Errorf("First entity ID should be 1, got %d", id1)
	}
	if em.Exists(PlaceholderEntity) {
		t.Error("PlaceholderEntity should never exist")
	}
}

func TestGenericComponentAPI(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	AddComponent(em, id, &testOwnerComponent{DefaultAnim: 3})

	comp, ok := GetComponent[*testOwnerComponent](em, id)
	if !ok {
		t.Fatal("Component should be found")
	}
	if comp.DefaultAnim != 3 {
		t.Errorf("Expected DefaultAnim=3, got %d", comp.DefaultAnim)
	}

	// 泛型与反射 API 使用同一个类型键
	if !em.HasComponent(id, reflect.TypeOf(&testOwnerComponent{})) {
		t.Error("Reflection API should see component added with generic API")
	}

	RemoveComponent[*testOwnerComponent](em, id)
	if HasComponent[*testOwnerComponent](em, id) {
		t.Error("Component should be removed")
	}
}

func TestDestroyEntity(t *testing.T) {
	em := NewEntityManager()
	parent := em.CreateEntity()
	id := em.CreateEntity()
	em.SetParent(id, parent)
	AddComponent(em, id, &testOwnerComponent{})

	em.DestroyEntity(id)

	// 清理前实体仍存在
	if !HasComponent[*testOwnerComponent](em, id) {
		t.Error("Entity should still exist before cleanup")
	}

	em.RemoveMarkedEntities()
	if em.Exists(id) {
		t.Error("Entity should be removed after cleanup")
	}
	if _, ok := em.Parent(id); ok {
		t.Error("Parent link should be removed with the entity")
	}
}

func TestGetEntitiesWith_SortedAndFiltered(t *testing.T) {
	em := NewEntityManager()

	ids := make([]EntityID, 0, 5)
	for i := 0; i < 5; i++ {
		id := em.CreateEntity()
		ids = append(ids, id)
		AddComponent(em, id, &testOwnerComponent{DefaultAnim: i})
		if i%2 == 0 {
			AddComponent(em, id, &testPlayerComponent{})
		}
	}

	owners := GetEntitiesWith1[*testOwnerComponent](em)
	if len(owners) != 5 {
		t.Fatalf("Expected 5 owners, got %d", len(owners))
	}
	for i := 1; i < len(owners); i++ {
		if owners[i-1] >= owners[i] {
			t.Fatalf("Query result should be sorted ascending, got %v", owners)
		}
	}

	both := GetEntitiesWith2[*testOwnerComponent, *testPlayerComponent](em)
	expected := []EntityID{ids[0], ids[2], ids[4]}
	if !reflect.DeepEqual(both, expected) {
		t.Errorf("Expected %v, got %v", expected, both)
	}

	reflected := em.GetEntitiesWith(reflect.TypeOf(&testOwnerComponent{}), reflect.TypeOf(&testPlayerComponent{}))
	if !reflect.DeepEqual(reflected, expected) {
		t.Errorf("Reflection query expected %v, got %v", expected, reflected)
	}
}

func TestAncestors_NearestFirst(t *testing.T) {
	em := NewEntityManager()
	root := em.CreateEntity()
	mid := em.CreateEntity()
	leaf := em.CreateEntity()
	em.SetParent(mid, root)
	em.SetParent(leaf, mid)

	got := em.Ancestors(leaf, 0)
	expected := []EntityID{mid, root}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected ancestors %v, got %v", expected, got)
	}

	if len(em.Ancestors(root, 0)) != 0 {
		t.Error("Root should have no ancestors")
	}

	em.SetParent(leaf, PlaceholderEntity)
	if _, ok := em.Parent(leaf); ok {
		t.Error("SetParent with PlaceholderEntity should detach")
	}
}

func TestAncestors_DepthBound(t *testing.T) {
	em := NewEntityManager()
	prev := em.CreateEntity()
	for i := 0; i < 10; i++ {
		next := em.CreateEntity()
		em.SetParent(prev, next)
		prev = next
	}

	if got := em.Ancestors(EntityID(1), 3); len(got) != 3 {
		t.Errorf("Expected walk capped at 3, got %d", len(got))
	}
	if got := em.Ancestors(EntityID(1), 100); len(got) != 10 {
		t.Errorf("Expected full chain of 10, got %d", len(got))
	}
}

func TestAncestors_CycleStops(t *testing.T) {
	em := NewEntityManager()
	a := em.CreateEntity()
	b := em.CreateEntity()
	em.SetParent(a, b)
	em.SetParent(b, a)

	got := em.Ancestors(a, 0)
	if len(got) != 1 || got[0] != b {
		t.Errorf("Cycle should stop after visiting b once, got %v", got)
	}
}

// BenchmarkGetEntitiesWith2 查询 1000 实体（2组件）
func BenchmarkGetEntitiesWith2(b *testing.B) {
	em := NewEntityManager()
	for i := 0; i < 1000; i++ {
		id := em.CreateEntity()
		AddComponent(em, id, &testOwnerComponent{DefaultAnim: i})
		AddComponent(em, id, &testPlayerComponent{})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetEntitiesWith2[*testOwnerComponent, *testPlayerComponent](em)
	}
}
