package embedded

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"data/models.yaml":          {Data: []byte("models: []\n")},
		"data/models/knight.reanim": {Data: []byte("<fps>12</fps>")},
		"data/models/mage.reanim":   {Data: []byte("<fps>24</fps>")},
	}
}

func TestNotInitialized(t *testing.T) {
	Init(nil)
	if IsInitialized() {
		t.Fatal("Init(nil) 不应标记为已初始化")
	}
	if _, err := ReadFile("data/models.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("期望 ErrNotInitialized，实际 %v", err)
	}
	if Exists("data/models.yaml") {
		t.Error("未初始化时 Exists 应返回 false")
	}
}

func TestReadFile(t *testing.T) {
	Init(testFS())
	defer Init(nil)

	data, err := ReadFile("./data/models.yaml")
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if string(data) != "models: []\n" {
		t.Errorf("内容不匹配: %q", data)
	}

	if _, err := ReadFile("assets/x.png"); !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("非 data/ 路径期望 fs.ErrInvalid，实际 %v", err)
	}
	if _, err := ReadFile("data/missing.yaml"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("期望 fs.ErrNotExist，实际 %v", err)
	}
}

func TestGlobAndReadDir(t *testing.T) {
	Init(testFS())
	defer Init(nil)

	files, err := Glob("data/models/*.reanim")
	if err != nil {
		t.Fatalf("Glob 失败: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("期望 2 个文件，实际 %v", files)
	}

	entries, err := ReadDir("data/models")
	if err != nil {
		t.Fatalf("ReadDir 失败: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("期望 2 个条目，实际 %d", len(entries))
	}

	if !Exists("data/models/knight.reanim") {
		t.Error("knight.reanim 应存在")
	}
	if Exists("data/models/orc.reanim") {
		t.Error("orc.reanim 不应存在")
	}
}
