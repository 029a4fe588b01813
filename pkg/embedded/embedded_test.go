package embedded

import (
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"data/effects.yaml":        {Data: []byte("particles:\n  poolSize: 10\n")},
		"data/effect_presets.yaml": {Data: []byte("effects: {}\n")},
	}
}

// TestIsInitialized 测试初始化状态检测
func TestIsInitialized(t *testing.T) {
	Init(nil)
	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}

	Init(testFS())
	if !IsInitialized() {
		t.Error("Expected IsInitialized() to return true after Init()")
	}

	Init(nil)
}

// TestReadFileNotInitialized 测试未初始化时调用 ReadFile
func TestReadFileNotInitialized(t *testing.T) {
	Init(nil)

	_, err := ReadFile("data/effects.yaml")
	if err == nil {
		t.Fatal("Expected error when calling ReadFile() before Init()")
	}
	if err.Error() != "embedded package not initialized, call Init() first" {
		t.Errorf("Unexpected error message: %v", err)
	}
}

// TestReadFile 测试读取数据文件（含路径标准化）
func TestReadFile(t *testing.T) {
	Init(testFS())
	defer Init(nil)

	for _, path := range []string{"data/effects.yaml", "./data/effects.yaml"} {
		data, err := ReadFile(path)
		if err != nil {
			t.Errorf("ReadFile(%q) error: %v", path, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("ReadFile(%q) returned empty data", path)
		}
	}
}

// TestInvalidPrefix 测试非 data/ 前缀的路径
func TestInvalidPrefix(t *testing.T) {
	Init(testFS())
	defer Init(nil)

	if _, err := ReadFile("assets/images/bubble.png"); err == nil {
		t.Error("Expected error for non-data path")
	}
	if Exists("assets/images/bubble.png") {
		t.Error("Exists() should be false for non-data path")
	}
}

// TestGlob 测试文件匹配
func TestGlob(t *testing.T) {
	Init(testFS())
	defer Init(nil)

	matches, err := Glob("data/*.yaml")
	if err != nil {
		t.Fatalf("Glob error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Glob matches: got %d, want 2 (%v)", len(matches), matches)
	}
	if !Exists("data/effect_presets.yaml") {
		t.Error("Exists(data/effect_presets.yaml) should be true")
	}
}
