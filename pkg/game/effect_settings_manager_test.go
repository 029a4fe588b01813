package game

import (
	"os"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// openTestGdata 在临时 HOME 下创建 gdata manager
func openTestGdata(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return m
}

// TestDefaultEffectSettings 测试默认值
func TestDefaultEffectSettings(t *testing.T) {
	s := DefaultEffectSettings()
	if s.QualityLevel != "high" {
		t.Errorf("QualityLevel: got %q, want %q", s.QualityLevel, "high")
	}
	if !s.ParticlesOn {
		t.Error("ParticlesOn: got false, want true")
	}
	if !s.AdaptiveQuality {
		t.Error("AdaptiveQuality: got false, want true")
	}
	if s.ShowStats {
		t.Error("ShowStats: got true, want false")
	}
}

// TestEffectSettingsManagerNilGdata 测试降级模式
func TestEffectSettingsManagerNilGdata(t *testing.T) {
	sm, err := NewEffectSettingsManager(nil)
	if err != nil {
		t.Fatalf("NewEffectSettingsManager(nil) error: %v", err)
	}

	sm.SetQualityLevel("low")
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should not fail, got %v", err)
	}
	if got := sm.GetSettings().QualityLevel; got != "low" {
		t.Errorf("QualityLevel: got %q, want %q", got, "low")
	}

	// 降级模式下 Load 会恢复默认值
	if err := sm.Load(); err != nil {
		t.Errorf("Load() in degraded mode should not fail, got %v", err)
	}
	if got := sm.GetSettings().QualityLevel; got != "high" {
		t.Errorf("QualityLevel after Load: got %q, want %q", got, "high")
	}
}

// TestEffectSettingsPersistence 测试保存后重新加载
func TestEffectSettingsPersistence(t *testing.T) {
	m := openTestGdata(t, "test_effect_settings")

	sm, err := NewEffectSettingsManager(m)
	if err != nil {
		t.Fatalf("NewEffectSettingsManager() error: %v", err)
	}
	sm.SetQualityLevel("medium")
	sm.SetParticlesOn(false)
	sm.SetAdaptiveQuality(false)
	sm.SetShowStats(true)
	if err := sm.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded, err := NewEffectSettingsManager(m)
	if err != nil {
		t.Fatalf("NewEffectSettingsManager() error: %v", err)
	}
	got := reloaded.GetSettings()
	if got.QualityLevel != "medium" {
		t.Errorf("QualityLevel: got %q, want %q", got.QualityLevel, "medium")
	}
	if got.ParticlesOn {
		t.Error("ParticlesOn: got true, want false")
	}
	if got.AdaptiveQuality {
		t.Error("AdaptiveQuality: got true, want false")
	}
	if !got.ShowStats {
		t.Error("ShowStats: got false, want true")
	}
}

// TestEffectSettingsCorruptedData 测试存档损坏时回退到默认值
func TestEffectSettingsCorruptedData(t *testing.T) {
	m := openTestGdata(t, "test_effect_settings_corrupt")

	if err := m.SaveObjectProp(effectSettingsObject, effectSettingsProperty, []byte("qualityLevel: [")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm, err := NewEffectSettingsManager(m)
	if err != nil {
		t.Fatalf("NewEffectSettingsManager() error: %v", err)
	}
	if got := sm.GetSettings().QualityLevel; got != "high" {
		t.Errorf("QualityLevel: got %q, want default %q", got, "high")
	}
	if err := sm.Load(); err == nil {
		t.Error("Load() should report corrupted data")
	}
}
